// Command migrate applies the database schema. Intended for production
// deployments, where the server does not auto-migrate on startup.
package main

import (
	"log"

	"pictive/internal/config"
	"pictive/internal/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.StorageDriver == config.DriverMemory {
		log.Fatal("The memory storage driver has no schema to migrate")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Schema migration applied")
}
