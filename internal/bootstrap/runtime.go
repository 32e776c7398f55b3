// Package bootstrap wires runtime dependencies for the cmd binaries.
package bootstrap

import (
	"fmt"

	"pictive/internal/cache"
	"pictive/internal/config"
	"pictive/internal/database"
	"pictive/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemoData populates an empty database with demo users and posts.
	SeedDemoData bool
}

// InitRuntime connects to the database and Redis and optionally seeds demo
// data. With the memory storage driver the returned DB is nil; the server
// builds its in-memory repositories itself.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	var db *gorm.DB
	if cfg.StorageDriver != config.DriverMemory {
		var err error
		db, err = database.Connect(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("database connection failed: %w", err)
		}
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemoData && db != nil {
		var users int64
		if err := db.Table("users").Count(&users).Error; err != nil {
			return nil, nil, fmt.Errorf("demo seed precheck failed: %w", err)
		}
		if users == 0 {
			if err := seed.Seed(db, seed.Options{NumUsers: 10, NumPosts: 40}); err != nil {
				return nil, nil, fmt.Errorf("demo seeding failed: %w", err)
			}
		}
	}

	return db, r, nil
}
