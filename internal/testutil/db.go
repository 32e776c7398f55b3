// Package testutil provides shared helpers for package tests.
package testutil

import (
	"testing"

	"pictive/internal/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewTestDB opens an in-memory SQLite database with the full schema applied.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}
