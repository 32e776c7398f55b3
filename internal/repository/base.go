// Package repository contains data access interfaces and their GORM and
// in-memory implementations.
package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isUniqueConstraintError detects unique constraint violations across the
// supported drivers (Postgres and SQLite report them differently).
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "constraint failed")
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
