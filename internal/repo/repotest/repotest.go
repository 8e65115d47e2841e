// Package repotest opens throwaway in-memory databases for tests.
package repotest

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sunday-market/internal/core/database"
)

// Open returns a migrated SQLite database private to t.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	db, err := database.NewGorm(database.Opts{Driver: "sqlite", DSN: dsn, LogLevel: "silent"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}
