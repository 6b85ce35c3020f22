// Package dbtest opens isolated in-memory SQLite databases for tests.
package dbtest

import (
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/suPer8Hu/serene-backend/internal/db"
	"github.com/suPer8Hu/serene-backend/internal/models"
	"gorm.io/gorm"
)

// Open returns a migrated database private to the calling test.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.Open(sqlite.Open("file:" + name + "?mode=memory&cache=shared"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// a single connection keeps the shared in-memory database free of table locks
	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := gdb.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}

// SeedUser inserts a bare user row so owner-scoped rows have a parent.
func SeedUser(t *testing.T, gdb *gorm.DB, id string) *models.User {
	t.Helper()
	email := id
	u := &models.User{ID: id, Name: "tester", Email: &email}
	if err := gdb.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
	return u
}
