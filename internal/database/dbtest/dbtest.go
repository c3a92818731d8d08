// Package dbtest opens throwaway SQLite databases for repository tests.
package dbtest

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bookbrief/bookbrief/internal/database"
)

// Open returns a migrated database in a file under t.TempDir. A file is used
// rather than :memory: because every pooled connection to :memory: sees its
// own empty database.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.Open(filepath.Join(t.TempDir(), name), logger.Silent)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
