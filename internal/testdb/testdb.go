// Package testdb opens throwaway sqlite databases for package tests.
package testdb

import (
	"io"
	"log/slog"
	"testing"

	"auto_trainer/config"
	"auto_trainer/infrastructure/db"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns a migrated in-memory database that is closed when the test
// ends. It also silences the global logger.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	QuietLogs()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}

// QuietLogs routes the application logger to io.Discard.
func QuietLogs() {
	config.UseLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
