package database

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bookbrief/bookbrief/internal/entities"
	"github.com/bookbrief/bookbrief/internal/log"
)

type Database struct {
	DB *gorm.DB
}

// Models lists every persisted entity, in migration order.
func Models() []any {
	return []any{
		&entities.User{},
		&entities.Category{},
		&entities.Book{},
		&entities.Chapter{},
		&entities.ReadingList{},
		&entities.ReadingListBook{},
		&entities.Review{},
		&entities.AuditEvent{},
	}
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := Open(dbPath, logger.Warn)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", zap.String("path", dbPath))

	return &Database{DB: db}, nil
}

// Open connects to SQLite at dbPath and migrates the schema.
func Open(dbPath string, level logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn(dbPath)), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// dsn enables WAL and a busy timeout for file databases so the concurrent
// count and page queries of a listing do not trip over each other.
func dsn(dbPath string) string {
	if strings.Contains(dbPath, ":memory:") || strings.Contains(dbPath, "?") {
		return dbPath
	}
	return dbPath + "?_journal=WAL&_busy_timeout=5000"
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
