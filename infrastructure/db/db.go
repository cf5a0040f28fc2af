package db

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"auto_trainer/config"
	"auto_trainer/entity"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var DB *gorm.DB

// InitDB opens the database described by config.AppConfig, migrates the
// schema and installs the handle as DB.
func InitDB() error {
	if config.AppConfig == nil {
		return errors.New("app config is not initialized")
	}

	db, err := Open(config.AppConfig.DB, config.AppConfig.IsProduction())
	if err != nil {
		return err
	}
	if err := EnsureTables(db); err != nil {
		return err
	}

	DB = db
	return nil
}

func Open(cfg config.DBConfig, production bool) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		PrepareStmt: true,
		Logger:      logger.Default.LogMode(logLevel(production)),
	})
	if err != nil {
		return nil, fmt.Errorf(
			"connect %s failed (host=%s port=%d db=%s user=%s): %w",
			cfg.Driver, cfg.Host, cfg.Port, cfg.DBName, cfg.User, err,
		)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying sql.DB failed: %w", err)
	}
	if normalizeDriver(cfg.Driver) == DriverSQLite {
		// sqlite 只允许一个写连接
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(10 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("%s ping failed: %w", cfg.Driver, err)
	}

	return db, nil
}

// logLevel keeps production quiet and shows every statement in development.
func logLevel(production bool) logger.LogLevel {
	if production {
		return logger.Warn
	}
	return logger.Info
}

func normalizeDriver(driver string) string {
	value := strings.ToLower(strings.TrimSpace(driver))
	switch value {
	case "postgresql", "pg":
		return DriverPostgres
	case "sqlite3":
		return DriverSQLite
	}
	return value
}

func dialectorFor(cfg config.DBConfig) (gorm.Dialector, error) {
	switch normalizeDriver(cfg.Driver) {
	case DriverMySQL:
		return mysql.Open(MySQLDSN(cfg)), nil
	case DriverPostgres:
		return postgres.Open(PostgresDSN(cfg)), nil
	case DriverSQLite:
		dsn := strings.TrimSpace(cfg.DSN)
		if dsn == "" {
			dsn = "data/auto_trainer.db"
		}
		if err := ensureSQLiteDir(dsn); err != nil {
			return nil, err
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported db driver: %s", cfg.Driver)
	}
}

// ensureSQLiteDir creates the parent directory of a file path DSN. In-memory
// and file: URI DSNs are left alone.
func ensureSQLiteDir(dsn string) error {
	if strings.HasPrefix(dsn, ":memory:") || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sqlite directory %s failed: %w", dir, err)
	}
	return nil
}

func MySQLDSN(cfg config.DBConfig) string {
	if dsn := strings.TrimSpace(cfg.DSN); dsn != "" {
		return dsn
	}
	port := cfg.Port
	if port == 0 {
		port = 3306
	}
	loc := url.QueryEscape("UTC")
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=%s&timeout=5s&readTimeout=10s&writeTimeout=10s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		port,
		cfg.DBName,
		loc,
	)
}

func PostgresDSN(cfg config.DBConfig) string {
	if dsn := strings.TrimSpace(cfg.DSN); dsn != "" {
		return dsn
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		cfg.Host,
		port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
	)
}

// Models lists every table the service owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&entity.Trainer{},
		&entity.TrainerConfig{},
		&entity.EvaluationDataset{},
		&entity.SeedingHistory{},
	}
}

// EnsureTables creates tables that do not exist yet.
func EnsureTables(db *gorm.DB) error {
	for _, m := range Models() {
		if db.Migrator().HasTable(m) {
			continue
		}
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("auto migrate missing table failed: %w", err)
		}
	}
	return nil
}

// Migrate brings every table in line with the current models, adding new
// columns and indexes to existing tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}

func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	DB = nil
	return sqlDB.Close()
}
