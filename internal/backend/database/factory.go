package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/amoylab/coursechat/internal/common/config"
)

// NewDatabase creates a new database based on configuration
func NewDatabase(logger *zap.Logger, cfg *config.DatabaseConfig) (Database, error) {
	logger.Info("Initializing database", zap.String("type", cfg.Type))
	switch cfg.Type {
	case "postgres":
		return NewPostgres(logger, cfg)
	case "sqlite":
		return NewSQLite(logger, cfg)
	case "mysql":
		return NewMySQL(logger, cfg)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

// NewSQLite opens a pure-Go SQLite database, creating its directory
func NewSQLite(logger *zap.Logger, cfg *config.DatabaseConfig) (Database, error) {
	if err := cfg.EnsureSQLiteDir(); err != nil {
		return nil, err
	}
	return open(logger, sqlite.Open(cfg.GetDSN()))
}

// NewPostgres opens a PostgreSQL database
func NewPostgres(logger *zap.Logger, cfg *config.DatabaseConfig) (Database, error) {
	return open(logger, postgres.Open(cfg.GetDSN()))
}

// NewMySQL opens a MySQL database
func NewMySQL(logger *zap.Logger, cfg *config.DatabaseConfig) (Database, error) {
	return open(logger, mysql.Open(cfg.GetDSN()))
}

func open(logger *zap.Logger, dialector gorm.Dialector) (Database, error) {
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := gormDB.AutoMigrate(allModels()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &DB{db: gormDB, logger: logger.Named("database")}, nil
}
