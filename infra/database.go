package infra

import (
	"errors"
	"fmt"
	"time"

	"github.com/amirasaad/lendrix/infra/repository"
	"github.com/amirasaad/lendrix/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDBConnection opens the configured database. PostgreSQL schemas come from
// RunMigrations; SQLite databases are auto-migrated here.
func NewDBConnection(
	cnf *config.DB,
	appEnv string,
) (*gorm.DB, error) {
	if cnf == nil || cnf.Url == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	var logMode logger.LogLevel
	if appEnv == "development" {
		logMode = logger.Info
	} else {
		logMode = logger.Silent
	}
	gormCfg := &gorm.Config{
		Logger:                 logger.Default.LogMode(logMode),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	}

	switch cnf.Driver {
	case "sqlite":
		connection, err := gorm.Open(sqlite.Open(cnf.Url), gormCfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := connection.DB()
		if err != nil {
			return nil, err
		}
		// sqlite serializes writers; a single connection also keeps
		// :memory: databases alive across calls
		sqlDB.SetMaxOpenConns(1)
		if err := repository.AutoMigrate(connection); err != nil {
			return nil, fmt.Errorf("auto-migrate: %w", err)
		}
		return connection, nil
	case "", "postgres":
		connection, err := gorm.Open(postgres.Open(cnf.Url), gormCfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := connection.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(cnf.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cnf.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(1 * time.Hour)
		return connection, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cnf.Driver)
	}
}
