// Package db opens the gorm connection for the configured engine.
package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/shopadmin/shop-admin/internal/config"
	"github.com/shopadmin/shop-admin/internal/db/dsn"
	"github.com/shopadmin/shop-admin/internal/db/models"
	gormlog "github.com/shopadmin/shop-admin/internal/logger/adapter/gorm"
)

// Dialector returns the gorm dialector for cfg.DB.GormEngine.
func Dialector(cfg *config.Config) gorm.Dialector {
	source := dsn.Create(cfg)

	switch cfg.DB.GormEngine {
	case config.EnginePostgres:
		return postgres.Open(source)
	case config.EngineSQLite:
		return sqlite.Open(source)
	default:
		return mysql.Open(source)
	}
}

// Open connects to the database.
func Open(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(Dialector(cfg), &gorm.Config{
		Logger:         gormlog.New(gormlog.LevelFromString(cfg.Log.LogLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if cfg.DB.GormEngine == config.EngineSQLite {
		// sqlite allows one writer, a single connection avoids SQLITE_BUSY
		sqlDB, errDB := db.DB()
		if errDB != nil {
			return nil, fmt.Errorf("failed to get sql db: %w", errDB)
		}

		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// Migrate creates or updates all tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}
