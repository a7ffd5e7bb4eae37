package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"finanzas-backend/internal/config"
	"finanzas-backend/internal/models"
)

// Tables lists every model AutoMigrate manages.
var Tables = []interface{}{
	&models.Account{},
	&models.Movement{},
	&models.Product{},
}

// Open connects using cfg.DatabaseType and migrates the schema. The "memory"
// type has no database and is rejected here.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseType {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("database type %q has no SQL backend", cfg.DatabaseType)
	}

	gormCfg := &gorm.Config{}
	if cfg.LogMode == "production" {
		gormCfg.Logger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.DatabaseType, err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	zap.S().Infof("database connection successful, type: %s", cfg.DatabaseType)
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Tables...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}
