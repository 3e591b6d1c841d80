package migration

import (
	"github.com/smallgrid/enerbill/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migration",
	fx.Invoke(Run),
)

// Run migrates on startup, picking the strategy by dialect.
func Run(cfg config.Config, db *gorm.DB, log *zap.Logger) error {
	if cfg.DBType == "postgres" {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err := RunMigrations(sqlDB); err != nil {
			return err
		}
		log.Info("migrations applied", zap.String("dialect", cfg.DBType))
		return nil
	}

	if err := AutoMigrate(db); err != nil {
		return err
	}
	log.Info("schema synced", zap.String("dialect", cfg.DBType))
	return nil
}
