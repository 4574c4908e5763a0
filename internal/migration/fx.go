package migration

import (
	accountdomain "github.com/foliopress/foliopress/internal/account/domain"
	"github.com/foliopress/foliopress/internal/config"
	deploymentdomain "github.com/foliopress/foliopress/internal/deployment/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// sqlite and mysql deployments use gorm's schema sync; the
			// versioned migrations target postgres only.
			return conn.AutoMigrate(
				&accountdomain.Account{},
				&deploymentdomain.Deployment{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
