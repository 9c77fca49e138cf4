package migration

import (
	billingdomain "github.com/openmotel/motel/internal/billing/domain"
	"github.com/openmotel/motel/internal/config"
	contractdomain "github.com/openmotel/motel/internal/contract/domain"
	paymentdomain "github.com/openmotel/motel/internal/payment/domain"
	readingdomain "github.com/openmotel/motel/internal/reading/domain"
	roomdomain "github.com/openmotel/motel/internal/room/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}

		// Non-postgres (local sqlite) environments get the schema via
		// AutoMigrate; the unique bill index comes from the model tags.
		return conn.AutoMigrate(
			&roomdomain.Apartment{},
			&roomdomain.Room{},
			&roomdomain.Tenant{},
			&contractdomain.Contract{},
			&contractdomain.FixedCost{},
			&readingdomain.ElectricityReading{},
			&readingdomain.WaterReading{},
			&billingdomain.Bill{},
			&paymentdomain.Payment{},
		)
	}),
)
