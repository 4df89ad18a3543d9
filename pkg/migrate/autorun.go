package migrate

import (
	"context"
	"fmt"

	"github.com/aurelle/storefront-backend/pkg/config"
	"github.com/aurelle/storefront-backend/pkg/db"
	"github.com/aurelle/storefront-backend/pkg/logger"
)

// MaybeRunDev applies pending migrations at boot when the auto-migrate flag is
// set. Intended for dev environments; production runs cmd/migrate explicitly.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if cfg == nil || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	if cfg.App.IsProd() {
		return fmt.Errorf("auto-migrate is not allowed in prod")
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("sql handle for migrations: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "running pending migrations")
	}
	return Run(ctx, sqlDB, DefaultDir, "up")
}
