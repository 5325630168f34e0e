package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/fastfood-backend/pkg/config"
	"github.com/angelmondragon/fastfood-backend/pkg/db"
	"github.com/angelmondragon/fastfood-backend/pkg/logger"
	"github.com/pressly/goose/v3"
)

// MaybeRunDev brings the schema up to date at boot. SQLite mode always syncs
// the models since the goose files are Postgres SQL; Postgres only auto-runs
// goose in dev with the feature flag enabled.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if cfg.DB.Driver == db.DriverSQLite {
		ctx = logg.WithField(ctx, "driver", cfg.DB.Driver)
		logg.Info(ctx, "syncing sqlite schema from models")
		if err := AutoMigrateModels(ctx, client.DB()); err != nil {
			return fmt.Errorf("sqlite auto migrate: %w", err)
		}
		return nil
	}

	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	meta := map[string]any{"env": cfg.App.Env, "dir": DefaultDir}
	ctx = logg.WithFields(ctx, meta)
	logg.Info(ctx, "running Goose migrations (dev auto-run)")

	runner, err := NewRunner(sqlDB, goose.DialectPostgres, DefaultDir, logg)
	if err != nil {
		return err
	}
	if err := runner.Up(ctx); err != nil {
		return err
	}

	logg.Info(ctx, "Goose migrations completed")
	return nil
}
