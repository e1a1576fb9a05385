package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/pizzeria/pkg/config"
	"github.com/angelmondragon/pizzeria/pkg/db"
	"github.com/angelmondragon/pizzeria/pkg/logger"
)

// MaybeRun applies the embedded migrations when the auto-migrate flag is on
// or the database is a local sqlite file.
func MaybeRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.FeatureFlags.AutoMigrate && !cfg.DB.IsSQLite() {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "db_driver": client.Dialect()})
	logg.Info(ctx, "running goose migrations (auto-run)")

	if err := Run(ctx, sqlDB, client.Dialect(), Embedded, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}
