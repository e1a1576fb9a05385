package products

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/angelmondragon/pizzeria/internal/catalog"
	"github.com/angelmondragon/pizzeria/pkg/logger"
)

// Seed upserts every catalog item, keeping catalog order as menu position.
// It keeps going past bad rows and reports all failures together.
func Seed(ctx context.Context, repo *Repository, cat *catalog.Catalog, logg *logger.Logger) error {
	var errs error
	seeded := 0
	for position, item := range cat.Items() {
		row, err := FromItem(item, position)
		if err == nil {
			err = repo.Upsert(ctx, &row)
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("seeding product %s: %w", item.ID, err))
			continue
		}
		seeded++
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"seeded": seeded,
			"failed": len(multierr.Errors(errs)),
		}), "products.seeded")
	}
	return errs
}

// SeedFile loads a catalog document from path and seeds it.
func SeedFile(ctx context.Context, repo *Repository, path string, logg *logger.Logger) error {
	cat, err := catalog.FileSource{Path: path}.Load(ctx)
	if err != nil {
		return err
	}
	return Seed(ctx, repo, cat, logg)
}
