package products

import (
	"context"

	"github.com/angelmondragon/pizzeria/internal/catalog"
	pkgerrors "github.com/angelmondragon/pizzeria/pkg/errors"
)

type lister interface {
	List(ctx context.Context) ([]Product, error)
}

// Source serves the stored products as a catalog.
type Source struct {
	repo lister
}

func NewSource(repo lister) *Source {
	return &Source{repo: repo}
}

func (s *Source) Load(ctx context.Context) (*catalog.Catalog, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	items := make([]catalog.Item, 0, len(rows))
	for _, row := range rows {
		item, err := row.ToItem()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode product")
		}
		items = append(items, item)
	}
	return catalog.New(items)
}
