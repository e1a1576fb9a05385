package products

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/pizzeria/internal/repo"
)

// Repository reads and writes product rows.
type Repository struct {
	base repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{base: r.base.Bind(tx)}
}

// List returns every product in menu order.
func (r *Repository) List(ctx context.Context) ([]Product, error) {
	var rows []Product
	err := r.base.DB(ctx).
		Order("position ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// FindByID loads one product.
func (r *Repository) FindByID(ctx context.Context, id string) (*Product, error) {
	var product Product
	if err := r.base.DB(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, repo.NotFound(err, "product not found")
	}
	return &product, nil
}

// Upsert inserts the product or overwrites the row with the same id.
func (r *Repository) Upsert(ctx context.Context, product *Product) error {
	return r.base.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"position", "name", "class", "description", "price", "images", "params", "updated_at"}),
		}).
		Create(product).Error
}

// Count returns the number of stored products.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.base.DB(ctx).Model(&Product{}).Count(&count).Error
	return count, err
}
