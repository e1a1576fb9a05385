package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pizzeria/internal/repo"
)

// Repository persists orders and their lines.
type Repository struct {
	base repo.Base
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{base: r.base.Bind(tx)}
}

// Create inserts the order together with its lines.
func (r *Repository) Create(ctx context.Context, order *Order) error {
	return r.base.DB(ctx).Create(order).Error
}

// FindByID loads the order with its lines in cart order.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	var order Order
	err := r.base.DB(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, repo.NotFound(err, "order not found")
	}
	return &order, nil
}
