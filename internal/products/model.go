// Package products persists the pizzeria catalog and serves it as a
// catalog.Source.
package products

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pizzeria/internal/catalog"
	"github.com/angelmondragon/pizzeria/pkg/types"
)

// Product is a catalog item row. Params keep the keyed-object document shape
// so param and option order survive storage.
type Product struct {
	ID          string                 `gorm:"column:id;primaryKey"`
	Position    int                    `gorm:"column:position;not null;default:0"`
	Name        string                 `gorm:"column:name;not null"`
	Class       string                 `gorm:"column:class;not null;default:''"`
	Description string                 `gorm:"column:description;not null;default:''"`
	Price       decimal.Decimal        `gorm:"column:price;type:numeric(10,2);not null"`
	Images      types.JSONList[string] `gorm:"column:images;type:text;not null"`
	Params      types.RawJSON          `gorm:"column:params;type:text;not null"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

type productDoc struct {
	ID          string          `json:"id"`
	Class       string          `json:"class,omitempty"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	Images      []string        `json:"images,omitempty"`
	Params      json.RawMessage `json:"params,omitempty"`
}

// FromItem converts a catalog item into a row at the given menu position.
func FromItem(item catalog.Item, position int) (Product, error) {
	encoded, err := json.Marshal(item)
	if err != nil {
		return Product{}, fmt.Errorf("encoding product %s: %w", item.ID, err)
	}
	var doc productDoc
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return Product{}, fmt.Errorf("encoding product %s: %w", item.ID, err)
	}
	return Product{
		ID:          item.ID,
		Position:    position,
		Name:        item.Name,
		Class:       item.Class,
		Description: item.Description,
		Price:       item.BasePrice,
		Images:      types.JSONList[string](item.Images),
		Params:      types.RawJSON(doc.Params),
	}, nil
}

// ToItem converts the row back into a catalog item.
func (p Product) ToItem() (catalog.Item, error) {
	doc := productDoc{
		ID:          p.ID,
		Class:       p.Class,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Images:      p.Images,
	}
	if len(p.Params) > 0 {
		doc.Params = json.RawMessage(p.Params)
	}
	encoded, err := json.Marshal(doc)
	if err != nil {
		return catalog.Item{}, fmt.Errorf("decoding product %s: %w", p.ID, err)
	}
	var item catalog.Item
	if err := json.Unmarshal(encoded, &item); err != nil {
		return catalog.Item{}, fmt.Errorf("decoding product %s: %w", p.ID, err)
	}
	return item, nil
}
