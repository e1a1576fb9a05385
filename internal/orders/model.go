package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pizzeria/internal/cart"
	"github.com/angelmondragon/pizzeria/pkg/types"
)

const StatusPlaced = "placed"

// Order is a placed storefront order.
type Order struct {
	ID            uuid.UUID       `gorm:"column:id;primaryKey"`
	Phone         string          `gorm:"column:phone;not null"`
	Address       string          `gorm:"column:address;not null"`
	TotalNumber   int             `gorm:"column:total_number;not null"`
	SubtotalPrice decimal.Decimal `gorm:"column:subtotal_price;type:numeric(12,2);not null"`
	DeliveryFee   decimal.Decimal `gorm:"column:delivery_fee;type:numeric(12,2);not null"`
	TotalPrice    decimal.Decimal `gorm:"column:total_price;type:numeric(12,2);not null"`
	Status        string          `gorm:"column:status;not null;default:'placed'"`
	Lines         []OrderLine     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string { return "orders" }

// OrderLine snapshots one cart line of an order.
type OrderLine struct {
	ID          uuid.UUID                          `gorm:"column:id;primaryKey"`
	OrderID     uuid.UUID                          `gorm:"column:order_id;not null"`
	Position    int                                `gorm:"column:position;not null"`
	ProductID   string                             `gorm:"column:product_id;not null"`
	Name        string                             `gorm:"column:name;not null"`
	Amount      int                                `gorm:"column:amount;not null"`
	PriceSingle decimal.Decimal                    `gorm:"column:price_single;type:numeric(12,2);not null"`
	Price       decimal.Decimal                    `gorm:"column:price;type:numeric(12,2);not null"`
	Params      types.JSONList[cart.SelectedParam] `gorm:"column:params;type:text;not null"`
	CreatedAt   time.Time                          `gorm:"column:created_at;autoCreateTime"`
}

func (OrderLine) TableName() string { return "order_lines" }
