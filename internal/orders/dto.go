package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pizzeria/internal/cart"
)

// LineRequest is one submitted cart line.
type LineRequest struct {
	LineID      uuid.UUID            `json:"lineId"`
	ProductID   string               `json:"id" validate:"required"`
	Name        string               `json:"name"`
	Amount      int                  `json:"amount" validate:"min=1"`
	PriceSingle decimal.Decimal      `json:"priceSingle"`
	Price       decimal.Decimal      `json:"price"`
	Params      []cart.SelectedParam `json:"params"`
}

// PlaceOrderRequest is the POST /order body, the same shape the storefront
// cart submits.
type PlaceOrderRequest struct {
	Products      []LineRequest   `json:"products" validate:"required,min=1,dive"`
	Phone         string          `json:"phone" validate:"required,min=6,max=32"`
	Address       string          `json:"address" validate:"required,min=3,max=256"`
	TotalNumber   int             `json:"totalNumber"`
	SubtotalPrice decimal.Decimal `json:"subtotalPrice"`
	DeliveryFee   decimal.Decimal `json:"deliveryFee"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
}

// RequestFromPayload converts a cart payload into a placement request.
func RequestFromPayload(p cart.OrderPayload) PlaceOrderRequest {
	lines := make([]LineRequest, 0, len(p.Products))
	for _, line := range p.Products {
		lines = append(lines, LineRequest{
			LineID:      line.ID,
			ProductID:   line.ProductID,
			Name:        line.Name,
			Amount:      line.Amount,
			PriceSingle: line.UnitPrice,
			Price:       line.TotalPrice,
			Params:      cart.CloneSelections(line.Params),
		})
	}
	return PlaceOrderRequest{
		Products:      lines,
		Phone:         p.Phone,
		Address:       p.Address,
		TotalNumber:   p.ItemCount,
		SubtotalPrice: p.Subtotal,
		DeliveryFee:   p.DeliveryFee,
		TotalPrice:    p.Total,
	}
}

// OrderDTO is the public view of a stored order.
type OrderDTO struct {
	OrderID       uuid.UUID           `json:"orderId"`
	Status        string              `json:"status"`
	Phone         string              `json:"phone"`
	Address       string              `json:"address"`
	Products      []cart.LineSnapshot `json:"products"`
	TotalNumber   int                 `json:"totalNumber"`
	SubtotalPrice decimal.Decimal     `json:"subtotalPrice"`
	DeliveryFee   decimal.Decimal     `json:"deliveryFee"`
	TotalPrice    decimal.Decimal     `json:"totalPrice"`
	CreatedAt     time.Time           `json:"createdAt"`
}

// ToDTO maps the stored order to its public view.
func ToDTO(o *Order) OrderDTO {
	lines := make([]cart.LineSnapshot, 0, len(o.Lines))
	for _, line := range o.Lines {
		lines = append(lines, cart.LineSnapshot{
			ID:         line.ID,
			ProductID:  line.ProductID,
			Name:       line.Name,
			Amount:     line.Amount,
			UnitPrice:  line.PriceSingle,
			TotalPrice: line.Price,
			Params:     cart.CloneSelections(line.Params),
		})
	}
	return OrderDTO{
		OrderID:       o.ID,
		Status:        o.Status,
		Phone:         o.Phone,
		Address:       o.Address,
		Products:      lines,
		TotalNumber:   o.TotalNumber,
		SubtotalPrice: o.SubtotalPrice,
		DeliveryFee:   o.DeliveryFee,
		TotalPrice:    o.TotalPrice,
		CreatedAt:     o.CreatedAt,
	}
}
