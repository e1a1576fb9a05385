package cart

import "github.com/shopspring/decimal"

// Contact is the customer data collected by the order form.
type Contact struct {
	Phone   string `json:"phone" validate:"required,min=6,max=32"`
	Address string `json:"address" validate:"required,min=3,max=256"`
}

// OrderPayload is what gets submitted to the order service.
type OrderPayload struct {
	Products    []LineSnapshot  `json:"products"`
	Phone       string          `json:"phone"`
	Address     string          `json:"address"`
	Subtotal    decimal.Decimal `json:"subtotalPrice"`
	ItemCount   int             `json:"totalNumber"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Total       decimal.Decimal `json:"totalPrice"`
}

// BuildOrderPayload snapshots the cart for submission. It does not mutate
// the cart.
func (c *Cart) BuildOrderPayload(contact Contact) OrderPayload {
	products := make([]LineSnapshot, 0, len(c.items))
	for _, line := range c.items {
		products = append(products, line.Snapshot())
	}
	return OrderPayload{
		Products:    products,
		Phone:       contact.Phone,
		Address:     contact.Address,
		Subtotal:    c.totals.Subtotal,
		ItemCount:   c.totals.ItemCount,
		DeliveryFee: c.totals.DeliveryFee,
		Total:       c.totals.Total,
	}
}
