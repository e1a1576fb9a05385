package storefront

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pizzeria/internal/cart"
	"github.com/angelmondragon/pizzeria/internal/menu"
)

type OptionView struct {
	ID      string          `json:"id"`
	Label   string          `json:"label"`
	Price   decimal.Decimal `json:"price"`
	Default bool            `json:"default"`
	Active  bool            `json:"active"`
}

type ParamView struct {
	ID      string       `json:"id"`
	Label   string       `json:"label"`
	Type    string       `json:"type"`
	Options []OptionView `json:"options"`
}

// ItemView is a menu item as currently configured. Price is the unit price
// times the amount.
type ItemView struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Class       string          `json:"class"`
	Description string          `json:"description"`
	Images      []string        `json:"images"`
	BasePrice   decimal.Decimal `json:"basePrice"`
	Params      []ParamView     `json:"params"`
	Amount      int             `json:"amount"`
	AmountInput string          `json:"amountInput"`
	PriceSingle decimal.Decimal `json:"priceSingle"`
	Price       decimal.Decimal `json:"price"`
	Expanded    bool            `json:"expanded"`
}

type MenuView struct {
	Items    []ItemView `json:"items"`
	Expanded string     `json:"expanded,omitempty"`
}

type CartView struct {
	Products []cart.LineSnapshot `json:"products"`
	cart.Totals
}

// AddedLine is the answer to an add-to-cart request.
type AddedLine struct {
	Line   cart.LineSnapshot `json:"line"`
	Totals cart.Totals       `json:"totals"`
}

func (s *Session) menuView() MenuView {
	items := make([]ItemView, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, s.itemView(item))
	}
	return MenuView{Items: items, Expanded: s.expanded}
}

// itemView reads prices and highlights from the view state, which is what
// the item rendered, rather than from the item itself.
func (s *Session) itemView(item *menu.ConfigurableItem) ItemView {
	product := item.Item()
	params := make([]ParamView, 0, len(product.Params))
	for _, param := range product.Params {
		options := make([]OptionView, 0, len(param.Options))
		for _, opt := range param.Options {
			options = append(options, OptionView{
				ID:      opt.ID,
				Label:   opt.Label,
				Price:   opt.Price,
				Default: opt.Default,
				Active:  s.view.active(product.ID, param.ID, opt.ID),
			})
		}
		params = append(params, ParamView{ID: param.ID, Label: param.Label, Type: param.Type, Options: options})
	}

	images := product.Images
	if images == nil {
		images = []string{}
	}
	return ItemView{
		ID:          product.ID,
		Name:        product.Name,
		Class:       product.Class,
		Description: product.Description,
		Images:      images,
		BasePrice:   product.BasePrice,
		Params:      params,
		Amount:      item.Amount().Value(),
		AmountInput: item.Amount().Input(),
		PriceSingle: item.UnitPrice(),
		Price:       s.view.itemPrices[product.ID],
		Expanded:    s.expanded == product.ID,
	}
}

// cartView lists lines in the order the view rendered them.
func (s *Session) cartView() CartView {
	products := make([]cart.LineSnapshot, 0, len(s.view.lines))
	for _, id := range s.view.lines {
		line, ok := s.cart.Line(id)
		if !ok {
			continue
		}
		snap := line.Snapshot()
		snap.TotalPrice = s.view.linePrices[id]
		products = append(products, snap)
	}
	return CartView{Products: products, Totals: s.view.totals}
}
