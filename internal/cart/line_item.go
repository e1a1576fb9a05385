package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pizzeria/internal/amount"
	"github.com/angelmondragon/pizzeria/internal/notify"
)

// LineView receives price updates of a single cart line.
type LineView interface {
	SetLinePrice(lineID uuid.UUID, total decimal.Decimal)
}

// LineItem is a configured product placed in the cart. Everything except
// its amount is fixed at creation.
type LineItem struct {
	id         uuid.UUID
	productID  string
	name       string
	unitPrice  decimal.Decimal
	selections []SelectedParam
	amount     *amount.Counter
	totalPrice decimal.Decimal
	view       LineView

	changed notify.Channel[*LineItem]
	removal notify.Channel[*LineItem]
}

// LineSnapshot is the read-only form of a line used in order payloads.
type LineSnapshot struct {
	ID         uuid.UUID       `json:"lineId"`
	ProductID  string          `json:"id"`
	Name       string          `json:"name"`
	Amount     int             `json:"amount"`
	UnitPrice  decimal.Decimal `json:"priceSingle"`
	TotalPrice decimal.Decimal `json:"price"`
	Params     []SelectedParam `json:"params"`
}

// NewLineItem copies d and seeds the line's own counter from d.Amount.
func NewLineItem(d Draft, settings amount.Settings, view LineView) *LineItem {
	if view == nil {
		view = nopView{}
	}
	line := &LineItem{
		id:         uuid.New(),
		productID:  d.ProductID,
		name:       d.Name,
		unitPrice:  d.UnitPrice,
		selections: CloneSelections(d.Selections),
		amount:     amount.NewWithValue(d.Amount, settings),
		view:       view,
	}
	line.totalPrice = line.price()
	line.amount.OnChange(func(amount.Change) {
		line.Recompute()
	})
	return line
}

func (l *LineItem) ID() uuid.UUID { return l.id }
func (l *LineItem) ProductID() string { return l.productID }
func (l *LineItem) Name() string { return l.name }
func (l *LineItem) UnitPrice() decimal.Decimal { return l.unitPrice }
func (l *LineItem) TotalPrice() decimal.Decimal { return l.totalPrice }
func (l *LineItem) Amount() *amount.Counter { return l.amount }
func (l *LineItem) Selections() []SelectedParam { return CloneSelections(l.selections) }

// Recompute refreshes the line total and notifies the owner.
func (l *LineItem) Recompute() {
	l.totalPrice = l.price()
	l.view.SetLinePrice(l.id, l.totalPrice)
	l.changed.Emit(l)
}

// RequestRemoval asks the owner to drop this line. The line never removes
// itself from a collection.
func (l *LineItem) RequestRemoval() {
	l.removal.Emit(l)
}

// OnChange subscribes fn to recomputations of this line.
func (l *LineItem) OnChange(fn func(*LineItem)) (unsubscribe func()) {
	return l.changed.Subscribe(fn)
}

// OnRemovalRequested subscribes fn to removal requests of this line.
func (l *LineItem) OnRemovalRequested(fn func(*LineItem)) (unsubscribe func()) {
	return l.removal.Subscribe(fn)
}

func (l *LineItem) Snapshot() LineSnapshot {
	return LineSnapshot{
		ID:         l.id,
		ProductID:  l.productID,
		Name:       l.name,
		Amount:     l.amount.Value(),
		UnitPrice:  l.unitPrice,
		TotalPrice: l.totalPrice,
		Params:     CloneSelections(l.selections),
	}
}

func (l *LineItem) price() decimal.Decimal {
	return l.unitPrice.Mul(decimal.NewFromInt(int64(l.amount.Value())))
}
