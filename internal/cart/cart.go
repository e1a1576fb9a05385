// Package cart keeps the ordered set of configured line items and the
// aggregate totals derived from them.
package cart

import (
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pizzeria/internal/amount"
	"github.com/angelmondragon/pizzeria/internal/notify"
)

// Settings are fixed for the lifetime of a cart.
type Settings struct {
	DeliveryFee decimal.Decimal
	Amount      amount.Settings
}

// View receives structural and aggregate updates of the cart.
type View interface {
	LineView
	RenderLine(line LineSnapshot)
	RemoveLine(lineID uuid.UUID)
	RenderTotals(totals Totals)
}

// Totals is the aggregate over the current lines.
type Totals struct {
	ItemCount   int             `json:"totalNumber"`
	Subtotal    decimal.Decimal `json:"subtotalPrice"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Total       decimal.Decimal `json:"totalPrice"`
}

// Cart is a reactive aggregate: every structural change and every line
// notification is followed by a full recomputation of Totals.
type Cart struct {
	settings Settings
	view     View
	items    []*LineItem
	detach   map[*LineItem]func()
	totals   Totals

	added   notify.Channel[LineSnapshot]
	removed notify.Channel[LineSnapshot]
}

func New(settings Settings, view View) *Cart {
	if view == nil {
		view = nopView{}
	}
	c := &Cart{
		settings: settings,
		view:     view,
		detach:   map[*LineItem]func(){},
	}
	c.recompute()
	return c
}

// AddItem commits src, appends the resulting line and returns it.
func (c *Cart) AddItem(src Committer) *LineItem {
	line := NewLineItem(src.CommitToCart(), c.settings.Amount, c.view)

	offChange := line.OnChange(func(*LineItem) { c.onLineItemChanged() })
	offRemoval := line.OnRemovalRequested(c.onLineItemRemovalRequested)
	c.detach[line] = func() {
		offChange()
		offRemoval()
	}

	c.items = append(c.items, line)
	c.recompute()

	snap := line.Snapshot()
	c.view.RenderLine(snap)
	c.added.Emit(snap)
	return line
}

func (c *Cart) onLineItemChanged() {
	c.recompute()
}

// onLineItemRemovalRequested drops the exact line. Unknown lines, such as a
// second request for a line already gone, are ignored.
func (c *Cart) onLineItemRemovalRequested(line *LineItem) {
	idx := slices.Index(c.items, line)
	if idx < 0 {
		return
	}
	c.items = slices.Delete(c.items, idx, idx+1)
	c.release(line)
	c.recompute()

	c.view.RemoveLine(line.ID())
	c.removed.Emit(line.Snapshot())
}

// Reset empties the cart after a successful order.
func (c *Cart) Reset() {
	lines := c.items
	c.items = nil
	for _, line := range lines {
		c.release(line)
	}
	c.recompute()
	for _, line := range lines {
		c.view.RemoveLine(line.ID())
	}
}

// Line looks a line up by its id.
func (c *Cart) Line(id uuid.UUID) (*LineItem, bool) {
	for _, line := range c.items {
		if line.ID() == id {
			return line, true
		}
	}
	return nil, false
}

// Lines returns the lines in display order.
func (c *Cart) Lines() []*LineItem {
	return slices.Clone(c.items)
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) Totals() Totals {
	return c.totals
}

func (c *Cart) DeliveryFee() decimal.Decimal {
	return c.settings.DeliveryFee
}

// OnLineAdded subscribes fn to lines appended by AddItem.
func (c *Cart) OnLineAdded(fn func(LineSnapshot)) (unsubscribe func()) {
	return c.added.Subscribe(fn)
}

// OnLineRemoved subscribes fn to lines removed on request. Reset does not
// report individual lines.
func (c *Cart) OnLineRemoved(fn func(LineSnapshot)) (unsubscribe func()) {
	return c.removed.Subscribe(fn)
}

func (c *Cart) release(line *LineItem) {
	if off, ok := c.detach[line]; ok {
		off()
		delete(c.detach, line)
	}
}

func (c *Cart) recompute() {
	totals := Totals{
		Subtotal:    decimal.Zero,
		DeliveryFee: c.settings.DeliveryFee,
	}
	for _, line := range c.items {
		totals.ItemCount += line.Amount().Value()
		totals.Subtotal = totals.Subtotal.Add(line.TotalPrice())
	}
	totals.Total = totals.Subtotal.Add(totals.DeliveryFee)
	c.totals = totals
	c.view.RenderTotals(totals)
}

type nopView struct{}

func (nopView) SetLinePrice(uuid.UUID, decimal.Decimal) {}
func (nopView) RenderLine(LineSnapshot) {}
func (nopView) RemoveLine(uuid.UUID) {}
func (nopView) RenderTotals(Totals) {}
