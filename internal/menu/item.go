// Package menu models the live, user-editable menu entries that are priced
// from their selected options before being added to the cart.
package menu

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pizzeria/internal/amount"
	"github.com/angelmondragon/pizzeria/internal/cart"
	"github.com/angelmondragon/pizzeria/internal/catalog"
)

// FormState is the authoritative source of option selections: it returns the
// current mapping of input name (param id) to selected values (option ids).
type FormState interface {
	Values(itemID string) map[string][]string
}

// View receives plain data describing how an item should be displayed.
type View interface {
	SetOptionActive(itemID, paramID, optionID string, active bool)
	SetItemPrice(itemID string, total decimal.Decimal)
}

// Params wires a ConfigurableItem to its collaborators.
type Params struct {
	Form          FormState
	View          View
	Amount        amount.Settings
	InitialAmount string
}

// ConfigurableItem is a catalog item plus the option set the user picked.
type ConfigurableItem struct {
	item       catalog.Item
	form       FormState
	view       View
	amount     *amount.Counter
	selections []cart.SelectedParam
	unitPrice  decimal.Decimal
	totalPrice decimal.Decimal
}

// New builds the item, subscribes it to its own counter and prices it once.
func New(item catalog.Item, p Params) *ConfigurableItem {
	ci := &ConfigurableItem{
		item:   item,
		form:   p.Form,
		view:   p.View,
		amount: amount.New(p.InitialAmount, p.Amount),
	}
	ci.amount.OnChange(func(amount.Change) {
		ci.Recompute()
	})
	ci.Recompute()
	return ci
}

func (ci *ConfigurableItem) ID() string { return ci.item.ID }
func (ci *ConfigurableItem) Item() catalog.Item { return ci.item }
func (ci *ConfigurableItem) Amount() *amount.Counter { return ci.amount }
func (ci *ConfigurableItem) UnitPrice() decimal.Decimal { return ci.unitPrice }
func (ci *ConfigurableItem) TotalPrice() decimal.Decimal { return ci.totalPrice }

// Selections returns a copy of the label-resolved options chosen at the last
// recompute.
func (ci *ConfigurableItem) Selections() []cart.SelectedParam {
	return cart.CloneSelections(ci.selections)
}

// SelectionsChanged is the trigger for any change of the option form.
func (ci *ConfigurableItem) SelectionsChanged() {
	ci.Recompute()
}

// Recompute reads the form, prices the item and refreshes every option
// highlight.
func (ci *ConfigurableItem) Recompute() {
	var values map[string][]string
	if ci.form != nil {
		values = ci.form.Values(ci.item.ID)
	}

	price, selections := Price(ci.item, values)
	if ci.view != nil {
		for _, param := range ci.item.Params {
			for _, opt := range param.Options {
				ci.view.SetOptionActive(ci.item.ID, param.ID, opt.ID, slices.Contains(values[param.ID], opt.ID))
			}
		}
	}

	ci.selections = selections
	ci.unitPrice = price
	ci.totalPrice = price.Mul(decimal.NewFromInt(int64(ci.amount.Value())))
	if ci.view != nil {
		ci.view.SetItemPrice(ci.item.ID, ci.totalPrice)
	}
}

// Price computes the unit price of item for the given selections (param id
// to option ids) as
//
//	base + Σ(selected non-default options) − Σ(unselected default options)
//
// and resolves the selected options to their labels. Unknown ids are ignored.
func Price(item catalog.Item, values map[string][]string) (decimal.Decimal, []cart.SelectedParam) {
	price := item.BasePrice
	var selections []cart.SelectedParam

	for _, param := range item.Params {
		chosen := values[param.ID]
		var picked []cart.SelectedOption
		for _, opt := range param.Options {
			selected := slices.Contains(chosen, opt.ID)
			switch {
			case selected && !opt.Default:
				price = price.Add(opt.Price)
			case !selected && opt.Default:
				price = price.Sub(opt.Price)
			}
			if selected {
				picked = append(picked, cart.SelectedOption{ID: opt.ID, Label: opt.Label})
			}
		}
		if len(picked) > 0 {
			selections = append(selections, cart.SelectedParam{ID: param.ID, Label: param.Label, Options: picked})
		}
	}
	return price, selections
}

// CommitToCart snapshots the item for the cart. The item itself is left
// untouched and stays independently adjustable.
func (ci *ConfigurableItem) CommitToCart() cart.Draft {
	return cart.Draft{
		ProductID:  ci.item.ID,
		Name:       ci.item.Name,
		UnitPrice:  ci.unitPrice,
		Amount:     ci.amount.Value(),
		Selections: cart.CloneSelections(ci.selections),
	}
}
