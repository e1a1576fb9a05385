package storefront

import (
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pizzeria/internal/cart"
)

// viewState is the render target of the menu and the cart. It only ever
// holds what the models pushed into it.
type viewState struct {
	highlights map[string]map[string]map[string]bool
	itemPrices map[string]decimal.Decimal
	linePrices map[uuid.UUID]decimal.Decimal
	lines      []uuid.UUID
	totals     cart.Totals
}

func newViewState() *viewState {
	return &viewState{
		highlights: map[string]map[string]map[string]bool{},
		itemPrices: map[string]decimal.Decimal{},
		linePrices: map[uuid.UUID]decimal.Decimal{},
	}
}

func (v *viewState) SetOptionActive(itemID, paramID, optionID string, active bool) {
	params, ok := v.highlights[itemID]
	if !ok {
		params = map[string]map[string]bool{}
		v.highlights[itemID] = params
	}
	options, ok := params[paramID]
	if !ok {
		options = map[string]bool{}
		params[paramID] = options
	}
	options[optionID] = active
}

func (v *viewState) SetItemPrice(itemID string, total decimal.Decimal) {
	v.itemPrices[itemID] = total
}

func (v *viewState) SetLinePrice(lineID uuid.UUID, total decimal.Decimal) {
	v.linePrices[lineID] = total
}

func (v *viewState) RenderLine(line cart.LineSnapshot) {
	v.lines = append(v.lines, line.ID)
	v.linePrices[line.ID] = line.TotalPrice
}

func (v *viewState) RemoveLine(lineID uuid.UUID) {
	if i := slices.Index(v.lines, lineID); i >= 0 {
		v.lines = slices.Delete(v.lines, i, i+1)
	}
	delete(v.linePrices, lineID)
}

func (v *viewState) RenderTotals(totals cart.Totals) {
	v.totals = totals
}

func (v *viewState) active(itemID, paramID, optionID string) bool {
	return v.highlights[itemID][paramID][optionID]
}
