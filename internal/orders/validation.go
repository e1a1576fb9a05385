package orders

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pizzeria/internal/amount"
	"github.com/angelmondragon/pizzeria/internal/cart"
	"github.com/angelmondragon/pizzeria/internal/catalog"
	"github.com/angelmondragon/pizzeria/internal/menu"
	pkgerrors "github.com/angelmondragon/pizzeria/pkg/errors"
)

// Violation describes one figure of a request that does not match the
// server's own computation.
type Violation struct {
	Field    string `json:"field"`
	Line     *int   `json:"line,omitempty"`
	Expected string `json:"expected,omitempty"`
	Got      string `json:"got,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// pricedLine is a request line re-priced from the catalog.
type pricedLine struct {
	item       catalog.Item
	request    LineRequest
	unitPrice  decimal.Decimal
	total      decimal.Decimal
	selections []cart.SelectedParam
}

type totals struct {
	count    int
	subtotal decimal.Decimal
	total    decimal.Decimal
}

// verifyLine re-prices one line from its catalog item and selections.
func verifyLine(index int, item catalog.Item, req LineRequest, bounds amount.Settings) (pricedLine, []Violation) {
	var violations []Violation
	at := func(v Violation) {
		i := index
		v.Line = &i
		violations = append(violations, v)
	}

	values := map[string][]string{}
	for _, param := range req.Params {
		known, ok := item.Param(param.ID)
		if !ok {
			at(Violation{Field: "params", Reason: fmt.Sprintf("unknown param %q", param.ID)})
			continue
		}
		for _, opt := range param.Options {
			if _, ok := known.Option(opt.ID); !ok {
				at(Violation{Field: "params", Reason: fmt.Sprintf("unknown option %q of %q", opt.ID, param.ID)})
				continue
			}
			values[param.ID] = append(values[param.ID], opt.ID)
		}
	}

	if req.Amount < bounds.Min || req.Amount > bounds.Max {
		at(Violation{Field: "amount", Got: fmt.Sprint(req.Amount), Reason: fmt.Sprintf("must be within %d..%d", bounds.Min, bounds.Max)})
	}

	unit, selections := menu.Price(item, values)
	if !unit.Equal(req.PriceSingle) {
		at(Violation{Field: "priceSingle", Expected: unit.String(), Got: req.PriceSingle.String()})
	}
	total := unit.Mul(decimal.NewFromInt(int64(req.Amount)))
	if !total.Equal(req.Price) {
		at(Violation{Field: "price", Expected: total.String(), Got: req.Price.String()})
	}

	return pricedLine{item: item, request: req, unitPrice: unit, total: total, selections: selections}, violations
}

// verifyTotals checks the aggregate figures against the re-priced lines.
func verifyTotals(req PlaceOrderRequest, lines []pricedLine, fee decimal.Decimal) (totals, []Violation) {
	var violations []Violation
	t := totals{subtotal: decimal.Zero}
	for _, line := range lines {
		t.count += line.request.Amount
		t.subtotal = t.subtotal.Add(line.total)
	}
	t.total = t.subtotal.Add(fee)

	if req.TotalNumber != t.count {
		violations = append(violations, Violation{Field: "totalNumber", Expected: fmt.Sprint(t.count), Got: fmt.Sprint(req.TotalNumber)})
	}
	if !req.SubtotalPrice.Equal(t.subtotal) {
		violations = append(violations, Violation{Field: "subtotalPrice", Expected: t.subtotal.String(), Got: req.SubtotalPrice.String()})
	}
	if !req.DeliveryFee.Equal(fee) {
		violations = append(violations, Violation{Field: "deliveryFee", Expected: fee.String(), Got: req.DeliveryFee.String()})
	}
	if !req.TotalPrice.Equal(t.total) {
		violations = append(violations, Violation{Field: "totalPrice", Expected: t.total.String(), Got: req.TotalPrice.String()})
	}
	return t, violations
}

func violationError(violations []Violation) error {
	if len(violations) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("order does not match the menu (%d issue(s))", len(violations))).
		WithDetails(map[string]any{"violations": violations})
}
