package menu

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pizzeria/internal/amount"
	"github.com/angelmondragon/pizzeria/internal/cart"
	"github.com/angelmondragon/pizzeria/internal/catalog"
)

type mapForm map[string]map[string][]string

func (f mapForm) Values(itemID string) map[string][]string { return f[itemID] }

type highlightKey struct{ param, option string }

type recordingView struct {
	highlights map[highlightKey]bool
	toggles    int
	prices     []decimal.Decimal
}

func newRecordingView() *recordingView {
	return &recordingView{highlights: map[highlightKey]bool{}}
}

func (v *recordingView) SetOptionActive(itemID, paramID, optionID string, active bool) {
	v.highlights[highlightKey{paramID, optionID}] = active
	v.toggles++
}

func (v *recordingView) SetItemPrice(itemID string, total decimal.Decimal) {
	v.prices = append(v.prices, total)
}

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// scenarioItem has base price 20 and one param with a default option
// priced 2 and a non-default option priced 5.
func scenarioItem() catalog.Item {
	return catalog.Item{
		ID:        "pizza",
		Name:      "Pizza",
		BasePrice: d(20),
		Params: []catalog.Param{{
			ID:    "sauce",
			Label: "Sauce",
			Options: []catalog.Option{
				{ID: "tomato", Label: "Tomato", Price: d(2), Default: true},
				{ID: "cream", Label: "Sour cream", Price: d(5)},
			},
		}},
	}
}

func TestSwappingDefaultForNonDefault(t *testing.T) {
	t.Parallel()

	form := mapForm{"pizza": {"sauce": {"cream"}}}
	ci := New(scenarioItem(), Params{Form: form, Amount: amount.DefaultSettings, InitialAmount: "1"})

	assert.True(t, ci.UnitPrice().Equal(d(23)), "unit price %s", ci.UnitPrice())
	assert.True(t, ci.TotalPrice().Equal(d(23)))
}

func TestDefaultsOnlyKeepBasePrice(t *testing.T) {
	t.Parallel()

	form := mapForm{"pizza": {"sauce": {"tomato"}}}
	ci := New(scenarioItem(), Params{Form: form, Amount: amount.DefaultSettings})

	assert.True(t, ci.UnitPrice().Equal(d(20)))
	require.Len(t, ci.Selections(), 1)
	assert.Equal(t, []cart.SelectedOption{{ID: "tomato", Label: "Tomato"}}, ci.Selections()[0].Options)
}

func TestMissingFormEntryMeansNothingSelected(t *testing.T) {
	t.Parallel()

	ci := New(scenarioItem(), Params{Form: mapForm{}, Amount: amount.DefaultSettings})
	assert.True(t, ci.UnitPrice().Equal(d(18)))
	assert.Empty(t, ci.Selections())

	noForm := New(scenarioItem(), Params{Amount: amount.DefaultSettings})
	assert.True(t, noForm.UnitPrice().Equal(d(18)))
}

func TestAmountChangeRecomputesTotal(t *testing.T) {
	t.Parallel()

	view := newRecordingView()
	form := mapForm{"pizza": {"sauce": {"cream"}}}
	ci := New(scenarioItem(), Params{Form: form, View: view, Amount: amount.DefaultSettings, InitialAmount: "1"})

	ci.Amount().SetValue("3")

	assert.True(t, ci.TotalPrice().Equal(d(69)))
	require.NotEmpty(t, view.prices)
	assert.True(t, view.prices[len(view.prices)-1].Equal(d(69)))
}

func TestSelectionsChangedReadsFormAgain(t *testing.T) {
	t.Parallel()

	form := mapForm{"pizza": {"sauce": {"tomato"}}}
	ci := New(scenarioItem(), Params{Form: form, Amount: amount.DefaultSettings})
	require.True(t, ci.UnitPrice().Equal(d(20)))

	form["pizza"]["sauce"] = []string{"tomato", "cream"}
	ci.SelectionsChanged()

	assert.True(t, ci.UnitPrice().Equal(d(25)))
}

func TestRecomputeIsIdempotent(t *testing.T) {
	t.Parallel()

	view := newRecordingView()
	form := mapForm{"pizza": {"sauce": {"cream"}}}
	ci := New(scenarioItem(), Params{Form: form, View: view, Amount: amount.DefaultSettings, InitialAmount: "2"})
	first := ci.UnitPrice()
	firstSelections := ci.Selections()

	for i := 0; i < 5; i++ {
		ci.Recompute()
		assert.True(t, ci.UnitPrice().Equal(first))
		assert.Equal(t, firstSelections, ci.Selections())
	}
	for _, p := range view.prices {
		assert.True(t, p.Equal(d(46)))
	}
}

func TestRecomputeTouchesEveryHighlight(t *testing.T) {
	t.Parallel()

	view := newRecordingView()
	form := mapForm{"pizza": {"sauce": {"cream"}}}
	ci := New(scenarioItem(), Params{Form: form, View: view, Amount: amount.DefaultSettings})
	assert.Equal(t, 2, view.toggles)

	view.highlights[highlightKey{"sauce", "tomato"}] = true
	ci.Recompute()

	assert.Equal(t, 4, view.toggles)
	assert.False(t, view.highlights[highlightKey{"sauce", "tomato"}])
	assert.True(t, view.highlights[highlightKey{"sauce", "cream"}])
}

func TestCommitSnapshotIsIsolated(t *testing.T) {
	t.Parallel()

	form := mapForm{"pizza": {"sauce": {"cream"}}}
	ci := New(scenarioItem(), Params{Form: form, Amount: amount.DefaultSettings, InitialAmount: "2"})

	draft := ci.CommitToCart()
	c := cart.New(cart.Settings{DeliveryFee: d(20), Amount: amount.DefaultSettings}, nil)
	line := c.AddItem(ci)

	form["pizza"]["sauce"] = []string{"tomato"}
	ci.SelectionsChanged()
	ci.Amount().SetValue("5")

	assert.Equal(t, "pizza", draft.ProductID)
	assert.Equal(t, 2, draft.Amount)
	assert.True(t, draft.UnitPrice.Equal(d(23)))
	assert.True(t, line.UnitPrice().Equal(d(23)))
	assert.Equal(t, 2, line.Amount().Value())
	assert.Equal(t, "cream", line.Selections()[0].Options[0].ID)

	assert.True(t, ci.UnitPrice().Equal(d(20)))
	assert.Equal(t, 5, ci.Amount().Value())
}

func TestCommitDoesNotMutateItem(t *testing.T) {
	t.Parallel()

	view := newRecordingView()
	form := mapForm{"pizza": {"sauce": {"cream"}}}
	ci := New(scenarioItem(), Params{Form: form, View: view, Amount: amount.DefaultSettings, InitialAmount: "3"})
	toggles := view.toggles

	ci.CommitToCart()
	ci.CommitToCart()

	assert.Equal(t, 3, ci.Amount().Value())
	assert.True(t, ci.TotalPrice().Equal(d(69)))
	assert.Equal(t, toggles, view.toggles)
}

func TestMultiOptionParams(t *testing.T) {
	t.Parallel()

	item := catalog.Item{
		ID:        "salad",
		BasePrice: d(9),
		Params: []catalog.Param{{
			ID: "ingredients",
			Options: []catalog.Option{
				{ID: "cucumber", Price: d(1), Default: true},
				{ID: "tomatoes", Price: d(1), Default: true},
				{ID: "cheese", Price: decimal.RequireFromString("1.5")},
				{ID: "herbs", Price: d(1)},
			},
		}},
	}
	form := mapForm{"salad": {"ingredients": {"herbs", "cheese", "tomatoes", "unknown"}}}
	ci := New(item, Params{Form: form, Amount: amount.DefaultSettings})

	// 9 - 1 (cucumber dropped) + 1.5 + 1
	assert.Equal(t, "10.5", ci.UnitPrice().String())
	sel := ci.Selections()
	require.Len(t, sel, 1)
	ids := []string{}
	for _, o := range sel[0].Options {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []string{"tomatoes", "cheese", "herbs"}, ids)
}

func TestPriceIsPure(t *testing.T) {
	t.Parallel()

	item := scenarioItem()
	price, sel := Price(item, map[string][]string{"sauce": {"cream"}})
	assert.Equal(t, "23", price.String())
	require.Len(t, sel, 1)
	assert.Equal(t, "Sour cream", sel[0].Options[0].Label)

	price, sel = Price(item, nil)
	assert.Equal(t, "18", price.String())
	assert.Empty(t, sel)
	assert.Equal(t, "20", item.BasePrice.String())
}
