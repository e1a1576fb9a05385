package cart

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pizzeria/internal/amount"
)

type draftCommitter Draft

func (d draftCommitter) CommitToCart() Draft { return Draft(d) }

func priced(id string, unit int64, qty int) draftCommitter {
	return draftCommitter{
		ProductID: id,
		Name:      id,
		UnitPrice: decimal.NewFromInt(unit),
		Amount:    qty,
		Selections: []SelectedParam{
			{ID: "size", Label: "Size", Options: []SelectedOption{{ID: "large", Label: "Large"}}},
		},
	}
}

type recordingView struct {
	rendered   []uuid.UUID
	removed    []uuid.UUID
	linePrices map[uuid.UUID]decimal.Decimal
	totals     []Totals
}

func newRecordingView() *recordingView {
	return &recordingView{linePrices: map[uuid.UUID]decimal.Decimal{}}
}

func (v *recordingView) SetLinePrice(id uuid.UUID, total decimal.Decimal) { v.linePrices[id] = total }
func (v *recordingView) RenderLine(line LineSnapshot) { v.rendered = append(v.rendered, line.ID) }
func (v *recordingView) RemoveLine(id uuid.UUID) { v.removed = append(v.removed, id) }
func (v *recordingView) RenderTotals(t Totals) { v.totals = append(v.totals, t) }

func testSettings() Settings {
	return Settings{DeliveryFee: decimal.NewFromInt(20), Amount: amount.DefaultSettings}
}

func requireTotals(t *testing.T, c *Cart, count int, subtotal, total int64) {
	t.Helper()
	got := c.Totals()
	require.Equal(t, count, got.ItemCount, "item count")
	require.True(t, got.Subtotal.Equal(decimal.NewFromInt(subtotal)), "subtotal %s want %d", got.Subtotal, subtotal)
	require.True(t, got.Total.Equal(decimal.NewFromInt(total)), "total %s want %d", got.Total, total)
}

func TestEmptyCartTotals(t *testing.T) {
	t.Parallel()

	c := New(testSettings(), nil)
	requireTotals(t, c, 0, 0, 20)
	assert.True(t, c.DeliveryFee().Equal(decimal.NewFromInt(20)))
}

func TestAddTwoLines(t *testing.T) {
	t.Parallel()

	view := newRecordingView()
	c := New(testSettings(), view)

	first := c.AddItem(priced("pizza", 23, 2))
	second := c.AddItem(priced("cake", 10, 1))

	requireTotals(t, c, 3, 56, 76)
	assert.Equal(t, []uuid.UUID{first.ID(), second.ID()}, view.rendered)
	assert.Equal(t, []*LineItem{first, second}, c.Lines())
	assert.True(t, first.TotalPrice().Equal(decimal.NewFromInt(46)))
}

func TestRemoveFirstLine(t *testing.T) {
	t.Parallel()

	view := newRecordingView()
	c := New(testSettings(), view)
	first := c.AddItem(priced("pizza", 23, 2))
	second := c.AddItem(priced("cake", 10, 1))

	first.RequestRemoval()

	requireTotals(t, c, 1, 10, 30)
	assert.Equal(t, []*LineItem{second}, c.Lines())
	assert.Equal(t, []uuid.UUID{first.ID()}, view.removed)
}

func TestResetEmptiesCart(t *testing.T) {
	t.Parallel()

	view := newRecordingView()
	c := New(testSettings(), view)
	first := c.AddItem(priced("pizza", 23, 2))
	second := c.AddItem(priced("cake", 10, 1))

	c.Reset()

	assert.Zero(t, c.Len())
	requireTotals(t, c, 0, 0, 20)
	assert.ElementsMatch(t, []uuid.UUID{first.ID(), second.ID()}, view.removed)

	// detached lines no longer drive the cart
	first.Amount().Increment()
	first.RequestRemoval()
	requireTotals(t, c, 0, 0, 20)
}

func TestDoubleRemovalIsNoop(t *testing.T) {
	t.Parallel()

	view := newRecordingView()
	c := New(testSettings(), view)
	line := c.AddItem(priced("pizza", 23, 1))
	other := c.AddItem(priced("cake", 10, 1))

	line.RequestRemoval()
	line.RequestRemoval()

	assert.Equal(t, []*LineItem{other}, c.Lines())
	assert.Len(t, view.removed, 1)
	requireTotals(t, c, 1, 10, 30)
}

func TestRemovalFromTheMiddleKeepsOrder(t *testing.T) {
	t.Parallel()

	c := New(testSettings(), nil)
	a := c.AddItem(priced("a", 1, 1))
	b := c.AddItem(priced("b", 2, 1))
	d := c.AddItem(priced("c", 3, 1))

	b.RequestRemoval()

	assert.Equal(t, []*LineItem{a, d}, c.Lines())
	requireTotals(t, c, 2, 4, 24)
}

func TestLineAmountChangeUpdatesLineAndTotals(t *testing.T) {
	t.Parallel()

	view := newRecordingView()
	c := New(testSettings(), view)
	line := c.AddItem(priced("pizza", 23, 2))
	before := len(view.totals)

	line.Amount().SetValue("4")

	assert.True(t, line.TotalPrice().Equal(decimal.NewFromInt(92)))
	assert.True(t, view.linePrices[line.ID()].Equal(decimal.NewFromInt(92)))
	assert.Len(t, view.totals, before+1)
	requireTotals(t, c, 4, 92, 112)

	line.Amount().SetValue("12")
	requireTotals(t, c, 4, 92, 112)
	assert.Len(t, view.totals, before+1)
}

func TestIdenticalDraftsAreNotMerged(t *testing.T) {
	t.Parallel()

	c := New(testSettings(), nil)
	a := c.AddItem(priced("pizza", 23, 1))
	b := c.AddItem(priced("pizza", 23, 1))

	assert.NotSame(t, a, b)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, 2, c.Len())
	got, ok := c.Line(b.ID())
	require.True(t, ok)
	assert.Same(t, b, got)
}

func TestLineCopiesDraftSelections(t *testing.T) {
	t.Parallel()

	d := priced("pizza", 23, 1)
	c := New(testSettings(), nil)
	line := c.AddItem(d)

	d.Selections[0].Options[0].Label = "mutated"
	sel := line.Selections()
	sel[0].Label = "also mutated"

	assert.Equal(t, "Large", line.Selections()[0].Options[0].Label)
	assert.Equal(t, "Size", line.Snapshot().Params[0].Label)
}

func TestBuildOrderPayloadIsPure(t *testing.T) {
	t.Parallel()

	c := New(testSettings(), nil)
	c.AddItem(priced("pizza", 23, 2))
	c.AddItem(priced("cake", 10, 1))
	before := c.Totals()

	payload := c.BuildOrderPayload(Contact{Phone: "555-0100", Address: "Via Roma 1"})

	require.Len(t, payload.Products, 2)
	assert.Equal(t, "pizza", payload.Products[0].ProductID)
	assert.Equal(t, 2, payload.Products[0].Amount)
	assert.True(t, payload.Products[0].UnitPrice.Equal(decimal.NewFromInt(23)))
	assert.True(t, payload.Products[0].TotalPrice.Equal(decimal.NewFromInt(46)))
	assert.Equal(t, 3, payload.ItemCount)
	assert.True(t, payload.Subtotal.Equal(decimal.NewFromInt(56)))
	assert.True(t, payload.Total.Equal(decimal.NewFromInt(76)))
	assert.True(t, payload.DeliveryFee.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, "555-0100", payload.Phone)
	assert.Equal(t, before, c.Totals())
	assert.Equal(t, 2, c.Len())
}

func TestCartEventsReportAddsAndRemovals(t *testing.T) {
	t.Parallel()

	c := New(testSettings(), nil)
	var added, removed []string
	c.OnLineAdded(func(s LineSnapshot) { added = append(added, s.ProductID) })
	c.OnLineRemoved(func(s LineSnapshot) { removed = append(removed, s.ProductID) })

	line := c.AddItem(priced("pizza", 23, 1))
	c.AddItem(priced("cake", 10, 1))
	line.RequestRemoval()
	c.Reset()

	assert.Equal(t, []string{"pizza", "cake"}, added)
	assert.Equal(t, []string{"pizza"}, removed)
}

func TestAggregateConsistencyUnderRandomOperations(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	c := New(testSettings(), nil)

	for i := 0; i < 500; i++ {
		lines := c.Lines()
		switch op := rng.Intn(4); {
		case op == 0 || len(lines) == 0:
			c.AddItem(priced("p", int64(rng.Intn(30)), 1+rng.Intn(9)))
		case op == 1:
			lines[rng.Intn(len(lines))].RequestRemoval()
		case op == 2:
			lines[rng.Intn(len(lines))].Amount().Set(rng.Intn(12))
		default:
			if rng.Intn(20) == 0 {
				c.Reset()
			}
		}

		subtotal := decimal.Zero
		count := 0
		for _, line := range c.Lines() {
			require.True(t, line.TotalPrice().Equal(line.UnitPrice().Mul(decimal.NewFromInt(int64(line.Amount().Value())))))
			subtotal = subtotal.Add(line.TotalPrice())
			count += line.Amount().Value()
		}
		totals := c.Totals()
		require.True(t, totals.Subtotal.Equal(subtotal), "step %d", i)
		require.Equal(t, count, totals.ItemCount, "step %d", i)
		require.True(t, totals.Total.Equal(subtotal.Add(decimal.NewFromInt(20))), "step %d", i)
	}
}
