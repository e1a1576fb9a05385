package catalog

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/pizzeria/pkg/errors"
)

func TestFileSourceKeepsDocumentOrder(t *testing.T) {
	t.Parallel()

	cat, err := FileSource{Path: "testdata/catalog.json"}.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, cat.Len())

	ids := []string{}
	for _, item := range cat.Items() {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{"cake", "breakfast", "pizza", "salad"}, ids)

	pizza, ok := cat.Find("pizza")
	require.True(t, ok)
	assert.True(t, pizza.BasePrice.Equal(decimal.NewFromInt(20)))

	paramIDs := []string{}
	for _, p := range pizza.Params {
		paramIDs = append(paramIDs, p.ID)
	}
	assert.Equal(t, []string{"sauce", "toppings", "crust"}, paramIDs)

	toppings, ok := pizza.Param("toppings")
	require.True(t, ok)
	assert.Equal(t, "Toppings", toppings.Label)
	assert.Equal(t, "checkboxes", toppings.Type)
	assert.Equal(t, "olives", toppings.Options[0].ID)
	salami, ok := toppings.Option("salami")
	require.True(t, ok)
	assert.False(t, salami.Default)
	assert.True(t, salami.Price.Equal(decimal.NewFromInt(3)))

	cake, ok := cat.Find("cake")
	require.True(t, ok)
	assert.Empty(t, cake.Params)
}

func TestMarshalPreservesShapeAndOrder(t *testing.T) {
	t.Parallel()

	cat, err := FileSource{Path: "testdata/catalog.json"}.Load(context.Background())
	require.NoError(t, err)

	payload, err := json.Marshal(cat)
	require.NoError(t, err)

	again, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, cat.Items(), again.Items())
}

func TestDecodeRejectsInvalidCatalogs(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"empty":           ``,
		"missing id":      `[{"name":"x","price":1}]`,
		"duplicate id":    `[{"id":"a","price":1},{"id":"a","price":2}]`,
		"negative price":  `[{"id":"a","price":-1}]`,
		"negative option": `[{"id":"a","price":1,"params":{"p":{"label":"P","options":{"o":{"label":"O","price":-2}}}}}]`,
		"params array":    `[{"id":"a","price":1,"params":[]}]`,
		"malformed":       `[{"id":`,
	}
	for name, doc := range tests {
		_, err := Decode([]byte(doc))
		require.Error(t, err, name)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "%s: %v", name, err)
	}
}

func TestDecodeAcceptsNullParams(t *testing.T) {
	t.Parallel()

	cat, err := Decode([]byte(`[{"id":"a","name":"A","price":"4.50","params":null}]`))
	require.NoError(t, err)
	item, ok := cat.Find("a")
	require.True(t, ok)
	assert.Equal(t, "4.5", item.BasePrice.String())
	assert.Empty(t, item.Params)
}

func TestFindOnNilCatalog(t *testing.T) {
	t.Parallel()

	var cat *Catalog
	_, ok := cat.Find("pizza")
	assert.False(t, ok)
	assert.Zero(t, cat.Len())
	assert.Nil(t, cat.Items())
}
