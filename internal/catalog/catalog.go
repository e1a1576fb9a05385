package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	pkgerrors "github.com/angelmondragon/pizzeria/pkg/errors"
)

// Catalog is an ordered, validated set of items.
type Catalog struct {
	items []Item
	index map[string]int
}

// New validates items and builds a catalog that keeps their order.
func New(items []Item) (*Catalog, error) {
	c := &Catalog{
		items: make([]Item, 0, len(items)),
		index: make(map[string]int, len(items)),
	}
	for _, item := range items {
		if err := validateItem(item); err != nil {
			return nil, err
		}
		if _, dup := c.index[item.ID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duplicate product id %q", item.ID))
		}
		c.index[item.ID] = len(c.items)
		c.items = append(c.items, item)
	}
	return c, nil
}

// Decode parses either a JSON array of items or a backend document of the
// form {"product": [...]}.
func Decode(data []byte) (*Catalog, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog document is empty")
	}

	var items []Item
	if trimmed[0] == '{' {
		var doc struct {
			Product []Item `json:"product"`
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode catalog document")
		}
		items = doc.Product
	} else if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode catalog")
	}
	return New(items)
}

// Items returns a copy of the catalog items in order.
func (c *Catalog) Items() []Item {
	if c == nil {
		return nil
	}
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Find returns the item with the given id.
func (c *Catalog) Find(id string) (Item, bool) {
	if c == nil {
		return Item{}, false
	}
	idx, ok := c.index[id]
	if !ok {
		return Item{}, false
	}
	return c.items[idx], true
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// MarshalJSON encodes the catalog as an array of items.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Items())
}

func validateItem(item Item) error {
	if item.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if item.BasePrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %q has a negative price", item.ID))
	}
	seenParams := map[string]struct{}{}
	for _, p := range item.Params {
		if _, dup := seenParams[p.ID]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %q repeats param %q", item.ID, p.ID))
		}
		seenParams[p.ID] = struct{}{}
		seenOptions := map[string]struct{}{}
		for _, o := range p.Options {
			if _, dup := seenOptions[o.ID]; dup {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("param %q of %q repeats option %q", p.ID, item.ID, o.ID))
			}
			seenOptions[o.ID] = struct{}{}
			if o.Price.IsNegative() {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("option %q of %q has a negative price", o.ID, item.ID)).
					WithDetails(map[string]any{"product_id": item.ID, "param_id": p.ID, "option_id": o.ID})
			}
		}
	}
	return nil
}
