package storefront

import (
	"slices"

	"github.com/angelmondragon/pizzeria/internal/catalog"
)

// formState holds the option selections of every menu item, keyed by item
// then param. It starts out with each item's default options selected.
type formState struct {
	values map[string]map[string][]string
}

func newFormState(items []catalog.Item) *formState {
	f := &formState{values: make(map[string]map[string][]string, len(items))}
	for _, item := range items {
		defaults := map[string][]string{}
		for _, param := range item.Params {
			for _, opt := range param.Options {
				if opt.Default {
					defaults[param.ID] = append(defaults[param.ID], opt.ID)
				}
			}
		}
		f.values[item.ID] = defaults
	}
	return f
}

func (f *formState) Values(itemID string) map[string][]string {
	return f.values[itemID]
}

// replace swaps the whole selection set of one item.
func (f *formState) replace(itemID string, values map[string][]string) {
	next := make(map[string][]string, len(values))
	for paramID, optionIDs := range values {
		next[paramID] = slices.Clone(optionIDs)
	}
	f.values[itemID] = next
}
