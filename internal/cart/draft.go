package cart

import "github.com/shopspring/decimal"

// SelectedOption is an option resolved to its label at commit time.
type SelectedOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// SelectedParam groups the chosen options of one param.
type SelectedParam struct {
	ID      string           `json:"id"`
	Label   string           `json:"label"`
	Options []SelectedOption `json:"options"`
}

// Draft is the snapshot a menu item hands to the cart.
type Draft struct {
	ProductID  string
	Name       string
	UnitPrice  decimal.Decimal
	Amount     int
	Selections []SelectedParam
}

// Committer produces a Draft of its current state without mutating itself.
type Committer interface {
	CommitToCart() Draft
}

// CloneSelections deep-copies a selection set.
func CloneSelections(in []SelectedParam) []SelectedParam {
	if in == nil {
		return nil
	}
	out := make([]SelectedParam, len(in))
	for i, p := range in {
		out[i] = SelectedParam{ID: p.ID, Label: p.Label}
		if p.Options != nil {
			out[i].Options = make([]SelectedOption, len(p.Options))
			copy(out[i].Options, p.Options)
		}
	}
	return out
}
