package storefront

import (
	"bytes"
	"encoding/json"

	pkgerrors "github.com/angelmondragon/pizzeria/pkg/errors"
)

type optionsRequest struct {
	Values map[string][]string `json:"values"`
}

// amountRequest carries either the typed value of the amount input or a
// +1/-1 button press.
type amountRequest struct {
	Value json.RawMessage `json:"value,omitempty"`
	Delta *int            `json:"delta,omitempty" validate:"omitempty,oneof=-1 1"`
}

type orderRequest struct {
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// raw returns the input text. Numbers are passed through as written so the
// counter applies its own parsing rules.
func (a amountRequest) raw() (string, bool, error) {
	value := bytes.TrimSpace(a.Value)
	if len(value) == 0 || bytes.Equal(value, []byte("null")) {
		return "", false, nil
	}
	if value[0] == '"' {
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return "", false, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount value")
		}
		return s, true, nil
	}
	return string(value), true, nil
}

func (a amountRequest) check() error {
	_, hasValue, err := a.raw()
	if err != nil {
		return err
	}
	if hasValue == (a.Delta != nil) {
		return pkgerrors.New(pkgerrors.CodeValidation, "exactly one of value or delta is required").
			WithDetails(map[string]string{"value": "is required without delta", "delta": "is required without value"})
	}
	return nil
}
