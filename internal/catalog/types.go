// Package catalog holds the read-only product definitions the menu is built
// from, and the sources that load them.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Option is one selectable choice of a Param.
type Option struct {
	ID      string
	Label   string
	Price   decimal.Decimal
	Default bool
}

// Param is a configurable dimension of an Item. Options keep document order.
type Param struct {
	ID      string
	Label   string
	Type    string
	Options []Option
}

// Option returns the option with the given id.
func (p Param) Option(id string) (Option, bool) {
	for _, opt := range p.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// Item is a product definition. Params keep document order.
type Item struct {
	ID          string
	Name        string
	Class       string
	Description string
	Images      []string
	BasePrice   decimal.Decimal
	Params      []Param
}

// Param returns the param with the given id.
func (i Item) Param(id string) (Param, bool) {
	for _, p := range i.Params {
		if p.ID == id {
			return p, true
		}
	}
	return Param{}, false
}

type optionJSON struct {
	Label   string          `json:"label"`
	Price   decimal.Decimal `json:"price"`
	Default bool            `json:"default,omitempty"`
}

type paramJSON struct {
	Label   string          `json:"label"`
	Type    string          `json:"type,omitempty"`
	Options json.RawMessage `json:"options"`
}

type itemJSON struct {
	ID          string          `json:"id"`
	Class       string          `json:"class,omitempty"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	Images      []string        `json:"images,omitempty"`
	Params      json.RawMessage `json:"params,omitempty"`
}

// UnmarshalJSON reads the storefront product shape, where params and options
// are JSON objects keyed by id.
func (i *Item) UnmarshalJSON(data []byte) error {
	var raw itemJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	item := Item{
		ID:          raw.ID,
		Name:        raw.Name,
		Class:       raw.Class,
		Description: raw.Description,
		Images:      raw.Images,
		BasePrice:   raw.Price,
	}
	err := eachMember(raw.Params, func(paramID string, msg json.RawMessage) error {
		var p paramJSON
		if err := json.Unmarshal(msg, &p); err != nil {
			return fmt.Errorf("param %q: %w", paramID, err)
		}
		param := Param{ID: paramID, Label: p.Label, Type: p.Type}
		err := eachMember(p.Options, func(optionID string, msg json.RawMessage) error {
			var o optionJSON
			if err := json.Unmarshal(msg, &o); err != nil {
				return fmt.Errorf("option %q: %w", optionID, err)
			}
			param.Options = append(param.Options, Option{ID: optionID, Label: o.Label, Price: o.Price, Default: o.Default})
			return nil
		})
		if err != nil {
			return fmt.Errorf("param %q: %w", paramID, err)
		}
		item.Params = append(item.Params, param)
		return nil
	})
	if err != nil {
		return fmt.Errorf("item %q: %w", raw.ID, err)
	}
	*i = item
	return nil
}

// MarshalJSON writes the same keyed shape UnmarshalJSON reads, preserving order.
func (i Item) MarshalJSON() ([]byte, error) {
	var params bytes.Buffer
	params.WriteByte('{')
	for pi, p := range i.Params {
		if pi > 0 {
			params.WriteByte(',')
		}
		var options bytes.Buffer
		options.WriteByte('{')
		for oi, o := range p.Options {
			if oi > 0 {
				options.WriteByte(',')
			}
			if err := writeMember(&options, o.ID, optionJSON{Label: o.Label, Price: o.Price, Default: o.Default}); err != nil {
				return nil, err
			}
		}
		options.WriteByte('}')
		if err := writeMember(&params, p.ID, paramJSON{Label: p.Label, Type: p.Type, Options: options.Bytes()}); err != nil {
			return nil, err
		}
	}
	params.WriteByte('}')

	return json.Marshal(itemJSON{
		ID:          i.ID,
		Class:       i.Class,
		Name:        i.Name,
		Price:       i.BasePrice,
		Description: i.Description,
		Images:      i.Images,
		Params:      params.Bytes(),
	})
}

func writeMember(buf *bytes.Buffer, key string, value any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

// eachMember walks a JSON object in document order. Empty input and null are
// treated as an empty object.
func eachMember(data json.RawMessage, fn func(key string, value json.RawMessage) error) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", keyTok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}
