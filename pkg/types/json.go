package types

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONList is a slice persisted as a JSON text column.
type JSONList[T any] []T

// Value serializes the list to JSON. A nil list is stored as [].
func (l JSONList[T]) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]T(l))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan decodes a JSON text column into the list.
func (l *JSONList[T]) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded []T
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("decoding json list: %w", err)
	}
	*l = decoded
	return nil
}

// RawJSON keeps a JSON document verbatim, so key order survives a round trip
// through the database.
type RawJSON json.RawMessage

// Value stores the document as text; an empty document becomes {}.
func (r RawJSON) Value() (driver.Value, error) {
	trimmed := bytes.TrimSpace(r)
	if len(trimmed) == 0 {
		return "{}", nil
	}
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("raw json: invalid document")
	}
	return string(trimmed), nil
}

func (r *RawJSON) Scan(value any) error {
	if value == nil {
		*r = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	*r = append((*r)[:0], raw...)
	return nil
}

// MarshalJSON emits the stored document, or null when empty.
func (r RawJSON) MarshalJSON() ([]byte, error) {
	if len(bytes.TrimSpace(r)) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

func (r *RawJSON) UnmarshalJSON(data []byte) error {
	*r = append((*r)[:0], data...)
	return nil
}

func asJSON(value any) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return bytes.Clone(v), nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", value)
	}
}
