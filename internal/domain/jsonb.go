package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSONBValue wraps an arbitrary JSON-marshalable value for storage in a
// PostgreSQL JSONB column. It implements sql.Scanner and driver.Valuer.
// Scanning decodes into a generic any; signal bags are diagnostic data and
// are never branched on after persistence.
type JSONBValue struct {
	V any
}

// JSONB wraps a value for JSONB storage.
func JSONB(v any) JSONBValue {
	return JSONBValue{V: v}
}

// Scan implements the sql.Scanner interface.
func (j *JSONBValue) Scan(value any) error {
	if value == nil {
		j.V = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return errors.New("unsupported type for JSONBValue")
	}

	if len(data) == 0 {
		j.V = nil
		return nil
	}

	return json.Unmarshal(data, &j.V)
}

// Value implements the driver.Valuer interface.
func (j JSONBValue) Value() (driver.Value, error) {
	if j.V == nil {
		return []byte("null"), nil
	}
	return json.Marshal(j.V)
}

// MarshalJSON passes the wrapped value through unchanged.
func (j JSONBValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(j.V)
}

// UnmarshalJSON decodes into the wrapped value.
func (j *JSONBValue) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &j.V)
}
