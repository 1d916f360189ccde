package store

import "encoding/json"

// Nested wire sub-objects (dimensions, pricing, depends_on, ...) are kept
// as JSON text in dedicated columns and decoded on read. These helpers are
// the row side of the entity codec.

func encodeJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func decodeJSON(s string, v any) {
	if s == "" {
		return
	}
	// A malformed column leaves the zero value in place rather than
	// failing the whole scan.
	json.Unmarshal([]byte(s), v)
}
