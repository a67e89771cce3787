package sqlite

import (
	"encoding/json"
	"time"

	"github.com/fwojciec/webintel"
)

// parseRFC3339 parses a timestamp column. Timestamps are stored as RFC3339
// text at second precision, so sub-second precision does not survive a
// round trip.
func parseRFC3339(value, column string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, webintel.Errorf(webintel.ESTORAGE, "parsing %s: %v", column, err)
	}
	return t, nil
}

// marshalMetadata encodes a metadata map as JSON text. A nil or empty map
// encodes as an empty object so the column is never NULL.
func marshalMetadata(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// unmarshalMetadata decodes a metadata JSON text column. An empty object
// decodes to nil rather than an empty map.
func unmarshalMetadata(data string) (map[string]any, error) {
	if data == "" || data == "{}" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return nil, err
	}
	return m, nil
}
