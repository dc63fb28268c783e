// Package timex provides a time.Duration that reads naturally from JSON.
package timex

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrInvalidDuration is returned for JSON that is neither a duration string nor a number.
var ErrInvalidDuration = errors.New("invalid duration")

// Duration unmarshals from either a Go duration string ("30s", "1m30s")
// or an integer number of nanoseconds, and marshals back to the string form.
type Duration struct {
	time.Duration
}

// MarshalJSON writes d as a duration string such as "30s".
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "30s"-style strings or integer nanoseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return ErrInvalidDuration
	}
}
