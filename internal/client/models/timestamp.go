package models

import (
	"bytes"
	"fmt"
	"time"
)

// WireTimeLayout is the date format used on the wire and in the store:
// ISO-8601 with milliseconds, always UTC with a literal "Z".
const WireTimeLayout = "2006-01-02T15:04:05.000Z"

// Timestamp is a time.Time that (un)marshals using WireTimeLayout.
//
// Decoding also accepts RFC 3339 with any fractional precision, since the
// server may emit microseconds or an explicit offset; the value is
// normalised to UTC.
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to milliseconds and converts it to UTC so that a
// value survives a wire round trip unchanged.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Millisecond)}
}

func (t Timestamp) String() string {
	return t.UTC().Format(WireTimeLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	b := make([]byte, 0, len(WireTimeLayout)+2)
	b = append(b, '"')
	b = t.UTC().AppendFormat(b, WireTimeLayout)
	b = append(b, '"')
	return b, nil
}

// UnmarshalJSON accepts the wire layout, RFC 3339 or null.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("timestamp: expected string, got %s", data)
	}
	s := string(data[1 : len(data)-1])

	parsed, err := time.Parse(WireTimeLayout, s)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("timestamp: %q is not ISO-8601: %w", s, err)
		}
	}
	t.Time = parsed.UTC()
	return nil
}
