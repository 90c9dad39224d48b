// Package isotime holds the instant format shared by every stored record.
package isotime

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Layout matches JavaScript's Date.toISOString so stored values sort
// lexicographically in time order.
const Layout = "2006-01-02T15:04:05.000Z"

// Time is a nullable instant. Null, empty strings and missing fields decode
// to the zero value, which encodes back to null.
type Time struct {
	time.Time
}

func New(t time.Time) Time {
	return Time{Time: t}
}

func Ptr(t time.Time) *Time {
	v := New(t)
	return &v
}

func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

func (t Time) Valid() bool {
	return !t.IsZero()
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(Format(t.Time))
}

func (t *Time) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("isotime: expected string, got %s", string(b))
	}

	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("isotime: %w", err)
	}
	t.Time = parsed
	return nil
}
