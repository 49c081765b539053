package model

import (
	"errors"
	"fmt"
	"time"
)

var ErrMalformedTimestamp = errors.New("model: malformed timestamp")

// TimestampLayout is year, day, month, then time and zone offset. The
// day-before-month order is what existing settings files contain.
const TimestampLayout = "20060201-150405--0700"

// Serialize renders t with second precision, keeping its zone offset in
// whole minutes. Fractional seconds and offset seconds are dropped.
func Serialize(t time.Time) string {
	return t.Format(TimestampLayout)
}

func Deserialize(s string) (time.Time, error) {
	if len(s) != len(TimestampLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
	}
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrMalformedTimestamp, s, err)
	}
	return t, nil
}

// SameTimestamp reports whether a and b serialize to the same string, which
// is how stored reminders are identified by time.
func SameTimestamp(a, b time.Time) bool {
	return Serialize(a) == Serialize(b)
}
