// Package interpret pulls dates, times, durations and numbers out of free
// text. Only English is understood; other locales are read as English.
package interpret

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNoDateTime   = errors.New("interpret: no date or time found")
	ErrInvalidClock = errors.New("interpret: invalid clock time")
)

// Clock is a time of day.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM" in 24-hour form.
func ParseClock(s string) (Clock, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 || len(m) != 2 {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Interpreter extracts structured values from an utterance. Each Extract
// returns the remainder of the text with the consumed words removed.
type Interpreter interface {
	// ExtractDateTime finds a point in time relative to now. When only a
	// date is given, defaultTime (or midnight when nil) is used.
	ExtractDateTime(text string, now time.Time, locale string, defaultTime *Clock) (time.Time, string, bool)
	ExtractDuration(text, locale string) (time.Duration, string, bool)
	ExtractNumber(text, locale string) (float64, bool)
}
