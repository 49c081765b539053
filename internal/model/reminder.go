package model

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyLabel       = errors.New("model: reminder label is required")
	ErrMissingTrigger   = errors.New("model: reminder trigger_at is required")
	ErrNegativeRepeats  = errors.New("model: reminder repeat_count must be >= 0")
	ErrPreNotifyOnRetry = errors.New("model: pre_notify_at must be nil while escalating")
)

// TimedReminder is a reminder bound to a trigger time.
//
// PreNotifyAt is only meaningful before the first trigger. Once the reminder
// has fired, RepeatCount counts the announcements made so far and PreNotifyAt
// is cleared.
type TimedReminder struct {
	ID          string
	Label       string
	TriggerAt   time.Time
	PreNotifyAt *time.Time
	RepeatCount int
	Seq         int64
}

func (r TimedReminder) Validate() error {
	if strings.TrimSpace(r.Label) == "" {
		return ErrEmptyLabel
	}
	if r.TriggerAt.IsZero() {
		return ErrMissingTrigger
	}
	if r.RepeatCount < 0 {
		return ErrNegativeRepeats
	}
	if r.RepeatCount > 0 && r.PreNotifyAt != nil {
		return ErrPreNotifyOnRetry
	}
	return nil
}

// Escalating reports whether the reminder has already been announced at
// least once.
func (r TimedReminder) Escalating() bool {
	return r.RepeatCount > 0
}

// InPreNotifyWindow reports whether now lies in [PreNotifyAt, TriggerAt).
func (r TimedReminder) InPreNotifyWindow(now time.Time) bool {
	if r.PreNotifyAt == nil || r.Escalating() {
		return false
	}
	return !now.Before(*r.PreNotifyAt) && now.Before(r.TriggerAt)
}

// SameDate reports whether the trigger falls on the calendar date of day,
// evaluated in the reminder's own offset.
func (r TimedReminder) SameDate(day time.Time) bool {
	y1, m1, d1 := r.TriggerAt.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

type UntimedReminder struct {
	ID    string
	Label string
	Seq   int64
}

func (r UntimedReminder) Validate() error {
	if strings.TrimSpace(r.Label) == "" {
		return ErrEmptyLabel
	}
	return nil
}

// CancelableEntry identifies a triggered reminder that can still be canceled
// or snoozed. The same label may be active at several times.
type CancelableEntry struct {
	Label     string
	TriggerAt time.Time
}

// Matches compares by label and instant.
func (e CancelableEntry) Matches(label string, at time.Time) bool {
	return e.Label == label && e.TriggerAt.Equal(at)
}
