package storage

import "time"

// TimedReminder is a timed_reminders row. Timestamps that belong to the
// reminder itself are kept in their serialized form; decoding them is the
// caller's job so one unreadable row cannot hide the others.
type TimedReminder struct {
	Seq         int64
	ID          string
	Label       string
	TriggerAt   string
	PreNotifyAt string
	RepeatCount int
	CreatedAt   time.Time
}

type UntimedReminder struct {
	Seq       int64
	ID        string
	Label     string
	CreatedAt time.Time
}

type TimedListFilter struct {
	Label     string
	TriggerAt string
	Limit     int
	Offset    int
}

type UntimedListFilter struct {
	Label  string
	Limit  int
	Offset int
}
