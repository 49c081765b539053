// Package registry tracks which triggered reminders are currently active,
// meaning they can still be canceled or snoozed.
//
// The registry is not persisted. After a restart a reminder that was in the
// middle of escalating becomes active again the next time it fires.
//
// Registry is not safe for concurrent use on its own; callers hold the
// engine lock that also guards the reminder store.
package registry

import (
	"time"

	"github.com/sandeepkv93/remindd/internal/model"
)

type Registry struct {
	entries []model.CancelableEntry
}

func New() *Registry {
	return &Registry{}
}

func (r *Registry) Len() int {
	return len(r.entries)
}

func (r *Registry) Contains(label string, at time.Time) bool {
	return r.index(label, at) >= 0
}

// Add inserts (label, at) unless it is already present.
func (r *Registry) Add(label string, at time.Time) bool {
	if r.Contains(label, at) {
		return false
	}
	r.entries = append(r.entries, model.CancelableEntry{Label: label, TriggerAt: at})
	return true
}

// Move replaces the entry (label, from) with (label, to). When no such entry
// exists, (label, to) is inserted instead. The return value reports whether
// an existing entry was moved.
func (r *Registry) Move(label string, from, to time.Time) bool {
	if i := r.index(label, from); i >= 0 {
		r.entries = append(r.entries[:i], r.entries[i+1:]...)
		r.Add(label, to)
		return true
	}
	r.Add(label, to)
	return false
}

func (r *Registry) Remove(label string, at time.Time) bool {
	i := r.index(label, at)
	if i < 0 {
		return false
	}
	r.entries = append(r.entries[:i], r.entries[i+1:]...)
	return true
}

// RemoveLabel drops every entry for label and returns how many were removed.
func (r *Registry) RemoveLabel(label string) int {
	kept := r.entries[:0]
	removed := 0
	for _, e := range r.entries {
		if e.Label == label {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	return removed
}

func (r *Registry) Clear() {
	r.entries = nil
}

// Entries returns a copy, safe to iterate while mutating the registry.
func (r *Registry) Entries() []model.CancelableEntry {
	out := make([]model.CancelableEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *Registry) EntriesFor(label string) []model.CancelableEntry {
	out := make([]model.CancelableEntry, 0)
	for _, e := range r.entries {
		if e.Label == label {
			out = append(out, e)
		}
	}
	return out
}

func (r *Registry) index(label string, at time.Time) int {
	for i, e := range r.entries {
		if e.Matches(label, at) {
			return i
		}
	}
	return -1
}
