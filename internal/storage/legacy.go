package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// LegacySettings is the settings document written by earlier versions:
//
//	{"timed_reminders": [[label, triggerAt, preNotifyOrRepeats], ...],
//	 "untimed_reminders": [label, ...]}
//
// The third element of a timed entry is a serialized timestamp before the
// reminder first fires and an integer repeat counter afterwards. It may also
// be missing for snoozed entries.
type LegacySettings struct {
	Timed   []LegacyTimed `json:"timed_reminders"`
	Untimed []string      `json:"untimed_reminders"`
}

type LegacyTimed struct {
	Label       string
	TriggerAt   string
	PreNotifyAt string
	Repeats     int
}

func (l *LegacyTimed) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("legacy timed reminder: %w", err)
	}
	if len(parts) < 2 || len(parts) > 3 {
		return fmt.Errorf("legacy timed reminder: want 2 or 3 elements, got %d", len(parts))
	}
	var out LegacyTimed
	if err := json.Unmarshal(parts[0], &out.Label); err != nil {
		return fmt.Errorf("legacy timed reminder label: %w", err)
	}
	if err := json.Unmarshal(parts[1], &out.TriggerAt); err != nil {
		return fmt.Errorf("legacy timed reminder time: %w", err)
	}
	if len(parts) == 3 {
		third := bytes.TrimSpace(parts[2])
		switch {
		case bytes.Equal(third, []byte("null")):
		case len(third) > 0 && third[0] == '"':
			if err := json.Unmarshal(third, &out.PreNotifyAt); err != nil {
				return fmt.Errorf("legacy timed reminder pre-notify: %w", err)
			}
		default:
			var n float64
			if err := json.Unmarshal(third, &n); err != nil {
				return fmt.Errorf("legacy timed reminder repeats: %w", err)
			}
			out.Repeats = int(n)
		}
	}
	*l = out
	return nil
}

func (l LegacyTimed) MarshalJSON() ([]byte, error) {
	switch {
	case l.Repeats > 0:
		return json.Marshal([]any{l.Label, l.TriggerAt, l.Repeats})
	case l.PreNotifyAt != "":
		return json.Marshal([]any{l.Label, l.TriggerAt, l.PreNotifyAt})
	default:
		return json.Marshal([]any{l.Label, l.TriggerAt})
	}
}

func DecodeLegacySettings(r io.Reader) (LegacySettings, error) {
	var out LegacySettings
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return LegacySettings{}, fmt.Errorf("decode legacy settings: %w", err)
	}
	return out, nil
}

func EncodeLegacySettings(w io.Writer, in LegacySettings) error {
	if in.Timed == nil {
		in.Timed = []LegacyTimed{}
	}
	if in.Untimed == nil {
		in.Untimed = []string{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(in); err != nil {
		return fmt.Errorf("encode legacy settings: %w", err)
	}
	return nil
}
