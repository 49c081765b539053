package storage

import (
	"bytes"
	"strings"
	"testing"
)

func TestDecodeLegacySettingsThirdFieldVariants(t *testing.T) {
	raw := `{
  "timed_reminders": [
    ["call mom", "20240105-080000--0700", "20240105-075000--0700"],
    ["dentist", "20240205-090000--0700", 2],
    ["snoozed", "20240305-100000--0700"],
    ["odd", "20240405-100000--0700", null]
  ],
  "untimed_reminders": ["buy milk", "water plants"]
}`
	got, err := DecodeLegacySettings(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Timed) != 4 || len(got.Untimed) != 2 {
		t.Fatalf("unexpected sizes: %#v", got)
	}
	if got.Timed[0].PreNotifyAt != "20240105-075000--0700" || got.Timed[0].Repeats != 0 {
		t.Fatalf("unexpected pre-notify entry: %#v", got.Timed[0])
	}
	if got.Timed[1].Repeats != 2 || got.Timed[1].PreNotifyAt != "" {
		t.Fatalf("unexpected repeat entry: %#v", got.Timed[1])
	}
	if got.Timed[2].PreNotifyAt != "" || got.Timed[2].Repeats != 0 {
		t.Fatalf("unexpected two-element entry: %#v", got.Timed[2])
	}
	if got.Timed[3].Label != "odd" {
		t.Fatalf("unexpected null entry: %#v", got.Timed[3])
	}
}

func TestDecodeLegacySettingsRejectsShortEntry(t *testing.T) {
	_, err := DecodeLegacySettings(strings.NewReader(`{"timed_reminders": [["only label"]]}`))
	if err == nil {
		t.Fatal("expected error for one-element entry")
	}
}

func TestEncodeLegacySettings(t *testing.T) {
	var buf bytes.Buffer
	err := EncodeLegacySettings(&buf, LegacySettings{
		Timed: []LegacyTimed{
			{Label: "a", TriggerAt: "20240105-080000--0700", PreNotifyAt: "20240105-075000--0700"},
			{Label: "b", TriggerAt: "20240105-080200--0700", Repeats: 1},
			{Label: "c", TriggerAt: "20240105-081500--0700"},
		},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`"a",`, `"20240105-075000--0700"`, `1`, `"untimed_reminders": []`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	back, err := DecodeLegacySettings(&buf)
	if err != nil {
		t.Fatalf("decode back: %v", err)
	}
	if back.Timed[1].Repeats != 1 || back.Timed[0].PreNotifyAt == "" || back.Timed[2].PreNotifyAt != "" {
		t.Fatalf("unexpected decoded settings: %#v", back.Timed)
	}
}
