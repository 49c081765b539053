package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/sandeepkv93/remindd/internal/model"
)

func TestResolveProperties(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, pdt)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("below the limit the reminder moves by the interval", prop.ForAll(
		func(repeats int, offsetMin int) bool {
			reset(t, h)
			at := base.Add(time.Duration(offsetMin) * time.Minute)
			r := h.add(t, model.TimedReminder{Label: "water plants", TriggerAt: at, RepeatCount: repeats})
			h.registry.Add("water plants", at)

			if err := h.policy.Resolve(ctx, []model.TimedReminder{r}); err != nil {
				return false
			}
			all := h.timed(t)
			want := at.Add(2 * time.Minute)
			return len(all) == 1 &&
				all[0].ID == r.ID &&
				all[0].RepeatCount == repeats+1 &&
				all[0].TriggerAt.Equal(want) &&
				len(h.registry.EntriesFor("water plants")) == 1 &&
				h.registry.Contains("water plants", want)
		},
		gen.IntRange(0, 1),
		gen.IntRange(0, 60*24*30),
	))

	properties.Property("at the limit the reminder and every entry for its label go away", prop.ForAll(
		func(repeats int, extraEntries int) bool {
			reset(t, h)
			r := h.add(t, model.TimedReminder{Label: "stretch", TriggerAt: base, RepeatCount: repeats})
			for i := 0; i < extraEntries; i++ {
				h.registry.Add("stretch", base.Add(time.Duration(i)*time.Hour))
			}
			h.registry.Add("other", base)

			if err := h.policy.Resolve(ctx, []model.TimedReminder{r}); err != nil {
				return false
			}
			return len(h.timed(t)) == 0 &&
				len(h.registry.EntriesFor("stretch")) == 0 &&
				h.registry.Contains("other", base)
		},
		gen.IntRange(2, 10),
		gen.IntRange(0, 4),
	))

	properties.TestingRun(t)
}

func TestResolveEmptyBatch(t *testing.T) {
	h := newHarness(t)
	if err := h.policy.Resolve(context.Background(), nil); err != nil {
		t.Fatalf("resolve empty batch: %v", err)
	}
	if len(h.rec.Texts()) != 0 {
		t.Fatalf("nothing should be spoken: %v", h.rec.Texts())
	}
}

func reset(t *testing.T, h *harness) {
	t.Helper()
	if _, err := h.store.ClearTimed(context.Background()); err != nil {
		t.Fatalf("clear timed: %v", err)
	}
	h.registry.Clear()
}
