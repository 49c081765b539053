package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/notify"
)

func newTestPreNotifier(h *harness, now time.Time) *PreNotifier {
	deps := h.deps
	deps.Now = func() time.Time { return now }
	p := NewPreNotifier(deps, time.Second, 10*time.Second, "remindd")
	p.after = func(_ time.Duration, f func()) { f() }
	return p
}

func TestPreNotifierAnnouncesOnceInWindow(t *testing.T) {
	h := newHarness(t)
	at := time.Date(2024, 5, 1, 8, 0, 0, 0, pdt)
	pre := at.Add(-10 * time.Minute)
	h.add(t, model.TimedReminder{Label: "dentist", TriggerAt: at, PreNotifyAt: &pre})
	h.add(t, model.TimedReminder{Label: "no lead", TriggerAt: at, PreNotifyAt: &at})

	p := newTestPreNotifier(h, at.Add(-5*time.Minute))

	p.Arm()
	if !p.Armed() {
		t.Fatal("expected armed after Arm")
	}
	p.HandlerComplete("console:time")
	if p.Armed() {
		t.Fatal("check should disarm")
	}
	if got := h.rec.Texts(); len(got) != 1 || got[0] != "By the way, soon it is time for: dentist" {
		t.Fatalf("unexpected announcements: %v", got)
	}
	if !h.registry.Contains("dentist", at) {
		t.Fatal("pre-notified reminder should be cancelable")
	}

	p.Arm()
	p.HandlerComplete("console:time")
	if len(h.rec.Texts()) != 1 {
		t.Fatalf("reminder announced twice: %v", h.rec.Texts())
	}
}

func TestPreNotifierIgnoresOwnHandlers(t *testing.T) {
	h := newHarness(t)
	at := time.Date(2024, 5, 1, 8, 0, 0, 0, pdt)
	pre := at.Add(-10 * time.Minute)
	h.add(t, model.TimedReminder{Label: "dentist", TriggerAt: at, PreNotifyAt: &pre})

	p := newTestPreNotifier(h, at.Add(-5*time.Minute))
	p.Arm()
	p.HandlerComplete("remindd:ListUntimed")

	if p.Armed() {
		t.Fatal("own handler completion should disarm")
	}
	if len(h.rec.Texts()) != 0 {
		t.Fatalf("nothing should be announced: %v", h.rec.Texts())
	}
}

func TestPreNotifierNeedsArming(t *testing.T) {
	h := newHarness(t)
	at := time.Date(2024, 5, 1, 8, 0, 0, 0, pdt)
	pre := at.Add(-10 * time.Minute)
	h.add(t, model.TimedReminder{Label: "dentist", TriggerAt: at, PreNotifyAt: &pre})

	p := newTestPreNotifier(h, at.Add(-5*time.Minute))
	p.HandlerComplete("console:time")
	if len(h.rec.Texts()) != 0 {
		t.Fatalf("unarmed pre-notifier announced: %v", h.rec.Texts())
	}

	early := newTestPreNotifier(h, pre.Add(-time.Minute))
	early.Arm()
	n, err := early.Check(context.Background(), pre.Add(-time.Minute))
	if err != nil || n != 0 {
		t.Fatalf("outside the window: n=%d err=%v", n, err)
	}
}

func TestPreNotifierFollowsBus(t *testing.T) {
	h := newHarness(t)
	p := newTestPreNotifier(h, time.Now())
	bus := notify.NewBus()
	p.Attach(bus)

	bus.Publish(notify.Event{Type: notify.EventSpoke, Text: "hello"})
	if !p.Armed() {
		t.Fatal("spoke should arm")
	}
	bus.Publish(notify.Event{Type: notify.EventHandlerStart, Handler: "console:time"})
	if p.Armed() {
		t.Fatal("handler start should disarm")
	}

	p.Close()
	p.Arm()
	if p.Armed() {
		t.Fatal("closed pre-notifier must not arm")
	}
}
