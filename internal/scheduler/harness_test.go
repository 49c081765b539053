package scheduler

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/notify/notifytest"
	"github.com/sandeepkv93/remindd/internal/registry"
	"github.com/sandeepkv93/remindd/internal/reminders"
	"github.com/sandeepkv93/remindd/internal/storage"
)

var pdt = time.FixedZone("PDT", -7*3600)

type harness struct {
	deps     Deps
	store    *reminders.Store
	registry *registry.Registry
	rec      *notifytest.Recorder
	policy   *EscalationPolicy
	scanner  *Scanner
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "scheduler.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	store, err := reminders.NewStore(repo)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	h := &harness{
		store:    store,
		registry: registry.New(),
		rec:      notifytest.New(),
	}
	h.deps = Deps{
		Lock:     &sync.Mutex{},
		Store:    h.store,
		Registry: h.registry,
		Notifier: h.rec,
		Metrics:  NewMetrics(nil),
	}
	h.policy = NewEscalationPolicy(h.deps, 2*time.Minute, 3)
	h.scanner = NewScanner(h.deps, h.policy, 20*time.Millisecond)
	return h
}

func (h *harness) add(t *testing.T, r model.TimedReminder) model.TimedReminder {
	t.Helper()
	out, err := h.store.AddTimed(context.Background(), r)
	if err != nil {
		t.Fatalf("add reminder: %v", err)
	}
	return out
}

func (h *harness) timed(t *testing.T) []model.TimedReminder {
	t.Helper()
	all, err := h.store.AllTimed(context.Background())
	if err != nil {
		t.Fatalf("list reminders: %v", err)
	}
	return all
}
