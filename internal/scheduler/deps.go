// Package scheduler runs the time-driven side of remindd: the periodic due
// scanner, the escalation policy that re-announces fired reminders, and the
// pre-notifier that gives early "by the way" notices.
//
// Every component shares one lock with the command surface. It guards the
// reminder store and the cancelable registry together.
package scheduler

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/remindd/internal/notify"
	"github.com/sandeepkv93/remindd/internal/registry"
	"github.com/sandeepkv93/remindd/internal/reminders"
)

// Deps are the collaborators shared by the scheduler components.
type Deps struct {
	Lock     sync.Locker
	Store    *reminders.Store
	Registry *registry.Registry
	Notifier notify.Notifier
	Log      *zap.Logger
	Metrics  *Metrics
	Now      func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Lock == nil {
		d.Lock = &sync.Mutex{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = NewMetrics(nil)
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}
