package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/notify"
)

const (
	DefaultEscalationInterval = 2 * time.Minute
	DefaultMaxAnnouncements   = 3
)

// EscalationPolicy decides what happens to a reminder after it fired: it is
// announced again Interval later until it has been announced
// MaxAnnouncements times, then it is dropped.
type EscalationPolicy struct {
	deps     Deps
	interval time.Duration
	max      int
}

func NewEscalationPolicy(deps Deps, interval time.Duration, maxAnnouncements int) *EscalationPolicy {
	if interval <= 0 {
		interval = DefaultEscalationInterval
	}
	if maxAnnouncements <= 0 {
		maxAnnouncements = DefaultMaxAnnouncements
	}
	return &EscalationPolicy{deps: deps.withDefaults(), interval: interval, max: maxAnnouncements}
}

// Resolve handles a batch of reminders that were just announced. The caller
// holds the engine lock.
//
// A reminder below the limit is replaced by a copy Interval later with its
// repeat count raised, and its cancelable entry follows it. A reminder at
// the limit is removed together with every cancelable entry for its label.
func (p *EscalationPolicy) Resolve(ctx context.Context, fired []model.TimedReminder) error {
	var errs []error
	for _, r := range fired {
		repeats := r.RepeatCount + 1
		log := p.deps.Log.With(zap.String("id", r.ID), zap.String("label", r.Label), zap.Int("repeats", repeats))

		if repeats < p.max {
			p.deps.Notifier.SpeakDialog(ctx, notify.DialogToCancelInstructions, nil)
			next := model.TimedReminder{
				Label:       r.Label,
				TriggerAt:   r.TriggerAt.Add(p.interval),
				RepeatCount: repeats,
			}
			if _, err := p.deps.Store.Replace(ctx, r, next); err != nil {
				log.Error("failed to reschedule reminder", zap.Error(err))
				errs = append(errs, err)
				continue
			}
			p.deps.Registry.Move(r.Label, r.TriggerAt, next.TriggerAt)
			p.deps.Metrics.Rescheduled.Inc()
			log.Debug("reminder rescheduled", zap.Time("next", next.TriggerAt))
			continue
		}

		if _, err := p.deps.Store.RemoveTimed(ctx, r.ID); err != nil {
			log.Error("failed to drop reminder", zap.Error(err))
			errs = append(errs, err)
			continue
		}
		dropped := p.deps.Registry.RemoveLabel(r.Label)
		p.deps.Metrics.Expired.Inc()
		log.Info("reminder announced for the last time", zap.Int("cancelable_dropped", dropped))
	}
	p.deps.Metrics.Active.Set(float64(p.deps.Registry.Len()))
	return errors.Join(errs...)
}
