package scheduler

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/remindd/internal/notify"
)

const (
	DefaultArmDelay    = time.Second
	DefaultCheckDelay  = 10 * time.Second
	DefaultHandlerName = "remindd"
)

// PreNotifier gives an early "by the way" notice for reminders inside
// their pre-notify window. It piggybacks on conversation: it arms shortly
// after anything is spoken, and when a handler other than remindd's own
// completes while armed, it checks for reminders worth mentioning.
type PreNotifier struct {
	deps        Deps
	armDelay    time.Duration
	checkDelay  time.Duration
	handlerName string

	armed  atomic.Bool
	closed atomic.Bool
	after  func(time.Duration, func())
}

func NewPreNotifier(deps Deps, armDelay, checkDelay time.Duration, handlerName string) *PreNotifier {
	if armDelay < 0 {
		armDelay = DefaultArmDelay
	}
	if checkDelay < 0 {
		checkDelay = DefaultCheckDelay
	}
	if handlerName == "" {
		handlerName = DefaultHandlerName
	}
	return &PreNotifier{
		deps:        deps.withDefaults(),
		armDelay:    armDelay,
		checkDelay:  checkDelay,
		handlerName: handlerName,
		after:       func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// Attach subscribes the pre-notifier to bus lifecycle events.
func (p *PreNotifier) Attach(bus *notify.Bus) {
	bus.Subscribe(func(ev notify.Event) {
		switch ev.Type {
		case notify.EventSpoke:
			p.Arm()
		case notify.EventHandlerStart:
			p.Disarm()
		case notify.EventHandlerComplete:
			p.HandlerComplete(ev.Handler)
		}
	})
}

// Arm sets the armed flag after the arm delay. It never blocks.
func (p *PreNotifier) Arm() {
	p.after(p.armDelay, func() {
		if !p.closed.Load() {
			p.armed.Store(true)
		}
	})
}

func (p *PreNotifier) Disarm() {
	p.armed.Store(false)
}

func (p *PreNotifier) Armed() bool {
	return p.armed.Load()
}

// HandlerComplete schedules the pre-notify check after the check delay.
// Completion of one of remindd's own handlers only disarms.
func (p *PreNotifier) HandlerComplete(handler string) {
	own := strings.Contains(handler, p.handlerName)
	p.after(p.checkDelay, func() {
		if p.closed.Load() {
			return
		}
		if own {
			p.Disarm()
			return
		}
		if _, err := p.Check(context.Background(), p.deps.Now()); err != nil {
			p.deps.Log.Warn("pre-notify check failed", zap.Error(err))
		}
	})
}

// Check announces, once, every reminder whose pre-notify window contains
// now and that is not already cancelable, then disarms. It does nothing
// unless armed.
func (p *PreNotifier) Check(ctx context.Context, now time.Time) (int, error) {
	if !p.armed.Load() {
		return 0, nil
	}
	defer p.Disarm()

	p.deps.Lock.Lock()
	defer p.deps.Lock.Unlock()

	all, err := p.deps.Store.AllTimed(ctx)
	if err != nil {
		return 0, err
	}
	announced := 0
	for _, r := range all {
		if !r.InPreNotifyWindow(now) || p.deps.Registry.Contains(r.Label, r.TriggerAt) {
			continue
		}
		p.deps.Notifier.SpeakDialog(ctx, notify.DialogByTheWay, notify.Vars{"reminder": r.Label})
		p.deps.Registry.Add(r.Label, r.TriggerAt)
		announced++
	}
	if announced > 0 {
		p.deps.Metrics.PreNotified.Add(float64(announced))
		p.deps.Metrics.Active.Set(float64(p.deps.Registry.Len()))
	}
	return announced, nil
}

// Close stops pending deferred tasks from taking effect.
func (p *PreNotifier) Close() {
	p.closed.Store(true)
}
