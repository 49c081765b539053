package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/notify"
)

const DefaultScanInterval = 30 * time.Second

var (
	ErrScanInProgress = errors.New("scheduler: scan already in progress")
	ErrScannerStopped = errors.New("scheduler: scanner stopped")
)

// Scanner announces every timed reminder whose trigger time has passed and
// hands the batch to the escalation policy. It scans once on Start and then
// every interval until stopped.
type Scanner struct {
	deps     Deps
	policy   *EscalationPolicy
	pinger   notify.Pinger
	interval time.Duration

	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool

	running atomic.Bool
	skipped uint64
}

func NewScanner(deps Deps, policy *EscalationPolicy, interval time.Duration) *Scanner {
	if interval <= 0 {
		interval = DefaultScanInterval
	}
	return &Scanner{
		deps:     deps.withDefaults(),
		policy:   policy,
		pinger:   notify.NoopPinger{},
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// WithPinger sends an extra alert, such as a desktop notification, for
// every announcement.
func (s *Scanner) WithPinger(p notify.Pinger) *Scanner {
	if p != nil {
		s.pinger = p
	}
	return s
}

func (s *Scanner) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	go s.loop(ctx)
}

func (s *Scanner) Stop() {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.stopCh)
	s.mu.Unlock()
	<-s.doneCh
}

// Run starts the scanner and blocks until ctx is done.
func (s *Scanner) Run(ctx context.Context) error {
	s.Start(ctx)
	<-ctx.Done()
	s.Stop()
	return nil
}

// Skipped reports how many scans were skipped because one was running.
func (s *Scanner) Skipped() uint64 {
	return atomic.LoadUint64(&s.skipped)
}

// Scan runs one sweep at now and returns how many reminders fired. A scan
// requested while another is running is skipped with ErrScanInProgress.
// A panic inside the sweep is recovered and returned as an error.
func (s *Scanner) Scan(ctx context.Context, now time.Time) (fired int, err error) {
	if !s.running.CompareAndSwap(false, true) {
		atomic.AddUint64(&s.skipped, 1)
		s.deps.Metrics.SkippedScans.Inc()
		return 0, ErrScanInProgress
	}
	defer s.running.Store(false)

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scheduler: scan panicked: %v", r)
		}
		if err != nil {
			s.deps.Metrics.ScanErrors.Inc()
			s.deps.Log.Error("scan failed", zap.Error(err))
		}
		s.deps.Metrics.ScanDuration.Observe(time.Since(start).Seconds())
	}()

	s.deps.Lock.Lock()
	defer s.deps.Lock.Unlock()

	all, err := s.deps.Store.AllTimed(ctx)
	if err != nil {
		return 0, err
	}

	due := make([]model.TimedReminder, 0)
	for _, r := range all {
		if r.TriggerAt.After(now) {
			continue
		}
		s.deps.Notifier.SpeakDialog(ctx, notify.DialogReminding, notify.Vars{"reminder": r.Label})
		if pingErr := s.pinger.Ping(ctx, "Reminder", r.Label); pingErr != nil {
			s.deps.Log.Warn("desktop notification failed", zap.String("label", r.Label), zap.Error(pingErr))
		}
		due = append(due, r)
	}
	if len(due) == 0 {
		return 0, nil
	}
	s.deps.Metrics.Fired.Add(float64(len(due)))
	s.deps.Log.Info("reminders fired", zap.Int("count", len(due)))
	return len(due), s.policy.Resolve(ctx, due)
}

func (s *Scanner) loop(ctx context.Context) {
	defer close(s.doneCh)

	var timer *time.Timer
	wait := time.Duration(0)
	for {
		timer = resetTimer(timer, wait)
		select {
		case <-timer.C:
			_, _ = s.Scan(ctx, s.deps.Now())
			wait = s.interval
		case <-s.stopCh:
			stopTimer(timer)
			return
		case <-ctx.Done():
			stopTimer(timer)
			return
		}
	}
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
