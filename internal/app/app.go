// Package app assembles the reminder engine from a Config and runs it behind
// either the terminal UI or a plain line console.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sandeepkv93/remindd/internal/commands"
	"github.com/sandeepkv93/remindd/internal/config"
	"github.com/sandeepkv93/remindd/internal/interpret"
	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/notify"
	"github.com/sandeepkv93/remindd/internal/registry"
	"github.com/sandeepkv93/remindd/internal/reminders"
	"github.com/sandeepkv93/remindd/internal/scheduler"
	"github.com/sandeepkv93/remindd/internal/storage"
	"github.com/sandeepkv93/remindd/internal/views"
)

const shutdownTimeout = 5 * time.Second

// Options carry what New cannot derive from the config.
type Options struct {
	Config *config.Config
	Log    *zap.Logger
	// Conversation is where spoken lines go and answers come from.
	Conversation notify.Conversation
	// Bus receives handler and spoke events. A fresh bus is created when nil.
	Bus *notify.Bus
	// Repository overrides the SQLite database named in the config.
	Repository storage.Repository
	// Pinger overrides the desktop notifier chosen by the config.
	Pinger notify.Pinger
	Now    func() time.Time
}

// App is one running engine. It implements the console backend.
type App struct {
	cfg     *config.Config
	log     *zap.Logger
	now     func() time.Time
	lock    sync.Mutex
	closers []func() error

	promReg  *prometheus.Registry
	metrics  *scheduler.Metrics
	store    *reminders.Store
	registry *registry.Registry
	bus      *notify.Bus
	voice    *notify.Voice

	scanner     *scheduler.Scanner
	prenotifier *scheduler.PreNotifier
	surface     *commands.Surface
	parser      *commands.Parser
}

func New(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	clock, err := cfg.Schedule.DefaultClock()
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:      cfg,
		log:      opts.Log,
		now:      opts.Now,
		bus:      opts.Bus,
		registry: registry.New(),
		promReg:  prometheus.NewRegistry(),
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.bus == nil {
		a.bus = notify.NewBus()
	}
	a.promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = scheduler.NewMetrics(a.promReg)

	repo := opts.Repository
	if repo == nil {
		sqlite, err := storage.OpenSQLite(cfg.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		a.closers = append(a.closers, sqlite.Close)
		repo = sqlite
	}

	a.store, err = reminders.NewStore(repo,
		reminders.WithLogger(a.log.Named("store")),
		reminders.WithClock(a.now),
		reminders.WithMalformedHook(func(string, error) {
			a.metrics.MalformedRecords.Inc()
		}),
	)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	conv := opts.Conversation
	if conv == nil {
		conv = notify.NewLine(strings.NewReader(""), io.Discard)
	}
	a.voice = notify.NewVoice(conv, notify.EnglishDialogs(), a.bus,
		notify.WithPromptTimeout(cfg.Prompt.Timeout),
		notify.WithPromptAttempts(cfg.Prompt.MaxAttempts),
		notify.WithVoiceLogger(a.log.Named("voice")),
	)

	deps := scheduler.Deps{
		Lock:     &a.lock,
		Store:    a.store,
		Registry: a.registry,
		Notifier: a.voice,
		Log:      a.log.Named("scheduler"),
		Metrics:  a.metrics,
		Now:      a.now,
	}
	policy := scheduler.NewEscalationPolicy(deps, cfg.Escalation.Interval, cfg.Escalation.MaxAnnouncements)

	pinger := opts.Pinger
	if pinger == nil {
		if cfg.Desktop.Notifications {
			pinger = notify.NewDesktop()
		} else {
			pinger = notify.NoopPinger{}
		}
	}
	a.scanner = scheduler.NewScanner(deps, policy, cfg.Scheduler.ScanInterval).WithPinger(pinger)

	a.prenotifier = scheduler.NewPreNotifier(deps, cfg.PreNotify.ArmDelay, cfg.PreNotify.CheckDelay, cfg.PreNotify.HandlerName)
	a.prenotifier.Attach(a.bus)

	interp := interpret.English{}
	a.surface = commands.NewSurface(commands.SurfaceDeps{
		Lock:        &a.lock,
		Store:       a.store,
		Registry:    a.registry,
		Notifier:    a.voice,
		Interpreter: interp,
		Bus:         a.bus,
		Log:         a.log.Named("commands"),
		Now:         a.now,
		Active:      a.metrics.Active,
	}, commands.Settings{
		QuietHours:    cfg.Schedule.QuietHours,
		DefaultTime:   clock,
		Locale:        cfg.Schedule.Locale,
		SnoozeDefault: cfg.Snooze.Default,
		MaxAttempts:   cfg.Prompt.MaxAttempts,
		HandlerName:   cfg.PreNotify.HandlerName,
	})
	a.parser = commands.NewParser(interp, cfg.Schedule.Locale, clock, a.now)
	return a, nil
}

func (a *App) Bus() *notify.Bus { return a.bus }

func (a *App) Notifier() notify.Notifier { return a.voice }

func (a *App) Surface() *commands.Surface { return a.surface }

// Gatherer exposes the engine metrics, including the Go runtime collectors.
func (a *App) Gatherer() prometheus.Gatherer { return a.promReg }

// Execute parses one utterance and runs the matching operation.
func (a *App) Execute(ctx context.Context, input string) (commands.Result, error) {
	cmd, err := a.parser.Parse(input)
	if err != nil {
		return commands.Result{}, err
	}
	a.log.Debug("command parsed", zap.String("type", string(cmd.Type)), zap.String("input", input))
	return commands.Execute(ctx, cmd, a.surface.Handlers())
}

// Agenda snapshots both lists for display, timed reminders in trigger order.
func (a *App) Agenda(ctx context.Context) (views.AgendaPanelData, error) {
	a.lock.Lock()
	defer a.lock.Unlock()

	timed, err := a.store.AllTimed(ctx)
	if err != nil {
		return views.AgendaPanelData{}, err
	}
	untimed, err := a.store.AllUntimed(ctx)
	if err != nil {
		return views.AgendaPanelData{}, err
	}
	slices.SortStableFunc(timed, func(x, y model.TimedReminder) int {
		return x.TriggerAt.Compare(y.TriggerAt)
	})

	now := a.now()
	data := views.AgendaPanelData{Items: make([]views.AgendaItem, 0, len(timed))}
	for _, r := range timed {
		data.Items = append(data.Items, views.AgendaItem{
			Label:   r.Label,
			Date:    strings.TrimPrefix(notify.DateStr(r.TriggerAt, now), "on "),
			Time:    notify.NiceTime(r.TriggerAt),
			Active:  a.registry.Contains(r.Label, r.TriggerAt),
			Repeats: r.RepeatCount,
		})
	}
	for _, u := range untimed {
		data.Untimed = append(data.Untimed, u.Label)
	}
	return data, nil
}

// Scan runs one due scan immediately.
func (a *App) Scan(ctx context.Context) (int, error) {
	return a.scanner.Scan(ctx, a.now())
}

// Import appends a legacy settings document to the lists.
func (a *App) Import(ctx context.Context, r io.Reader) (reminders.ImportResult, error) {
	in, err := storage.DecodeLegacySettings(r)
	if err != nil {
		return reminders.ImportResult{}, err
	}
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.store.Import(ctx, in)
}

// Export writes both lists as a legacy settings document.
func (a *App) Export(ctx context.Context, w io.Writer) error {
	a.lock.Lock()
	out, err := a.store.Export(ctx)
	a.lock.Unlock()
	if err != nil {
		return err
	}
	return storage.EncodeLegacySettings(w, out)
}

// Run starts the scanner and, when configured, the metrics endpoint, then
// runs ui until it returns or ctx ends. Everything stops with the ui.
func (a *App) Run(ctx context.Context, ui func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.scanner.Run(gctx) })
	if a.cfg.Metrics.Addr != "" {
		g.Go(func() error { return a.serveMetrics(gctx) })
	}
	g.Go(func() error {
		defer cancel()
		return ui(gctx)
	})

	a.log.Info("engine started",
		zap.Duration("scan_interval", a.cfg.Scheduler.ScanInterval),
		zap.String("metrics_addr", a.cfg.Metrics.Addr))
	err := g.Wait()
	a.log.Info("engine stopped", zap.Error(err))
	return err
}

func (a *App) metricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.promReg, promhttp.HandlerOpts{}))
	return mux
}

func (a *App) serveMetrics(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Metrics.Addr,
		Handler:           a.metricsHandler(),
		ReadHeaderTimeout: shutdownTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	}
}

// Close stops the pre-notifier and releases the database.
func (a *App) Close() error {
	if a.prenotifier != nil {
		a.prenotifier.Close()
	}
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}
