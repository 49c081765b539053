package commands

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/sandeepkv93/remindd/internal/interpret"
	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/notify"
	"github.com/sandeepkv93/remindd/internal/registry"
	"github.com/sandeepkv93/remindd/internal/reminders"
)

// ErrAmbiguousMatch is returned when an answer does not pick exactly one of
// several candidates.
var ErrAmbiguousMatch = errors.New("commands: answer matched no candidate")

// Settings tune the user-facing operations.
type Settings struct {
	QuietHours    []int
	DefaultTime   interpret.Clock
	Locale        string
	SnoozeDefault time.Duration
	MaxAttempts   int
	// HandlerName prefixes the handler events published for every
	// operation, e.g. "remindd:CancelActive".
	HandlerName string
}

func (s Settings) withDefaults() Settings {
	if s.SnoozeDefault <= 0 {
		s.SnoozeDefault = 15 * time.Minute
	}
	if s.MaxAttempts <= 0 {
		s.MaxAttempts = 3
	}
	if s.HandlerName == "" {
		s.HandlerName = "remindd"
	}
	if s.Locale == "" {
		s.Locale = "en-us"
	}
	return s
}

type SurfaceDeps struct {
	Lock        sync.Locker
	Store       *reminders.Store
	Registry    *registry.Registry
	Notifier    notify.Notifier
	Interpreter interpret.Interpreter
	Bus         *notify.Bus
	Log         *zap.Logger
	Now         func() time.Time
	// Active, when set, tracks the number of cancelable reminders.
	Active prometheus.Gauge
}

// Surface holds the user-facing reminder operations. Every operation runs
// under the engine lock shared with the scanner and announces itself on the
// bus.
type Surface struct {
	lock     sync.Locker
	store    *reminders.Store
	reg      *registry.Registry
	n        notify.Notifier
	interp   interpret.Interpreter
	bus      *notify.Bus
	log      *zap.Logger
	now      func() time.Time
	active   prometheus.Gauge
	settings Settings
}

func NewSurface(deps SurfaceDeps, settings Settings) *Surface {
	s := &Surface{
		lock:     deps.Lock,
		store:    deps.Store,
		reg:      deps.Registry,
		n:        deps.Notifier,
		interp:   deps.Interpreter,
		bus:      deps.Bus,
		log:      deps.Log,
		now:      deps.Now,
		active:   deps.Active,
		settings: settings.withDefaults(),
	}
	if s.lock == nil {
		s.lock = &sync.Mutex{}
	}
	if s.reg == nil {
		s.reg = registry.New()
	}
	if s.interp == nil {
		s.interp = interpret.English{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Handlers binds the surface to the command dispatcher.
func (s *Surface) Handlers() Handlers {
	return Handlers{
		AddAt: func(ctx context.Context, a AddArgs) (Result, error) {
			ok, err := s.AddTimedReminder(ctx, a.Label, a.At)
			return result(ok, "reminder saved", "reminder not saved"), err
		},
		AddUnspecified: func(ctx context.Context, a LabelArgs) (Result, error) {
			ok, err := s.AddReminderInteractive(ctx, a.Label)
			return result(ok, "reminder saved", "reminder not saved"), err
		},
		AddTimeOnly: func(ctx context.Context, a TimeArgs) (Result, error) {
			ok, err := s.AddTimeOnly(ctx, a.At)
			return result(ok, "reminder saved", "reminder not saved"), err
		},
		DeleteForDay: func(ctx context.Context, a DayArgs) (Result, error) {
			n, err := s.RemoveForDate(ctx, a.Day)
			return result(n > 0, fmt.Sprintf("removed %d reminders", n), "nothing removed"), err
		},
		DeleteByName: func(ctx context.Context, a LabelArgs) (Result, error) {
			ok, err := s.DeleteByName(ctx, a.Label)
			return result(ok, "reminder removed", "nothing removed"), err
		},
		ListForDay: func(ctx context.Context, a DayArgs) (Result, error) {
			n, err := s.ListForDate(ctx, a.Day)
			return result(n > 0, fmt.Sprintf("%d reminders", n), "no reminders"), err
		},
		NextUpcoming: func(ctx context.Context) (Result, error) {
			ok, err := s.NextUpcoming(ctx)
			return result(ok, "next reminder", "no reminders"), err
		},
		ListUntimed: func(ctx context.Context) (Result, error) {
			n, err := s.ListUntimed(ctx)
			return result(n > 0, fmt.Sprintf("%d on the list", n), "the list is empty"), err
		},
		CancelActive: func(ctx context.Context) (Result, error) {
			ok, err := s.CancelActive(ctx)
			return result(ok, "canceled", "nothing to cancel"), err
		},
		SnoozeActive: func(ctx context.Context, a SnoozeArgs) (Result, error) {
			n, err := s.SnoozeActive(ctx, a.For)
			return result(n > 0, fmt.Sprintf("snoozed %d", n), "nothing to snooze"), err
		},
		ClearAll: func(ctx context.Context) (Result, error) {
			ok, err := s.ClearAll(ctx)
			return result(ok, "cleared", "nothing cleared"), err
		},
		Stop: func(ctx context.Context) (Result, error) {
			ok, err := s.Stop(ctx)
			return result(ok, "stopped", "nothing to stop"), err
		},
	}
}

func result(ok bool, yes, no string) Result {
	if ok {
		return Result{Message: yes, OK: true}
	}
	return Result{Message: no}
}

func (s *Surface) handle(ctx context.Context, op string, fn func(context.Context) error) error {
	handler := s.settings.HandlerName + ":" + op
	s.bus.Publish(notify.Event{Type: notify.EventHandlerStart, Handler: handler})
	defer s.bus.Publish(notify.Event{Type: notify.EventHandlerComplete, Handler: handler})

	s.lock.Lock()
	defer s.lock.Unlock()

	err := fn(ctx)
	if s.active != nil {
		s.active.Set(float64(s.reg.Len()))
	}
	if err != nil {
		s.log.Error("command failed", zap.String("handler", handler), zap.Error(err))
		return err
	}
	return nil
}

// AddTimedReminder saves label at the given time after the quiet-hours and
// same-time checks. It reports whether a reminder was saved.
func (s *Surface) AddTimedReminder(ctx context.Context, label string, at time.Time) (bool, error) {
	var saved bool
	err := s.handle(ctx, "AddTimedReminder", func(ctx context.Context) error {
		var err error
		saved, err = s.addTimed(ctx, label, at)
		return err
	})
	return saved, err
}

// AddReminderInteractive asks whether label needs a time. With a time it
// goes through the timed path; otherwise it lands on the untimed list.
func (s *Surface) AddReminderInteractive(ctx context.Context, label string) (bool, error) {
	var saved bool
	err := s.handle(ctx, "AddReminderInteractive", func(ctx context.Context) error {
		var err error
		saved, err = s.addInteractive(ctx, label)
		return err
	})
	return saved, err
}

// AddTimeOnly asks what to be reminded about at the given time.
func (s *Surface) AddTimeOnly(ctx context.Context, at time.Time) (bool, error) {
	var saved bool
	err := s.handle(ctx, "AddTimeOnly", func(ctx context.Context) error {
		resp, ok := s.n.GetResponse(ctx, notify.DialogAboutWhat, nil, nonEmpty)
		if !ok {
			return nil
		}
		var err error
		saved, err = s.addTimed(ctx, CleanLabel(resp), at)
		return err
	})
	return saved, err
}

func (s *Surface) addTimed(ctx context.Context, label string, at time.Time) (bool, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return false, nil
	}
	if at.IsZero() {
		s.n.SpeakDialog(ctx, notify.DialogNoDateTime, nil)
		return false, nil
	}
	at = at.Truncate(time.Second)

	if slices.Contains(s.settings.QuietHours, at.Hour()) {
		s.n.SpeakDialog(ctx, notify.DialogItIsNight, nil)
		if s.n.AskYesNo(ctx, notify.DialogAreYouSure, nil) != notify.AnswerYes {
			return false, nil
		}
	}

	conflicts, err := s.store.FindTimedDuplicates(ctx, label, &at)
	if err != nil {
		return false, err
	}
	if len(conflicts) > 0 {
		s.n.SpeakDialog(ctx, notify.DialogConflictAtTime, notify.Vars{
			"reminder": conflicts[0].Label,
			"time":     notify.NiceTime(at),
		})
		if s.n.AskYesNo(ctx, notify.DialogAddAnyway, nil) != notify.AnswerYes {
			return false, nil
		}
	}

	s.n.SpeakDialog(ctx, notify.DialogSavingReminderDate, notify.Vars{
		"date": notify.DateStr(at, s.now()),
		"time": notify.NiceTime(at),
	})

	pre := at
	if s.n.AskYesNo(ctx, notify.DialogPreNotify, nil) == notify.AnswerYes {
		resp, ok := s.n.GetResponse(ctx, notify.DialogPreNotifyMinutes, nil, s.minutesValidator)
		if ok {
			mins, _ := s.interp.ExtractNumber(resp, s.settings.Locale)
			pre = at.Add(-time.Duration(mins * float64(time.Minute))).Truncate(time.Second)
		}
	}

	if _, err := s.store.AddTimed(ctx, model.TimedReminder{Label: label, TriggerAt: at, PreNotifyAt: &pre}); err != nil {
		return false, err
	}
	s.log.Info("reminder saved", zap.String("label", label), zap.Time("trigger_at", at))
	return true, nil
}

func (s *Surface) addInteractive(ctx context.Context, label string) (bool, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return false, nil
	}

	resp, ok := s.n.GetResponse(ctx, notify.DialogParticularTime, nil, nil)
	if ok && (notify.IsAffirmative(resp) || s.hasDateTime(resp)) {
		at, found := s.extractDateTime(resp)
		for attempt := 0; !found && attempt < s.settings.MaxAttempts; attempt++ {
			next, ok := s.n.GetResponse(ctx, notify.DialogSpecifyTime, nil, nil)
			if !ok {
				break
			}
			at, found = s.extractDateTime(next)
		}
		if !found {
			s.n.SpeakDialog(ctx, notify.DialogNoDateTime, nil)
			return false, nil
		}
		return s.addTimed(ctx, label, at)
	}

	dups, err := s.store.FindUntimedDuplicates(ctx, label)
	if err != nil {
		return false, err
	}
	if len(dups) > 0 {
		answer, ok := s.n.GetResponse(ctx, notify.DialogUntimedAlreadyExists, notify.Vars{"reminder": label}, nil)
		if !ok || !notify.IsAffirmative(answer) {
			return false, nil
		}
		renamed, ok := s.n.GetResponse(ctx, notify.DialogSpecify, nil, nonEmpty)
		if !ok {
			return false, nil
		}
		label = CleanLabel(renamed)
		if label == "" {
			return false, nil
		}
	}

	if _, err := s.store.AddUntimed(ctx, model.UntimedReminder{Label: label}); err != nil {
		return false, err
	}
	s.n.SpeakDialog(ctx, notify.DialogSavingUntimed, notify.Vars{"reminder": label})
	return true, nil
}

// DeleteByName removes one reminder called label. When several timed
// reminders share the label the user picks one by date.
func (s *Surface) DeleteByName(ctx context.Context, label string) (bool, error) {
	var removed bool
	err := s.handle(ctx, "DeleteByName", func(ctx context.Context) error {
		var err error
		if s.n.AskYesNo(ctx, notify.DialogClearEntryWhichList, nil) == notify.AnswerYes {
			removed, err = s.deleteTimedByName(ctx, label)
		} else {
			removed, err = s.deleteUntimedByName(ctx, label)
		}
		return err
	})
	return removed, err
}

func (s *Surface) deleteTimedByName(ctx context.Context, label string) (bool, error) {
	matches, err := s.store.FindTimedDuplicates(ctx, label, nil)
	if err != nil {
		return false, err
	}
	if len(matches) == 0 {
		s.n.SpeakDialog(ctx, notify.DialogNoActive, nil)
		return false, nil
	}

	target := matches[0]
	if len(matches) > 1 {
		target, err = s.pickByDate(ctx, matches)
		if errors.Is(err, ErrAmbiguousMatch) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
	}

	ok, err := s.store.RemoveByNameAndTime(ctx, target.Label, target.TriggerAt)
	if err != nil || !ok {
		return false, err
	}
	s.reg.Remove(target.Label, target.TriggerAt)
	s.n.SpeakDialog(ctx, notify.DialogReminderDeleted, notify.Vars{"reminder": target.Label})
	return true, nil
}

// pickByDate asks which of matches to use. A date in the answer is matched
// by calendar day; otherwise the answer must appear as whole words in
// exactly one spoken date.
func (s *Surface) pickByDate(ctx context.Context, matches []model.TimedReminder) (model.TimedReminder, error) {
	now := s.now()
	dates := make([]string, len(matches))
	for i, m := range matches {
		dates[i] = notify.NiceDate(m.TriggerAt, now)
	}
	resp, ok := s.n.GetResponse(ctx, notify.DialogMultipleEntries, notify.Vars{
		"reminder": notify.JoinList(dates, "and"),
	}, nonEmpty)
	if !ok {
		return model.TimedReminder{}, ErrAmbiguousMatch
	}

	if day, _, found := s.interp.ExtractDateTime(resp, now, s.settings.Locale, nil); found {
		var picked []model.TimedReminder
		for _, m := range matches {
			if m.SameDate(day) {
				picked = append(picked, m)
			}
		}
		if len(picked) > 0 {
			return onlyOne(picked)
		}
	}

	answer := strings.Fields(normalizeDate(resp))
	var picked []model.TimedReminder
	for i, m := range matches {
		if containsPhrase(strings.Fields(normalizeDate(dates[i])), answer) {
			picked = append(picked, m)
		}
	}
	return onlyOne(picked)
}

func onlyOne(picked []model.TimedReminder) (model.TimedReminder, error) {
	if len(picked) != 1 {
		return model.TimedReminder{}, ErrAmbiguousMatch
	}
	return picked[0], nil
}

func normalizeDate(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, ",", " "))
}

// containsPhrase reports whether phrase occurs in words as whole,
// consecutive words.
func containsPhrase(words, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(words) {
		return false
	}
	for i := 0; i+len(phrase) <= len(words); i++ {
		if slices.Equal(words[i:i+len(phrase)], phrase) {
			return true
		}
	}
	return false
}

func (s *Surface) deleteUntimedByName(ctx context.Context, label string) (bool, error) {
	ok, err := s.store.RemoveUntimedByName(ctx, label)
	if err != nil {
		return false, err
	}
	if !ok {
		s.n.SpeakDialog(ctx, notify.DialogNoActive, nil)
		return false, nil
	}
	s.n.SpeakDialog(ctx, notify.DialogReminderDeleted, notify.Vars{"reminder": label})
	return true, nil
}

// RemoveForDate removes every timed reminder on day's calendar date after
// the user confirms. It returns how many were removed.
func (s *Surface) RemoveForDate(ctx context.Context, day time.Time) (int, error) {
	var removed int
	err := s.handle(ctx, "RemoveForDate", func(ctx context.Context) error {
		date := notify.DateStr(day, s.now())
		onDay, err := s.store.ListForDate(ctx, day)
		if err != nil {
			return err
		}
		if len(onDay) == 0 {
			s.n.SpeakDialog(ctx, notify.DialogNoRemindersForDate, notify.Vars{"date": date})
			return nil
		}
		if s.n.AskYesNo(ctx, notify.DialogConfirmRemoveDay, notify.Vars{"date": date}) != notify.AnswerYes {
			return nil
		}
		gone, err := s.store.RemoveTimedWhere(ctx, func(r model.TimedReminder) bool { return r.SameDate(day) })
		if err != nil {
			return err
		}
		for _, r := range gone {
			s.reg.Remove(r.Label, r.TriggerAt)
		}
		removed = len(gone)
		s.n.SpeakDialog(ctx, notify.DialogRemovedForDate, notify.Vars{
			"count": strconv.Itoa(removed),
			"date":  date,
		})
		return nil
	})
	return removed, err
}

// ListForDate speaks the reminders on day's calendar date, earliest first.
func (s *Surface) ListForDate(ctx context.Context, day time.Time) (int, error) {
	var count int
	err := s.handle(ctx, "ListForDate", func(ctx context.Context) error {
		onDay, err := s.store.ListForDate(ctx, day)
		if err != nil {
			return err
		}
		if len(onDay) == 0 {
			s.n.SpeakDialog(ctx, notify.DialogNoUpcoming, nil)
			return nil
		}
		slices.SortStableFunc(onDay, byTrigger)
		for _, r := range onDay {
			s.n.SpeakDialog(ctx, notify.DialogReminderAt, notify.Vars{
				"reminder": r.Label,
				"time":     notify.NiceTime(r.TriggerAt),
			})
		}
		count = len(onDay)
		return nil
	})
	return count, err
}

// NextUpcoming speaks the reminder with the earliest trigger time.
func (s *Surface) NextUpcoming(ctx context.Context) (bool, error) {
	var found bool
	err := s.handle(ctx, "NextUpcoming", func(ctx context.Context) error {
		all, err := s.store.AllTimed(ctx)
		if err != nil {
			return err
		}
		if len(all) == 0 {
			s.n.SpeakDialog(ctx, notify.DialogNoUpcoming, nil)
			return nil
		}
		slices.SortStableFunc(all, byTrigger)
		next := all[0]
		s.n.SpeakDialog(ctx, notify.DialogNextOtherDate, notify.Vars{
			"reminder": next.Label,
			"date":     notify.DateStr(next.TriggerAt, s.now()),
			"time":     notify.NiceTime(next.TriggerAt),
		})
		found = true
		return nil
	})
	return found, err
}

// ListUntimed speaks the untimed list in one sentence.
func (s *Surface) ListUntimed(ctx context.Context) (int, error) {
	var count int
	err := s.handle(ctx, "ListUntimed", func(ctx context.Context) error {
		all, err := s.store.AllUntimed(ctx)
		if err != nil {
			return err
		}
		if len(all) == 0 {
			s.n.SpeakDialog(ctx, notify.DialogNoActive, nil)
			return nil
		}
		labels := make([]string, len(all))
		for i, r := range all {
			labels[i] = r.Label
		}
		s.n.SpeakDialog(ctx, notify.DialogUntimedReminder, notify.Vars{"reminder": notify.JoinList(labels, "and")})
		count = len(all)
		return nil
	})
	return count, err
}

// CancelActive removes every reminder that is still cancelable.
func (s *Surface) CancelActive(ctx context.Context) (bool, error) {
	var canceled bool
	err := s.handle(ctx, "CancelActive", func(ctx context.Context) error {
		var err error
		canceled, err = s.cancelActive(ctx)
		if err != nil {
			return err
		}
		if canceled {
			s.n.SpeakDialog(ctx, notify.DialogReminderCancelled, nil)
		} else {
			s.n.SpeakDialog(ctx, notify.DialogNothingToCancel, nil)
		}
		return nil
	})
	return canceled, err
}

// Stop is CancelActive without the "nothing to cancel" reply, so a generic
// stop request can fall through to other handlers.
func (s *Surface) Stop(ctx context.Context) (bool, error) {
	var canceled bool
	err := s.handle(ctx, "Stop", func(ctx context.Context) error {
		var err error
		canceled, err = s.cancelActive(ctx)
		if canceled {
			s.n.SpeakDialog(ctx, notify.DialogReminderCancelled, nil)
		}
		return err
	})
	return canceled, err
}

func (s *Surface) cancelActive(ctx context.Context) (bool, error) {
	entries := s.reg.Entries()
	if len(entries) == 0 {
		return false, nil
	}
	canceled := false
	var errs []error
	for _, e := range entries {
		// Snoozed reminders of one label share a single entry.
		for {
			ok, err := s.store.RemoveByNameAndTime(ctx, e.Label, e.TriggerAt)
			if err != nil {
				errs = append(errs, err)
				break
			}
			if !ok {
				break
			}
			canceled = true
		}
		s.reg.Remove(e.Label, e.TriggerAt)
	}
	return canceled, errors.Join(errs...)
}

// SnoozeActive moves every cancelable reminder to now+delta with a fresh
// escalation budget. A non-positive delta means the configured default.
func (s *Surface) SnoozeActive(ctx context.Context, delta time.Duration) (int, error) {
	var snoozed int
	err := s.handle(ctx, "SnoozeActive", func(ctx context.Context) error {
		if delta <= 0 {
			delta = s.settings.SnoozeDefault
		}
		next := s.now().Add(delta).Truncate(time.Second)

		var errs []error
		for _, e := range s.reg.Entries() {
			r, ok, err := s.store.FindTimed(ctx, e.Label, e.TriggerAt)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if !ok {
				continue
			}
			if _, err := s.store.Replace(ctx, r, model.TimedReminder{Label: r.Label, TriggerAt: next}); err != nil {
				errs = append(errs, err)
				continue
			}
			s.reg.Move(e.Label, e.TriggerAt, next)
			s.n.SpeakDialog(ctx, notify.DialogRemindingIn, notify.Vars{"time": notify.NiceTime(next)})
			snoozed++
		}
		if snoozed == 0 && len(errs) == 0 {
			s.n.SpeakDialog(ctx, notify.DialogNoActive, nil)
		}
		return errors.Join(errs...)
	})
	return snoozed, err
}

// ClearAll wipes one of the two lists. Yes clears the timed reminders, no
// clears the untimed list, and no answer clears nothing.
func (s *Surface) ClearAll(ctx context.Context) (bool, error) {
	var cleared bool
	err := s.handle(ctx, "ClearAll", func(ctx context.Context) error {
		switch s.n.AskYesNo(ctx, notify.DialogClearAllWhichList, nil) {
		case notify.AnswerYes:
			if _, err := s.cancelActive(ctx); err != nil {
				return err
			}
			if _, err := s.store.ClearTimed(ctx); err != nil {
				return err
			}
			s.reg.Clear()
		case notify.AnswerNo:
			if _, err := s.store.ClearUntimed(ctx); err != nil {
				return err
			}
		default:
			s.n.SpeakDialog(ctx, notify.DialogClearedNothing, nil)
			return nil
		}
		cleared = true
		s.n.SpeakDialog(ctx, notify.DialogClearedAll, nil)
		return nil
	})
	return cleared, err
}

func (s *Surface) extractDateTime(text string) (time.Time, bool) {
	at, _, ok := s.interp.ExtractDateTime(text, s.now(), s.settings.Locale, &s.settings.DefaultTime)
	return at, ok
}

func (s *Surface) hasDateTime(text string) bool {
	_, ok := s.extractDateTime(text)
	return ok
}

func (s *Surface) minutesValidator(resp string) bool {
	v, ok := s.interp.ExtractNumber(resp, s.settings.Locale)
	return ok && v >= 0
}

func nonEmpty(resp string) bool {
	return strings.TrimSpace(resp) != ""
}

func byTrigger(a, b model.TimedReminder) int {
	return a.TriggerAt.Compare(b.TriggerAt)
}
