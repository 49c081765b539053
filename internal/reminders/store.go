// Package reminders holds the timed and untimed reminder lists on top of a
// storage.Repository. Every mutation is written through immediately; there
// is no in-memory copy to flush.
package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/storage"
)

// List names one of the two reminder lists.
type List string

const (
	ListTimed   List = "timed"
	ListUntimed List = "untimed"
)

// MalformedHook is called for every stored row whose timestamps cannot be
// decoded.
type MalformedHook func(id string, err error)

type Store struct {
	repo        storage.Repository
	log         *zap.Logger
	now         func() time.Time
	onMalformed MalformedHook
}

type Option func(*Store)

func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithMalformedHook(hook MalformedHook) Option {
	return func(s *Store) { s.onMalformed = hook }
}

func NewStore(repo storage.Repository, opts ...Option) (*Store, error) {
	if repo == nil {
		return nil, errors.New("reminders: nil repository")
	}
	s := &Store{
		repo: repo,
		log:  zap.NewNop(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) AddTimed(ctx context.Context, r model.TimedReminder) (model.TimedReminder, error) {
	if err := r.Validate(); err != nil {
		return model.TimedReminder{}, err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	row, err := s.repo.CreateTimed(ctx, toTimedRow(r, s.now()))
	if err != nil {
		return model.TimedReminder{}, fmt.Errorf("add timed reminder: %w", err)
	}
	r.Seq = row.Seq
	return r, nil
}

func (s *Store) AddUntimed(ctx context.Context, r model.UntimedReminder) (model.UntimedReminder, error) {
	if err := r.Validate(); err != nil {
		return model.UntimedReminder{}, err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	row, err := s.repo.CreateUntimed(ctx, storage.UntimedReminder{
		ID:        r.ID,
		Label:     r.Label,
		CreatedAt: s.now(),
	})
	if err != nil {
		return model.UntimedReminder{}, fmt.Errorf("add untimed reminder: %w", err)
	}
	r.Seq = row.Seq
	return r, nil
}

// AllTimed returns every decodable timed reminder in insertion order.
func (s *Store) AllTimed(ctx context.Context) ([]model.TimedReminder, error) {
	return s.listTimed(ctx, storage.TimedListFilter{})
}

func (s *Store) AllUntimed(ctx context.Context) ([]model.UntimedReminder, error) {
	rows, err := s.repo.ListUntimed(ctx, storage.UntimedListFilter{})
	if err != nil {
		return nil, fmt.Errorf("list untimed reminders: %w", err)
	}
	return fromUntimedRows(rows), nil
}

// FindTimedDuplicates with a non-nil exactTime returns at most the first
// reminder scheduled at that time, whatever its label. Without exactTime it
// returns every reminder carrying label.
func (s *Store) FindTimedDuplicates(ctx context.Context, label string, exactTime *time.Time) ([]model.TimedReminder, error) {
	if exactTime != nil {
		found, err := s.listTimed(ctx, storage.TimedListFilter{TriggerAt: model.Serialize(*exactTime), Limit: 1})
		if err != nil {
			return nil, err
		}
		return found, nil
	}
	return s.listTimed(ctx, storage.TimedListFilter{Label: label})
}

func (s *Store) FindUntimedDuplicates(ctx context.Context, label string) ([]model.UntimedReminder, error) {
	rows, err := s.repo.ListUntimed(ctx, storage.UntimedListFilter{Label: label})
	if err != nil {
		return nil, fmt.Errorf("find untimed duplicates: %w", err)
	}
	return fromUntimedRows(rows), nil
}

// FindTimed returns the first reminder with the given label and trigger time.
func (s *Store) FindTimed(ctx context.Context, label string, at time.Time) (model.TimedReminder, bool, error) {
	found, err := s.listTimed(ctx, storage.TimedListFilter{Label: label, TriggerAt: model.Serialize(at)})
	if err != nil {
		return model.TimedReminder{}, false, err
	}
	if len(found) == 0 {
		return model.TimedReminder{}, false, nil
	}
	return found[0], true, nil
}

// RemoveByNameAndTime deletes the first reminder matching label and time.
func (s *Store) RemoveByNameAndTime(ctx context.Context, label string, at time.Time) (bool, error) {
	found, ok, err := s.FindTimed(ctx, label, at)
	if err != nil || !ok {
		return false, err
	}
	return s.removeTimed(ctx, found.ID)
}

// RemoveTimed deletes the reminder with the given ID.
func (s *Store) RemoveTimed(ctx context.Context, id string) (bool, error) {
	return s.removeTimed(ctx, id)
}

func (s *Store) RemoveUntimedByName(ctx context.Context, label string) (bool, error) {
	rows, err := s.repo.ListUntimed(ctx, storage.UntimedListFilter{Label: label, Limit: 1})
	if err != nil {
		return false, fmt.Errorf("find untimed reminder: %w", err)
	}
	if len(rows) == 0 {
		return false, nil
	}
	if err := s.repo.DeleteUntimed(ctx, rows[0].ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("remove untimed reminder: %w", err)
	}
	return true, nil
}

// Replace swaps old for next, keeping the reminder's identity. next is
// appended to the end of the list.
func (s *Store) Replace(ctx context.Context, old model.TimedReminder, next model.TimedReminder) (model.TimedReminder, error) {
	if err := next.Validate(); err != nil {
		return model.TimedReminder{}, err
	}
	next.ID = old.ID
	row, err := s.repo.ReplaceTimed(ctx, old.ID, toTimedRow(next, s.now()))
	if err != nil {
		return model.TimedReminder{}, fmt.Errorf("replace timed reminder %s: %w", old.ID, err)
	}
	next.Seq = row.Seq
	return next, nil
}

// RemoveTimedWhere deletes every decodable timed reminder matching pred and
// returns the removed reminders.
func (s *Store) RemoveTimedWhere(ctx context.Context, pred func(model.TimedReminder) bool) ([]model.TimedReminder, error) {
	all, err := s.AllTimed(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]model.TimedReminder, 0)
	ids := make([]string, 0)
	for _, r := range all {
		if pred(r) {
			matched = append(matched, r)
			ids = append(ids, r.ID)
		}
	}
	if len(ids) == 0 {
		return matched, nil
	}
	if _, err := s.repo.DeleteTimedBatch(ctx, ids); err != nil {
		return nil, fmt.Errorf("remove timed reminders: %w", err)
	}
	return matched, nil
}

// ListForDate returns the timed reminders that trigger on day's date.
func (s *Store) ListForDate(ctx context.Context, day time.Time) ([]model.TimedReminder, error) {
	all, err := s.AllTimed(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.TimedReminder, 0)
	for _, r := range all {
		if r.SameDate(day) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) ClearTimed(ctx context.Context) (int, error) {
	n, err := s.repo.ClearTimed(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear timed reminders: %w", err)
	}
	return n, nil
}

func (s *Store) ClearUntimed(ctx context.Context) (int, error) {
	n, err := s.repo.ClearUntimed(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear untimed reminders: %w", err)
	}
	return n, nil
}

func (s *Store) removeTimed(ctx context.Context, id string) (bool, error) {
	if err := s.repo.DeleteTimed(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("remove timed reminder %s: %w", id, err)
	}
	return true, nil
}

func (s *Store) listTimed(ctx context.Context, filter storage.TimedListFilter) ([]model.TimedReminder, error) {
	rows, err := s.repo.ListTimed(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list timed reminders: %w", err)
	}
	out := make([]model.TimedReminder, 0, len(rows))
	for _, row := range rows {
		r, decodeErr := fromTimedRow(row)
		if decodeErr != nil {
			s.log.Warn("skipping unreadable reminder",
				zap.String("id", row.ID),
				zap.String("label", row.Label),
				zap.Error(decodeErr),
			)
			if s.onMalformed != nil {
				s.onMalformed(row.ID, decodeErr)
			}
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func toTimedRow(r model.TimedReminder, now time.Time) storage.TimedReminder {
	row := storage.TimedReminder{
		ID:          r.ID,
		Label:       r.Label,
		TriggerAt:   model.Serialize(r.TriggerAt),
		RepeatCount: r.RepeatCount,
		CreatedAt:   now,
	}
	if r.PreNotifyAt != nil {
		row.PreNotifyAt = model.Serialize(*r.PreNotifyAt)
	}
	return row
}

func fromTimedRow(row storage.TimedReminder) (model.TimedReminder, error) {
	trigger, err := model.Deserialize(row.TriggerAt)
	if err != nil {
		return model.TimedReminder{}, err
	}
	out := model.TimedReminder{
		ID:          row.ID,
		Label:       row.Label,
		TriggerAt:   trigger,
		RepeatCount: row.RepeatCount,
		Seq:         row.Seq,
	}
	if row.PreNotifyAt != "" {
		pre, err := model.Deserialize(row.PreNotifyAt)
		if err != nil {
			return model.TimedReminder{}, err
		}
		out.PreNotifyAt = &pre
	}
	return out, nil
}

func fromUntimedRows(rows []storage.UntimedReminder) []model.UntimedReminder {
	out := make([]model.UntimedReminder, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.UntimedReminder{ID: row.ID, Label: row.Label, Seq: row.Seq})
	}
	return out
}
