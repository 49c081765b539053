package reminders

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sandeepkv93/remindd/internal/storage"
)

type ImportResult struct {
	Timed   int
	Untimed int
	Skipped int
}

// Import appends the reminders of a legacy settings document. Timestamps are
// stored as found; rows that later fail to decode are skipped on read rather
// than rejected here, so nothing from the old file is lost.
func (s *Store) Import(ctx context.Context, in storage.LegacySettings) (ImportResult, error) {
	var res ImportResult
	now := s.now()
	for _, t := range in.Timed {
		if strings.TrimSpace(t.Label) == "" || strings.TrimSpace(t.TriggerAt) == "" {
			res.Skipped++
			continue
		}
		row := storage.TimedReminder{
			ID:          uuid.NewString(),
			Label:       t.Label,
			TriggerAt:   t.TriggerAt,
			RepeatCount: t.Repeats,
			CreatedAt:   now,
		}
		if t.Repeats == 0 {
			row.PreNotifyAt = t.PreNotifyAt
		}
		if _, err := s.repo.CreateTimed(ctx, row); err != nil {
			return res, fmt.Errorf("import timed reminder %q: %w", t.Label, err)
		}
		res.Timed++
	}
	for _, label := range in.Untimed {
		if strings.TrimSpace(label) == "" {
			res.Skipped++
			continue
		}
		if _, err := s.repo.CreateUntimed(ctx, storage.UntimedReminder{
			ID:        uuid.NewString(),
			Label:     label,
			CreatedAt: now,
		}); err != nil {
			return res, fmt.Errorf("import untimed reminder %q: %w", label, err)
		}
		res.Untimed++
	}
	s.log.Info("imported legacy settings",
		zap.Int("timed", res.Timed),
		zap.Int("untimed", res.Untimed),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

// Export renders both lists in the legacy settings shape, including rows
// whose timestamps cannot be decoded.
func (s *Store) Export(ctx context.Context) (storage.LegacySettings, error) {
	timed, err := s.repo.ListTimed(ctx, storage.TimedListFilter{})
	if err != nil {
		return storage.LegacySettings{}, fmt.Errorf("export timed reminders: %w", err)
	}
	untimed, err := s.repo.ListUntimed(ctx, storage.UntimedListFilter{})
	if err != nil {
		return storage.LegacySettings{}, fmt.Errorf("export untimed reminders: %w", err)
	}
	out := storage.LegacySettings{
		Timed:   make([]storage.LegacyTimed, 0, len(timed)),
		Untimed: make([]string, 0, len(untimed)),
	}
	for _, row := range timed {
		out.Timed = append(out.Timed, storage.LegacyTimed{
			Label:       row.Label,
			TriggerAt:   row.TriggerAt,
			PreNotifyAt: row.PreNotifyAt,
			Repeats:     row.RepeatCount,
		})
	}
	for _, row := range untimed {
		out.Untimed = append(out.Untimed, row.Label)
	}
	return out, nil
}
