package reminders

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/storage"
)

var pdt = time.FixedZone("PDT", -7*3600)

func newTestStore(t *testing.T, opts ...Option) (*Store, *storage.SQLiteRepository) {
	t.Helper()
	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "reminders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	store, err := NewStore(repo, opts...)
	require.NoError(t, err)
	return store, repo
}

func addTimed(t *testing.T, s *Store, label string, at time.Time) model.TimedReminder {
	t.Helper()
	r, err := s.AddTimed(context.Background(), model.TimedReminder{Label: label, TriggerAt: at, PreNotifyAt: &at})
	require.NoError(t, err)
	return r
}

func TestAddTimedAssignsIdentity(t *testing.T) {
	s, _ := newTestStore(t)
	at := time.Date(2024, 5, 1, 8, 0, 0, 0, pdt)

	first := addTimed(t, s, "call mom", at)
	second := addTimed(t, s, "call mom", at)

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Greater(t, second.Seq, first.Seq)

	all, err := s.AllTimed(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[0].TriggerAt.Equal(at))
	_, offset := all[0].TriggerAt.Zone()
	assert.Equal(t, -7*3600, offset)
	require.NotNil(t, all[0].PreNotifyAt)
}

func TestAddRejectsInvalid(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddTimed(ctx, model.TimedReminder{Label: "", TriggerAt: time.Now()})
	require.ErrorIs(t, err, model.ErrEmptyLabel)

	_, err = s.AddUntimed(ctx, model.UntimedReminder{Label: " "})
	require.ErrorIs(t, err, model.ErrEmptyLabel)
}

func TestFindTimedDuplicates(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 8, 0, 0, 0, pdt)

	addTimed(t, s, "call mom", at)
	addTimed(t, s, "dentist", at)
	addTimed(t, s, "call mom", at.Add(time.Hour))

	byLabel, err := s.FindTimedDuplicates(ctx, "call mom", nil)
	require.NoError(t, err)
	assert.Len(t, byLabel, 2)

	byTime, err := s.FindTimedDuplicates(ctx, "anything", &at)
	require.NoError(t, err)
	require.Len(t, byTime, 1)
	assert.Equal(t, "call mom", byTime[0].Label)

	none, err := s.FindTimedDuplicates(ctx, "nope", nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRemoveByNameAndTimeRemovesFirstMatchOnly(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 8, 0, 0, 0, pdt)

	first := addTimed(t, s, "call mom", at)
	second := addTimed(t, s, "call mom", at)

	ok, err := s.RemoveByNameAndTime(ctx, "call mom", at)
	require.NoError(t, err)
	assert.True(t, ok)

	left, err := s.AllTimed(ctx)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, second.ID, left[0].ID)
	assert.NotEqual(t, first.ID, left[0].ID)

	ok, err = s.RemoveByNameAndTime(ctx, "call mom", at.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReplaceKeepsIdentityAndMovesToEnd(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 8, 0, 0, 0, pdt)

	a := addTimed(t, s, "a", at)
	addTimed(t, s, "b", at)

	next, err := s.Replace(ctx, a, model.TimedReminder{Label: "a", TriggerAt: at.Add(2 * time.Minute), RepeatCount: 1})
	require.NoError(t, err)
	assert.Equal(t, a.ID, next.ID)

	all, err := s.AllTimed(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].Label)
	assert.Equal(t, "a", all[1].Label)
	assert.Equal(t, 1, all[1].RepeatCount)
	assert.Nil(t, all[1].PreNotifyAt)
}

func TestRemoveTimedWhereAndListForDate(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	day := time.Date(2024, 5, 1, 8, 0, 0, 0, pdt)

	addTimed(t, s, "a", day)
	addTimed(t, s, "b", day.Add(3*time.Hour))
	addTimed(t, s, "c", day.AddDate(0, 0, 1))

	onDay, err := s.ListForDate(ctx, day)
	require.NoError(t, err)
	assert.Len(t, onDay, 2)

	removed, err := s.RemoveTimedWhere(ctx, func(r model.TimedReminder) bool { return r.SameDate(day) })
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	left, err := s.AllTimed(ctx)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "c", left[0].Label)
}

func TestMalformedRowsAreSkipped(t *testing.T) {
	var skipped []string
	s, repo := newTestStore(t, WithMalformedHook(func(id string, err error) {
		assert.ErrorIs(t, err, model.ErrMalformedTimestamp)
		skipped = append(skipped, id)
	}))
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 8, 0, 0, 0, pdt)

	_, err := repo.CreateTimed(ctx, storage.TimedReminder{ID: "bad", Label: "broken", TriggerAt: "yesterday-ish", CreatedAt: at})
	require.NoError(t, err)
	addTimed(t, s, "good", at)

	all, err := s.AllTimed(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "good", all[0].Label)
	assert.Equal(t, []string{"bad"}, skipped)
}

func TestUntimedOperations(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, label := range []string{"buy milk", "water plants", "buy milk"} {
		_, err := s.AddUntimed(ctx, model.UntimedReminder{Label: label})
		require.NoError(t, err)
	}

	dups, err := s.FindUntimedDuplicates(ctx, "buy milk")
	require.NoError(t, err)
	assert.Len(t, dups, 2)

	ok, err := s.RemoveUntimedByName(ctx, "buy milk")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.RemoveUntimedByName(ctx, "nothing")
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := s.AllUntimed(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "water plants", all[0].Label)

	n, err := s.ClearUntimed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestImportExportLegacySettings(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	in, err := storage.DecodeLegacySettings(strings.NewReader(`{
		"timed_reminders": [
			["call mom", "20240105-080000--0700", "20240105-075000--0700"],
			["dentist", "20240105-090000--0700", 2],
			["", "20240105-090000--0700"]
		],
		"untimed_reminders": ["buy milk"]
	}`))
	require.NoError(t, err)

	res, err := s.Import(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Timed: 2, Untimed: 1, Skipped: 1}, res)

	timed, err := s.AllTimed(ctx)
	require.NoError(t, err)
	require.Len(t, timed, 2)
	require.NotNil(t, timed[0].PreNotifyAt)
	assert.Equal(t, 2, timed[1].RepeatCount)
	assert.Nil(t, timed[1].PreNotifyAt)

	out, err := s.Export(ctx)
	require.NoError(t, err)
	require.Len(t, out.Timed, 2)
	assert.Equal(t, "20240105-075000--0700", out.Timed[0].PreNotifyAt)
	assert.Equal(t, 2, out.Timed[1].Repeats)
	assert.Equal(t, []string{"buy milk"}, out.Untimed)
}
