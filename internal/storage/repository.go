package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

// Repository persists both reminder lists. List calls return rows in
// insertion order.
type Repository interface {
	CreateTimed(ctx context.Context, in TimedReminder) (TimedReminder, error)
	GetTimed(ctx context.Context, id string) (TimedReminder, error)
	ListTimed(ctx context.Context, filter TimedListFilter) ([]TimedReminder, error)
	DeleteTimed(ctx context.Context, id string) error
	DeleteTimedBatch(ctx context.Context, ids []string) (int, error)
	ReplaceTimed(ctx context.Context, oldID string, next TimedReminder) (TimedReminder, error)
	ClearTimed(ctx context.Context) (int, error)

	CreateUntimed(ctx context.Context, in UntimedReminder) (UntimedReminder, error)
	ListUntimed(ctx context.Context, filter UntimedListFilter) ([]UntimedReminder, error)
	DeleteUntimed(ctx context.Context, id string) error
	ClearUntimed(ctx context.Context) (int, error)
}
