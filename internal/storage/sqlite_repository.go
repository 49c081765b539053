package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("enable wal: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// OpenSQLite opens the database at path and applies pending migrations.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer; sqlite serializes anyway and this keeps busy errors away
	db.SetMaxOpenConns(1)
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) CreateTimed(ctx context.Context, in TimedReminder) (TimedReminder, error) {
	return insertTimed(ctx, r.db, in)
}

func (r *SQLiteRepository) GetTimed(ctx context.Context, id string) (TimedReminder, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT seq, id, label, trigger_at, pre_notify_at, repeat_count, created_at
		FROM timed_reminders WHERE id = ?`, id)
	item, err := scanTimed(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TimedReminder{}, ErrNotFound
		}
		return TimedReminder{}, err
	}
	return item, nil
}

func (r *SQLiteRepository) ListTimed(ctx context.Context, filter TimedListFilter) ([]TimedReminder, error) {
	query := `SELECT seq, id, label, trigger_at, pre_notify_at, repeat_count, created_at FROM timed_reminders`
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if filter.Label != "" {
		clauses = append(clauses, "label = ?")
		args = append(args, filter.Label)
	}
	if filter.TriggerAt != "" {
		clauses = append(clauses, "trigger_at = ?")
		args = append(args, filter.TriggerAt)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY seq ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]TimedReminder, 0)
	for rows.Next() {
		item, scanErr := scanTimed(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteTimed(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM timed_reminders WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteTimedBatch(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin delete batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	removed := 0
	for _, id := range ids {
		res, execErr := tx.ExecContext(ctx, `DELETE FROM timed_reminders WHERE id = ?`, id)
		if execErr != nil {
			return 0, fmt.Errorf("delete timed reminder %s: %w", id, execErr)
		}
		n, _ := res.RowsAffected()
		removed += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete batch: %w", err)
	}
	return removed, nil
}

// ReplaceTimed deletes oldID and appends next in one transaction. The new row
// gets a fresh sequence number, so it sorts after every existing reminder.
func (r *SQLiteRepository) ReplaceTimed(ctx context.Context, oldID string, next TimedReminder) (TimedReminder, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return TimedReminder{}, fmt.Errorf("begin replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM timed_reminders WHERE id = ?`, oldID)
	if err != nil {
		return TimedReminder{}, err
	}
	if err := checkRowsAffected(res); err != nil {
		return TimedReminder{}, err
	}
	out, err := insertTimed(ctx, tx, next)
	if err != nil {
		return TimedReminder{}, err
	}
	if err := tx.Commit(); err != nil {
		return TimedReminder{}, fmt.Errorf("commit replace: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) ClearTimed(ctx context.Context) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM timed_reminders`)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (r *SQLiteRepository) CreateUntimed(ctx context.Context, in UntimedReminder) (UntimedReminder, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO untimed_reminders (id, label, created_at)
		VALUES (?, ?, ?)`,
		in.ID, in.Label, mustTime(in.CreatedAt),
	)
	if err != nil {
		return UntimedReminder{}, err
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return UntimedReminder{}, err
	}
	in.Seq = seq
	return in, nil
}

func (r *SQLiteRepository) ListUntimed(ctx context.Context, filter UntimedListFilter) ([]UntimedReminder, error) {
	query := `SELECT seq, id, label, created_at FROM untimed_reminders`
	args := make([]any, 0, 3)
	if filter.Label != "" {
		query += ` WHERE label = ?`
		args = append(args, filter.Label)
	}
	query += ` ORDER BY seq ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]UntimedReminder, 0)
	for rows.Next() {
		item, scanErr := scanUntimed(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteUntimed(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM untimed_reminders WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ClearUntimed(ctx context.Context) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM untimed_reminders`)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTimed(ctx context.Context, db execer, in TimedReminder) (TimedReminder, error) {
	res, err := db.ExecContext(ctx, `
		INSERT INTO timed_reminders (id, label, trigger_at, pre_notify_at, repeat_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		in.ID, in.Label, in.TriggerAt, nullString(in.PreNotifyAt), in.RepeatCount, mustTime(in.CreatedAt),
	)
	if err != nil {
		return TimedReminder{}, err
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return TimedReminder{}, err
	}
	in.Seq = seq
	return in, nil
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	} else if offset > 0 {
		sql += " LIMIT -1"
	}
	if offset > 0 {
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTimed(s scanner) (TimedReminder, error) {
	var out TimedReminder
	var pre sql.NullString
	var created string
	if err := s.Scan(&out.Seq, &out.ID, &out.Label, &out.TriggerAt, &pre, &out.RepeatCount, &created); err != nil {
		return TimedReminder{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return TimedReminder{}, err
	}
	out.CreatedAt = createdAt
	if pre.Valid {
		out.PreNotifyAt = pre.String
	}
	return out, nil
}

func scanUntimed(s scanner) (UntimedReminder, error) {
	var out UntimedReminder
	var created string
	if err := s.Scan(&out.Seq, &out.ID, &out.Label, &created); err != nil {
		return UntimedReminder{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return UntimedReminder{}, err
	}
	out.CreatedAt = createdAt
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
