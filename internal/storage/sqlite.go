package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLiteSlot stores values in the save_slots table created by the db
// migrations.
type SQLiteSlot struct {
	db     *sql.DB
	ownsDB bool
}

// NewSQLiteSlot wraps an open database whose schema is already migrated.
// The caller keeps ownership of db.
func NewSQLiteSlot(db *sql.DB) *SQLiteSlot {
	return &SQLiteSlot{db: db}
}

func (s *SQLiteSlot) Get(ctx context.Context, key string) (string, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM save_slots WHERE slot_key = ?`, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read slot: %w", err)
	}
	return payload, nil
}

func (s *SQLiteSlot) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO save_slots (slot_key, payload, updated_at)
VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
ON CONFLICT (slot_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write slot: %w", err)
	}
	return nil
}

func (s *SQLiteSlot) CompareAndSwap(ctx context.Context, key string, old *string, value string) error {
	var (
		res sql.Result
		err error
	)
	if old == nil {
		res, err = s.db.ExecContext(ctx, `INSERT INTO save_slots (slot_key, payload, updated_at)
VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
ON CONFLICT (slot_key) DO NOTHING`, key, value)
	} else {
		res, err = s.db.ExecContext(ctx, `UPDATE save_slots
SET payload = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
WHERE slot_key = ? AND payload = ?`, value, key, *old)
	}
	if err != nil {
		return fmt.Errorf("failed to swap slot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

func (s *SQLiteSlot) Close() error {
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}
