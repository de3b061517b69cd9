package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetSlot returns the value stored under name. A missing slot is reported
// as ok=false with no error.
func (db *DB) GetSlot(ctx context.Context, name string) (value []byte, ok bool, err error) {
	err = db.db.QueryRowContext(ctx,
		`SELECT value FROM slots WHERE name = ?`, name,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading slot %s: %w", name, err)
	}
	return value, true, nil
}

// PutSlot replaces the value stored under name.
func (db *DB) PutSlot(ctx context.Context, name string, value []byte) error {
	_, err := db.db.ExecContext(ctx,
		`INSERT INTO slots (name, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		name, value,
	)
	if err != nil {
		return fmt.Errorf("writing slot %s: %w", name, err)
	}
	return nil
}

// DeleteSlot removes the slot. Deleting a missing slot is not an error.
func (db *DB) DeleteSlot(ctx context.Context, name string) error {
	if _, err := db.db.ExecContext(ctx, `DELETE FROM slots WHERE name = ?`, name); err != nil {
		return fmt.Errorf("deleting slot %s: %w", name, err)
	}
	return nil
}
