package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

type sqliteSlotRepository struct {
	db *sqlx.DB
}

func (r *sqliteSlotRepository) Read(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := r.db.GetContext(ctx, &payload, "SELECT payload FROM recent_slots WHERE slot_key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (r *sqliteSlotRepository) Write(ctx context.Context, key string, payload []byte) error {
	q := `
		INSERT INTO recent_slots (slot_key, payload, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(slot_key) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, q, key, payload)
	return err
}

func (r *sqliteSlotRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM recent_slots"); err != nil {
		return 0, err
	}
	return count, nil
}
