package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

type pgSlotRepository struct {
	db *sqlx.DB
}

func (r *pgSlotRepository) Read(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := r.db.GetContext(ctx, &payload, "SELECT payload FROM recent_slots WHERE slot_key = $1", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (r *pgSlotRepository) Write(ctx context.Context, key string, payload []byte) error {
	q := `
		INSERT INTO recent_slots (slot_key, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (slot_key) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, q, key, payload)
	return err
}

func (r *pgSlotRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM recent_slots"); err != nil {
		return 0, err
	}
	return count, nil
}
