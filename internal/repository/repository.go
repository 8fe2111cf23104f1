package repository

import (
	"context"

	"github.com/alexivanou/geoweather-api/internal/config"
	"github.com/jmoiron/sqlx"
)

// SlotRepository persists recent-place payloads by key. Read returns nil, nil for
// an absent key.
type SlotRepository interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, payload []byte) error
	Count(ctx context.Context) (int, error)
}

// Container holds all repositories
type Container struct {
	Slot SlotRepository
}

// NewRepositories creates repository implementations based on DB type
func NewRepositories(db *sqlx.DB, dbType config.DBType) *Container {
	if dbType == config.DBTypePostgreSQL {
		return &Container{
			Slot: &pgSlotRepository{db: db},
		}
	}

	// Default to SQLite
	return &Container{
		Slot: &sqliteSlotRepository{db: db},
	}
}
