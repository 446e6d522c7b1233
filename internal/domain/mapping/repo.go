package mapping

import (
	"context"

	"github.com/google/uuid"
)

type EntryRepository interface {
	// GetByName looks up the entry for a case-insensitive source name within
	// one scope. Returns (nil, nil) when no entry exists.
	GetByName(ctx context.Context, scopeID uuid.UUID, sourceName string) (*Entry, error)
	// Upsert inserts or replaces the entry keyed by (scope, source name).
	Upsert(ctx context.Context, e *Entry) error
	ListByScope(ctx context.Context, scopeID uuid.UUID, limit, offset int) ([]*Entry, int, error)
	Delete(ctx context.Context, scopeID, id uuid.UUID) error
}
