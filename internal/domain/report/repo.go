package report

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *Report) error
	// GetForScope fetches a report only if it belongs to the given scope.
	// Returns (nil, nil) when absent or owned elsewhere.
	GetForScope(ctx context.Context, scopeID, id uuid.UUID) (*Report, error)
	List(ctx context.Context, scopeID uuid.UUID, status string, limit, offset int) ([]*Report, int, error)
	UpdateParsingStatus(ctx context.Context, id uuid.UUID, status string, parsingVersion *string) error
	ReplaceComments(ctx context.Context, reportID uuid.UUID, comments []*Comment) error
	ListComments(ctx context.Context, reportID uuid.UUID) ([]*Comment, error)
	Delete(ctx context.Context, scopeID, id uuid.UUID) error
}
