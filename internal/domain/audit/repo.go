package audit

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Insert(ctx context.Context, rec *Record) error
	ListByReport(ctx context.Context, reportID uuid.UUID, limit, offset int) ([]*Record, int, error)
}
