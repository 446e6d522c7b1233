package review

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// ReplaceForReport drops every existing task for the report and inserts
	// the new set. Prior open tasks are not carried forward; each ingestion
	// is authoritative. Called inside the ingestion transaction.
	ReplaceForReport(ctx context.Context, reportID uuid.UUID, tasks []*Task) error
	ListByReport(ctx context.Context, reportID uuid.UUID) ([]*Task, error)
	// ListOpenForScope lists open/in-review tasks across a scope's reports.
	ListOpenForScope(ctx context.Context, scopeID uuid.UUID, limit, offset int) ([]*Task, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}
