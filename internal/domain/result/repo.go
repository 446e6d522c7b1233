package result

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// DeleteByReport removes all results for a report. Reference ranges go
	// with them (FK cascade). Called only inside the ingestion transaction.
	DeleteByReport(ctx context.Context, reportID uuid.UUID) error
	// InsertBatch inserts results with their reference ranges. Called only
	// inside the ingestion transaction.
	InsertBatch(ctx context.Context, results []*Result) error
	ListByReport(ctx context.Context, reportID uuid.UUID) ([]*Result, error)
	// HistoryByPatient returns the patient's full normalized history ordered
	// by reported time ascending (results without a reported time last).
	// Only results from reports owned by the given scope are visible.
	HistoryByPatient(ctx context.Context, scopeID, patientID uuid.UUID) ([]*Result, error)
	// Series returns the numeric points for one short-code group, ordered by
	// reported time ascending. Only results from reports owned by the given
	// scope are visible.
	Series(ctx context.Context, scopeID, patientID uuid.UUID, shortCode string) ([]*SeriesPoint, error)
}
