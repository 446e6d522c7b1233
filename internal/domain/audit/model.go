package audit

import (
	"time"

	"github.com/google/uuid"
)

// Record maps to the ingestion_audit table: one row per completed ingestion.
// Audit writes are best-effort; a failed write never fails the ingestion it
// describes.
type Record struct {
	ID              uuid.UUID `db:"id" json:"id"`
	ReportID        uuid.UUID `db:"report_id" json:"report_id"`
	ScopeID         uuid.UUID `db:"scope_id" json:"scope_id"`
	ResultCount     int       `db:"result_count" json:"result_count"`
	ReviewTaskCount int       `db:"review_task_count" json:"review_task_count"`
	ParsingVersion  string    `db:"parsing_version" json:"parsing_version"`
	Outcome         string    `db:"outcome" json:"outcome"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
