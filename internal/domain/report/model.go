package report

import (
	"time"

	"github.com/google/uuid"
)

// Parsing statuses. A report starts pending; ingestion moves it to completed,
// needs_review (completed, but with unconfirmed mappings or low-confidence
// fields flagged), or failed.
const (
	StatusPending     = "pending"
	StatusCompleted   = "completed"
	StatusNeedsReview = "needs_review"
	StatusFailed      = "failed"
)

// Report maps to the report table. Ingestion owns parsing_status and
// parsing_version; the surrounding CRUD layer owns everything else.
type Report struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PatientID      uuid.UUID `db:"patient_id" json:"patient_id"`
	ScopeID        uuid.UUID `db:"scope_id" json:"scope_id"`
	SourceFile     *string   `db:"source_file" json:"source_file,omitempty"`
	ParsingStatus  string    `db:"parsing_status" json:"parsing_status"`
	ParsingVersion *string   `db:"parsing_version" json:"parsing_version,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Comment is a report-level comment captured from the extraction payload.
// Comments are replaced together with the report's results on every ingestion.
type Comment struct {
	ID       uuid.UUID `db:"id" json:"id"`
	ReportID uuid.UUID `db:"report_id" json:"report_id"`
	Scope    string    `db:"scope" json:"scope"`
	Body     string    `db:"body" json:"body"`
}
