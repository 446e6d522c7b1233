package review

import (
	"time"

	"github.com/google/uuid"
)

// Task statuses. Tasks are created open by ingestion and walked to resolved
// by a reviewer; every re-ingestion replaces a report's tasks outright.
const (
	StatusOpen     = "open"
	StatusInReview = "in-review"
	StatusResolved = "resolved"
)

// Task reasons emitted by the builder.
const (
	ReasonLowConfidence        = "Low confidence value"
	ReasonLowOverallConfidence = "Low overall confidence"
	ReasonUnconfirmedMapping   = "Unconfirmed analyte mapping"
)

// Task maps to the review_task table. FieldPath addresses the flagged field
// inside the raw extraction document (e.g. "results[2].value_numeric"), not
// the normalized row, so reviewers can trace it back to the source PDF.
type Task struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	ReportID   uuid.UUID  `db:"report_id" json:"report_id"`
	FieldPath  string     `db:"field_path" json:"field_path"`
	Reason     string     `db:"reason" json:"reason"`
	Status     string     `db:"status" json:"status"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	ResolvedAt *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
}

// validTransitions guards reviewer status updates.
var validTransitions = map[string][]string{
	StatusOpen:     {StatusInReview, StatusResolved},
	StatusInReview: {StatusOpen, StatusResolved},
	StatusResolved: {},
}

// CanTransition reports whether a status change is allowed.
func CanTransition(from, to string) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
