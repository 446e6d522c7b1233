package mapping

import (
	"time"

	"github.com/google/uuid"
)

// Resolution methods, in rough order of trust.
const (
	MethodDictionary     = "dictionary"
	MethodSourceProvided = "source-provided"
	MethodAIGenerated    = "ai-generated"
	MethodDeterministic  = "deterministic"
	MethodUserConfirmed  = "user-confirmed"
)

// Resolution confidence tags.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Entry maps to the mapping_entry table. At most one entry exists per
// (scope, source name); the source name is matched case-insensitively against
// extracted analyte names. Once a user confirms an entry it overrides every
// other resolution tier for that name.
type Entry struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	ScopeID         uuid.UUID  `db:"scope_id" json:"scope_id"`
	ScopeKind       string     `db:"scope_kind" json:"scope_kind"`
	SourceName      string     `db:"source_name" json:"source_name"`
	ShortCode       string     `db:"short_code" json:"short_code"`
	Method          string     `db:"method" json:"method"`
	Confidence      string     `db:"confidence" json:"confidence"`
	LastConfirmedAt *time.Time `db:"last_confirmed_at" json:"last_confirmed_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// Resolution is the outcome of running one analyte name through the
// resolution chain. RequiresReview marks codes that have not been confirmed
// by a human or a dictionary entry.
type Resolution struct {
	ShortCode      string `json:"short_code"`
	Method         string `json:"method"`
	Confidence     string `json:"confidence"`
	RequiresReview bool   `json:"requires_review"`
}

// ConfidenceTagFromScore buckets a numeric score from the suggestion service
// into the tag vocabulary the dictionary stores.
func ConfidenceTagFromScore(score float64) string {
	switch {
	case score >= 0.8:
		return ConfidenceHigh
	case score >= 0.5:
		return ConfidenceMedium
	case score > 0:
		return ConfidenceLow
	default:
		return ConfidenceMedium
	}
}
