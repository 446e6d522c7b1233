package result

import (
	"time"

	"github.com/google/uuid"
)

// Result maps to the result table: one normalized analyte row. The short code
// is never null; ingestion always resolves one, falling back to a
// deterministic code when nothing better exists. Exactly one result set
// exists per report; ingestion replaces it wholesale.
type Result struct {
	ID                   uuid.UUID  `db:"id" json:"id"`
	ReportID             uuid.UUID  `db:"report_id" json:"report_id"`
	PatientID            uuid.UUID  `db:"patient_id" json:"patient_id"`
	AnalyteName          string     `db:"analyte_name" json:"analyte_name"`
	ShortCode            string     `db:"short_code" json:"short_code"`
	ResolutionMethod     string     `db:"resolution_method" json:"resolution_method"`
	ResolutionConfidence string     `db:"resolution_confidence" json:"resolution_confidence"`
	Kind                 string     `db:"kind" json:"kind"`
	ValueNumeric         *float64   `db:"value_numeric" json:"value_numeric,omitempty"`
	ValueText            *string    `db:"value_text" json:"value_text,omitempty"`
	UnitOriginal         *string    `db:"unit_original" json:"unit_original,omitempty"`
	UnitNormalized       *string    `db:"unit_normalized" json:"unit_normalized,omitempty"`
	Censored             bool       `db:"censored" json:"censored"`
	CensorOperator       *string    `db:"censor_operator" json:"censor_operator,omitempty"`
	AbnormalFlag         *string    `db:"abnormal_flag" json:"abnormal_flag,omitempty"`
	AbnormalSeverity     *string    `db:"abnormal_severity" json:"abnormal_severity,omitempty"`
	Specimen             *string    `db:"specimen" json:"specimen,omitempty"`
	Organism             *string    `db:"organism" json:"organism,omitempty"`
	DetectionStatus      *string    `db:"detection_status" json:"detection_status,omitempty"`
	Comment              *string    `db:"comment" json:"comment,omitempty"`
	CollectedAt          *time.Time `db:"collected_at" json:"collected_at,omitempty"`
	ReportedAt           *time.Time `db:"reported_at" json:"reported_at,omitempty"`
	SourceAnchor         *string    `db:"source_anchor" json:"source_anchor,omitempty"`
	ConfidenceTag        *string    `db:"confidence_tag" json:"confidence_tag,omitempty"`
	OverallConfidence    *float64   `db:"overall_confidence" json:"overall_confidence,omitempty"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`

	Ranges []*ReferenceRange `db:"-" json:"reference_ranges,omitempty"`
}

// ReferenceRange maps to the reference_range table. Ranges are owned by their
// result and die with it: the replace-all delete cascades over them.
type ReferenceRange struct {
	ID       uuid.UUID `db:"id" json:"id"`
	ResultID uuid.UUID `db:"result_id" json:"result_id"`
	Low      *float64  `db:"low" json:"low,omitempty"`
	High     *float64  `db:"high" json:"high,omitempty"`
	Text     *string   `db:"text" json:"text,omitempty"`
	Context  *string   `db:"context" json:"context,omitempty"`
}

// SeriesPoint is one numeric observation in a patient's per-code trend.
type SeriesPoint struct {
	ReportID     uuid.UUID  `json:"report_id"`
	ValueNumeric float64    `json:"value_numeric"`
	Unit         *string    `json:"unit,omitempty"`
	ReportedAt   *time.Time `json:"reported_at,omitempty"`
}

// GroupCode returns the code the anomaly scanner and trend query group by:
// the resolved short code, or the verbatim analyte name when only the
// placeholder fallback exists.
func (r *Result) GroupCode() string {
	if r.ShortCode == "" {
		return r.AnalyteName
	}
	return r.ShortCode
}

// Unit returns the unit used for display and comparison, preferring the
// normalized form.
func (r *Result) Unit() *string {
	if r.UnitNormalized != nil && *r.UnitNormalized != "" {
		return r.UnitNormalized
	}
	return r.UnitOriginal
}
