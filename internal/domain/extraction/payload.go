// Package extraction models the raw document produced by the upstream lab
// report extraction pipeline. The document is the ingestion core's only
// input; whatever produced it (OCR, an AI completion, a manual upload form)
// is outside this service.
package extraction

import "time"

// Result kinds. Each raw result is tagged with exactly one kind; validation
// enforces the kind-specific required fields so that e.g. a numeric result
// without a numeric value cannot reach the normalizer.
const (
	KindNumeric          = "numeric"
	KindQualitative      = "qualitative"
	KindSemiQuantitative = "semi-quantitative"
	KindMicroTarget      = "micro-target"
	KindPanelSummary     = "panel-summary"
	KindAdminEvent       = "admin-event"
)

// Censoring operators for values reported against a detection bound,
// e.g. "<0.03" carries operator "lt".
const (
	CensorLT = "lt"
	CensorGT = "gt"
	CensorLE = "le"
	CensorGE = "ge"
	CensorEQ = "eq"
)

// Confidence tags reported by the extraction producer.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// RawReferenceRange is a reference range as printed on the report. A result
// may carry several context-dependent ranges (age bands, pregnancy, specimen
// type).
type RawReferenceRange struct {
	Low        *float64 `json:"low"`
	High       *float64 `json:"high"`
	Text       *string  `json:"text"`
	Context    *string  `json:"context"`
	Confidence *float64 `json:"confidence"`
}

// RawResult is one extracted analyte row, as loose as the producer left it.
// Field-level *Confidence values are per-field extraction scores in [0,1];
// absent scores mean the producer reported nothing for that field.
type RawResult struct {
	AnalyteName       string              `json:"analyte_name" validate:"required"`
	ShortCode         *string             `json:"short_code" validate:"omitempty,min=2,max=12"`
	Kind              string              `json:"kind" validate:"required,oneof=numeric qualitative semi-quantitative micro-target panel-summary admin-event"`
	ValueNumeric      *float64            `json:"value_numeric"`
	ValueText         *string             `json:"value_text"`
	UnitOriginal      *string             `json:"unit_original"`
	UnitNormalized    *string             `json:"unit_normalized"`
	Censored          bool                `json:"censored"`
	CensorOperator    *string             `json:"censor_operator" validate:"omitempty,oneof=lt gt le ge eq"`
	AbnormalFlag      *string             `json:"abnormal_flag"`
	AbnormalSeverity  *string             `json:"abnormal_severity"`
	ReferenceRange    *RawReferenceRange  `json:"reference_range"`
	ReferenceRanges   []RawReferenceRange `json:"reference_ranges"`
	Specimen          *string             `json:"specimen"`
	Organism          *string             `json:"organism"`
	DetectionStatus   *string             `json:"detection_status"`
	Comment           *string             `json:"comment"`
	CollectedAt       *time.Time          `json:"collected_at"`
	ReportedAt        *time.Time          `json:"reported_at"`
	SourceAnchor      *string             `json:"source_anchor"`
	ConfidenceTag     *string             `json:"confidence_tag" validate:"omitempty,oneof=high medium low"`
	OverallConfidence *float64            `json:"overall_confidence"`

	// Per-field extraction scores.
	AnalyteNameConfidence  *float64 `json:"analyte_name_confidence"`
	ValueNumericConfidence *float64 `json:"value_numeric_confidence"`
	ValueTextConfidence    *float64 `json:"value_text_confidence"`
	UnitConfidence         *float64 `json:"unit_confidence"`
	CommentConfidence      *float64 `json:"comment_confidence"`
}

// RawComment is a report-level comment block (e.g. a pathologist note).
type RawComment struct {
	Scope      string   `json:"scope"`
	Text       string   `json:"text" validate:"required"`
	Confidence *float64 `json:"confidence"`
}

// Document is the full extraction payload for one report.
type Document struct {
	Results        []RawResult  `json:"results" validate:"dive"`
	Comments       []RawComment `json:"comments" validate:"omitempty,dive"`
	ParsingVersion string       `json:"parsing_version"`
}

// Ranges returns the result's reference ranges as a single slice, merging the
// legacy singular field with the array form.
func (r *RawResult) Ranges() []RawReferenceRange {
	if r.ReferenceRange == nil {
		return r.ReferenceRanges
	}
	out := make([]RawReferenceRange, 0, len(r.ReferenceRanges)+1)
	out = append(out, *r.ReferenceRange)
	return append(out, r.ReferenceRanges...)
}
