package review

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/labfeed/labfeed/internal/domain/extraction"
)

// DefaultThreshold is the extraction-confidence floor below which a field is
// flagged for human review.
const DefaultThreshold = 0.7

// Builder walks an extraction document and emits one task per field whose
// reported confidence sits below the threshold. It is pure and total: no
// storage access, no error path, and a fully confident document yields nil.
type Builder struct {
	threshold float64
}

func NewBuilder(threshold float64) *Builder {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Builder{threshold: threshold}
}

// Build flags every field of the raw document carrying an explicit confidence
// below the threshold. Field paths are array-indexed addresses into the
// document as received, so they stay valid however normalization rewrites the
// values. Fields with no reported confidence are not flagged; a result-level
// overall_confidence below threshold adds one task on the result's base path
// on top of any per-field tasks.
func (b *Builder) Build(doc *extraction.Document, reportID uuid.UUID) []*Task {
	if doc == nil {
		return nil
	}

	var tasks []*Task
	flag := func(path, reason string) {
		tasks = append(tasks, &Task{
			ReportID:  reportID,
			FieldPath: path,
			Reason:    reason,
			Status:    StatusOpen,
		})
	}
	low := func(score *float64) bool {
		return score != nil && *score < b.threshold
	}

	for i := range doc.Results {
		r := &doc.Results[i]
		base := fmt.Sprintf("results[%d]", i)

		fields := []struct {
			name  string
			score *float64
		}{
			{"analyte_name", r.AnalyteNameConfidence},
			{"value_numeric", r.ValueNumericConfidence},
			{"value_text", r.ValueTextConfidence},
			{"unit_original", r.UnitConfidence},
			{"comment", r.CommentConfidence},
		}
		for _, f := range fields {
			if low(f.score) {
				flag(base+"."+f.name, ReasonLowConfidence)
			}
		}

		if r.ReferenceRange != nil && low(r.ReferenceRange.Confidence) {
			flag(base+".reference_range", ReasonLowConfidence)
		}
		for j := range r.ReferenceRanges {
			if low(r.ReferenceRanges[j].Confidence) {
				flag(fmt.Sprintf("%s.reference_ranges[%d]", base, j), ReasonLowConfidence)
			}
		}

		if low(r.OverallConfidence) {
			flag(base, ReasonLowOverallConfidence)
		}
	}

	for i := range doc.Comments {
		if low(doc.Comments[i].Confidence) {
			flag(fmt.Sprintf("comments[%d].text", i), ReasonLowConfidence)
		}
	}

	return tasks
}

// Threshold returns the builder's configured confidence floor.
func (b *Builder) Threshold() float64 { return b.threshold }
