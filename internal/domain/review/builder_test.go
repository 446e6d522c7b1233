package review

import (
	"testing"

	"github.com/google/uuid"

	"github.com/labfeed/labfeed/internal/domain/extraction"
)

func f64(v float64) *float64 { return &v }

func TestBuild_EmptyDocumentYieldsNoTasks(t *testing.T) {
	b := NewBuilder(0.7)
	tasks := b.Build(&extraction.Document{Results: []extraction.RawResult{}}, uuid.New())
	if len(tasks) != 0 {
		t.Fatalf("expected no tasks, got %d", len(tasks))
	}
	if tasks = b.Build(nil, uuid.New()); tasks != nil {
		t.Fatalf("expected nil for nil document, got %d tasks", len(tasks))
	}
}

func TestBuild_OverallConfidenceThreshold(t *testing.T) {
	b := NewBuilder(0.7)
	reportID := uuid.New()

	doc := &extraction.Document{Results: []extraction.RawResult{{
		AnalyteName:       "Hemoglobin",
		Kind:              extraction.KindNumeric,
		OverallConfidence: f64(0.65),
	}}}
	tasks := b.Build(doc, reportID)
	if len(tasks) != 1 {
		t.Fatalf("expected exactly one task, got %d", len(tasks))
	}
	if tasks[0].FieldPath != "results[0]" {
		t.Errorf("expected base path results[0], got %q", tasks[0].FieldPath)
	}
	if tasks[0].Reason != ReasonLowOverallConfidence {
		t.Errorf("expected %q, got %q", ReasonLowOverallConfidence, tasks[0].Reason)
	}
	if tasks[0].ReportID != reportID {
		t.Errorf("task not bound to report")
	}

	doc.Results[0].OverallConfidence = f64(0.75)
	if tasks = b.Build(doc, reportID); len(tasks) != 0 {
		t.Errorf("confidence 0.75 above threshold should yield no task, got %d", len(tasks))
	}
}

func TestBuild_PerFieldAndOverallBothFire(t *testing.T) {
	b := NewBuilder(0.7)
	doc := &extraction.Document{Results: []extraction.RawResult{{
		AnalyteName:            "TSH",
		Kind:                   extraction.KindNumeric,
		ValueNumericConfidence: f64(0.4),
		OverallConfidence:      f64(0.5),
	}}}

	tasks := b.Build(doc, uuid.New())
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks (field + overall), got %d", len(tasks))
	}
	if tasks[0].FieldPath != "results[0].value_numeric" || tasks[0].Reason != ReasonLowConfidence {
		t.Errorf("unexpected first task %q/%q", tasks[0].FieldPath, tasks[0].Reason)
	}
	if tasks[1].FieldPath != "results[0]" || tasks[1].Reason != ReasonLowOverallConfidence {
		t.Errorf("unexpected second task %q/%q", tasks[1].FieldPath, tasks[1].Reason)
	}
}

func TestBuild_AbsentConfidenceIsNotFlagged(t *testing.T) {
	b := NewBuilder(0.7)
	doc := &extraction.Document{Results: []extraction.RawResult{{
		AnalyteName: "Hemoglobin",
		Kind:        extraction.KindNumeric,
	}}}
	if tasks := b.Build(doc, uuid.New()); len(tasks) != 0 {
		t.Errorf("fields without confidence must not be flagged, got %d tasks", len(tasks))
	}
}

func TestBuild_NestedRangesAndComments(t *testing.T) {
	b := NewBuilder(0.7)
	doc := &extraction.Document{
		Results: []extraction.RawResult{
			{AnalyteName: "A", Kind: extraction.KindNumeric},
			{
				AnalyteName:    "B",
				Kind:           extraction.KindNumeric,
				ReferenceRange: &extraction.RawReferenceRange{Confidence: f64(0.2)},
				ReferenceRanges: []extraction.RawReferenceRange{
					{Confidence: f64(0.9)},
					{Confidence: f64(0.3)},
				},
			},
		},
		Comments: []extraction.RawComment{
			{Scope: "report", Text: "note", Confidence: f64(0.1)},
		},
	}

	tasks := b.Build(doc, uuid.New())
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}

	paths := map[string]bool{}
	for _, task := range tasks {
		paths[task.FieldPath] = true
	}
	for _, want := range []string{
		"results[1].reference_range",
		"results[1].reference_ranges[1]",
		"comments[0].text",
	} {
		if !paths[want] {
			t.Errorf("missing task for %s", want)
		}
	}
}

func TestBuild_DefaultThreshold(t *testing.T) {
	b := NewBuilder(0)
	if b.Threshold() != DefaultThreshold {
		t.Errorf("expected default threshold %v, got %v", DefaultThreshold, b.Threshold())
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusOpen, StatusInReview, true},
		{StatusOpen, StatusResolved, true},
		{StatusInReview, StatusResolved, true},
		{StatusInReview, StatusOpen, true},
		{StatusResolved, StatusOpen, false},
		{StatusResolved, StatusInReview, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
