package extraction

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError names the payload constraint a document violated. Ingestion
// rejects the whole document before any side effect; there is no partial
// acceptance of individual rows.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// Validate checks the document's structural constraints: the results array
// must be present (empty is valid), every result needs its analyte name and a
// known kind, and kind-specific required fields must be set. Numeric values on
// censored results are still required; the censoring operator qualifies the
// bound, it does not replace it.
func (d *Document) Validate() error {
	if d.Results == nil {
		return &ValidationError{Field: "results", Msg: "results array is required"}
	}

	if err := validate.Struct(d); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			return &ValidationError{
				Field: verrs[0].Namespace(),
				Msg:   fmt.Sprintf("failed %q constraint", verrs[0].Tag()),
			}
		}
		return &ValidationError{Msg: err.Error()}
	}

	for i, r := range d.Results {
		if err := r.validateKind(); err != nil {
			err.Field = fmt.Sprintf("results[%d].%s", i, err.Field)
			return err
		}
	}

	return nil
}

func (r *RawResult) validateKind() *ValidationError {
	switch r.Kind {
	case KindNumeric, KindSemiQuantitative:
		if r.ValueNumeric == nil {
			return &ValidationError{Field: "value_numeric", Msg: fmt.Sprintf("required for kind %q", r.Kind)}
		}
	case KindQualitative, KindPanelSummary, KindAdminEvent:
		if r.ValueText == nil || *r.ValueText == "" {
			return &ValidationError{Field: "value_text", Msg: fmt.Sprintf("required for kind %q", r.Kind)}
		}
	case KindMicroTarget:
		if r.Organism == nil || *r.Organism == "" {
			return &ValidationError{Field: "organism", Msg: "required for kind \"micro-target\""}
		}
		if r.DetectionStatus == nil || *r.DetectionStatus == "" {
			return &ValidationError{Field: "detection_status", Msg: "required for kind \"micro-target\""}
		}
	}

	if r.Censored && r.CensorOperator == nil {
		return &ValidationError{Field: "censor_operator", Msg: "required when censored"}
	}

	return nil
}
