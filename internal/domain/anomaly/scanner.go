package anomaly

import (
	"fmt"
	"strings"

	"github.com/labfeed/labfeed/internal/domain/result"
)

const (
	KindUnitMismatch = "unit_mismatch"
	KindSuddenChange = "sudden_change"
)

// Thresholds for an abrupt value swing between two adjacent observations.
const (
	jumpRatioHigh = 3.0
	jumpRatioLow  = 1.0 / 3.0
)

// Anomaly flags one suspicious pattern in a patient's history for one
// analyte code.
type Anomaly struct {
	ShortCode string `json:"short_code"`
	Kind      string `json:"kind"`
	Detail    string `json:"detail"`
}

// Scan walks a patient's normalized result history and flags, per analyte
// code, unit inconsistencies and abrupt value swings. History must be ordered
// by reported time ascending; the repository query guarantees that order.
//
// A group is keyed by resolved short code, falling back to the verbatim
// analyte name when only the placeholder resolution exists. Within a group,
// a unit_mismatch fires when more than one distinct unit appears, and a
// sudden_change fires on the first adjacent numeric pair whose ratio exceeds
// 3 or falls below 1/3. Only the first swing per group is reported.
func Scan(history []*result.Result) []Anomaly {
	groups := make(map[string][]*result.Result)
	var order []string
	for _, r := range history {
		code := r.GroupCode()
		if _, seen := groups[code]; !seen {
			order = append(order, code)
		}
		groups[code] = append(groups[code], r)
	}

	anomalies := []Anomaly{}
	for _, code := range order {
		rows := groups[code]
		if a := scanUnits(code, rows); a != nil {
			anomalies = append(anomalies, *a)
		}
		if a := scanSwings(code, rows); a != nil {
			anomalies = append(anomalies, *a)
		}
	}
	return anomalies
}

func scanUnits(code string, rows []*result.Result) *Anomaly {
	seen := make(map[string]bool)
	var units []string
	for _, r := range rows {
		u := r.Unit()
		if u == nil || *u == "" {
			continue
		}
		if !seen[*u] {
			seen[*u] = true
			units = append(units, *u)
		}
	}
	if len(units) < 2 {
		return nil
	}
	return &Anomaly{
		ShortCode: code,
		Kind:      KindUnitMismatch,
		Detail:    fmt.Sprintf("multiple units in history: %s", strings.Join(units, ", ")),
	}
}

func scanSwings(code string, rows []*result.Result) *Anomaly {
	var prev *float64
	for _, r := range rows {
		if r.ValueNumeric == nil {
			continue
		}
		cur := *r.ValueNumeric
		if prev != nil && *prev != 0 {
			ratio := cur / *prev
			if ratio > jumpRatioHigh || ratio < jumpRatioLow {
				return &Anomaly{
					ShortCode: code,
					Kind:      KindSuddenChange,
					Detail:    fmt.Sprintf("value changed from %g to %g (ratio %.2f)", *prev, cur, ratio),
				}
			}
		}
		prev = &cur
	}
	return nil
}
