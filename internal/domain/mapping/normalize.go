package mapping

import "strings"

// Short codes are 2 to 12 characters. Printed lab codes rarely exceed 7;
// the upper bound leaves room for concatenated multi-word names and matches
// the result and mapping_entry column width.
const (
	MinShortCodeLen = 2
	MaxShortCodeLen = 12
)

// PlaceholderCode is returned when an analyte name yields no usable tokens.
const PlaceholderCode = "UNKNOWN"

// canonicalUnits maps case-folded unit spellings to their canonical form.
// Unknown units pass through untouched; this is spelling normalization, not
// unit conversion.
var canonicalUnits = map[string]string{
	"mmol/l":    "mmol/L",
	"umol/l":    "µmol/L",
	"µmol/l":    "µmol/L",
	"nmol/l":    "nmol/L",
	"pmol/l":    "pmol/L",
	"g/l":       "g/L",
	"g/dl":      "g/dL",
	"mg/l":      "mg/L",
	"mg/dl":     "mg/dL",
	"ug/l":      "µg/L",
	"µg/l":      "µg/L",
	"ng/ml":     "ng/mL",
	"pg/ml":     "pg/mL",
	"iu/l":      "IU/L",
	"miu/l":     "mIU/L",
	"u/l":       "U/L",
	"ku/l":      "kU/L",
	"%":         "%",
	"fl":        "fL",
	"pg":        "pg",
	"10^9/l":    "10^9/L",
	"10^12/l":   "10^12/L",
	"x10^9/l":   "10^9/L",
	"x10^12/l":  "10^12/L",
	"cells/ul":  "cells/µL",
	"copies/ml": "copies/mL",
	"mm/h":      "mm/h",
	"mm/hr":     "mm/h",
	"sec":       "s",
	"ratio":     "ratio",
}

// clampCode trims an externally supplied short code into storable bounds:
// codes over the maximum are truncated, codes under the minimum come back
// empty so the resolution chain falls through to its next tier.
func clampCode(raw string) string {
	code := strings.TrimSpace(raw)
	if len(code) < MinShortCodeLen {
		return ""
	}
	if len(code) > MaxShortCodeLen {
		return code[:MaxShortCodeLen]
	}
	return code
}

// NormalizeUnit canonicalizes a printed unit. The lookup is case-insensitive;
// units not in the table come back trimmed and otherwise unchanged. There is
// no error path.
func NormalizeUnit(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if canonical, ok := canonicalUnits[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return trimmed
}

// DeterministicShortCode derives a stable fallback code from an analyte name:
// tokenize on space/slash/hyphen/underscore, strip non-alphanumerics, upper
// case, concatenate, truncate to MaxShortCodeLen. Identical input always
// yields identical output, which is what makes re-ingestion idempotent before
// any dictionary entry exists.
func DeterministicShortCode(analyteName string) string {
	tokens := strings.FieldsFunc(analyteName, func(r rune) bool {
		return r == ' ' || r == '/' || r == '-' || r == '_'
	})

	var b strings.Builder
	for _, tok := range tokens {
		for _, r := range tok {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			}
		}
	}

	code := strings.ToUpper(b.String())
	if code == "" {
		return PlaceholderCode
	}
	if len(code) > MaxShortCodeLen {
		code = code[:MaxShortCodeLen]
	}
	return code
}
