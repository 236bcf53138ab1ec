package table

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber coerces a numeric cell to float64. It strips percent signs and
// handles both decimal conventions ("1.234,56" and "1,234.56") by treating
// whichever separator appears last as the decimal point. Returns ok=false
// when the value is empty or unparseable; callers coerce to zero and flag
// the row rather than failing.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "%", ""))
	if s == "" {
		return 0, false
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	switch {
	case hasComma && hasDot:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			// "1.234,56" — dots are thousands separators.
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			// "1,234.56" — commas are thousands separators.
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		// Lone comma is a decimal comma: "3,5" → 3.5.
		s = strings.ReplaceAll(s, ",", ".")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseRatio parses a percent-change cell into a ratio. Exports report
// these inconsistently ("177.84" meaning +177.84% next to "0.12" meaning
// +12%), so values with magnitude above 5 are treated as percents and
// divided by 100.
func ParseRatio(s string) (float64, bool) {
	v, ok := ParseNumber(s)
	if !ok {
		return 0, false
	}
	if math.Abs(v) > 5 {
		return v / 100, true
	}
	return v, true
}
