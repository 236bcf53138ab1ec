package alerts

import (
	"strconv"
	"strings"

	"github.com/serpgap/serpgap/internal/engine"
	"github.com/serpgap/serpgap/internal/table"
)

// evalCondition evaluates a rule condition string against a batch summary.
//
// Supported expressions (field operator value):
//
//	row_count > 10000
//	defective_count > 100
//	defective_pct > 20
//	rescue_count > 50
//	scale_count > 50
//	expand_count > 50
//	monitor_count > 500
//	ignore_count > 5000
//	actionable_count > 100
//	actionable_pct > 30
//	cannibal_groups > 10
//	cannibal_rows > 25
//	eligible_count < 100
//
// Returns (fires bool, triggering value float64).
// Returns (false, 0) if the expression cannot be parsed or the field is
// unknown.
func evalCondition(cond string, s *engine.Summary) (bool, float64) {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return false, 0
	}
	field, op, rhs := parts[0], parts[1], parts[2]

	v, ok := numericField(field, s)
	if !ok {
		return false, 0
	}
	threshold, err := strconv.ParseFloat(rhs, 64)
	if err != nil {
		return false, 0
	}
	return compareFloat(v, op, threshold), v
}

// numericField maps a field name to its value in the summary.
func numericField(field string, s *engine.Summary) (float64, bool) {
	switch field {
	case "row_count":
		return float64(s.Rows), true
	case "eligible_count":
		return float64(s.Eligible), true
	case "defective_count":
		return float64(s.Defective), true
	case "defective_pct":
		return s.DefectivePct(), true
	case "rescue_count":
		return float64(s.Candidates[table.CandidateRescue]), true
	case "scale_count":
		return float64(s.Candidates[table.CandidateScale]), true
	case "expand_count":
		return float64(s.Candidates[table.CandidateExpand]), true
	case "monitor_count":
		return float64(s.Candidates[table.CandidateMonitor]), true
	case "ignore_count":
		return float64(s.Candidates[table.CandidateIgnore]), true
	case "actionable_count":
		return float64(s.Actionable()), true
	case "actionable_pct":
		if s.Rows == 0 {
			return 0, true
		}
		return float64(s.Actionable()) / float64(s.Rows) * 100, true
	case "cannibal_groups":
		return float64(s.CannibalGroups), true
	case "cannibal_rows":
		return float64(s.CannibalRows), true
	default:
		return 0, false
	}
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	default:
		return false
	}
}
