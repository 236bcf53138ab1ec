package engine

import (
	"time"

	"github.com/serpgap/serpgap/internal/table"
)

// Summary is the batch-level result of one engine run, handed to the
// operational wrapper for storage, alerting and metrics.
type Summary struct {
	Rows      int `json:"rows"`
	Eligible  int `json:"eligible"`
	Defective int `json:"defective"`

	// Candidates counts rows per candidate type. Every row is counted
	// exactly once.
	Candidates map[string]int `json:"candidates"`

	CannibalGroups int `json:"cannibal_groups"`
	CannibalRows   int `json:"cannibal_rows"`

	Thresholds Thresholds `json:"thresholds"`

	GeneratedAt time.Time     `json:"generated_at"`
	Duration    time.Duration `json:"duration"`
}

// Run executes the full pipeline on the table, mutating rows in place:
// quality/typing annotation, gap and opportunity scoring, percentile
// classification, then cannibalization detection with its override.
// Fields are only added, never removed; row count and order are preserved.
func Run(t *table.Table, cfg Config) *Summary {
	cfg = cfg.withDefaults()
	start := time.Now()

	annotate(t, cfg)
	score(t, cfg)
	th := classify(t, cfg)
	groups, flagged := detectCannibalization(t)

	s := &Summary{
		Rows:           t.Len(),
		Candidates:     make(map[string]int, 5),
		CannibalGroups: groups,
		CannibalRows:   flagged,
		Thresholds:     th,
		GeneratedAt:    start.UTC(),
		Duration:       time.Since(start),
	}
	for _, r := range t.Rows {
		s.Candidates[r.CandidateType]++
		if r.Eligible {
			s.Eligible++
		}
		if r.HasIssues() {
			s.Defective++
		}
	}
	return s
}

// Actionable returns the number of rows in an actionable bucket.
func (s *Summary) Actionable() int {
	return s.Candidates[table.CandidateRescue] +
		s.Candidates[table.CandidateScale] +
		s.Candidates[table.CandidateExpand]
}

// DefectivePct returns the share of rows carrying data-quality issues,
// as a percentage.
func (s *Summary) DefectivePct() float64 {
	if s.Rows == 0 {
		return 0
	}
	return float64(s.Defective) / float64(s.Rows) * 100
}
