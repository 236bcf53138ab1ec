package engine

import "github.com/serpgap/serpgap/internal/table"

// ScoreThresholds are the two bars derived for one score column: Action for
// the actionable bucket, Watch for the monitor bucket.
type ScoreThresholds struct {
	Action float64 `json:"action"`
	Watch  float64 `json:"watch"`
}

// Thresholds holds the per-column percentile thresholds computed over the
// current batch. They are data-dependent: the same absolute score can
// classify differently across two batches.
type Thresholds struct {
	Rescue ScoreThresholds `json:"rescue"`
	Scale  ScoreThresholds `json:"scale"`
	Expand ScoreThresholds `json:"expand"`
}

// clears reports whether a score passes a bar. A score must be strictly
// positive — in a batch where a column is all zeros the percentile
// threshold is zero, and a zero score must not count as clearing it.
func clears(score, bar float64) bool {
	return score > 0 && score >= bar
}

// candidateRule is one step of the ordered classification rule list.
// Rules are evaluated top-down with early exit; the order is part of the
// contract — reordering changes outcomes for rows that clear several bars
// at once.
type candidateRule struct {
	name    string
	reason  string
	analyze bool
	match   func(r *table.Row, th Thresholds) bool
}

var candidateRules = []candidateRule{
	{
		name:   table.CandidateIgnore,
		reason: "brand/system_or_bad_data",
		match:  func(r *table.Row, _ Thresholds) bool { return !r.Eligible },
	},
	{
		name:    table.CandidateRescue,
		reason:  "high_drop_high_potential_gap",
		analyze: true,
		match:   func(r *table.Row, th Thresholds) bool { return clears(r.RescueScore, th.Rescue.Action) },
	},
	{
		name:    table.CandidateScale,
		reason:  "momentum_with_headroom",
		analyze: true,
		match:   func(r *table.Row, th Thresholds) bool { return clears(r.ScaleScore, th.Scale.Action) },
	},
	{
		name:    table.CandidateExpand,
		reason:  "growing_far_from_potential",
		analyze: true,
		match:   func(r *table.Row, th Thresholds) bool { return clears(r.ExpandScore, th.Expand.Action) },
	},
	{
		name:   table.CandidateMonitor,
		reason: "clears_watch_bar",
		match: func(r *table.Row, th Thresholds) bool {
			return clears(r.RescueScore, th.Rescue.Watch) ||
				clears(r.ScaleScore, th.Scale.Watch) ||
				clears(r.ExpandScore, th.Expand.Watch)
		},
	},
	{
		name:   table.CandidateIgnore,
		reason: "below_watch_bar",
		match:  func(*table.Row, Thresholds) bool { return true },
	},
}

// classify converts continuous scores into a discrete candidate bucket per
// row. Thresholds come from the full batch, so this stage must only run
// once scoring has completed for every row.
func classify(t *table.Table, cfg Config) Thresholds {
	th := computeThresholds(t, cfg)
	for _, r := range t.Rows {
		for _, rule := range candidateRules {
			if rule.match(r, th) {
				r.CandidateType = rule.name
				r.CandidateReason = rule.reason
				r.AnalyzeCandidate = rule.analyze
				break
			}
		}
	}
	return th
}

// computeThresholds derives the action and watch bars for each score column
// from the live batch distribution.
func computeThresholds(t *table.Table, cfg Config) Thresholds {
	n := len(t.Rows)
	rescue := make([]float64, 0, n)
	scale := make([]float64, 0, n)
	expand := make([]float64, 0, n)
	for _, r := range t.Rows {
		rescue = append(rescue, r.RescueScore)
		scale = append(scale, r.ScaleScore)
		expand = append(expand, r.ExpandScore)
	}
	bars := func(scores []float64) ScoreThresholds {
		return ScoreThresholds{
			Action: Percentile(scores, cfg.ActionPercentile),
			Watch:  Percentile(scores, cfg.WatchPercentile),
		}
	}
	return Thresholds{
		Rescue: bars(rescue),
		Scale:  bars(scale),
		Expand: bars(expand),
	}
}
