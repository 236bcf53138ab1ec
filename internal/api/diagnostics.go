package api

import (
	"fmt"

	"github.com/serpgap/serpgap/internal/engine"
	"github.com/serpgap/serpgap/internal/table"
)

// DiagnosticHint is one human-readable insight about a processed batch.
// Dashboards display these as chips on the batch card; clicking one shows
// Detail — written like an analyst explaining the finding in plain English.
type DiagnosticHint struct {
	// Key is a stable machine-readable identifier (used for dedup/ordering).
	Key string `json:"key"`
	// Level is "ok" | "info" | "warning" | "critical"
	Level string `json:"level"`
	// Title is a short label shown on the chip (≤ 5 words).
	Title string `json:"title"`
	// Detail is the full explanation shown on click/hover.
	Detail string `json:"detail"`
	// Value is an optional numeric value associated with this hint.
	Value *float64 `json:"value,omitempty"`
}

// computeDiagnostics derives human-readable diagnostic hints from a batch
// summary. Diagnostics are ordered: critical first, then warnings, then info.
func computeDiagnostics(s *engine.Summary) []DiagnosticHint {
	var hints []DiagnosticHint

	if s.Rows == 0 {
		hints = append(hints, DiagnosticHint{
			Key:   "empty_batch",
			Level: "warning",
			Title: "Empty export",
			Detail: "The export contained a valid header but no data rows. " +
				"Check the date range and filters used when generating it — " +
				"an export with zero rows usually means the property had no " +
				"impressions in the selected period, or the filter excluded everything.",
		})
		return hints
	}

	// Data quality.
	if pct := s.DefectivePct(); pct > 0 {
		v := pct
		var level, title, detail string
		switch {
		case pct >= 25:
			level = "critical"
			title = fmt.Sprintf("%.0f%% defective rows", pct)
			detail = fmt.Sprintf(
				"%.0f%% of rows are missing a query, landing page, impression "+
					"count or position, or carry unparseable numbers. At this rate the "+
					"percentile thresholds are computed from a skewed sample and the "+
					"classification is unreliable. Re-export the data, and check that "+
					"the export wasn't truncated or re-saved through a spreadsheet "+
					"tool that mangled the number formats.",
				pct,
			)
		case pct >= 5:
			level = "warning"
			title = fmt.Sprintf("%.0f%% defective rows", pct)
			detail = fmt.Sprintf(
				"%.0f%% of rows carry data-quality issues and were excluded from "+
					"the actionable buckets. This is worth a look — a localized export "+
					"(comma decimal separators) or partial rows at the end of the file "+
					"are the usual causes.",
				pct,
			)
		default:
			level = "info"
			title = fmt.Sprintf("%.1f%% minor defects", pct)
			detail = fmt.Sprintf(
				"A small share of rows (%.1f%%) had missing or unparseable fields. "+
					"They are kept in the output with their issues flagged but can "+
					"never become actionable candidates.",
				pct,
			)
		}
		hints = append(hints, DiagnosticHint{Key: "defective_rows", Level: level, Title: title, Detail: detail, Value: &v})
	}

	// Cannibalization pressure.
	if s.CannibalRows > 0 {
		pct := float64(s.CannibalRows) / float64(s.Rows) * 100
		v := pct
		level := "info"
		if pct >= 20 {
			level = "warning"
		}
		detail := fmt.Sprintf(
			"%d queries rank with two or more landing pages at once (%d rows, "+
				"%.0f%% of the batch). When several pages compete for the same query "+
				"they split clicks and dilute ranking signals. Start with the groups "+
				"whose pages have the most combined impressions: consolidate content "+
				"or set a canonical page per query.",
			s.CannibalGroups, s.CannibalRows, pct,
		)
		hints = append(hints, DiagnosticHint{
			Key:    "cannibalization",
			Level:  level,
			Title:  fmt.Sprintf("%d cannibal groups", s.CannibalGroups),
			Detail: detail,
			Value:  &v,
		})
	}

	// Rescue pressure — declining pages with recoverable traffic.
	if n := s.Candidates[table.CandidateRescue]; n > 0 {
		v := float64(n)
		pct := v / float64(s.Rows) * 100
		level := "info"
		if pct >= 10 {
			level = "warning"
		}
		detail := fmt.Sprintf(
			"%d rows combine a click decline with a large gap to their expected "+
				"traffic. These pages used to perform and still have the impressions "+
				"to recover — they are usually the fastest wins in the batch. "+
				"Prioritize them over expand candidates.",
			n,
		)
		hints = append(hints, DiagnosticHint{
			Key:    "rescue_pressure",
			Level:  level,
			Title:  fmt.Sprintf("%d rescue candidates", n),
			Detail: detail,
			Value:  &v,
		})
	}

	// Eligibility — how much of the batch is even in play.
	if s.Eligible > 0 && s.Rows > 0 {
		pct := float64(s.Eligible) / float64(s.Rows) * 100
		if pct < 50 {
			v := pct
			hints = append(hints, DiagnosticHint{
				Key:   "low_eligibility",
				Level: "info",
				Title: fmt.Sprintf("%.0f%% eligible", pct),
				Detail: fmt.Sprintf(
					"Only %.0f%% of rows are eligible for action — the rest are brand "+
						"queries, system pages, or rows with data defects. A heavily "+
						"branded query mix is normal for a well-known property, but if "+
						"this number seems low, review the configured brand terms.",
					pct,
				),
				Value: &v,
			})
		}
	}

	// All clear.
	if len(hints) == 0 {
		actionable := float64(s.Actionable())
		hints = append(hints, DiagnosticHint{
			Key:   "healthy",
			Level: "ok",
			Title: "Clean batch",
			Detail: fmt.Sprintf(
				"All %d rows parsed cleanly with no cannibalization detected. "+
					"%d rows cleared the action bar — work through rescue candidates "+
					"first, then scale, then expand.",
				s.Rows, int(actionable),
			),
			Value: &actionable,
		})
	}

	return hints
}
