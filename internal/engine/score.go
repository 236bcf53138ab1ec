package engine

import (
	"math"

	"github.com/serpgap/serpgap/internal/table"
)

// Problem types summarizing what is happening to a row period-over-period.
const (
	ProblemNoData              = "no_data"
	ProblemInsufficientSignals = "insufficient_signals"
	ProblemCTRORankDrop        = "ctr_or_rank_drop"
	ProblemDemandDrop          = "demand_drop"
	ProblemGrowing             = "growing"
	ProblemStable              = "stable"
)

// score runs the gap and opportunity-score stage. Per row, entirely local:
// this stage is embarrassingly parallel, but the classifier must not start
// until it has finished for the whole batch.
func score(t *table.Table, cfg Config) {
	for _, r := range t.Rows {
		inferPrev(r)

		// Expected CTR is a function of position (and, when present, the
		// layout features merged in by the enrichment stage).
		base := cfg.Curve.Expected(r.AvgPosition)
		r.ExpectedCTR = cfg.SERP.Adjust(base, r.SERPFeatures)

		// Zero impressions must yield zero expected clicks, never an
		// undefined value.
		if r.Impressions > 0 {
			r.ExpectedClicks = r.Impressions * r.ExpectedCTR
		}
		r.TrafficGap = r.ExpectedClicks - r.Clicks

		if r.HasClicksPrev {
			r.ClicksDrop = math.Max(r.ClicksPrev-r.Clicks, 0)
			r.ClicksGain = math.Max(r.Clicks-r.ClicksPrev, 0)
		}

		imprPrev := 0.0
		if r.HasImprPrev {
			imprPrev = r.ImprPrev
		}
		r.MSVEst = (math.Max(r.Impressions, 0) + imprPrev) / 2 / cfg.PeriodMonths
		if r.MSVEst > 0 {
			r.Utilization = r.Clicks / r.MSVEst
			r.HasUtilization = true
		}

		gapPos := math.Max(r.TrafficGap, 0)
		volume := math.Sqrt(math.Max(r.Impressions, 0))
		r.RescueScore = gapPos * (1 + math.Sqrt(r.ClicksDrop))
		r.ScaleScore = volume * (1 + math.Sqrt(r.ClicksGain))
		r.ExpandScore = volume * cfg.NearMiss.factor(r.AvgPosition)

		r.ProblemType = problemType(r)
		switch r.ProblemType {
		case ProblemNoData:
			r.EngineStatus = StatusNoData
		case ProblemInsufficientSignals:
			r.EngineStatus = StatusInsufficientSignals
		default:
			r.EngineStatus = StatusOK
		}
	}
}

// inferPrev back-computes prior-period counts from percent-change ratios
// when the export did not carry explicit _prev columns.
// prev = last / (1 + pct); a pct of -100% leaves prev undefined.
func inferPrev(r *table.Row) {
	if !r.HasClicksPrev && r.HasClicksPct && 1+r.ClicksPct > 0 {
		r.ClicksPrev = r.Clicks / (1 + r.ClicksPct)
		r.HasClicksPrev = true
	}
	if !r.HasImprPrev && r.HasImprPct && 1+r.ImprPct > 0 {
		r.ImprPrev = r.Impressions / (1 + r.ImprPct)
		r.HasImprPrev = true
	}
}

// problemType buckets a row's period-over-period behaviour.
func problemType(r *table.Row) string {
	switch {
	case !r.DataOK:
		return ProblemNoData
	case !r.HasClicksPrev || !r.HasImprPrev:
		return ProblemInsufficientSignals
	case r.ClicksDrop > 0 && r.TrafficGap > 0:
		return ProblemCTRORankDrop
	case r.Impressions < r.ImprPrev:
		return ProblemDemandDrop
	case r.ClicksGain > 0:
		return ProblemGrowing
	default:
		return ProblemStable
	}
}
