package engine

import "github.com/serpgap/serpgap/internal/curve"

// Default tuning values, recovered from production use of the pipeline.
const (
	DefaultActionPercentile = 70
	DefaultWatchPercentile  = 40
	DefaultPeriodMonths     = 3
)

// NearMiss bounds the position zone that drives the expand score.
// Positions at or above Top are already ranking and earn no expand credit;
// positions in (Top, Peak] earn full credit; credit fades linearly to zero
// at Fade.
type NearMiss struct {
	Top  float64
	Peak float64
	Fade float64
}

// DefaultNearMiss returns the built-in near-miss zone.
func DefaultNearMiss() NearMiss {
	return NearMiss{Top: 5, Peak: 10, Fade: 20}
}

// factor returns the expand credit for a position, in [0,1].
func (nm NearMiss) factor(pos float64) float64 {
	switch {
	case pos <= nm.Top:
		return 0
	case pos <= nm.Peak:
		return 1
	case pos < nm.Fade:
		return (nm.Fade - pos) / (nm.Fade - nm.Peak)
	default:
		return 0
	}
}

// Config is the engine's tuning surface. The zero value is usable: every
// unset field falls back to the built-in defaults.
type Config struct {
	// Curve maps rank position to expected CTR.
	Curve *curve.Model

	// SERP scales the expected CTR down for rows carrying layout features.
	SERP *curve.Adjuster

	// ActionPercentile is the batch percentile a score must clear to make
	// a row actionable (rescue/scale/expand).
	ActionPercentile float64

	// WatchPercentile is the lower bar any score may clear for monitor.
	WatchPercentile float64

	// PeriodMonths is the length of the reporting period, used for the
	// monthly-search-volume estimate.
	PeriodMonths float64

	// NearMiss bounds the expand-score position zone.
	NearMiss NearMiss

	// BrandTerms mark queries as brand traffic (always lowercase).
	BrandTerms []string
}

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if c.Curve == nil {
		c.Curve = curve.Default()
	}
	if c.SERP == nil {
		c.SERP = curve.DefaultAdjuster()
	}
	if c.ActionPercentile <= 0 {
		c.ActionPercentile = DefaultActionPercentile
	}
	if c.WatchPercentile <= 0 {
		c.WatchPercentile = DefaultWatchPercentile
	}
	if c.PeriodMonths < 1 {
		c.PeriodMonths = DefaultPeriodMonths
	}
	if c.NearMiss == (NearMiss{}) {
		c.NearMiss = DefaultNearMiss()
	}
	return c
}
