// Package curve models the expected click-through rate of a search result
// as a function of its rank position.
//
// The model is a monotonically non-increasing step curve keyed by position
// bands: a position falls into the first band whose upper edge it does not
// exceed, so fractional positions resolve by the same rule as integer ones
// (position 2.4 uses the ≤3 band). Positions below 1 clamp to 1; positions
// beyond the last band use the floor value.
//
// Adjuster applies search-result-layout penalties on top of the base curve:
// each recognized feature in a row's feature list subtracts a fixed share
// of the expected CTR, with the cumulative penalty capped.
package curve

import (
	"fmt"
	"strings"
)

// Band is one step of the CTR curve: positions up to and including UpTo
// carry the expected CTR.
type Band struct {
	UpTo float64 `yaml:"up_to" json:"up_to"`
	CTR  float64 `yaml:"ctr" json:"ctr"`
}

// Model is an immutable position→CTR lookup.
type Model struct {
	bands []Band
	floor float64
}

// New builds a Model from bands and a floor CTR used beyond the last band.
// Bands must be in strictly ascending UpTo order with non-increasing CTRs,
// all in [0,1]; the floor must not exceed the last band's CTR.
func New(bands []Band, floor float64) (*Model, error) {
	if len(bands) == 0 {
		return nil, fmt.Errorf("curve: at least one band is required")
	}
	if floor < 0 || floor > 1 {
		return nil, fmt.Errorf("curve: floor %v outside [0,1]", floor)
	}
	for i, b := range bands {
		if b.CTR < 0 || b.CTR > 1 {
			return nil, fmt.Errorf("curve: band %d ctr %v outside [0,1]", i, b.CTR)
		}
		if i > 0 {
			if b.UpTo <= bands[i-1].UpTo {
				return nil, fmt.Errorf("curve: band %d up_to %v not above previous %v", i, b.UpTo, bands[i-1].UpTo)
			}
			if b.CTR > bands[i-1].CTR {
				return nil, fmt.Errorf("curve: band %d ctr %v above previous %v — curve must be non-increasing", i, b.CTR, bands[i-1].CTR)
			}
		}
	}
	if floor > bands[len(bands)-1].CTR {
		return nil, fmt.Errorf("curve: floor %v above last band ctr %v", floor, bands[len(bands)-1].CTR)
	}
	out := &Model{bands: make([]Band, len(bands)), floor: floor}
	copy(out.bands, bands)
	return out, nil
}

// Default returns the built-in organic CTR curve.
func Default() *Model {
	m, err := New([]Band{
		{UpTo: 1, CTR: 0.28},
		{UpTo: 2, CTR: 0.15},
		{UpTo: 3, CTR: 0.11},
		{UpTo: 4, CTR: 0.08},
		{UpTo: 5, CTR: 0.06},
		{UpTo: 10, CTR: 0.03},
	}, 0.01)
	if err != nil {
		panic(err) // static table, cannot fail
	}
	return m
}

// Expected returns the expected CTR for a rank position. The result is
// always in [0,1] and non-increasing in pos.
func (m *Model) Expected(pos float64) float64 {
	if pos < 1 {
		pos = 1
	}
	for _, b := range m.bands {
		if pos <= b.UpTo {
			return b.CTR
		}
	}
	return m.floor
}

// Floor returns the CTR used beyond the last band.
func (m *Model) Floor() float64 { return m.floor }

// Adjuster scales an expected CTR down for competing search-result-layout
// features. The zero value applies no adjustment.
type Adjuster struct {
	penalties  map[string]float64
	maxPenalty float64
}

// NewAdjuster builds an Adjuster from per-feature penalties (each a share
// of CTR lost, in [0,1]) and a cumulative cap.
func NewAdjuster(penalties map[string]float64, maxPenalty float64) (*Adjuster, error) {
	if maxPenalty < 0 || maxPenalty > 1 {
		return nil, fmt.Errorf("curve: max penalty %v outside [0,1]", maxPenalty)
	}
	for f, p := range penalties {
		if p < 0 || p > 1 {
			return nil, fmt.Errorf("curve: penalty for %q is %v, outside [0,1]", f, p)
		}
	}
	cp := make(map[string]float64, len(penalties))
	for f, p := range penalties {
		cp[f] = p
	}
	return &Adjuster{penalties: cp, maxPenalty: maxPenalty}, nil
}

// DefaultAdjuster returns the built-in layout penalty table.
func DefaultAdjuster() *Adjuster {
	a, err := NewAdjuster(map[string]float64{
		"featured_snippet": 0.40,
		"paa":              0.15,
		"video":            0.25,
		"images":           0.10,
		"shopping":         0.20,
	}, 0.70)
	if err != nil {
		panic(err)
	}
	return a
}

// Adjust applies the penalty for a comma-separated feature list to a base
// CTR. Unknown features are ignored; an empty list returns the base CTR
// unchanged.
func (a *Adjuster) Adjust(base float64, features string) float64 {
	if a == nil || len(a.penalties) == 0 || strings.TrimSpace(features) == "" {
		return base
	}
	var penalty float64
	for _, f := range strings.Split(features, ",") {
		if p, ok := a.penalties[strings.TrimSpace(strings.ToLower(f))]; ok {
			penalty += p
		}
	}
	if penalty > a.maxPenalty {
		penalty = a.maxPenalty
	}
	return base * (1 - penalty)
}
