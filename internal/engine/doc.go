// Package engine turns a normalized performance table into an enriched,
// classified one. It is a synchronous, side-effect-free batch transform:
// no I/O, no network, no goroutines — callers own all of that.
//
// Run applies five stages in order: quality/typing annotation, gap and
// opportunity scoring, percentile-threshold classification, and
// cannibalization detection with its candidate override. Classification is
// an inherent batch barrier — thresholds are percentiles of the live score
// distribution, so scoring of every row must complete first.
//
// score.go derives expected clicks, traffic gap and the rescue/scale/expand
// scores. classify.go holds the ordered candidate rule list (first match
// wins; the order is part of the contract). cannibal.go is the two-pass
// group-and-broadcast detector. stats.go provides the pure percentile
// helper.
package engine
