package table

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Canonical column names of the normalized schema.
const (
	ColQuery       = "query"
	ColLandingPage = "landing_page"
	ColAvgPosition = "avg_position"
	ColImpressions = "impressions"
	ColClicks      = "clicks"
	ColClicksPrev  = "clicks_prev"
	ColImprPrev    = "impr_prev"
	ColClicksPct   = "clicks_pct"
	ColImprPct     = "impr_pct"
	ColSERP        = "serp_features"
)

// requiredColumns must all be present after normalization; a missing one is
// a fatal SchemaError because every downstream stage assumes the canonical
// schema exists.
var requiredColumns = []string{
	ColQuery, ColLandingPage, ColAvgPosition, ColImpressions, ColClicks,
}

// headerAliases maps normalized source headers to canonical names. Both the
// raw search-console export schema and the pre-processed schema are covered.
var headerAliases = map[string]string{
	"query":   ColQuery,
	"keyword": ColQuery,

	"landing page": ColLandingPage,
	"landing_page": ColLandingPage,
	"url":          ColLandingPage,
	"page":         ColLandingPage,

	"avg. position": ColAvgPosition,
	"avg position":  ColAvgPosition,
	"avg_position":  ColAvgPosition,
	"position":      ColAvgPosition,

	"impressions": ColImpressions,

	"url clicks": ColClicks,
	"clicks":     ColClicks,

	"clicks_prev": ColClicksPrev,
	"impr_prev":   ColImprPrev,

	"clicks percent change":     ColClicksPct,
	"clicks_pct":                ColClicksPct,
	"impression percent change": ColImprPct,
	"impr_pct":                  ColImprPct,

	"serp features": ColSERP,
	"serp_features": ColSERP,
}

// SchemaError reports a required input column that is absent after header
// normalization. It is fatal: no partial output is produced.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("table: required column %q missing after header normalization", e.Column)
}

// NormalizeHeader lowercases and NFKC-normalizes a raw column header and
// collapses runs of whitespace to single spaces.
func NormalizeHeader(name string) string {
	return collapseSpace(strings.ToLower(norm.NFKC.String(name)))
}

// NormalizeQuery canonicalizes query text so equal queries compare equal
// regardless of incidental formatting. Applied exactly once, at ingest.
func NormalizeQuery(q string) string {
	return collapseSpace(strings.ToLower(norm.NFKC.String(q)))
}

// CanonicalColumn resolves a raw header to its canonical name. Unknown
// headers get a sanitized snake_case pass-through name and ok=false.
func CanonicalColumn(raw string) (name string, known bool) {
	n := NormalizeHeader(raw)
	if canonical, ok := headerAliases[n]; ok {
		return canonical, true
	}
	return sanitizeColumn(n), false
}

// sanitizeColumn turns an arbitrary normalized header into a snake_case
// identifier for pass-through columns.
func sanitizeColumn(n string) string {
	var b strings.Builder
	prevUnderscore := false
	for _, r := range n {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevUnderscore = false
		default:
			if !prevUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				prevUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}

// collapseSpace trims and replaces internal whitespace runs with one space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
