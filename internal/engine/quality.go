package engine

import (
	"strings"

	"github.com/serpgap/serpgap/internal/table"
)

// Engine status values summarizing whether a row carries enough signal.
const (
	StatusOK                  = "ok"
	StatusNoData              = "no_data"
	StatusInsufficientSignals = "insufficient_signals"
)

// annotate runs the quality/typing stage: page and query type tags, the
// structural data-quality issues, and the eligibility flag. Rows are never
// removed — ineligible rows stay in the table so downstream consumers can
// always recover them by identity.
func annotate(t *table.Table, cfg Config) {
	for _, r := range t.Rows {
		r.PageType = pageType(r.LandingPage)
		r.QueryType = queryType(r.Query, cfg.BrandTerms)

		structural := 0
		if r.Query == "" {
			r.AddIssue("missing_query")
			structural++
		}
		if r.LandingPage == "" {
			r.AddIssue("missing_url")
			structural++
		}
		if r.Impressions <= 0 {
			r.AddIssue("missing_impressions")
			structural++
		}
		if r.AvgPosition <= 0 {
			r.AddIssue("missing_position")
			structural++
		}
		if !r.HasClicksPrev && !r.HasClicksPct {
			r.AddIssue("missing_prev_data")
		}

		r.DataOK = structural == 0
		r.Eligible = r.DataOK && r.PageType != table.PageSystem && r.QueryType != table.QueryBrand
	}
}

// pageType buckets a landing page URL by its path shape.
func pageType(url string) string {
	if url == "" {
		return "unknown"
	}
	u := strings.ToLower(url)
	switch {
	case strings.Contains(u, "/login") || strings.Contains(u, "/app") || strings.Contains(u, "/user"):
		return table.PageSystem
	case strings.Contains(u, "/blog/"):
		return table.PageBlog
	case strings.Contains(u, "/template"):
		return table.PageTemplate
	case strings.Contains(u, "/features/"):
		return table.PageFeature
	default:
		return table.PageOther
	}
}

// queryType marks brand traffic. Queries are already lowercase after
// normalization, so brand terms match by plain substring.
func queryType(q string, brandTerms []string) string {
	if q == "" {
		return "unknown"
	}
	for _, term := range brandTerms {
		if term != "" && strings.Contains(q, strings.ToLower(term)) {
			return table.QueryBrand
		}
	}
	if strings.Contains(q, "login") || strings.Contains(q, "sign in") {
		return table.QueryBrand
	}
	return table.QueryNonBrand
}
