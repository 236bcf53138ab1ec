package engine

import (
	"github.com/google/uuid"

	"github.com/serpgap/serpgap/internal/table"
)

// cannibalSeed namespaces the group-id derivation so ids are stable across
// runs and processes but never collide with other uses of the query text.
const cannibalSeed = "serpgap:cannibal:"

// GroupID returns the stable cannibalization group identifier for a
// normalized query.
func GroupID(query string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(cannibalSeed+query)).String()
}

// detectCannibalization groups rows by their (already normalized) query and
// flags every group that ranks through two or more distinct landing pages.
//
// Explicit two-pass: first build the grouping index, then broadcast the
// group id and candidate override onto every member. It runs after the
// classifier so the non-ignore override is never silently lost; rows the
// classifier would have ignored are promoted to monitor.
func detectCannibalization(t *table.Table) (groups, flagged int) {
	// Pass 1: index rows and distinct landing pages per query.
	members := make(map[string][]*table.Row)
	pages := make(map[string]map[string]struct{})
	for _, r := range t.Rows {
		if r.Query == "" || r.LandingPage == "" {
			continue
		}
		members[r.Query] = append(members[r.Query], r)
		if pages[r.Query] == nil {
			pages[r.Query] = make(map[string]struct{})
		}
		pages[r.Query][r.LandingPage] = struct{}{}
	}

	// Pass 2: broadcast the group id and force candidate status.
	for q, urls := range pages {
		if len(urls) < 2 {
			continue
		}
		groups++
		id := GroupID(q)
		for _, r := range members[q] {
			r.CannibalGroup = id
			r.AnalyzeCandidate = true
			flagged++
			if r.CandidateType == table.CandidateIgnore {
				r.CandidateType = table.CandidateMonitor
				r.CandidateReason = "cannibalization_detected"
			}
		}
	}
	return groups, flagged
}
