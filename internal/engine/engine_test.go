package engine

import (
	"testing"

	"github.com/serpgap/serpgap/internal/table"
)

// batchRow builds a clean, fully populated row for end-to-end runs.
func batchRow(query, page string, pos, impr, clicks, clicksPrev, imprPrev float64) *table.Row {
	return &table.Row{
		Query: query, LandingPage: page,
		AvgPosition: pos, Impressions: impr, Clicks: clicks,
		ClicksPrev: clicksPrev, HasClicksPrev: true,
		ImprPrev: imprPrev, HasImprPrev: true,
	}
}

// mixedBatch covers all five buckets plus a cannibal pair and a brand row.
func mixedBatch() *table.Table {
	return &table.Table{
		HasPrevCols: true,
		Rows: []*table.Row{
			// Steep drop with a huge recoverable gap → rescue.
			batchRow("best running shoes", "https://e.com/blog/shoes", 3, 9000, 50, 400, 9000),
			// Growing with headroom → scale.
			batchRow("shoe laces", "https://e.com/laces", 12, 400, 10, 8, 350),
			// Brand query → ineligible, ignored.
			batchRow("acme shoes", "https://e.com/acme", 9, 500, 100, 100, 500),
			// Same query on two pages → cannibal group.
			batchRow("shoes", "https://e.com/a", 6, 1000, 30, 30, 1000),
			batchRow("shoes", "https://e.com/b", 6, 1000, 30, 30, 1000),
			// Weak signal everywhere → ignore.
			batchRow("obscure term", "https://e.com/x", 50, 10, 1, 1, 10),
		},
	}
}

func TestRun_MixedBatch(t *testing.T) {
	tab := mixedBatch()
	s := Run(tab, Config{BrandTerms: []string{"acme"}})

	if s.Rows != 6 {
		t.Fatalf("Rows = %d, want 6", s.Rows)
	}

	want := map[int]string{
		0: table.CandidateRescue,
		1: table.CandidateScale,
		2: table.CandidateIgnore,
		3: table.CandidateExpand,
		4: table.CandidateExpand,
		5: table.CandidateIgnore,
	}
	for i, wantType := range want {
		if got := tab.Rows[i].CandidateType; got != wantType {
			t.Errorf("row %d (%s): CandidateType = %q, want %q",
				i, tab.Rows[i].Query, got, wantType)
		}
	}

	if s.CannibalGroups != 1 || s.CannibalRows != 2 {
		t.Errorf("cannibal groups, rows = %d, %d, want 1, 2", s.CannibalGroups, s.CannibalRows)
	}
	if tab.Rows[3].CannibalGroup == "" || tab.Rows[3].CannibalGroup != tab.Rows[4].CannibalGroup {
		t.Error("cannibal pair should share a group id")
	}
	if tab.Rows[0].CannibalGroup != "" {
		t.Error("unique query should carry no group id")
	}

	if s.Eligible != 5 {
		t.Errorf("Eligible = %d, want 5 (brand row excluded)", s.Eligible)
	}
	if got := s.Actionable(); got != 4 {
		t.Errorf("Actionable = %d, want 4", got)
	}
}

func TestRun_EveryRowCounted(t *testing.T) {
	tab := mixedBatch()
	s := Run(tab, Config{BrandTerms: []string{"acme"}})

	total := 0
	for _, n := range s.Candidates {
		total += n
	}
	if total != s.Rows {
		t.Errorf("candidate counts sum to %d, want %d", total, s.Rows)
	}
	for i, r := range tab.Rows {
		if r.CandidateType == "" {
			t.Errorf("row %d left unclassified", i)
		}
	}
}

func TestRun_PreservesRowOrderAndInput(t *testing.T) {
	tab := mixedBatch()
	queries := make([]string, tab.Len())
	clicks := make([]float64, tab.Len())
	for i, r := range tab.Rows {
		queries[i] = r.Query
		clicks[i] = r.Clicks
	}

	Run(tab, Config{})

	if tab.Len() != len(queries) {
		t.Fatalf("row count changed: %d", tab.Len())
	}
	for i, r := range tab.Rows {
		if r.Query != queries[i] {
			t.Errorf("row %d query changed: %q → %q", i, queries[i], r.Query)
		}
		if r.Clicks != clicks[i] {
			t.Errorf("row %d clicks changed: %v → %v", i, clicks[i], r.Clicks)
		}
	}
}

func TestRun_SingleZeroRow(t *testing.T) {
	tab := &table.Table{Rows: []*table.Row{
		{Query: "q", LandingPage: "https://e.com/p"},
	}}
	s := Run(tab, Config{})

	r := tab.Rows[0]
	if r.CandidateType != table.CandidateIgnore {
		t.Errorf("CandidateType = %q, want ignore", r.CandidateType)
	}
	if r.DataOK {
		t.Error("DataOK = true for a row with no impressions or position")
	}
	if r.EngineStatus != StatusNoData {
		t.Errorf("EngineStatus = %q, want %q", r.EngineStatus, StatusNoData)
	}
	if s.Defective != 1 {
		t.Errorf("Defective = %d, want 1", s.Defective)
	}
}

func TestRun_EmptyTable(t *testing.T) {
	tab := &table.Table{}
	s := Run(tab, Config{})
	if s.Rows != 0 || s.Eligible != 0 || len(s.Candidates) != 0 {
		t.Errorf("empty batch summary = %+v", s)
	}
	if s.DefectivePct() != 0 {
		t.Errorf("DefectivePct = %v, want 0", s.DefectivePct())
	}
}

func TestRun_BrandAndSystemExcluded(t *testing.T) {
	tab := &table.Table{Rows: []*table.Row{
		batchRow("acme login", "https://e.com/login", 1, 5000, 4000, 4000, 5000),
		batchRow("project tips", "https://e.com/blog/tips", 4, 2000, 20, 200, 2000),
	}}
	Run(tab, Config{BrandTerms: []string{"acme"}})

	if tab.Rows[0].Eligible {
		t.Error("brand query on a system page marked eligible")
	}
	if tab.Rows[0].CandidateType != table.CandidateIgnore {
		t.Errorf("brand row CandidateType = %q, want ignore", tab.Rows[0].CandidateType)
	}
	if !tab.Rows[1].Eligible {
		t.Error("clean non-brand row should be eligible")
	}
}

func TestRun_MaxRescueRowWinsRescue(t *testing.T) {
	// The row with the largest drop and gap must land in rescue, not a
	// lower-priority bucket, even if its other scores also clear bars.
	tab := &table.Table{Rows: []*table.Row{
		batchRow("big loser", "https://e.com/big", 2, 20000, 100, 3000, 20000),
		batchRow("small a", "https://e.com/a", 15, 100, 2, 2, 100),
		batchRow("small b", "https://e.com/b", 15, 100, 2, 2, 100),
		batchRow("small c", "https://e.com/c", 15, 100, 2, 2, 100),
	}}
	Run(tab, Config{})

	if got := tab.Rows[0].CandidateType; got != table.CandidateRescue {
		t.Errorf("CandidateType = %q, want rescue", got)
	}
	if tab.Rows[0].CandidateReason != "high_drop_high_potential_gap" {
		t.Errorf("CandidateReason = %q", tab.Rows[0].CandidateReason)
	}
}
