package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/serpgap/serpgap/internal/alerts"
	"github.com/serpgap/serpgap/internal/api"
	"github.com/serpgap/serpgap/internal/config"
	"github.com/serpgap/serpgap/internal/engine"
	"github.com/serpgap/serpgap/internal/store"
	"github.com/serpgap/serpgap/internal/table"
)

// --- test helpers -----------------------------------------------------------

func newStore(batches ...*store.Batch) *store.Store {
	st := store.New(time.Hour)
	for _, b := range batches {
		st.Put(b)
	}
	return st
}

func testBatch(id string) *store.Batch {
	group := engine.GroupID("shoes")
	tab := &table.Table{Rows: []*table.Row{
		{
			Query: "shoes", LandingPage: "https://e.com/a",
			AvgPosition: 4, Impressions: 1000, Clicks: 30,
			CandidateType: table.CandidateExpand, CannibalGroup: group, Eligible: true,
		},
		{
			Query: "shoes", LandingPage: "https://e.com/b",
			AvgPosition: 8, Impressions: 500, Clicks: 60,
			CandidateType: table.CandidateMonitor, CannibalGroup: group, Eligible: true,
		},
		{
			Query: "boots", LandingPage: "https://e.com/c",
			AvgPosition: 2, Impressions: 2000, Clicks: 10,
			CandidateType: table.CandidateRescue, Eligible: true,
		},
	}}
	return &store.Batch{
		ID:     id,
		Source: "/in/" + id + ".csv",
		Table:  tab,
		Summary: &engine.Summary{
			Rows: 3, Eligible: 3,
			Candidates: map[string]int{
				table.CandidateRescue:  1,
				table.CandidateExpand:  1,
				table.CandidateMonitor: 1,
			},
			CannibalGroups: 1,
			CannibalRows:   2,
			GeneratedAt:    time.Now().UTC(),
		},
	}
}

func newServer(t *testing.T, st *store.Store) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(api.New(st, alerts.New(config.AlertsConfig{})))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

// --- tests ------------------------------------------------------------------

func TestHealth_Overview(t *testing.T) {
	srv := newServer(t, newStore(testBatch("jan"), testBatch("feb")))

	var got api.OverviewResponse
	if code := get(t, srv.URL+"/api/v1/health", &got); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if got.BatchCount != 2 {
		t.Errorf("BatchCount = %d, want 2", got.BatchCount)
	}
	if got.Rows != 6 {
		t.Errorf("Rows = %d, want 6", got.Rows)
	}
	if got.Candidates[table.CandidateRescue] != 2 {
		t.Errorf("rescue count = %d, want 2", got.Candidates[table.CandidateRescue])
	}
	if got.GeneratedAt == "" {
		t.Error("GeneratedAt missing")
	}
}

func TestListBatches(t *testing.T) {
	srv := newServer(t, newStore(testBatch("jan")))

	var got []api.BatchResponse
	if code := get(t, srv.URL+"/api/v1/batches", &got); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(got) != 1 {
		t.Fatalf("batches = %d, want 1", len(got))
	}
	b := got[0]
	if b.ID != "jan" || b.Rows != 3 || b.CannibalGroups != 1 {
		t.Errorf("batch = %+v", b)
	}
	if b.ProcessedAt == "" {
		t.Error("ProcessedAt missing")
	}
}

func TestGetBatch_NotFound(t *testing.T) {
	srv := newServer(t, newStore())
	if code := get(t, srv.URL+"/api/v1/batches/nope", nil); code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", code)
	}
}

func TestBatchRows_FilterAndLimit(t *testing.T) {
	srv := newServer(t, newStore(testBatch("jan")))

	var all []api.RowResponse
	get(t, srv.URL+"/api/v1/batches/jan/rows", &all)
	if len(all) != 3 {
		t.Fatalf("rows = %d, want 3", len(all))
	}

	var rescues []api.RowResponse
	get(t, srv.URL+"/api/v1/batches/jan/rows?type=rescue", &rescues)
	if len(rescues) != 1 || rescues[0].Query != "boots" {
		t.Errorf("filtered rows = %+v, want the boots rescue row", rescues)
	}

	var limited []api.RowResponse
	get(t, srv.URL+"/api/v1/batches/jan/rows?limit=2", &limited)
	if len(limited) != 2 {
		t.Errorf("limited rows = %d, want 2", len(limited))
	}

	if code := get(t, srv.URL+"/api/v1/batches/jan/rows?limit=abc", nil); code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", code)
	}
}

func TestBatchCannibals(t *testing.T) {
	srv := newServer(t, newStore(testBatch("jan")))

	var got []api.CannibalGroupResponse
	if code := get(t, srv.URL+"/api/v1/batches/jan/cannibals", &got); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(got) != 1 {
		t.Fatalf("groups = %d, want 1", len(got))
	}
	g := got[0]
	if g.Query != "shoes" || len(g.Pages) != 2 {
		t.Fatalf("group = %+v", g)
	}
	// Pages sorted strongest first by clicks.
	if g.Pages[0].Clicks < g.Pages[1].Clicks {
		t.Errorf("pages not sorted by clicks: %v, %v", g.Pages[0].Clicks, g.Pages[1].Clicks)
	}
}

func TestBatchDiagnostics(t *testing.T) {
	srv := newServer(t, newStore(testBatch("jan")))

	var got []map[string]interface{}
	if code := get(t, srv.URL+"/api/v1/batches/jan/diagnostics", &got); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(got) == 0 {
		t.Fatal("no diagnostic hints returned")
	}
	for _, h := range got {
		if h["key"] == "" || h["title"] == "" || h["detail"] == "" {
			t.Errorf("hint missing fields: %v", h)
		}
	}
}

func TestUnknownBatchResource(t *testing.T) {
	srv := newServer(t, newStore(testBatch("jan")))
	if code := get(t, srv.URL+"/api/v1/batches/jan/bogus", nil); code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newServer(t, newStore())
	resp, err := http.Post(srv.URL+"/api/v1/batches", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestListAlerts_EmptyIsArray(t *testing.T) {
	srv := newServer(t, newStore())
	resp, err := http.Get(srv.URL + "/api/v1/alerts")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(raw) != "[]" {
		t.Errorf("body = %s, want []", raw)
	}
}

// --- auth middleware --------------------------------------------------------

func authedServer(t *testing.T, mode, key string) *httptest.Server {
	t.Helper()
	inner := api.New(newStore(testBatch("jan")), alerts.New(config.AlertsConfig{}))
	srv := httptest.NewServer(api.APIKeyMiddleware(mode, "X-API-Key", key, inner))
	t.Cleanup(srv.Close)
	return srv
}

func TestAPIKeyMiddleware_RejectsMissingKey(t *testing.T) {
	srv := authedServer(t, "apikey", "secret")
	if code := get(t, srv.URL+"/api/v1/health", nil); code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", code)
	}
}

func TestAPIKeyMiddleware_AcceptsCorrectKey(t *testing.T) {
	srv := authedServer(t, "apikey", "secret")
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/health", nil)
	req.Header.Set("X-API-Key", "secret")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestAPIKeyMiddleware_RejectsWrongKey(t *testing.T) {
	srv := authedServer(t, "apikey", "secret")
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/health", nil)
	req.Header.Set("X-API-Key", "wrong")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestAPIKeyMiddleware_NoneModePassesThrough(t *testing.T) {
	srv := authedServer(t, "none", "secret")
	if code := get(t, srv.URL+"/api/v1/health", nil); code != http.StatusOK {
		t.Errorf("status = %d, want 200 without key in none mode", code)
	}
}
