package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/serpgap/serpgap/internal/alerts"
	"github.com/serpgap/serpgap/internal/store"
	"github.com/serpgap/serpgap/internal/table"
)

// defaultRowLimit caps row listings unless the caller asks for more.
const defaultRowLimit = 100

// Handler is the HTTP handler for all /api/v1/* endpoints.
// It reads batches from the store and returns JSON responses.
type Handler struct {
	store  *store.Store
	alerts *alerts.Engine
	mux    *http.ServeMux
}

// New creates a Handler wired to the given batch store and alert engine
// (which may be nil) and registers all routes.
func New(st *store.Store, al *alerts.Engine) http.Handler {
	h := &Handler{store: st, alerts: al, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/batches", h.listBatches)
	h.mux.HandleFunc("/api/v1/batches/", h.batchSubtree) // {id}, {id}/rows, {id}/cannibals, {id}/diagnostics
	h.mux.HandleFunc("/api/v1/alerts", h.listAlerts)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// BuildOverview aggregates all live batches into the overview payload.
// Shared with the WebSocket hub so both surfaces report the same numbers.
func BuildOverview(st *store.Store, al *alerts.Engine) OverviewResponse {
	entries := st.List()
	resp := OverviewResponse{
		BatchCount:  len(entries),
		Candidates:  make(map[string]int, 5),
		AlertCount:  len(al.Active()),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
	for i, e := range entries {
		if i == 0 {
			resp.LatestBatch = e.Batch.ID
		}
		s := e.Batch.Summary
		resp.Rows += s.Rows
		resp.Eligible += s.Eligible
		resp.Defective += s.Defective
		resp.CannibalGroups += s.CannibalGroups
		for typ, n := range s.Candidates {
			resp.Candidates[typ] += n
		}
	}
	return resp
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health — the cross-batch overview.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, BuildOverview(h.store, h.alerts))
}

// listBatches returns GET /api/v1/batches — all live batch summaries.
func (h *Handler) listBatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	entries := h.store.List()
	out := make([]BatchResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toBatchResponse(e))
	}
	jsonResp(w, http.StatusOK, out)
}

// batchSubtree dispatches GET /api/v1/batches/{id}[/rows|/cannibals].
func (h *Handler) batchSubtree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/batches/")
	if rest == "" {
		h.listBatches(w, r)
		return
	}
	id, sub, _ := strings.Cut(rest, "/")

	e, ok := h.store.Get(id)
	if !ok || time.Since(e.UpdatedAt) > h.store.TTL() {
		jsonErr(w, http.StatusNotFound, "batch not found")
		return
	}

	switch sub {
	case "":
		jsonResp(w, http.StatusOK, toBatchResponse(e))
	case "rows":
		h.batchRows(w, r, e)
	case "cannibals":
		h.batchCannibals(w, e)
	case "diagnostics":
		jsonResp(w, http.StatusOK, computeDiagnostics(e.Batch.Summary))
	default:
		jsonErr(w, http.StatusNotFound, "unknown batch resource")
	}
}

// batchRows returns the batch's classified rows, optionally filtered by
// candidate type (?type=rescue) and capped by ?limit=.
func (h *Handler) batchRows(w http.ResponseWriter, r *http.Request, e *store.Entry) {
	typ := r.URL.Query().Get("type")
	limit := defaultRowLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonErr(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	out := make([]RowResponse, 0, limit)
	for _, row := range e.Batch.Table.Rows {
		if typ != "" && row.CandidateType != typ {
			continue
		}
		out = append(out, toRowResponse(row))
		if len(out) >= limit {
			break
		}
	}
	jsonResp(w, http.StatusOK, out)
}

// batchCannibals returns the batch's cannibalization groups, each with its
// competing pages.
func (h *Handler) batchCannibals(w http.ResponseWriter, e *store.Entry) {
	groups := make(map[string]*CannibalGroupResponse)
	var order []string
	for _, row := range e.Batch.Table.Rows {
		if row.CannibalGroup == "" {
			continue
		}
		g, ok := groups[row.CannibalGroup]
		if !ok {
			g = &CannibalGroupResponse{GroupID: row.CannibalGroup, Query: row.Query}
			groups[row.CannibalGroup] = g
			order = append(order, row.CannibalGroup)
		}
		g.Pages = append(g.Pages, CannibalPage{
			LandingPage:   row.LandingPage,
			AvgPosition:   row.AvgPosition,
			Impressions:   row.Impressions,
			Clicks:        row.Clicks,
			CandidateType: row.CandidateType,
		})
	}

	out := make([]CannibalGroupResponse, 0, len(order))
	for _, id := range order {
		g := groups[id]
		// Strongest page first.
		sort.Slice(g.Pages, func(i, j int) bool { return g.Pages[i].Clicks > g.Pages[j].Clicks })
		out = append(out, *g)
	}
	jsonResp(w, http.StatusOK, out)
}

// listAlerts returns GET /api/v1/alerts — firing and recently resolved alerts.
func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	active := h.alerts.Active()
	if active == nil {
		active = []*alerts.Alert{}
	}
	jsonResp(w, http.StatusOK, active)
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

// toBatchResponse maps a store.Entry to its JSON representation.
func toBatchResponse(e *store.Entry) BatchResponse {
	s := e.Batch.Summary
	return BatchResponse{
		ID:             e.Batch.ID,
		Source:         e.Batch.Source,
		Rows:           s.Rows,
		Eligible:       s.Eligible,
		Defective:      s.Defective,
		Candidates:     s.Candidates,
		CannibalGroups: s.CannibalGroups,
		CannibalRows:   s.CannibalRows,
		Thresholds:     s.Thresholds,
		DurationMs:     float64(s.Duration.Microseconds()) / 1000,
		ProcessedAt:    e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// toRowResponse maps a table row to its JSON representation.
func toRowResponse(r *table.Row) RowResponse {
	return RowResponse{
		Query:           r.Query,
		LandingPage:     r.LandingPage,
		AvgPosition:     r.AvgPosition,
		Impressions:     r.Impressions,
		Clicks:          r.Clicks,
		ExpectedCTR:     r.ExpectedCTR,
		ExpectedClicks:  r.ExpectedClicks,
		TrafficGap:      r.TrafficGap,
		RescueScore:     r.RescueScore,
		ScaleScore:      r.ScaleScore,
		ExpandScore:     r.ExpandScore,
		CandidateType:   r.CandidateType,
		CandidateReason: r.CandidateReason,
		CannibalGroupID: r.CannibalGroup,
		Eligible:        r.Eligible,
	}
}
