package api

import "github.com/serpgap/serpgap/internal/engine"

// OverviewResponse is the payload for GET /api/v1/health and the WebSocket
// broadcast envelope.
type OverviewResponse struct {
	BatchCount     int            `json:"batch_count"`
	Rows           int            `json:"rows"`
	Eligible       int            `json:"eligible"`
	Defective      int            `json:"defective"`
	Candidates     map[string]int `json:"candidates"`
	CannibalGroups int            `json:"cannibal_groups"`
	AlertCount     int            `json:"alert_count"`
	LatestBatch    string         `json:"latest_batch,omitempty"`
	GeneratedAt    string         `json:"generated_at"` // RFC3339
}

// BatchResponse is one batch entry in GET /api/v1/batches or
// GET /api/v1/batches/{id}.
type BatchResponse struct {
	ID             string            `json:"id"`
	Source         string            `json:"source"`
	Rows           int               `json:"rows"`
	Eligible       int               `json:"eligible"`
	Defective      int               `json:"defective"`
	Candidates     map[string]int    `json:"candidates"`
	CannibalGroups int               `json:"cannibal_groups"`
	CannibalRows   int               `json:"cannibal_rows"`
	Thresholds     engine.Thresholds `json:"thresholds"`
	DurationMs     float64           `json:"duration_ms"`
	ProcessedAt    string            `json:"processed_at"` // RFC3339
}

// RowResponse is one classified row in GET /api/v1/batches/{id}/rows.
type RowResponse struct {
	Query           string  `json:"query"`
	LandingPage     string  `json:"landing_page"`
	AvgPosition     float64 `json:"avg_position"`
	Impressions     float64 `json:"impressions"`
	Clicks          float64 `json:"clicks"`
	ExpectedCTR     float64 `json:"expected_ctr"`
	ExpectedClicks  float64 `json:"expected_clicks"`
	TrafficGap      float64 `json:"traffic_gap"`
	RescueScore     float64 `json:"rescue_score"`
	ScaleScore      float64 `json:"scale_score"`
	ExpandScore     float64 `json:"expand_score"`
	CandidateType   string  `json:"candidate_type"`
	CandidateReason string  `json:"candidate_reason,omitempty"`
	CannibalGroupID string  `json:"cannibal_group_id,omitempty"`
	Eligible        bool    `json:"eligible"`
}

// CannibalPage is one competing landing page within a cannibal group.
type CannibalPage struct {
	LandingPage   string  `json:"landing_page"`
	AvgPosition   float64 `json:"avg_position"`
	Impressions   float64 `json:"impressions"`
	Clicks        float64 `json:"clicks"`
	CandidateType string  `json:"candidate_type"`
}

// CannibalGroupResponse is one group in GET /api/v1/batches/{id}/cannibals.
type CannibalGroupResponse struct {
	GroupID string         `json:"group_id"`
	Query   string         `json:"query"`
	Pages   []CannibalPage `json:"pages"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
