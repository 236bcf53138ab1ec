package table

// Candidate types assigned by the classifier. Every row ends up with
// exactly one of these.
const (
	CandidateRescue  = "rescue"
	CandidateScale   = "scale"
	CandidateExpand  = "expand"
	CandidateMonitor = "monitor"
	CandidateIgnore  = "ignore"
)

// Page types derived from the landing page URL.
const (
	PageSystem   = "system"
	PageBlog     = "blog"
	PageTemplate = "template"
	PageFeature  = "feature"
	PageOther    = "other"
)

// Query types derived from the query text.
const (
	QueryBrand    = "brand"
	QueryNonBrand = "non-brand"
)

// Row is one page/query performance observation. Identity and raw metrics
// come from the input file; everything below the "Derived" marker is written
// by the engine and must be empty/zero on input.
type Row struct {
	// Identity. Query is stored in normalized form (NFKC, lowercased,
	// whitespace collapsed) so grouping downstream treats incidental
	// formatting differences as equal.
	Query       string
	LandingPage string

	// Raw metrics for the current period.
	AvgPosition float64
	Impressions float64
	Clicks      float64

	// Prior-period counterparts. The Has* flags distinguish a genuine zero
	// from an absent column.
	ClicksPrev    float64
	ImprPrev      float64
	HasClicksPrev bool
	HasImprPrev   bool

	// Percent-change ratios from the raw export format, used to infer the
	// prior period when explicit _prev columns are absent. Stored as
	// ratios (0.5 = +50%).
	ClicksPct    float64
	ImprPct      float64
	HasClicksPct bool
	HasImprPct   bool

	// SERPFeatures is the comma-separated feature list merged in by the
	// enrichment stage, e.g. "featured_snippet,paa". Empty when absent.
	SERPFeatures string

	// Derived — written by the engine, never by upstream input.
	ExpectedCTR    float64
	ExpectedClicks float64
	TrafficGap     float64
	RescueScore    float64
	ScaleScore     float64
	ExpandScore    float64
	CandidateType  string
	CannibalGroup  string // empty means not cannibalized

	// Supplemental diagnostics.
	DataOK           bool
	Issues           []string
	Eligible         bool
	PageType         string
	QueryType        string
	MSVEst           float64
	Utilization      float64
	HasUtilization   bool
	ClicksDrop       float64
	ClicksGain       float64
	ProblemType      string
	EngineStatus     string
	CandidateReason  string
	AnalyzeCandidate bool

	// Extra holds unknown input columns under their normalized names,
	// passed through to the output untouched.
	Extra map[string]string
}

// AddIssue appends a data-quality marker to the row.
func (r *Row) AddIssue(issue string) {
	r.Issues = append(r.Issues, issue)
}

// HasIssues reports whether any data-quality marker is set on the row.
func (r *Row) HasIssues() bool { return len(r.Issues) > 0 }

// Table is an ordered batch of rows plus the schema facts the CSV writer
// needs to reproduce optional and pass-through columns.
type Table struct {
	Rows []*Row

	// ExtraCols lists the normalized names of pass-through columns in
	// input order.
	ExtraCols []string

	// Input schema flags: which optional canonical columns were present.
	HasPrevCols bool
	HasPctCols  bool
	HasSERPCol  bool
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }
