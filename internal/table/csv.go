package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// derivedColumns is the stable output order of engine-written core columns.
var derivedColumns = []string{
	"expected_ctr", "expected_clicks", "traffic_gap",
	"rescue_score", "scale_score", "expand_score",
	"candidate_type", "cannibal_group_id",
}

// supplementalColumns is the stable output order of diagnostic columns.
var supplementalColumns = []string{
	"data_ok", "data_issues", "eligible", "page_type", "query_type",
	"msv_est", "utilization", "clicks_drop", "clicks_gain",
	"problem_type", "engine_status", "candidate_reason", "analyze_candidate",
}

// ReadTable parses a CSV export into a Table. Headers are matched
// case-insensitively through the alias map; unknown columns pass through.
// A required column missing after normalization returns a *SchemaError.
// Unparseable numeric cells coerce to zero and flag the row.
func ReadTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("table: input is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("table: read header: %w", err)
	}

	known := make(map[string]int)  // canonical name → column index
	type extraCol struct {
		name string
		idx  int
	}
	var extras []extraCol
	// Every name the writer emits is reserved so a duplicate canonical
	// header or a colliding pass-through column gets suffixed instead of
	// producing a duplicate output header.
	seenExtra := make(map[string]bool)
	for _, canonical := range headerAliases {
		seenExtra[canonical] = true
	}
	for _, name := range derivedColumns {
		seenExtra[name] = true
	}
	for _, name := range supplementalColumns {
		seenExtra[name] = true
	}
	for i, raw := range header {
		name, ok := CanonicalColumn(raw)
		if ok {
			if _, dup := known[name]; !dup {
				known[name] = i
				continue
			}
			// Duplicate canonical header — keep the first, pass the rest through.
		}
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		for seenExtra[name] {
			name += "_2"
		}
		seenExtra[name] = true
		extras = append(extras, extraCol{name: name, idx: i})
	}

	for _, req := range requiredColumns {
		if _, ok := known[req]; !ok {
			return nil, &SchemaError{Column: req}
		}
	}

	t := &Table{}
	if _, ok := known[ColClicksPrev]; ok {
		if _, ok2 := known[ColImprPrev]; ok2 {
			t.HasPrevCols = true
		}
	}
	if _, ok := known[ColClicksPct]; ok {
		t.HasPctCols = true
	} else if _, ok := known[ColImprPct]; ok {
		t.HasPctCols = true
	}
	_, t.HasSERPCol = known[ColSERP]
	for _, ec := range extras {
		t.ExtraCols = append(t.ExtraCols, ec.name)
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("table: read row %d: %w", len(t.Rows)+2, err)
		}

		cell := func(canonical string) string {
			i, ok := known[canonical]
			if !ok || i >= len(rec) {
				return ""
			}
			return rec[i]
		}

		row := &Row{
			Query:       NormalizeQuery(cell(ColQuery)),
			LandingPage: strings.TrimSpace(cell(ColLandingPage)),
		}

		num := func(canonical string) float64 {
			raw := cell(canonical)
			v, ok := ParseNumber(raw)
			if !ok && strings.TrimSpace(raw) != "" {
				row.AddIssue("bad_numeric:" + canonical)
			}
			return v
		}
		opt := func(canonical string, parse func(string) (float64, bool)) (float64, bool) {
			raw := cell(canonical)
			v, ok := parse(raw)
			if !ok && strings.TrimSpace(raw) != "" {
				row.AddIssue("bad_numeric:" + canonical)
			}
			return v, ok
		}
		row.AvgPosition = num(ColAvgPosition)
		row.Impressions = num(ColImpressions)
		row.Clicks = num(ColClicks)

		if t.HasPrevCols {
			row.ClicksPrev, row.HasClicksPrev = opt(ColClicksPrev, ParseNumber)
			row.ImprPrev, row.HasImprPrev = opt(ColImprPrev, ParseNumber)
		}
		if t.HasPctCols {
			row.ClicksPct, row.HasClicksPct = opt(ColClicksPct, ParseRatio)
			row.ImprPct, row.HasImprPct = opt(ColImprPct, ParseRatio)
		}
		if t.HasSERPCol {
			row.SERPFeatures = strings.TrimSpace(cell(ColSERP))
		}

		if len(extras) > 0 {
			row.Extra = make(map[string]string, len(extras))
			for _, ec := range extras {
				if ec.idx < len(rec) {
					row.Extra[ec.name] = rec[ec.idx]
				}
			}
		}

		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// ReadFile reads and parses the CSV file at path.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("table: open input: %w", err)
	}
	defer f.Close()
	return ReadTable(f)
}

// WriteTable writes the enriched table as CSV: canonical input columns,
// derived core columns, supplemental diagnostics, then pass-through extras.
// Row count and order always match the table.
func WriteTable(w io.Writer, t *Table) error {
	header := []string{ColQuery, ColLandingPage, ColAvgPosition, ColImpressions, ColClicks}
	if t.HasPrevCols {
		header = append(header, ColClicksPrev, ColImprPrev)
	}
	if t.HasPctCols {
		header = append(header, ColClicksPct, ColImprPct)
	}
	if t.HasSERPCol {
		header = append(header, ColSERP)
	}
	header = append(header, derivedColumns...)
	header = append(header, supplementalColumns...)
	header = append(header, t.ExtraCols...)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("table: write header: %w", err)
	}

	for _, r := range t.Rows {
		rec := []string{
			r.Query, r.LandingPage,
			fnum(r.AvgPosition), fnum(r.Impressions), fnum(r.Clicks),
		}
		if t.HasPrevCols {
			rec = append(rec, optNum(r.ClicksPrev, r.HasClicksPrev), optNum(r.ImprPrev, r.HasImprPrev))
		}
		if t.HasPctCols {
			rec = append(rec, optNum(r.ClicksPct, r.HasClicksPct), optNum(r.ImprPct, r.HasImprPct))
		}
		if t.HasSERPCol {
			rec = append(rec, r.SERPFeatures)
		}
		rec = append(rec,
			fnum(r.ExpectedCTR), fnum(r.ExpectedClicks), fnum(r.TrafficGap),
			fnum(r.RescueScore), fnum(r.ScaleScore), fnum(r.ExpandScore),
			r.CandidateType, r.CannibalGroup,
			strconv.FormatBool(r.DataOK), strings.Join(r.Issues, ","),
			strconv.FormatBool(r.Eligible), r.PageType, r.QueryType,
			fnum(r.MSVEst), optNum(r.Utilization, r.HasUtilization),
			fnum(r.ClicksDrop), fnum(r.ClicksGain),
			r.ProblemType, r.EngineStatus, r.CandidateReason,
			strconv.FormatBool(r.AnalyzeCandidate),
		)
		for _, name := range t.ExtraCols {
			rec = append(rec, r.Extra[name])
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("table: write row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("table: flush: %w", err)
	}
	return nil
}

// WriteFile writes the table as CSV to path, creating or truncating it.
func WriteFile(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("table: create output: %w", err)
	}
	if err := WriteTable(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// fnum renders a float with the shortest decimal representation that
// round-trips.
func fnum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// optNum renders an optional float; absent values become empty cells.
func optNum(v float64, ok bool) string {
	if !ok {
		return ""
	}
	return fnum(v)
}
