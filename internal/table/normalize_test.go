package table

import (
	"strings"
	"testing"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Query", "query"},
		{"  Landing   Page  ", "landing page"},
		{"Avg. Position", "avg. position"},
		{"URL\tClicks", "url clicks"},
		{"ＱＵＥＲＹ", "query"}, // fullwidth forms fold under NFKC
	}
	for _, tt := range tests {
		if got := NormalizeHeader(tt.in); got != tt.want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Running  Shoes", "running shoes"},
		{"  shoes ", "shoes"},
		{"SHOES", "shoes"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeQuery(tt.in); got != tt.want {
			t.Errorf("NormalizeQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCanonicalColumn_Aliases(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		// Raw search-console export headers.
		{"Query", ColQuery},
		{"Landing Page", ColLandingPage},
		{"URL Clicks", ColClicks},
		{"Impressions", ColImpressions},
		{"Avg. Position", ColAvgPosition},
		{"Clicks Percent Change", ColClicksPct},
		{"Impression Percent Change", ColImprPct},
		// Pre-processed schema headers.
		{"landing_page", ColLandingPage},
		{"clicks", ColClicks},
		{"avg_position", ColAvgPosition},
		{"clicks_prev", ColClicksPrev},
		{"impr_prev", ColImprPrev},
		{"serp_features", ColSERP},
		{"SERP Features", ColSERP},
	}
	for _, tt := range tests {
		got, known := CanonicalColumn(tt.raw)
		if !known {
			t.Errorf("CanonicalColumn(%q): not recognized", tt.raw)
			continue
		}
		if got != tt.want {
			t.Errorf("CanonicalColumn(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestCanonicalColumn_UnknownPassThrough(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Device Category", "device_category"},
		{"CTR (%)", "ctr"},
		{"some-odd header!!", "some_odd_header"},
	}
	for _, tt := range tests {
		got, known := CanonicalColumn(tt.raw)
		if known {
			t.Errorf("CanonicalColumn(%q): unexpectedly recognized as %q", tt.raw, got)
			continue
		}
		if got != tt.want {
			t.Errorf("CanonicalColumn(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestSchemaError_NamesColumn(t *testing.T) {
	err := &SchemaError{Column: ColImpressions}
	if !strings.Contains(err.Error(), `"impressions"`) {
		t.Errorf("SchemaError message %q should name the missing column", err.Error())
	}
}
