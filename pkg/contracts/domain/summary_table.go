package domain

import (
	"fmt"
)

// Column names shared by the summary table layouts.
const (
	ColumnStartTime = "Start Time"
	ColumnTotal     = "Total"
	ColumnAPNType   = "APN Type"
)

// TableLayout distinguishes the two pivot shapes.
type TableLayout string

const (
	LayoutSite     TableLayout = "site"
	LayoutCategory TableLayout = "category"
)

// SiteRow is one timestamp row of a site-indexed summary.
type SiteRow struct {
	Timestamp Timestamp `json:"-"`
	SM1       float64   `json:"sm1"`
	VIS1      float64   `json:"vis1"`
	Total     float64   `json:"total"`
}

// CategoryRow is one category row of a category-indexed summary.
// StartTime is the zero Timestamp when the subset was empty.
type CategoryRow struct {
	Label     CategoryLabel `json:"label"`
	Total     float64       `json:"total"`
	StartTime Timestamp     `json:"-"`
}

// SummaryTable is the single artifact a pipeline run hands to exporters.
type SummaryTable struct {
	Mode             Mode
	Layout           TableLayout
	IncludeStartTime bool
	Sites            []SiteRow
	Categories       []CategoryRow
}

// Len returns the number of data rows.
func (t *SummaryTable) Len() int {
	if t == nil {
		return 0
	}
	if t.Layout == LayoutCategory {
		return len(t.Categories)
	}
	return len(t.Sites)
}

// Header returns the column names in output order.
func (t *SummaryTable) Header() []string {
	if t.Layout == LayoutCategory {
		header := []string{ColumnAPNType, ColumnTotal}
		if t.IncludeStartTime {
			header = append(header, ColumnStartTime)
		}
		return header
	}
	return []string{ColumnStartTime, string(SiteSM1), string(SiteVIS1), ColumnTotal}
}

// Verify checks that every site row's Total equals the sum of its site
// columns and that category rows come in the fixed label order.
func (t *SummaryTable) Verify() error {
	switch t.Layout {
	case LayoutSite:
		for i, row := range t.Sites {
			if row.Total != row.SM1+row.VIS1 {
				return fmt.Errorf("row %d (%s): total %v does not equal %v + %v",
					i, row.Timestamp, row.Total, row.SM1, row.VIS1)
			}
		}
	case LayoutCategory:
		if len(t.Categories) != len(Categories) {
			return fmt.Errorf("category table has %d rows, want %d", len(t.Categories), len(Categories))
		}
		for i, row := range t.Categories {
			if row.Label != Categories[i] {
				return fmt.Errorf("category row %d is %s, want %s", i, row.Label, Categories[i])
			}
		}
	default:
		return fmt.Errorf("unknown table layout %q", t.Layout)
	}
	return nil
}
