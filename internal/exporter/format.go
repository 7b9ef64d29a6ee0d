package exporter

import (
	"strconv"

	"paygcli/pkg/contracts/domain"
)

// formatNumber renders a counter total as its raw magnitude: no thousands
// separators, no fixed precision.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatTimestamp renders parsed timestamps canonically and unparsed ones as
// read. An empty timestamp becomes an empty cell.
func formatTimestamp(ts domain.Timestamp) string {
	return ts.String()
}

// TableRecords returns the header and string rows of a summary table in
// output order. Every encoding is derived from it.
func TableRecords(table *domain.SummaryTable) ([]string, [][]string) {
	header := table.Header()
	records := make([][]string, 0, table.Len())

	if table.Layout == domain.LayoutCategory {
		for _, row := range table.Categories {
			rec := []string{row.Label.DisplayName(), formatNumber(row.Total)}
			if table.IncludeStartTime {
				rec = append(rec, formatTimestamp(row.StartTime))
			}
			records = append(records, rec)
		}
		return header, records
	}

	for _, row := range table.Sites {
		records = append(records, []string{
			formatTimestamp(row.Timestamp),
			formatNumber(row.SM1),
			formatNumber(row.VIS1),
			formatNumber(row.Total),
		})
	}
	return header, records
}
