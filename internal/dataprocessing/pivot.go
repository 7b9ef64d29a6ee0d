package dataprocessing

import (
	"sort"
	"time"

	apperrors "paygcli/internal/errors"
	"paygcli/pkg/contracts/domain"
)

// Aggregation reduces the counter values of one (timestamp, site) cell.
type Aggregation string

const (
	AggregateSum  Aggregation = "sum"
	AggregateMean Aggregation = "mean"
)

// SitePivotOptions parameterises the site-indexed pivot.
type SitePivotOptions struct {
	Mode        domain.Mode
	Counter     string
	Aggregation Aggregation
}

// CategoryPivotOptions parameterises the category-indexed pivot.
type CategoryPivotOptions struct {
	Mode             domain.Mode
	Counters         []string
	IncludeStartTime bool
}

type cellAccumulator struct {
	sum   float64
	count int
}

func (c cellAccumulator) value(agg Aggregation) float64 {
	if agg == AggregateMean {
		if c.count == 0 {
			return 0
		}
		return c.sum / float64(c.count)
	}
	return c.sum
}

type timeKey struct {
	ts     domain.Timestamp
	parsed bool
	unix   int64
}

// PivotBySite groups classified records by (timestamp, site) and reshapes
// the chosen counter into one row per timestamp with sm1, vis1 and Total.
// Missing combinations are zero. A site absent from every classified row
// is an error, while no classified rows at all yields an empty table.
func PivotBySite(batch *domain.Batch, assignments []SiteAssignment, opts SitePivotOptions) (*domain.SummaryTable, error) {
	if !batch.HasCounter(opts.Counter) {
		return nil, apperrors.NewMissingColumnError(opts.Counter, batch.Source)
	}
	agg := opts.Aggregation
	if agg == "" {
		agg = AggregateSum
	}

	table := &domain.SummaryTable{Mode: opts.Mode, Layout: domain.LayoutSite, Sites: []domain.SiteRow{}}

	keys := make(map[string]timeKey)
	cells := make(map[string]map[domain.SiteTag]*cellAccumulator)
	sitesSeen := make(map[domain.SiteTag]bool)

	for _, a := range assignments {
		if a.Site == domain.SiteUnknown {
			continue
		}
		sitesSeen[a.Site] = true

		k, tk := keyFor(a.Record.Timestamp)
		if _, ok := keys[k]; !ok {
			keys[k] = tk
			cells[k] = make(map[domain.SiteTag]*cellAccumulator, len(domain.Sites))
		}
		acc, ok := cells[k][a.Site]
		if !ok {
			acc = &cellAccumulator{}
			cells[k][a.Site] = acc
		}
		if v, present := a.Record.Counters[opts.Counter]; present {
			acc.sum += v
			acc.count++
		}
	}

	if len(sitesSeen) == 0 {
		return table, nil
	}
	for _, site := range domain.Sites {
		if !sitesSeen[site] {
			return nil, apperrors.NewSiteColumnMissingError(string(site))
		}
	}

	ordered := make([]string, 0, len(keys))
	for k := range keys {
		ordered = append(ordered, k)
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := keys[ordered[i]], keys[ordered[j]]
		if a.parsed != b.parsed {
			return a.parsed
		}
		if a.parsed && a.unix != b.unix {
			return a.unix < b.unix
		}
		return ordered[i] < ordered[j]
	})

	for _, k := range ordered {
		row := domain.SiteRow{Timestamp: keys[k].ts}
		if acc, ok := cells[k][domain.SiteSM1]; ok {
			row.SM1 = acc.value(agg)
		}
		if acc, ok := cells[k][domain.SiteVIS1]; ok {
			row.VIS1 = acc.value(agg)
		}
		row.Total = row.SM1 + row.VIS1
		table.Sites = append(table.Sites, row)
	}

	return table, nil
}

// keyFor groups parsed timestamps by instant and unparsed ones by raw text.
func keyFor(ts domain.Timestamp) (string, timeKey) {
	if t, ok := ts.Time(); ok {
		return t.UTC().Format(time.RFC3339Nano), timeKey{ts: ts, parsed: true, unix: t.UnixNano()}
	}
	return "raw:" + ts.Raw(), timeKey{ts: ts}
}

// PivotByCategory sums every listed counter across the rows of each
// subset and then across counters, giving one Total per category.
func PivotByCategory(batch *domain.Batch, subsets []CategorySubset, opts CategoryPivotOptions) (*domain.SummaryTable, error) {
	if len(opts.Counters) == 0 {
		return nil, apperrors.NewMissingColumnError("counter columns", batch.Source)
	}
	for _, c := range opts.Counters {
		if !batch.HasCounter(c) {
			return nil, apperrors.NewMissingColumnError(c, batch.Source)
		}
	}

	table := &domain.SummaryTable{
		Mode:             opts.Mode,
		Layout:           domain.LayoutCategory,
		IncludeStartTime: opts.IncludeStartTime,
		Categories:       make([]domain.CategoryRow, 0, len(subsets)),
	}

	for _, subset := range subsets {
		var total float64
		for _, counter := range opts.Counters {
			var columnSum float64
			for _, rec := range subset.Records {
				columnSum += rec.Counters[counter]
			}
			total += columnSum
		}

		row := domain.CategoryRow{Label: subset.Label, Total: total}
		if opts.IncludeStartTime && len(subset.Records) > 0 {
			row.StartTime = subset.Records[0].Timestamp
		}
		table.Categories = append(table.Categories, row)
	}

	return table, nil
}
