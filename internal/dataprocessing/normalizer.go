package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	apperrors "paygcli/internal/errors"
	"paygcli/pkg/contracts/domain"
)

// Column names every supported export carries.
const (
	ColumnStartTime = "Start Time"
	ColumnNEName    = "NE Name"
	ColumnAPN       = "APN"

	// CounterSuffix marks counter columns in subscriber exports.
	CounterSuffix = "(number)"
)

// CounterSelector picks the counter columns out of a header row.
type CounterSelector func(header []string) []string

// CountersBySuffix selects every column whose trimmed name ends in suffix.
func CountersBySuffix(suffix string) CounterSelector {
	return func(header []string) []string {
		var out []string
		for _, h := range header {
			if strings.HasSuffix(h, suffix) {
				out = append(out, h)
			}
		}
		return out
	}
}

// CountersFrom selects every column from the given 0-based position on.
func CountersFrom(index int) CounterSelector {
	return func(header []string) []string {
		if index >= len(header) {
			return nil
		}
		var out []string
		for _, h := range header[index:] {
			if h != "" {
				out = append(out, h)
			}
		}
		return out
	}
}

// ListCounters returns the counter columns an operator can choose from.
func ListCounters(table *RawTable) []string {
	return CountersBySuffix(CounterSuffix)(table.Header)
}

// WarningKind classifies non-fatal conditions.
type WarningKind string

const (
	WarningTimestampUnparsed WarningKind = "timestamp_unparsed"
	WarningCounterSkipped    WarningKind = "counter_values_skipped"
)

// Warning is a non-fatal condition reported alongside a result.
type Warning struct {
	Source  string      `json:"source"`
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

// NormalizeOptions describes the columns one source type must carry.
type NormalizeOptions struct {
	TimeLayout      string
	RequireElement  bool
	RequireCategory bool
	Counters        CounterSelector
}

// Normalizer converts raw cell grids into typed record batches.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a normalizer. A nil logger falls back to slog.Default.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger.With(slog.String("component", "normalizer"))}
}

// Normalize validates the header of table and parses its rows. Timestamp
// failures are returned as warnings with the batch tagged unparsed; missing
// columns and malformed rows are fatal.
func (n *Normalizer) Normalize(ctx context.Context, table *RawTable, opts NormalizeOptions) (*domain.Batch, []Warning, error) {
	index := make(map[string]int, len(table.Header))
	for i, h := range table.Header {
		if _, dup := index[h]; !dup && h != "" {
			index[h] = i
		}
	}

	required := []string{ColumnStartTime}
	if opts.RequireElement {
		required = append(required, ColumnNEName)
	}
	if opts.RequireCategory {
		required = append(required, ColumnAPN)
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, nil, apperrors.NewMissingColumnError(col, table.Source)
		}
	}

	selector := opts.Counters
	if selector == nil {
		selector = CountersBySuffix(CounterSuffix)
	}
	counters := selector(table.Header)

	width := len(table.Header)
	for i, row := range table.Rows {
		for _, extra := range row[min(len(row), width):] {
			if strings.TrimSpace(extra) != "" {
				return nil, nil, apperrors.NewAppError(apperrors.ErrTypeSchemaMismatch,
					fmt.Sprintf("row %d of %s has %d cells but the header has %d columns", i+1, table.Source, len(row), width), nil).
					WithContext("source", table.Source)
			}
		}
	}

	var warnings []Warning

	timeCol := index[ColumnStartTime]
	raws := make([]string, len(table.Rows))
	for i, row := range table.Rows {
		raws[i] = row[timeCol]
	}
	timestamps, layout, err := NewTimestampParser(opts.TimeLayout).ParseColumn(raws)
	state := domain.TimestampsParsed
	if err != nil {
		state = domain.TimestampsUnparsed
		msg := fmt.Sprintf("could not convert %q to timestamps, time filtering is skipped: %v", ColumnStartTime, err)
		warnings = append(warnings, Warning{Source: table.Source, Kind: WarningTimestampUnparsed, Message: msg})
		n.logger.WarnContext(ctx, "timestamp column left unparsed",
			slog.String("source", table.Source),
			slog.String("error", err.Error()))
	}

	skipped := make(map[string]int)
	records := make([]domain.Record, len(table.Rows))
	for i, row := range table.Rows {
		rec := domain.Record{
			Timestamp: timestamps[i],
			Counters:  make(map[string]float64, len(counters)),
			Source:    table.Source,
		}
		if opts.RequireElement {
			rec.ElementID = strings.TrimSpace(row[index[ColumnNEName]])
		}
		if col, ok := index[ColumnAPN]; ok {
			rec.Category = strings.TrimSpace(row[col])
		}
		for _, name := range counters {
			v, ok, err := parseCounter(row[index[name]])
			if err != nil {
				skipped[name]++
				continue
			}
			if ok {
				rec.Counters[name] = v
			}
		}
		records[i] = rec
	}

	for _, name := range sortedKeys(skipped) {
		msg := fmt.Sprintf("%d non-numeric value(s) in %q were treated as empty", skipped[name], name)
		warnings = append(warnings, Warning{Source: table.Source, Kind: WarningCounterSkipped, Message: msg})
		n.logger.WarnContext(ctx, "non-numeric counter cells skipped",
			slog.String("source", table.Source),
			slog.String("counter", name),
			slog.Int("cells", skipped[name]))
	}

	n.logger.DebugContext(ctx, "source normalized",
		slog.String("source", table.Source),
		slog.Int("rows", len(records)),
		slog.Int("counters", len(counters)),
		slog.String("time_state", state.String()),
		slog.String("time_layout", layout))

	return &domain.Batch{
		Source:    table.Source,
		Counters:  counters,
		Records:   records,
		TimeState: state,
	}, warnings, nil
}

// parseCounter parses a numeric cell. Empty cells report ok=false; NaN and
// infinities are rejected like any other non-numeric text.
func parseCounter(cell string) (float64, bool, error) {
	v := strings.TrimSpace(cell)
	if v == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
	if err != nil {
		return 0, false, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, fmt.Errorf("counter value %q is not finite", v)
	}
	return f, true, nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
