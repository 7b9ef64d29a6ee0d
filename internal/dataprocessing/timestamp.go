package dataprocessing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"paygcli/pkg/contracts/domain"
)

// APNTimeLayout is the fixed month/day/year layout of APN counter exports.
// Single-digit months and days are accepted.
const APNTimeLayout = "1/2/2006 15:04:05"

// inferenceLayouts are tried in order. A layout is only chosen when it
// parses every non-empty value of the column, so month-first wins over
// day-first whenever both fit.
var inferenceLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/06 15:04:05",
	"1/2/06 15:04",
	"01-02-06 15:04",
	"2/1/2006 15:04:05",
	"02.01.2006 15:04:05",
	"2006-01-02",
}

// excelSerialLayout marks a column of workbook serial date numbers.
const excelSerialLayout = "excel-serial"

// TimestampParser turns the raw "Start Time" column into domain timestamps.
type TimestampParser struct {
	layout string
}

// NewTimestampParser returns a parser bound to a fixed layout, or an
// inferring parser when layout is empty.
func NewTimestampParser(layout string) TimestampParser {
	return TimestampParser{layout: layout}
}

// ParseColumn parses every value of the column. Empty cells become empty
// Unparsed timestamps and never fail the column. On the first failing
// value the whole column is returned as Unparsed together with the error,
// so callers can degrade instead of aborting.
func (p TimestampParser) ParseColumn(raws []string) ([]domain.Timestamp, string, error) {
	layout := p.layout
	if layout == "" {
		var err error
		layout, err = inferLayout(raws)
		if err != nil {
			return unparsedColumn(raws), "", err
		}
	}

	out := make([]domain.Timestamp, len(raws))
	for i, raw := range raws {
		value := strings.TrimSpace(raw)
		if value == "" {
			out[i] = domain.UnparsedTimestamp(raw)
			continue
		}
		t, err := parseWithLayout(layout, value)
		if err != nil {
			return unparsedColumn(raws), "", fmt.Errorf("value %q at row %d does not match layout %q", value, i+1, layout)
		}
		out[i] = domain.ParsedTimestamp(raw, t)
	}
	return out, layout, nil
}

func inferLayout(raws []string) (string, error) {
	var sample string
	for _, raw := range raws {
		if v := strings.TrimSpace(raw); v != "" {
			sample = v
			break
		}
	}
	if sample == "" {
		return "", fmt.Errorf("timestamp column is empty")
	}

	candidates := append([]string{excelSerialLayout}, inferenceLayouts...)
	for _, layout := range candidates {
		if _, err := parseWithLayout(layout, sample); err != nil {
			continue
		}
		if columnMatches(layout, raws) {
			return layout, nil
		}
	}
	return "", fmt.Errorf("no known layout parses every timestamp (first value %q)", sample)
}

func columnMatches(layout string, raws []string) bool {
	for _, raw := range raws {
		v := strings.TrimSpace(raw)
		if v == "" {
			continue
		}
		if _, err := parseWithLayout(layout, v); err != nil {
			return false
		}
	}
	return true
}

func parseWithLayout(layout, value string) (time.Time, error) {
	if layout != excelSerialLayout {
		return time.Parse(layout, value)
	}
	serial, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return time.Time{}, err
	}
	// Serials below 1 are bare times of day, far too small for exports.
	if serial < 1 {
		return time.Time{}, fmt.Errorf("serial %v is not a date", serial)
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, err
	}
	return t.Round(time.Second), nil
}

func unparsedColumn(raws []string) []domain.Timestamp {
	out := make([]domain.Timestamp, len(raws))
	for i, raw := range raws {
		out[i] = domain.UnparsedTimestamp(raw)
	}
	return out
}
