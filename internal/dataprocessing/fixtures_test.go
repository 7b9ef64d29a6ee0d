package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"paygcli/pkg/contracts/domain"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(domain.TimestampLayout, value)
	require.NoError(t, err)
	return ts
}

func siteRecord(t *testing.T, at, element string, counters map[string]float64) domain.Record {
	t.Helper()
	return domain.Record{
		Timestamp: domain.ParsedTimestamp(at, mustTime(t, at)),
		ElementID: element,
		Counters:  counters,
	}
}

func apnRecord(t *testing.T, at, apn string, counters map[string]float64) domain.Record {
	t.Helper()
	return domain.Record{
		Timestamp: domain.ParsedTimestamp(at, mustTime(t, at)),
		Category:  apn,
		Counters:  counters,
	}
}

func newBatch(source string, counters []string, records ...domain.Record) *domain.Batch {
	return &domain.Batch{
		Source:    source,
		Counters:  counters,
		Records:   records,
		TimeState: domain.TimestampsParsed,
	}
}

func newRawTable(source string, header []string, rows ...[]string) *RawTable {
	return &RawTable{Source: source, Format: FormatDelimited, Header: header, Rows: rows}
}
