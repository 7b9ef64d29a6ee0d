package domain

import (
	"time"
)

// TimestampLayout is the canonical rendering of a parsed snapshot timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// Timestamp is the value of a record's "Start Time" cell. It is either
// Parsed (the raw text plus a real time) or Unparsed (the raw text only).
type Timestamp struct {
	raw    string
	value  time.Time
	parsed bool
}

// ParsedTimestamp returns a timestamp that carries a real time value.
func ParsedTimestamp(raw string, t time.Time) Timestamp {
	return Timestamp{raw: raw, value: t, parsed: true}
}

// UnparsedTimestamp returns a timestamp that only carries its raw cell text.
func UnparsedTimestamp(raw string) Timestamp {
	return Timestamp{raw: raw}
}

// Raw returns the cell text the timestamp was read from.
func (ts Timestamp) Raw() string {
	return ts.raw
}

// Time returns the parsed time and whether the timestamp was parsed at all.
func (ts Timestamp) Time() (time.Time, bool) {
	return ts.value, ts.parsed
}

// IsParsed reports whether the timestamp holds a real time value.
func (ts Timestamp) IsParsed() bool {
	return ts.parsed
}

// IsZero reports whether the timestamp is the empty value.
func (ts Timestamp) IsZero() bool {
	return !ts.parsed && ts.raw == ""
}

// String renders parsed timestamps in TimestampLayout and unparsed ones verbatim.
func (ts Timestamp) String() string {
	if ts.parsed {
		return ts.value.Format(TimestampLayout)
	}
	return ts.raw
}

// TimeState tags a whole batch by the outcome of timestamp parsing.
type TimeState int

const (
	// TimestampsParsed means every non-empty timestamp cell was parsed.
	TimestampsParsed TimeState = iota
	// TimestampsUnparsed means the timestamp column could not be parsed and
	// time-based filtering must be skipped.
	TimestampsUnparsed
)

// String returns a log-friendly name for the state.
func (s TimeState) String() string {
	if s == TimestampsUnparsed {
		return "unparsed"
	}
	return "parsed"
}

// Record is one row of a network-element counter export.
type Record struct {
	Timestamp Timestamp
	ElementID string
	Category  string
	Counters  map[string]float64
	Source    string
}

// Counter returns the value of the named counter. Missing cells count as zero.
func (r Record) Counter(name string) float64 {
	return r.Counters[name]
}

// Batch is a schema-homogeneous set of records read from one or more sources.
type Batch struct {
	Source    string
	Counters  []string
	Records   []Record
	TimeState TimeState
}

// Len returns the number of records in the batch.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Records)
}

// HasCounter reports whether name is part of the batch's counter set.
func (b *Batch) HasCounter(name string) bool {
	for _, c := range b.Counters {
		if c == name {
			return true
		}
	}
	return false
}

// WithRecords returns a copy of the batch header holding the given records.
func (b *Batch) WithRecords(records []Record) *Batch {
	return &Batch{
		Source:    b.Source,
		Counters:  b.Counters,
		Records:   records,
		TimeState: b.TimeState,
	}
}
