package dataprocessing

import (
	"paygcli/pkg/contracts/domain"
)

// Counter names with a fixed role in one of the modes.
const (
	CounterSCSCFRegisteredUsers = "Number of S-CSCF Registered Users (number)"
)

// CGWCounters are the four counters summed by the CGW APN extraction.
var CGWCounters = []string{
	"PGW-C 2/3G Maximum simultaneously activated PDP contexts (APN) (number)",
	"SGW-C maximum simultaneously subscribers (specified APN) (number)",
	"PGW-C maximum simultaneously active subscribers (specified APN) (number)",
	"SGW-C and PGW-C combined Maximum simultaneously activated EPS bearers (APN) (number)",
}

// ugwFirstCounterColumn is the position of the first counter in UGW exports,
// after Start Time, Period, NE Name and APN.
const ugwFirstCounterColumn = 4

// ModeSpec describes one extraction mode: what the input must contain and
// how it is pivoted.
type ModeSpec struct {
	Mode              domain.Mode        `json:"mode"`
	Title             string             `json:"title"`
	Layout            domain.TableLayout `json:"layout"`
	Filename          string             `json:"filename"`
	RequiredColumns   []string           `json:"required_columns"`
	DefaultCounter    string             `json:"default_counter,omitempty"`
	FixedCounters     []string           `json:"fixed_counters,omitempty"`
	SelectableCounter bool               `json:"selectable_counter"`
	MultiSource       bool               `json:"multi_source"`
	Aggregation       Aggregation        `json:"aggregation,omitempty"`
	IncludeStartTime  bool               `json:"include_start_time"`
	TimeLayout        string             `json:"time_layout,omitempty"`

	counters CounterSelector
}

// NormalizeOptions returns the normalizer settings for this mode.
func (m ModeSpec) NormalizeOptions() NormalizeOptions {
	return NormalizeOptions{
		TimeLayout:      m.TimeLayout,
		RequireElement:  m.Layout == domain.LayoutSite,
		RequireCategory: m.Layout == domain.LayoutCategory,
		Counters:        m.counters,
	}
}

// Counters returns the counter columns of table as this mode selects them.
func (m ModeSpec) Counters(table *RawTable) []string {
	if m.counters == nil {
		return ListCounters(table)
	}
	return m.counters(table.Header)
}

var modeSpecs = []ModeSpec{
	{
		Mode:              domain.ModeWithAnchor,
		Title:             "S-CSCF Subscriber Registered",
		Layout:            domain.LayoutSite,
		Filename:          "extracted_data_with_anchor.csv",
		RequiredColumns:   []string{ColumnStartTime, ColumnNEName},
		SelectableCounter: true,
		Aggregation:       AggregateMean,
		counters:          CountersBySuffix(CounterSuffix),
	},
	{
		Mode:              domain.ModeWithoutAnchor,
		Title:             "Without Anchor Subscribers",
		Layout:            domain.LayoutSite,
		Filename:          "extracted_data_without_anchor.csv",
		RequiredColumns:   []string{ColumnStartTime, ColumnNEName},
		DefaultCounter:    CounterSCSCFRegisteredUsers,
		SelectableCounter: true,
		Aggregation:       AggregateSum,
		counters:          CountersBySuffix(CounterSuffix),
	},
	{
		Mode:            domain.ModeAPNUGW,
		Title:           "APN Based (UGW)",
		Layout:          domain.LayoutCategory,
		Filename:        "extracted_data_apn_based_ugw.csv",
		RequiredColumns: []string{ColumnStartTime, ColumnAPN},
		MultiSource:     true,
		TimeLayout:      APNTimeLayout,
		counters:        CountersFrom(ugwFirstCounterColumn),
	},
	{
		Mode:             domain.ModeAPNCGW,
		Title:            "APN Based (CGW)",
		Layout:           domain.LayoutCategory,
		Filename:         "extracted_data_apn_based_cgw.csv",
		RequiredColumns:  []string{ColumnStartTime, ColumnAPN},
		FixedCounters:    CGWCounters,
		IncludeStartTime: true,
		TimeLayout:       APNTimeLayout,
		counters:         CountersBySuffix(CounterSuffix),
	},
}

// LookupMode returns the spec of a mode.
func LookupMode(mode domain.Mode) (ModeSpec, bool) {
	for _, spec := range modeSpecs {
		if spec.Mode == mode {
			return spec, true
		}
	}
	return ModeSpec{}, false
}

// AllModes returns every mode in catalogue order.
func AllModes() []ModeSpec {
	out := make([]ModeSpec, len(modeSpecs))
	copy(out, modeSpecs)
	return out
}
