package dataprocessing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paygcli/internal/config"
	apperrors "paygcli/internal/errors"
	"paygcli/internal/shared/testutil"
	"paygcli/pkg/contracts/domain"
)

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewPipeline(logger, config.Default().Pipeline)
}

func readFixture(t *testing.T, source string, data []byte) *RawTable {
	t.Helper()
	table, err := ReadTable(source, data, ReaderOptions{SkipRows: testutil.MetadataRows, Delimiter: "auto"})
	require.NoError(t, err)
	return table
}

func TestPipelineSiteModes(t *testing.T) {
	fixture := testutil.SiteExport(CounterSCSCFRegisteredUsers,
		[]string{"2024-01-01 20:00:00", "60", "NE-sm1-01", "5"},
		[]string{"2024-01-01 20:00:00", "60", "NE-vis1-02", "3"},
		[]string{"2024-01-01 08:00:00", "60", "NE-sm1-03", "99"},
	)

	tests := []struct {
		name string
		mode domain.Mode
		file string
	}{
		{name: "with anchor", mode: domain.ModeWithAnchor, file: "extracted_data_with_anchor.csv"},
		{name: "without anchor", mode: domain.ModeWithoutAnchor, file: "extracted_data_without_anchor.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := readFixture(t, "host1.xlsx", fixture.Workbook(t))

			result, err := newTestPipeline(t).Run(context.Background(), Options{Mode: tt.mode}, []*RawTable{table})
			require.NoError(t, err)

			assert.Equal(t, tt.file, result.Filename)
			assert.Equal(t, CounterSCSCFRegisteredUsers, result.Counter)
			require.Len(t, result.Table.Sites, 1)
			assert.Equal(t, 5.0, result.Table.Sites[0].SM1)
			assert.Equal(t, 3.0, result.Table.Sites[0].VIS1)
			assert.Equal(t, 8.0, result.Table.Sites[0].Total)
			assert.Equal(t, 3, result.Stats.RowsIngested)
			assert.Equal(t, 2, result.Stats.RowsSelected)
			assert.Equal(t, 2, result.Stats.RowsClassified)
			assert.Empty(t, result.Warnings)
		})
	}
}

func TestPipelineNonFiniteCountersAreSkipped(t *testing.T) {
	fixture := testutil.SiteExport(CounterSCSCFRegisteredUsers,
		[]string{"2024-01-01 20:00:00", "60", "NE-sm1-01", "NaN"},
		[]string{"2024-01-01 20:00:00", "60", "NE-sm1-02", "4"},
		[]string{"2024-01-01 20:00:00", "60", "NE-vis1-01", "3"},
	)
	table := readFixture(t, "host1.csv", fixture.CSV())

	result, err := newTestPipeline(t).Run(context.Background(), Options{Mode: domain.ModeWithoutAnchor}, []*RawTable{table})
	require.NoError(t, err)

	require.Len(t, result.Table.Sites, 1)
	assert.Equal(t, 4.0, result.Table.Sites[0].SM1)
	assert.Equal(t, 7.0, result.Table.Sites[0].Total)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, WarningCounterSkipped, result.Warnings[0].Kind)
}

func TestPipelineSelectedCounter(t *testing.T) {
	fixture := testutil.ExportFixture{
		Header: []string{"Start Time", "Period", "NE Name", "A (number)", "B (number)"},
		Rows: [][]string{
			{"2024-01-01 20:00:00", "60", "NE-sm1-01", "1", "10"},
			{"2024-01-01 20:00:00", "60", "NE-vis1-01", "2", "20"},
		},
	}
	table := readFixture(t, "host1.csv", fixture.CSV())
	p := newTestPipeline(t)

	result, err := p.Run(context.Background(), Options{Mode: domain.ModeWithAnchor}, []*RawTable{table})
	require.NoError(t, err)
	assert.Equal(t, "A (number)", result.Counter, "first counter is the default")
	assert.Equal(t, 3.0, result.Table.Sites[0].Total)

	result, err = p.Run(context.Background(), Options{Mode: domain.ModeWithAnchor, Counter: "B (number)"}, []*RawTable{table})
	require.NoError(t, err)
	assert.Equal(t, 30.0, result.Table.Sites[0].Total)

	_, err = p.Run(context.Background(), Options{Mode: domain.ModeWithAnchor, Counter: "C (number)"}, []*RawTable{table})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMissingColumn))
}

func TestPipelineUGWMultiSource(t *testing.T) {
	counters := []string{"C1", "C2"}
	host1 := testutil.APNExport(counters,
		[]string{"1/15/2024 20:00:00", "60", "UGW01", "ims", "10", "1"},
		[]string{"1/15/2024 20:00:00", "60", "UGW01", "internet", "20", "2"},
		[]string{"1/15/2024 19:00:00", "60", "UGW01", "internet", "999", "999"},
	)
	host2 := testutil.APNExport([]string{"C2", "C1"},
		[]string{"1/15/2024 20:00:00", "60", "UGW02", "IMS-voice", "3", "30"},
	)

	tables := []*RawTable{
		readFixture(t, "host1.xlsx", host1.Workbook(t)),
		readFixture(t, "host2.csv", host2.CSV()),
	}

	result, err := newTestPipeline(t).Run(context.Background(), Options{Mode: domain.ModeAPNUGW}, tables)
	require.NoError(t, err)

	assert.Equal(t, "extracted_data_apn_based_ugw.csv", result.Filename)
	require.Len(t, result.Table.Categories, 3)
	assert.Equal(t, 44.0, result.Table.Categories[0].Total)
	assert.Equal(t, 22.0, result.Table.Categories[1].Total)
	assert.Equal(t, 66.0, result.Table.Categories[2].Total)
	assert.Equal(t, 2, result.Stats.Sources)
	assert.Equal(t, 4, result.Stats.RowsIngested)
	assert.Equal(t, 3, result.Stats.RowsSelected)
}

func TestPipelineSchemaMismatchNamesSource(t *testing.T) {
	host1 := testutil.APNExport([]string{"C1", "C2"}, []string{"1/15/2024 20:00:00", "60", "UGW01", "ims", "1", "2"})
	host2 := testutil.APNExport([]string{"C1"}, []string{"1/15/2024 20:00:00", "60", "UGW02", "ims", "1"})

	_, err := newTestPipeline(t).Run(context.Background(), Options{Mode: domain.ModeAPNUGW}, []*RawTable{
		readFixture(t, "host1.xlsx", host1.CSV()),
		readFixture(t, "host2.xlsx", host2.CSV()),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchemaMismatch))
	assert.Contains(t, err.Error(), "host2.xlsx")
}

func TestPipelineCGW(t *testing.T) {
	fixture := testutil.APNExport(testutil.CGWCounterNames,
		[]string{"1/15/2024 20:00:00", "60", "CGW01", "ims", "1", "2", "3", "4"},
		[]string{"1/15/2024 20:00:00", "60", "CGW01", "internet", "5", "5", "5", "5"},
	)

	result, err := newTestPipeline(t).Run(context.Background(), Options{Mode: domain.ModeAPNCGW},
		[]*RawTable{readFixture(t, "cgw.xlsx", fixture.Workbook(t))})
	require.NoError(t, err)

	table := result.Table
	assert.True(t, table.IncludeStartTime)
	assert.Equal(t, 10.0, table.Categories[0].Total)
	assert.Equal(t, 20.0, table.Categories[1].Total)
	assert.Equal(t, 30.0, table.Categories[2].Total)
	assert.Equal(t, "2024-01-15 20:00:00", table.Categories[0].StartTime.String())
}

func TestPipelineUnparsedTimestampsDegrade(t *testing.T) {
	fixture := testutil.APNExport([]string{"C1"},
		[]string{"2024-01-15T20:00:00", "60", "UGW01", "ims", "4"},
		[]string{"2024-01-15T08:00:00", "60", "UGW01", "internet", "6"},
	)

	result, err := newTestPipeline(t).Run(context.Background(), Options{Mode: domain.ModeAPNUGW},
		[]*RawTable{readFixture(t, "host1.csv", fixture.CSV())})
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, WarningTimestampUnparsed, result.Warnings[0].Kind)
	assert.Equal(t, "unparsed", result.Stats.TimeState)
	assert.Equal(t, 2, result.Stats.RowsSelected, "filter is skipped")
	assert.Equal(t, 10.0, result.Table.Categories[2].Total)
}

func TestPipelineIdempotent(t *testing.T) {
	fixture := testutil.SiteExport("Users (number)",
		[]string{"2024-01-01 20:00:00", "60", "NE-sm1-01", "5"},
		[]string{"2024-01-01 20:00:00", "60", "NE-vis1-02", "3"},
		[]string{"2024-01-02 20:00:00", "60", "NE-vis1-02", "4"},
	)
	table := readFixture(t, "host1.csv", fixture.CSV())
	p := newTestPipeline(t)
	opts := Options{Mode: domain.ModeWithAnchor}

	first, err := p.Run(context.Background(), opts, []*RawTable{table})
	require.NoError(t, err)
	second, err := p.Run(context.Background(), opts, []*RawTable{table})
	require.NoError(t, err)

	assert.Equal(t, first.Table, second.Table)
	assert.Equal(t, first.Stats, second.Stats)
}

func TestPipelineRejectsInvalidRuns(t *testing.T) {
	site := readFixture(t, "host1.csv", testutil.SiteExport("Users (number)",
		[]string{"2024-01-01 20:00:00", "60", "NE-sm1-01", "5"}).CSV())

	tests := []struct {
		name     string
		opts     Options
		tables   []*RawTable
		wantType apperrors.ErrorType
	}{
		{
			name:     "unknown mode",
			opts:     Options{Mode: "hourly"},
			tables:   []*RawTable{site},
			wantType: apperrors.ErrTypeValidation,
		},
		{
			name:     "no sources",
			opts:     Options{Mode: domain.ModeWithAnchor},
			wantType: apperrors.ErrTypeValidation,
		},
		{
			name:     "several sources for single-source mode",
			opts:     Options{Mode: domain.ModeWithAnchor},
			tables:   []*RawTable{site, site},
			wantType: apperrors.ErrTypeValidation,
		},
		{
			name:     "bad snapshot time",
			opts:     Options{Mode: domain.ModeWithAnchor, SnapshotTime: "25:00"},
			tables:   []*RawTable{site},
			wantType: apperrors.ErrTypeParsing,
		},
		{
			name:     "apn mode on site export",
			opts:     Options{Mode: domain.ModeAPNUGW},
			tables:   []*RawTable{site},
			wantType: apperrors.ErrTypeMissingColumn,
		},
		{
			name:     "site missing after filtering",
			opts:     Options{Mode: domain.ModeWithAnchor},
			tables:   []*RawTable{site},
			wantType: apperrors.ErrTypeMissingColumn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := newTestPipeline(t).Run(context.Background(), tt.opts, tt.tables)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, apperrors.IsType(err, tt.wantType), "got %v", err)
		})
	}
}

func TestModeCatalogue(t *testing.T) {
	modes := AllModes()
	require.Len(t, modes, len(domain.Modes))
	for i, spec := range modes {
		assert.Equal(t, domain.Modes[i], spec.Mode)
		assert.NotEmpty(t, spec.Filename)

		found, ok := LookupMode(spec.Mode)
		require.True(t, ok)
		assert.Equal(t, spec.Title, found.Title)
	}

	_, ok := LookupMode("unknown")
	assert.False(t, ok)

	ugw, _ := LookupMode(domain.ModeAPNUGW)
	assert.True(t, ugw.MultiSource)
	assert.Equal(t, APNTimeLayout, ugw.TimeLayout)

	cgw, _ := LookupMode(domain.ModeAPNCGW)
	assert.Equal(t, CGWCounters, cgw.FixedCounters)
	assert.Equal(t, testutil.CGWCounterNames, cgw.FixedCounters)
}
