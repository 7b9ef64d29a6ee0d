package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampParserInference(t *testing.T) {
	tests := []struct {
		name       string
		raws       []string
		wantLayout string
		wantFirst  time.Time
	}{
		{
			name:       "iso seconds",
			raws:       []string{"2024-01-01 20:00:00", "2024-01-02 08:00:00"},
			wantLayout: "2006-01-02 15:04:05",
			wantFirst:  time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC),
		},
		{
			name:       "month first preferred when both fit",
			raws:       []string{"3/4/2024 20:00:00"},
			wantLayout: "1/2/2006 15:04:05",
			wantFirst:  time.Date(2024, 3, 4, 20, 0, 0, 0, time.UTC),
		},
		{
			name:       "day first chosen when column rules out month first",
			raws:       []string{"3/4/2024 20:00:00", "25/4/2024 20:00:00"},
			wantLayout: "2/1/2006 15:04:05",
			wantFirst:  time.Date(2024, 4, 3, 20, 0, 0, 0, time.UTC),
		},
		{
			name:       "excel serial numbers",
			raws:       []string{"45292.8333333333"},
			wantLayout: excelSerialLayout,
			wantFirst:  time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC),
		},
		{
			name:       "empty cells are tolerated",
			raws:       []string{"", "2024-01-01 20:00:00"},
			wantLayout: "2006-01-02 15:04:05",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, layout, err := NewTimestampParser("").ParseColumn(tt.raws)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLayout, layout)
			require.Len(t, out, len(tt.raws))

			if tt.wantFirst.IsZero() {
				return
			}
			got, ok := out[0].Time()
			require.True(t, ok)
			assert.True(t, tt.wantFirst.Equal(got), "want %s, got %s", tt.wantFirst, got)
			assert.Equal(t, tt.raws[0], out[0].Raw())
		})
	}
}

func TestTimestampParserEmptyCell(t *testing.T) {
	out, _, err := NewTimestampParser("").ParseColumn([]string{"", "2024-01-01 20:00:00"})
	require.NoError(t, err)

	assert.False(t, out[0].IsParsed())
	assert.True(t, out[0].IsZero())
	assert.True(t, out[1].IsParsed())
}

func TestTimestampParserFixedLayout(t *testing.T) {
	parser := NewTimestampParser(APNTimeLayout)

	out, layout, err := parser.ParseColumn([]string{"1/5/2024 20:00:00", "12/15/2024 08:30:00"})
	require.NoError(t, err)
	assert.Equal(t, APNTimeLayout, layout)
	second, ok := out[1].Time()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 12, 15, 8, 30, 0, 0, time.UTC), second)

	// ISO values do not match the fixed layout even though inference would accept them.
	out, layout, err = parser.ParseColumn([]string{"2024-01-05 20:00:00"})
	require.Error(t, err)
	assert.Empty(t, layout)
	assert.False(t, out[0].IsParsed())
	assert.Equal(t, "2024-01-05 20:00:00", out[0].Raw())
}

func TestTimestampParserFailure(t *testing.T) {
	tests := []struct {
		name string
		raws []string
	}{
		{name: "not a date", raws: []string{"yesterday evening"}},
		{name: "mixed layouts", raws: []string{"2024-01-01 20:00:00", "1/2/2024 20:00:00"}},
		{name: "all empty", raws: []string{"", " "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, layout, err := NewTimestampParser("").ParseColumn(tt.raws)
			require.Error(t, err)
			assert.Empty(t, layout)
			require.Len(t, out, len(tt.raws))
			for i, ts := range out {
				assert.False(t, ts.IsParsed())
				assert.Equal(t, tt.raws[i], ts.Raw())
			}
		})
	}
}
