package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"paygcli/pkg/contracts/domain"
)

func TestClassifySite(t *testing.T) {
	tests := []struct {
		element string
		want    domain.SiteTag
	}{
		{"NE-sm1-01", domain.SiteSM1},
		{"NE-SM1-01", domain.SiteSM1},
		{"CSCF_Vis1_02", domain.SiteVIS1},
		{"vis1", domain.SiteVIS1},
		{"NE-vis1-sm1", domain.SiteVIS1},
		{"NE-sm1-vis1", domain.SiteSM1},
		{"NE-bgd2-01", domain.SiteUnknown},
		{"NE-sm-1", domain.SiteUnknown},
		{"", domain.SiteUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.element, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifySite(tt.element))
		})
	}
}

func TestClassifySites(t *testing.T) {
	records := []domain.Record{
		{ElementID: "NE-sm1-01"},
		{ElementID: "NE-other"},
		{ElementID: "NE-vis1-01"},
	}

	got := ClassifySites(records)
	assert.Len(t, got, 3)
	assert.Equal(t, domain.SiteSM1, got[0].Site)
	assert.Equal(t, domain.SiteUnknown, got[1].Site)
	assert.Equal(t, domain.SiteVIS1, got[2].Site)
	assert.Equal(t, "NE-vis1-01", got[2].Record.ElementID)
}
