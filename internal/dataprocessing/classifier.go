package dataprocessing

import (
	"regexp"
	"strings"

	"paygcli/pkg/contracts/domain"
)

// sitePattern matches the site token anywhere in an NE name. With both
// tokens present the leftmost one wins.
var sitePattern = regexp.MustCompile(`(?i)(sm1|vis1)`)

// ClassifySite derives the site tag of an element identifier.
func ClassifySite(elementID string) domain.SiteTag {
	m := sitePattern.FindString(elementID)
	if m == "" {
		return domain.SiteUnknown
	}
	return domain.SiteTag(strings.ToLower(m))
}

// SiteAssignment pairs a record with its derived site.
type SiteAssignment struct {
	Record domain.Record
	Site   domain.SiteTag
}

// ClassifySites tags every record, keeping unknown sites so callers can
// count them.
func ClassifySites(records []domain.Record) []SiteAssignment {
	out := make([]SiteAssignment, len(records))
	for i, rec := range records {
		out[i] = SiteAssignment{Record: rec, Site: ClassifySite(rec.ElementID)}
	}
	return out
}
