package domain

// SiteTag identifies the site a record was produced by.
type SiteTag string

const (
	SiteSM1     SiteTag = "sm1"
	SiteVIS1    SiteTag = "vis1"
	SiteUnknown SiteTag = "unknown"
)

// Sites lists the known site tags in column order.
var Sites = []SiteTag{SiteSM1, SiteVIS1}

// CategoryLabel names one subset produced by the APN category split.
type CategoryLabel string

const (
	CategoryIMS   CategoryLabel = "IMS"
	CategoryDATA  CategoryLabel = "DATA"
	CategoryTOTAL CategoryLabel = "TOTAL"
)

// Categories lists the category labels in output row order.
var Categories = []CategoryLabel{CategoryIMS, CategoryDATA, CategoryTOTAL}

// DisplayName returns the row label written to summary tables.
func (c CategoryLabel) DisplayName() string {
	switch c {
	case CategoryIMS:
		return "IMS APN"
	case CategoryDATA:
		return "DATA APN"
	case CategoryTOTAL:
		return "Total APN"
	default:
		return string(c)
	}
}

// Mode selects the source type and therefore the pivot layout of a run.
type Mode string

const (
	ModeWithAnchor    Mode = "with_anchor"
	ModeWithoutAnchor Mode = "without_anchor"
	ModeAPNUGW        Mode = "apn_ugw"
	ModeAPNCGW        Mode = "apn_cgw"
)

// Modes lists every supported mode in catalogue order.
var Modes = []Mode{ModeWithAnchor, ModeWithoutAnchor, ModeAPNUGW, ModeAPNCGW}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, bool) {
	for _, m := range Modes {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}
