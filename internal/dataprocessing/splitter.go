package dataprocessing

import (
	"strings"

	"paygcli/pkg/contracts/domain"
)

const imsToken = "ims"

// CategorySubset is one named slice of the filtered records.
type CategorySubset struct {
	Label   domain.CategoryLabel
	Records []domain.Record
}

// IsIMS reports whether an APN belongs to the IMS category.
func IsIMS(apn string) bool {
	return strings.Contains(strings.ToLower(apn), imsToken)
}

// SplitCategories partitions records into IMS, DATA and TOTAL, in that
// order. DATA is derived from the same membership test as IMS, so the two
// are disjoint and together cover TOTAL.
func SplitCategories(records []domain.Record) []CategorySubset {
	var ims, data []domain.Record
	for _, rec := range records {
		if IsIMS(rec.Category) {
			ims = append(ims, rec)
		} else {
			data = append(data, rec)
		}
	}

	return []CategorySubset{
		{Label: domain.CategoryIMS, Records: ims},
		{Label: domain.CategoryDATA, Records: data},
		{Label: domain.CategoryTOTAL, Records: records},
	}
}
