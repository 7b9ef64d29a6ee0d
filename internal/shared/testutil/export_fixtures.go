package testutil

import (
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// MetadataRows is the number of report lines the network management system
// writes above the header of every counter export.
const MetadataRows = 7

// CGW counter names as they appear in CGW APN exports.
var CGWCounterNames = []string{
	"PGW-C 2/3G Maximum simultaneously activated PDP contexts (APN) (number)",
	"SGW-C maximum simultaneously subscribers (specified APN) (number)",
	"PGW-C maximum simultaneously active subscribers (specified APN) (number)",
	"SGW-C and PGW-C combined Maximum simultaneously activated EPS bearers (APN) (number)",
}

// ExportFixture describes one counter export: a header row and data rows.
type ExportFixture struct {
	Header []string
	Rows   [][]string
}

// SiteExport returns an S-CSCF style export with one counter column.
func SiteExport(counter string, rows ...[]string) ExportFixture {
	return ExportFixture{
		Header: []string{"Start Time", "Period", "NE Name", counter},
		Rows:   rows,
	}
}

// APNExport returns a UGW/CGW style export where counters start after the
// APN column.
func APNExport(counters []string, rows ...[]string) ExportFixture {
	header := append([]string{"Start Time", "Period", "NE Name", "APN"}, counters...)
	return ExportFixture{Header: header, Rows: rows}
}

// CSV renders the fixture as comma separated text preceded by the
// metadata rows.
func (f ExportFixture) CSV() []byte {
	var b strings.Builder
	for i := 0; i < MetadataRows; i++ {
		b.WriteString("Report metadata\n")
	}
	writeLine := func(cells []string) {
		for i, c := range cells {
			if i > 0 {
				b.WriteByte(',')
			}
			if strings.ContainsAny(c, ",\"") {
				c = `"` + strings.ReplaceAll(c, `"`, `""`) + `"`
			}
			b.WriteString(c)
		}
		b.WriteByte('\n')
	}
	writeLine(f.Header)
	for _, row := range f.Rows {
		writeLine(row)
	}
	return []byte(b.String())
}

// Workbook renders the fixture as an .xlsx workbook with a single Sheet1.
func (f ExportFixture) Workbook(t *testing.T) []byte {
	t.Helper()

	wb := excelize.NewFile()
	defer wb.Close()

	const sheet = "Sheet1"
	setRow := func(rowNum int, cells []string) {
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := wb.SetSheetRow(sheet, cell, &cells); err != nil {
			t.Fatalf("set row %d: %v", rowNum, err)
		}
	}

	for i := 1; i <= MetadataRows; i++ {
		setRow(i, []string{"Report metadata"})
	}
	setRow(MetadataRows+1, f.Header)
	for i, row := range f.Rows {
		setRow(MetadataRows+2+i, row)
	}

	buf, err := wb.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}
