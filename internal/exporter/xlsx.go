package exporter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"paygcli/pkg/contracts/domain"
)

// maxSheetName is the Excel limit on worksheet name length.
const maxSheetName = 31

// XLSXFilename swaps the extension of a default export filename for .xlsx.
func XLSXFilename(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + ".xlsx"
}

// EncodeTableXLSX renders a summary table as a single-sheet workbook named
// after the mode. Totals are written as numbers, everything else as text.
func EncodeTableXLSX(table *domain.SummaryTable) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(table.Mode)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header, _ := TableRecords(table)
	if err := setRow(f, sheet, 1, toCells(header)); err != nil {
		return nil, err
	}

	rowNum := 2
	switch table.Layout {
	case domain.LayoutCategory:
		for _, row := range table.Categories {
			cells := []interface{}{row.Label.DisplayName(), row.Total}
			if table.IncludeStartTime {
				cells = append(cells, formatTimestamp(row.StartTime))
			}
			if err := setRow(f, sheet, rowNum, cells); err != nil {
				return nil, err
			}
			rowNum++
		}
	default:
		for _, row := range table.Sites {
			cells := []interface{}{formatTimestamp(row.Timestamp), row.SM1, row.VIS1, row.Total}
			if err := setRow(f, sheet, rowNum, cells); err != nil {
				return nil, err
			}
			rowNum++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func sheetName(mode domain.Mode) string {
	name := string(mode)
	if name == "" {
		name = "Summary"
	}
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	return name
}

func setRow(f *excelize.File, sheet string, rowNum int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNum, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
