package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"paygcli/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions configures CSV encoding
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// EncodeCSV writes headers and records as comma separated text.
func EncodeCSV(options WriteOptions) ([]byte, error) {
	var buf bytes.Buffer

	// Write BOM if requested (helps Excel recognize UTF-8)
	if options.BOMPrefix {
		buf.Write(utf8BOM)
	}

	writer := csv.NewWriter(&buf)

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTableCSV renders a summary table as CSV text.
func EncodeTableCSV(table *domain.SummaryTable, bom bool) ([]byte, error) {
	header, records := TableRecords(table)
	return EncodeCSV(WriteOptions{Headers: header, Records: records, BOMPrefix: bom})
}
