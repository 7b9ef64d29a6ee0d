package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "paygcli/internal/errors"
)

// Input formats recognised by ReadTable.
const (
	FormatWorkbook  = "xlsx"
	FormatDelimited = "csv"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RawTable is the cell grid of one source after the leading metadata rows
// have been skipped.
type RawTable struct {
	Source string
	Format string
	Sheet  string
	Header []string
	Rows   [][]string
}

// ReaderOptions controls how a source is decoded into a RawTable.
type ReaderOptions struct {
	SkipRows  int
	SheetName string
	Delimiter string // "auto" or a single character
}

// ReadTableFile reads a workbook or delimited text file from disk.
func ReadTableFile(path string, opts ReaderOptions) (*RawTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewReadError(filepath.Base(path), err)
	}
	return ReadTable(filepath.Base(path), data, opts)
}

// ReadTable decodes data as a workbook first and as delimited text second.
// Only when neither decoding succeeds is a read error returned.
func ReadTable(source string, data []byte, opts ReaderOptions) (*RawTable, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, apperrors.NewReadError(source, fmt.Errorf("input is empty"))
	}

	table, wbErr := readWorkbook(source, data, opts)
	if wbErr == nil {
		return table, nil
	}

	table, csvErr := readDelimited(source, data, opts)
	if csvErr == nil {
		return table, nil
	}

	return nil, apperrors.NewReadError(source, fmt.Errorf("workbook: %v; delimited text: %w", wbErr, csvErr))
}

func readWorkbook(source string, data []byte, opts ReaderOptions) (*RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	// Prefer the configured sheet, otherwise the first one.
	sheet := sheets[0]
	for _, name := range sheets {
		if opts.SheetName != "" && strings.EqualFold(strings.TrimSpace(name), opts.SheetName) {
			sheet = name
			break
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	table, err := buildTable(source, skipRows(rows, opts.SkipRows))
	if err != nil {
		return nil, err
	}
	table.Format = FormatWorkbook
	table.Sheet = sheet
	return table, nil
}

func readDelimited(source string, data []byte, opts ReaderOptions) (*RawTable, error) {
	if bytes.IndexByte(data, 0) >= 0 {
		return nil, fmt.Errorf("binary content is not delimited text")
	}

	body := skipLines(bytes.TrimPrefix(data, utf8BOM), opts.SkipRows)

	delim := sniffDelimiter(body, opts.Delimiter)
	r := csv.NewReader(bytes.NewReader(body))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}

	table, err := buildTable(source, rows)
	if err != nil {
		return nil, err
	}
	table.Format = FormatDelimited
	return table, nil
}

// buildTable takes the first non-blank row as header and keeps every
// non-blank row after it. Short rows are padded to the header width.
func buildTable(source string, rows [][]string) (*RawTable, error) {
	headerIdx := -1
	for i, row := range rows {
		if !isBlankRow(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, fmt.Errorf("no header row found")
	}

	header := make([]string, len(rows[headerIdx]))
	for i, cell := range rows[headerIdx] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(cell, string(utf8BOM)))
	}
	for len(header) > 0 && header[len(header)-1] == "" {
		header = header[:len(header)-1]
	}
	header = uniqueHeader(header)

	table := &RawTable{Source: source, Header: header}
	for _, row := range rows[headerIdx+1:] {
		if isBlankRow(row) {
			continue
		}
		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			row = padded
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// uniqueHeader renames repeated column names to "name.1", "name.2" and so on,
// so every column stays addressable by name.
func uniqueHeader(header []string) []string {
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		seen[h] = true
	}
	counts := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = h
		if h == "" {
			continue
		}
		if counts[h] > 0 {
			for {
				name := fmt.Sprintf("%s.%d", h, counts[h])
				counts[h]++
				if !seen[name] {
					seen[name] = true
					out[i] = name
					break
				}
			}
			continue
		}
		counts[h] = 1
	}
	return out
}

func skipRows(rows [][]string, n int) [][]string {
	if n <= 0 {
		return rows
	}
	if n >= len(rows) {
		return nil
	}
	return rows[n:]
}

// skipLines drops the first n physical lines of a text body.
func skipLines(body []byte, n int) []byte {
	for i := 0; i < n && len(body) > 0; i++ {
		idx := bytes.IndexByte(body, '\n')
		if idx < 0 {
			return nil
		}
		body = body[idx+1:]
	}
	return body
}

// sniffDelimiter picks the candidate separator that occurs most often on
// the first line outside quotes. Comma wins ties and empty input.
func sniffDelimiter(body []byte, configured string) rune {
	if configured != "" && configured != "auto" {
		return []rune(configured)[0]
	}

	line := body
	if idx := bytes.IndexByte(body, '\n'); idx >= 0 {
		line = body[:idx]
	}

	candidates := []rune{',', ';', '\t', '|'}
	counts := make(map[rune]int, len(candidates))
	inQuotes := false
	for _, ch := range string(line) {
		if ch == '"' {
			inQuotes = !inQuotes
			continue
		}
		if !inQuotes {
			counts[ch]++
		}
	}

	best := ','
	for _, c := range candidates {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
