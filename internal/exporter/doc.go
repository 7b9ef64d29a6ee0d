// Package exporter encodes summary tables for download.
//
// Two renditions are produced from the same header and rows (TableRecords):
//
// CSV: the default. Numbers are written as raw magnitudes and timestamps as
// "2006-01-02 15:04:05", so re-running an extraction on the same input
// yields byte-identical output.
//
// XLSX: a single sheet named after the extraction mode, with totals stored
// as numeric cells.
//
// Example usage:
//
//	exp, err := exporter.Encode(result.Table, result.Filename, exporter.FormatCSV)
//	if err != nil {
//	    return err
//	}
//	path, err := exporter.NewWriter(cfg.Pipeline.OutputDir, logger).Write(exp)
package exporter
