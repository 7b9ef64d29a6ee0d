// Package dataprocessing turns network-element counter exports into the
// per-site and per-APN-category snapshot tables.
//
// # Architecture
//
// The package is organized into small stages that each take and return
// plain values:
//
// 1. Reader: decodes a workbook or delimited text file into a RawTable
// 2. Normalizer: validates required columns and parses rows into a domain.Batch
// 3. Combine: concatenates same-schema batches from several hosts
// 4. SnapshotFilter: keeps the rows taken at the snapshot time of day
// 5. ClassifySites / SplitCategories: derive the site tag or APN category
// 6. PivotBySite / PivotByCategory: build the domain.SummaryTable
//
// Pipeline wires the stages together for one ModeSpec.
//
// # Usage
//
//	table, err := dataprocessing.ReadTableFile("host2.csv", dataprocessing.ReaderOptions{SkipRows: 7})
//	if err != nil {
//	    return err
//	}
//	p := dataprocessing.NewPipeline(logger, cfg.Pipeline)
//	result, err := p.Run(ctx, dataprocessing.Options{Mode: domain.ModeAPNUGW}, []*dataprocessing.RawTable{table})
//
// # Data Flow
//
//	File → ReadTable → Normalize → Combine → SnapshotFilter → {ClassifySites | SplitCategories} → Pivot → SummaryTable
//
// # Error Handling
//
// Timestamp columns that cannot be parsed do not stop a run: the batch is
// tagged unparsed, a Warning is returned and the snapshot filter passes
// every row through. Unreadable input, missing columns and counter sets
// that disagree between sources are returned as *errors.AppError values.
package dataprocessing
