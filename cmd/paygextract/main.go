package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"paygcli/internal/config"
	"paygcli/internal/dataprocessing"
	apperrors "paygcli/internal/errors"
	"paygcli/internal/exporter"
	"paygcli/internal/infrastructure"
	"paygcli/internal/services"
	"paygcli/internal/validation"
	"paygcli/pkg/contracts"
	"paygcli/pkg/contracts/domain"
)

const usage = `Usage: paygextract -mode MODE [flags] FILE|DIR...

Extracts one snapshot summary table from telecom counter exports.

Modes:
`

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config, using defaults: %v\n", err)
		cfg = config.Default()
	}

	flags := flag.NewFlagSet("paygextract", flag.ContinueOnError)
	flags.SetOutput(stderr)
	modeName := flags.String("mode", "", "extraction mode (required)")
	counter := flags.String("counter", "", "counter column, defaults to the mode's counter")
	snapshot := flags.String("snapshot", cfg.Pipeline.SnapshotTime, "snapshot time of day, HH:MM:SS")
	outDir := flags.String("out", cfg.Pipeline.OutputDir, "output directory")
	format := flags.String("format", string(exporter.FormatCSV), "export format: csv or xlsx")
	listCounters := flags.Bool("list-counters", false, "print the counter columns found in the inputs and exit")
	listModes := flags.Bool("list-modes", false, "print the available modes and exit")
	showVersion := flags.Bool("version", false, "print version information and exit")
	flags.Usage = func() {
		fmt.Fprint(stderr, usage)
		for _, m := range dataprocessing.AllModes() {
			fmt.Fprintf(stderr, "  %-16s %s\n", m.Mode, m.Title)
		}
		fmt.Fprintln(stderr, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *showVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return 0
	}

	logger := infrastructure.NewLogger(stderr, cfg.Logging.Level)
	ctx = infrastructure.EnsureTraceID(ctx)
	service := services.NewExtractionService(cfg.Pipeline, nil, logger)

	if *listModes {
		for _, m := range service.Modes() {
			fmt.Fprintf(stdout, "%s\t%s\t%s\n", m.Mode, m.Filename, m.Title)
		}
		return 0
	}

	mode, ok := domain.ParseMode(*modeName)
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown or missing -mode %q\n\n", *modeName)
		flags.Usage()
		return 2
	}
	if flags.NArg() == 0 {
		fmt.Fprintln(stderr, "Error: no input files given")
		flags.Usage()
		return 2
	}

	validator := validation.NewFileValidator(logger)
	uploads, err := loadUploads(validator, flags.Args(), cfg.Pipeline.MaxUploadBytes)
	if err != nil {
		return fail(ctx, stderr, logger, err)
	}

	if *listCounters {
		counters, err := service.ListCounters(ctx, mode, uploads)
		if err != nil {
			return fail(ctx, stderr, logger, err)
		}
		for _, c := range counters {
			fmt.Fprintln(stdout, c)
		}
		return 0
	}

	if err := validator.ValidateOutputDirectory(*outDir); err != nil {
		return fail(ctx, stderr, logger, apperrors.NewStorageError("output directory is not usable", err))
	}

	resp, err := service.Extract(ctx, services.ExtractRequest{
		Mode:         mode,
		Counter:      *counter,
		SnapshotTime: *snapshot,
		Format:       exporter.Format(strings.ToLower(*format)),
		Uploads:      uploads,
	})
	if err != nil {
		return fail(ctx, stderr, logger, err)
	}

	for _, w := range resp.Result.Warnings {
		logger.Warn("Extraction warning",
			slog.String("source", w.Source),
			slog.String("kind", string(w.Kind)),
			slog.String("message", w.Message))
	}

	path, err := exporter.NewWriter(*outDir, logger).Write(resp.Export)
	if err != nil {
		return fail(ctx, stderr, logger, err)
	}

	fmt.Fprintf(stdout, "%s (%d rows, %d of %d input rows selected)\n",
		path, resp.Result.Table.Len(), resp.Result.Stats.RowsSelected, resp.Result.Stats.RowsIngested)
	return 0
}

// loadUploads expands the arguments into counter exports and reads them in
// argument order.
func loadUploads(validator *validation.FileValidator, paths []string, maxBytes int64) ([]services.Upload, error) {
	files, err := validator.CollectInputs(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, apperrors.NewAppValidationError("no counter exports found in the given paths")
	}

	uploads := make([]services.Upload, 0, len(files))
	for _, f := range files {
		if err := validator.ValidateInputFile(f, maxBytes); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, apperrors.NewReadError(filepath.Base(f), err)
		}
		uploads = append(uploads, services.Upload{Name: filepath.Base(f), Data: data})
	}
	return uploads, nil
}

func fail(ctx context.Context, stderr io.Writer, logger *slog.Logger, err error) int {
	logger.ErrorContext(ctx, "Extraction failed", slog.String("error", err.Error()))
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}
