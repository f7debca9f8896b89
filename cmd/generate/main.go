// Command generate writes a synthetic sales dataset as CSV.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sales-insights/internal/config"
	"sales-insights/internal/dataset"
	apperrors "sales-insights/internal/errors"
	"sales-insights/internal/generator"
	"sales-insights/internal/observability"
	"sales-insights/internal/report"
)

const summaryTopN = 5

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal(apperrors.ConfigurationWrap(err, "load configuration"))
	}

	records := flag.Int("records", cfg.Generator.Records, "Number of sales records to generate")
	seed := flag.Uint64("seed", cfg.Generator.Seed, "Random seed; the same seed reproduces the same dataset")
	start := flag.String("start", cfg.Generator.StartDate.Format(config.DateLayout), "First order date (YYYY-MM-DD)")
	end := flag.String("end", cfg.Generator.EndDate.Format(config.DateLayout), "Last order date (YYYY-MM-DD)")
	out := flag.String("out", cfg.Generator.DataFile, "Output CSV path")
	catalogFile := flag.String("catalog", cfg.Catalog, "Optional YAML or TOML catalog file")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `generate: synthetic sales dataset

Usage:
  generate -records 10000 -seed 42 -out data/sales_data.csv
  generate -start 2024-01-01 -end 2024-06-30 -catalog catalog.yaml

Flags:
`)
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := observability.NewLogger(cfg.Logger, os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, logger, options{
		records:     *records,
		seed:        *seed,
		start:       *start,
		end:         *end,
		out:         *out,
		catalogFile: *catalogFile,
	})
	stop()
	if err != nil {
		fatal(err)
	}
}

type options struct {
	records     int
	seed        uint64
	start, end  string
	out         string
	catalogFile string
}

func run(ctx context.Context, logger *slog.Logger, opts options) error {
	startDate, err := time.Parse(config.DateLayout, opts.start)
	if err != nil {
		return apperrors.ConfigurationWrap(err, "invalid -start date")
	}
	endDate, err := time.Parse(config.DateLayout, opts.end)
	if err != nil {
		return apperrors.ConfigurationWrap(err, "invalid -end date")
	}

	catalog := config.DefaultCatalog()
	if opts.catalogFile != "" {
		if catalog, err = config.LoadCatalog(opts.catalogFile); err != nil {
			return apperrors.ConfigurationWrap(err, "load catalog")
		}
		logger.Info("catalog loaded", "path", opts.catalogFile, "products", len(catalog.Products))
	}

	gen, err := generator.New(catalog, logger)
	if err != nil {
		return err
	}

	ctx, span := observability.StartSpan(ctx, "generate")
	defer span.End(logger)

	records, err := gen.Generate(ctx, generator.Config{
		Records:   opts.records,
		Seed:      opts.seed,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		span.SetError(err)
		return err
	}

	if err := dataset.SaveCSV(opts.out, records); err != nil {
		span.SetError(err)
		return err
	}
	logger.Info("dataset saved", "path", opts.out, "records", len(records))

	return report.WriteDataSummary(os.Stdout, generator.Summarize(records, summaryTopN))
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Details != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", appErr.Details)
	}
	os.Exit(1)
}
