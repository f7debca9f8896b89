// Command analyze computes KPIs, grouped views and customer segments for a
// sales dataset and prints the text report.
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

	"sales-insights/internal/config"
	apperrors "sales-insights/internal/errors"
	"sales-insights/internal/observability"
	"sales-insights/internal/report"
	"sales-insights/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal(apperrors.ConfigurationWrap(err, "load configuration"))
	}

	in := flag.String("in", cfg.Analyzer.DataFile, "Input CSV dataset")
	top := flag.Int("top", cfg.Analyzer.TopN, "Number of products kept in the product ranking")
	reportFile := flag.String("report", cfg.Analyzer.ReportFile, "Also write the text report to this file")
	xlsxFile := flag.String("xlsx", cfg.Analyzer.XLSXFile, "Export the report as an Excel workbook")
	sqliteFile := flag.String("sqlite", cfg.Analyzer.SQLiteFile, "Append the report to a SQLite database")
	noCache := flag.Bool("no-cache", false, "Ignore and skip the precomputed report cache")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `analyze: sales KPIs, rankings and customer segments

Usage:
  analyze -in data/sales_data.csv
  analyze -in data/sales_data.csv -report out/report.txt -xlsx out/report.xlsx
  analyze -sqlite out/history.db

Flags:
`)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *top <= 0 {
		fatal(apperrors.Configuration("-top must be positive, got %d", *top))
	}

	logger := observability.NewLogger(cfg.Logger, os.Stderr)
	slog.SetDefault(logger)

	cacheDir := cfg.Analyzer.CacheDir
	if *noCache {
		cacheDir = ""
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, logger, services.Options{TopN: *top, Segments: cfg.Analyzer.Segments}, cacheDir, outputs{
		in:     *in,
		report: *reportFile,
		xlsx:   *xlsxFile,
		sqlite: *sqliteFile,
	})
	stop()
	if err != nil {
		fatal(err)
	}
}

type outputs struct {
	in, report, xlsx, sqlite string
}

func run(ctx context.Context, logger *slog.Logger, opts services.Options, cacheDir string, out outputs) error {
	analytics := services.NewAnalytics(opts, cacheDir, logger)
	if err := analytics.LoadFromCSV(ctx, out.in); err != nil {
		return err
	}
	r := analytics.Report()

	if r.KPIs.RecordCount == 0 {
		logger.Warn("dataset is empty, all indicators are zero", "path", out.in)
	}

	if err := report.WriteText(os.Stdout, r); err != nil {
		return apperrors.InternalWrap(err, "write report")
	}

	if out.report != "" {
		if err := report.SaveText(out.report, r); err != nil {
			return apperrors.InternalWrap(err, "save report")
		}
		logger.Info("report saved", "path", out.report)
	}

	if out.xlsx != "" {
		if err := report.ExportXLSX(out.xlsx, r); err != nil {
			return apperrors.InternalWrap(err, "export workbook")
		}
		logger.Info("workbook saved", "path", out.xlsx)
	}

	if out.sqlite != "" {
		sink, err := report.OpenSQLiteSink(ctx, out.sqlite)
		if err != nil {
			return apperrors.InternalWrap(err, "open sqlite sink")
		}
		defer sink.Close()

		if err := sink.SaveReport(ctx, r); err != nil {
			return apperrors.InternalWrap(err, "store report")
		}
		logger.Info("report stored", "path", out.sqlite, "run_id", r.RunID)
	}

	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Details != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", appErr.Details)
	}
	os.Exit(1)
}
