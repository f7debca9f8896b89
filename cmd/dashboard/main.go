// Command dashboard renders the static PNG figures and the interactive HTML
// dashboard for a sales dataset.
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
	"sales-insights/internal/dashboard"
	"sales-insights/internal/dataset"
	apperrors "sales-insights/internal/errors"
	"sales-insights/internal/observability"
	"sales-insights/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal(apperrors.ConfigurationWrap(err, "load configuration"))
	}

	in := flag.String("in", cfg.Dashboard.DataFile, "Input CSV dataset")
	out := flag.String("out", cfg.Dashboard.OutputDir, "Directory for the rendered charts")
	top := flag.Int("top", cfg.Dashboard.TopN, "Number of products shown in product charts")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `dashboard: static and interactive sales charts

Usage:
  dashboard -in data/sales_data.csv -out dashboards

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

	dcfg := cfg.Dashboard
	dcfg.DataFile = *in
	dcfg.OutputDir = *out
	dcfg.TopN = *top

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, logger, dcfg)
	stop()
	if err != nil {
		fatal(err)
	}
}

func run(ctx context.Context, logger *slog.Logger, cfg config.DashboardConfig) error {
	records, err := dataset.LoadCSV(ctx, cfg.DataFile)
	if err != nil {
		return err
	}

	paths, err := dashboard.NewGenerator(cfg, logger).Render(ctx, records, services.ComputeKPIs(records))
	if err != nil {
		return err
	}

	for _, p := range paths {
		fmt.Println(p)
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
