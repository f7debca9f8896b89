// Package dashboard renders the fixed chart set for one dataset: three PNG
// figures and one interactive HTML page.
package dashboard

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"sales-insights/internal/config"
	apperrors "sales-insights/internal/errors"
	"sales-insights/internal/models"
	"sales-insights/internal/observability"
	"sales-insights/internal/services"
)

const (
	OverviewFile    = "sales_overview.png"
	TimeSeriesFile  = "time_series.png"
	ProductsFile    = "product_performance.png"
	InteractiveFile = "interactive_dashboard.html"

	defaultTopN = 10
)

// Files lists every output in render order.
var Files = []string{OverviewFile, TimeSeriesFile, ProductsFile, InteractiveFile}

// views holds the aggregates every chart draws from, computed once per run.
type views struct {
	kpis       models.KPISet
	categories []models.GroupStats
	regions    []models.GroupStats
	channels   []models.GroupStats
	products   []models.GroupStats
	monthly    []models.MonthlyStats
	topN       int
}

func newViews(records []models.SalesRecord, kpis models.KPISet, topN int) views {
	return views{
		kpis:       kpis,
		categories: services.GroupByCategory(records),
		regions:    services.GroupByRegion(records),
		channels:   services.GroupByChannel(records),
		products:   services.TopProducts(records, topN),
		monthly:    services.MonthlyTrend(records),
		topN:       topN,
	}
}

type Generator struct {
	outputDir string
	topN      int
	workers   int
	logger    *slog.Logger
}

func NewGenerator(cfg config.DashboardConfig, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Generator{
		outputDir: cfg.OutputDir,
		topN:      cfg.TopN,
		workers:   cfg.Workers,
		logger:    logger,
	}
	if g.topN <= 0 {
		g.topN = defaultTopN
	}
	if g.workers <= 0 {
		g.workers = 1
	}
	return g
}

// Render writes every dashboard file into the output directory and returns
// their paths in Files order. Each chart owns its file, so charts render
// concurrently up to the configured worker count.
func (g *Generator) Render(ctx context.Context, records []models.SalesRecord, kpis models.KPISet) ([]string, error) {
	if g.outputDir == "" {
		return nil, apperrors.Configuration("dashboard output directory cannot be empty")
	}
	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		return nil, apperrors.InternalWrap(err, "create dashboard directory")
	}

	v := newViews(records, kpis, g.topN)
	renderers := map[string]func(string, views) error{
		OverviewFile:    renderOverview,
		TimeSeriesFile:  renderTimeSeries,
		ProductsFile:    renderProducts,
		InteractiveFile: renderInteractive,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)

	paths := make([]string, len(Files))
	for i, name := range Files {
		render := renderers[name]
		path := filepath.Join(g.outputDir, name)
		paths[i] = path

		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, span := observability.StartSpan(ctx, "dashboard.render")
			span.SetTag("file", name)
			defer span.End(g.logger)

			if err := render(path, v); err != nil {
				span.SetError(err)
				return apperrors.InternalWrap(err, "render "+name)
			}
			g.logger.Info("chart saved", "path", path)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}
