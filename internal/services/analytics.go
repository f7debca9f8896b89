package services

import (
	"context"
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"sales-insights/internal/config"
	"sales-insights/internal/dataset"
	"sales-insights/internal/models"
	"sales-insights/internal/observability"
)

const cacheVersion = "v3"

// Options controls the views computed by BuildReport.
type Options struct {
	TopN     int
	Segments config.SegmentThresholds
}

func DefaultOptions() Options {
	return Options{TopN: 10, Segments: config.DefaultSegmentThresholds()}
}

// BuildReport computes every analyzer view over one dataset snapshot.
func BuildReport(records []models.SalesRecord, opts Options) models.Report {
	customers, segments := SegmentCustomers(records, opts.Segments)
	return models.Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		KPIs:        ComputeKPIs(records),
		Categories:  GroupByCategory(records),
		Regions:     GroupByRegion(records),
		Channels:    GroupByChannel(records),
		Products:    TopProducts(records, opts.TopN),
		Monthly:     MonthlyTrend(records),
		Customers:   customers,
		Segments:    segments,
		Statuses:    StatusCounts(records),
	}
}

// PrecomputedData is the cached snapshot. SourceModTime and SourceSize
// identify the dataset file it was built from.
type PrecomputedData struct {
	Report        models.Report
	Options       Options
	LastModified  time.Time
	RecordCount   int64
	SourceModTime time.Time
	SourceSize    int64
}

// fresh reports whether the snapshot was built from the file described by
// info with the given options.
func (p *PrecomputedData) fresh(info os.FileInfo, opts Options) bool {
	return p.Options == opts &&
		p.SourceSize == info.Size() &&
		p.SourceModTime.Equal(info.ModTime())
}

// Analytics holds the precomputed report of one dataset for readers such as
// the preview server.
type Analytics struct {
	mu          sync.RWMutex
	precomputed *PrecomputedData
	options     Options
	cacheDir    string
	logger      *slog.Logger
}

// NewAnalytics returns an empty holder. An empty cacheDir disables the report
// cache.
func NewAnalytics(opts Options, cacheDir string, logger *slog.Logger) *Analytics {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analytics{
		precomputed: &PrecomputedData{Report: BuildReport(nil, opts), Options: opts},
		options:     opts,
		cacheDir:    cacheDir,
		logger:      logger,
	}
}

func (a *Analytics) SetData(records []models.SalesRecord) {
	report := BuildReport(records, a.options)

	a.mu.Lock()
	defer a.mu.Unlock()

	a.precomputed = &PrecomputedData{
		Report:       report,
		Options:      a.options,
		LastModified: time.Now(),
		RecordCount:  int64(len(records)),
	}
}

func (a *Analytics) LoadFromCSV(ctx context.Context, filename string) error {
	ctx, span := observability.StartSpan(ctx, "analytics.load")
	span.SetTag("file", filename)
	defer span.End(a.logger)

	fileInfo, statErr := os.Stat(filename)
	if statErr == nil {
		if cached, err := a.loadFromCache(filename); err == nil && cached.fresh(fileInfo, a.options) {
			// Every load is a new run, even when the views come from cache.
			cached.Report.RunID = uuid.NewString()
			cached.Report.GeneratedAt = time.Now().UTC()

			a.mu.Lock()
			a.precomputed = cached
			a.mu.Unlock()
			a.logger.Info("loaded report from cache", "records", cached.RecordCount, "run_id", cached.Report.RunID)
			return nil
		}
	}

	start := time.Now()
	a.logger.Info("processing dataset", "filename", filename)

	records, err := dataset.LoadCSV(ctx, filename)
	if err != nil {
		span.SetError(err)
		return err
	}

	a.SetData(records)
	a.mu.Lock()
	a.precomputed.Report.Source = filename
	if statErr == nil {
		a.precomputed.SourceModTime = fileInfo.ModTime()
		a.precomputed.SourceSize = fileInfo.Size()
	}
	a.mu.Unlock()

	if err := a.saveToCache(filename); err != nil {
		a.logger.Warn("failed to save cache", "error", err)
	}

	duration := time.Since(start)
	a.logger.Info("dataset processing complete",
		"records", len(records),
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(len(records))/duration.Seconds()))

	return nil
}

func (a *Analytics) getCacheFilename(csvPath string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(csvPath)
	return filepath.Join(a.cacheDir, fmt.Sprintf("%s_%s.gob", name, cacheVersion))
}

func (a *Analytics) saveToCache(csvPath string) error {
	if a.cacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(a.cacheDir, 0755); err != nil {
		return err
	}

	file, err := os.Create(a.getCacheFilename(csvPath))
	if err != nil {
		return err
	}
	defer file.Close()

	a.mu.RLock()
	defer a.mu.RUnlock()

	return gob.NewEncoder(file).Encode(a.precomputed)
}

func (a *Analytics) loadFromCache(csvPath string) (*PrecomputedData, error) {
	if a.cacheDir == "" {
		return nil, os.ErrNotExist
	}

	file, err := os.Open(a.getCacheFilename(csvPath))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var data PrecomputedData
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, err
	}

	// gob drops empty slices; views must still encode as [] rather than null.
	r := &data.Report
	r.Categories = emptyIfNil(r.Categories)
	r.Regions = emptyIfNil(r.Regions)
	r.Channels = emptyIfNil(r.Channels)
	r.Products = emptyIfNil(r.Products)
	r.Monthly = emptyIfNil(r.Monthly)
	r.Customers = emptyIfNil(r.Customers)
	r.Segments = emptyIfNil(r.Segments)
	r.Statuses = emptyIfNil(r.Statuses)
	return &data, nil
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (a *Analytics) Report() models.Report {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.precomputed.Report
}

func (a *Analytics) KPIs() models.KPISet {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.precomputed.Report.KPIs
}

func (a *Analytics) Categories() []models.GroupStats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.precomputed.Report.Categories
}

func (a *Analytics) Regions() []models.GroupStats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.precomputed.Report.Regions
}

func (a *Analytics) Channels() []models.GroupStats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.precomputed.Report.Channels
}

func (a *Analytics) TopProducts(limit int) []models.GroupStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if limit <= 0 || len(a.precomputed.Report.Products) <= limit {
		return a.precomputed.Report.Products
	}
	return a.precomputed.Report.Products[:limit]
}

func (a *Analytics) MonthlySales() []models.MonthlyStats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.precomputed.Report.Monthly
}

func (a *Analytics) Segments() []models.SegmentSummary {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.precomputed.Report.Segments
}

// Stats reports the size of the loaded snapshot.
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	r := a.precomputed.Report
	return map[string]any{
		"run_id":         r.RunID,
		"source":         r.Source,
		"record_count":   a.precomputed.RecordCount,
		"last_processed": a.precomputed.LastModified,
		"categories":     len(r.Categories),
		"products":       len(r.Products),
		"months":         len(r.Monthly),
		"regions":        len(r.Regions),
		"customers":      len(r.Customers),
	}
}
