package services

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	apperrors "sales-insights/internal/errors"
	"sales-insights/internal/models"
)

const csvHeader = "order_id,date,customer_id,product,category,quantity,unit_price,unit_cost,total_price,total_cost,profit,margin_percent,region,channel,status\n"

const scenarioCSV = csvHeader + `ORD-20230100001,2023-01-15,C1001,Mouse,Accessories,2,10.00,6.00,20.00,12.00,8.00,40.00,North,Online,Delivered
ORD-20230200002,2023-02-10,C1002,Keyboard,Accessories,1,20.00,15.00,20.00,15.00,5.00,25.00,South,Store,Cancelled
ORD-20230200003,2023-02-20,C1001,USB Cable,Accessories,5,5.00,2.00,25.00,10.00,15.00,60.00,North,Online,Delivered
`

func createTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewAnalytics(t *testing.T) {
	a := NewAnalytics(DefaultOptions(), "", nil)
	if a == nil {
		t.Fatal("NewAnalytics() returned nil")
	}
	if a.precomputed == nil {
		t.Error("precomputed should be initialized")
	}
	if a.logger == nil {
		t.Error("logger should be initialized")
	}
	if got := a.KPIs(); got.RecordCount != 0 || got.TotalRevenue != 0 {
		t.Errorf("fresh analytics should report zero KPIs, got %+v", got)
	}
}

func TestAnalytics_SetData(t *testing.T) {
	a := NewAnalytics(DefaultOptions(), "", testLogger())
	a.SetData(scenarioRecords())

	kpis := a.KPIs()
	if kpis.TotalRevenue != 45 {
		t.Errorf("expected revenue 45, got %v", kpis.TotalRevenue)
	}
	if kpis.RecordCount != 3 {
		t.Errorf("expected 3 records, got %d", kpis.RecordCount)
	}

	if a.Report().RunID == "" {
		t.Error("report should carry a run id")
	}

	stats := a.Stats()
	if stats["record_count"].(int64) != 3 {
		t.Errorf("expected record_count 3, got %v", stats["record_count"])
	}
}

func TestAnalytics_LoadFromCSV_ValidData(t *testing.T) {
	path := createTempCSV(t, scenarioCSV)

	a := NewAnalytics(DefaultOptions(), "", testLogger())
	if err := a.LoadFromCSV(context.Background(), path); err != nil {
		t.Fatalf("LoadFromCSV() error = %v", err)
	}

	kpis := a.KPIs()
	if kpis.TotalRevenue != 45 || kpis.TotalProfit != 23 {
		t.Errorf("expected revenue 45 and profit 23, got %v and %v", kpis.TotalRevenue, kpis.TotalProfit)
	}
	if a.Report().Source != path {
		t.Errorf("expected source %q, got %q", path, a.Report().Source)
	}
}

func TestAnalytics_LoadFromCSV_InvalidData(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    apperrors.ErrorCode
	}{
		{
			name:    "empty file",
			content: "",
			code:    apperrors.CodeInvalidData,
		},
		{
			name:    "missing columns",
			content: "order_id,date,customer_id\nORD-1,2023-01-01,C1000\n",
			code:    apperrors.CodeInvalidData,
		},
		{
			name: "invalid date",
			content: csvHeader +
				"ORD-1,01/15/2023,C1000,Mouse,Accessories,1,10.00,6.00,10.00,6.00,4.00,40.00,North,Online,Delivered\n",
			code: apperrors.CodeInvalidData,
		},
		{
			name: "inconsistent totals",
			content: csvHeader +
				"ORD-1,2023-01-15,C1000,Mouse,Accessories,2,10.00,6.00,25.00,12.00,13.00,52.00,North,Online,Delivered\n",
			code: apperrors.CodeInvalidData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := createTempCSV(t, tt.content)

			a := NewAnalytics(DefaultOptions(), "", testLogger())
			err := a.LoadFromCSV(context.Background(), path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !apperrors.HasCode(err, tt.code) {
				t.Errorf("expected code %s, got %v", tt.code, err)
			}
		})
	}
}

func TestAnalytics_LoadFromCSV_MissingFile(t *testing.T) {
	a := NewAnalytics(DefaultOptions(), "", testLogger())
	err := a.LoadFromCSV(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	if !apperrors.HasCode(err, apperrors.CodeMissingInput) {
		t.Errorf("expected MISSING_INPUT, got %v", err)
	}
}

func TestAnalytics_Cache(t *testing.T) {
	path := createTempCSV(t, scenarioCSV)
	cacheDir := t.TempDir()

	first := NewAnalytics(DefaultOptions(), cacheDir, testLogger())
	if err := first.LoadFromCSV(context.Background(), path); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(cacheDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one cache file, got %v (err %v)", entries, err)
	}

	second := NewAnalytics(DefaultOptions(), cacheDir, testLogger())
	if err := second.LoadFromCSV(context.Background(), path); err != nil {
		t.Fatal(err)
	}
	if !second.precomputed.LastModified.Equal(first.precomputed.LastModified) {
		t.Error("second load should reuse the cached report")
	}
	if second.Report().RunID == first.Report().RunID {
		t.Error("a cached load should still get its own run id")
	}
	if !second.Report().GeneratedAt.After(first.Report().GeneratedAt) {
		t.Error("a cached load should be stamped with a new generation time")
	}

	opts := DefaultOptions()
	opts.TopN = 1
	third := NewAnalytics(opts, cacheDir, testLogger())
	if err := third.LoadFromCSV(context.Background(), path); err != nil {
		t.Fatal(err)
	}
	if third.precomputed.LastModified.Equal(first.precomputed.LastModified) {
		t.Error("different options should not reuse the cached report")
	}
	if len(third.TopProducts(0)) != 1 {
		t.Errorf("expected product ranking cut to 1, got %d", len(third.TopProducts(0)))
	}
}

func TestAnalytics_CacheInvalidatedByNewerFile(t *testing.T) {
	path := createTempCSV(t, scenarioCSV)
	cacheDir := t.TempDir()

	first := NewAnalytics(DefaultOptions(), cacheDir, testLogger())
	if err := first.LoadFromCSV(context.Background(), path); err != nil {
		t.Fatal(err)
	}

	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	second := NewAnalytics(DefaultOptions(), cacheDir, testLogger())
	if err := second.LoadFromCSV(context.Background(), path); err != nil {
		t.Fatal(err)
	}
	if second.precomputed.LastModified.Equal(first.precomputed.LastModified) {
		t.Error("a modified dataset should be reprocessed")
	}
}

func TestAnalytics_CacheInvalidatedByOlderReplacement(t *testing.T) {
	path := createTempCSV(t, scenarioCSV)
	cacheDir := t.TempDir()

	first := NewAnalytics(DefaultOptions(), cacheDir, testLogger())
	if err := first.LoadFromCSV(context.Background(), path); err != nil {
		t.Fatal(err)
	}

	// A restored backup: different content, mtime older than the cache.
	restored := csvHeader + "ORD-20230100001,2023-01-15,C1001,Mouse,Accessories,2,10.00,6.00,20.00,12.00,8.00,40.00,North,Online,Delivered\n"
	if err := os.WriteFile(path, []byte(restored), 0644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-24 * time.Hour)
	if err := os.Chtimes(path, past, past); err != nil {
		t.Fatal(err)
	}

	second := NewAnalytics(DefaultOptions(), cacheDir, testLogger())
	if err := second.LoadFromCSV(context.Background(), path); err != nil {
		t.Fatal(err)
	}
	if got := second.KPIs().TotalRevenue; got != 20 {
		t.Errorf("expected revenue of the restored file (20), got %v", got)
	}
	if got := second.KPIs().RecordCount; got != 1 {
		t.Errorf("expected 1 record, got %d", got)
	}
}

func TestAnalytics_TopProducts(t *testing.T) {
	a := NewAnalytics(DefaultOptions(), "", testLogger())
	a.SetData(scenarioRecords())

	tests := []struct {
		limit int
		want  int
	}{
		{0, 2},
		{1, 1},
		{5, 2},
	}
	for _, tt := range tests {
		if got := len(a.TopProducts(tt.limit)); got != tt.want {
			t.Errorf("TopProducts(%d) returned %d products, want %d", tt.limit, got, tt.want)
		}
	}

	if top := a.TopProducts(1)[0]; top.Key != "USB Cable" {
		t.Errorf("expected USB Cable first, got %s", top.Key)
	}
}

func TestAnalytics_MonthlySales(t *testing.T) {
	a := NewAnalytics(DefaultOptions(), "", testLogger())
	a.SetData(scenarioRecords())

	monthly := a.MonthlySales()
	if len(monthly) != 2 {
		t.Fatalf("expected 2 months, got %d", len(monthly))
	}
	if monthly[0].Month != "2023-01" || monthly[1].Month != "2023-02" {
		t.Errorf("months out of order: %s, %s", monthly[0].Month, monthly[1].Month)
	}
	if monthly[1].Orders != 1 {
		t.Errorf("cancelled orders should not count, got %d orders in 2023-02", monthly[1].Orders)
	}
}

func TestAnalytics_ConcurrentAccess(t *testing.T) {
	a := NewAnalytics(DefaultOptions(), "", testLogger())
	a.SetData(scenarioRecords())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = a.KPIs()
			_ = a.Categories()
			_ = a.TopProducts(5)
			_ = a.Segments()
		}()
		go func() {
			defer wg.Done()
			a.SetData(scenarioRecords())
		}()
	}
	wg.Wait()

	if a.KPIs().TotalRevenue != 45 {
		t.Error("concurrent updates should leave a consistent snapshot")
	}
}

func TestAnalytics_EmptyData(t *testing.T) {
	path := createTempCSV(t, csvHeader)

	a := NewAnalytics(DefaultOptions(), "", testLogger())
	if err := a.LoadFromCSV(context.Background(), path); err != nil {
		t.Fatalf("header-only dataset should load, got %v", err)
	}

	if kpis := a.KPIs(); kpis != (models.KPISet{}) {
		t.Errorf("expected zero KPIs, got %+v", kpis)
	}
	if len(a.Categories()) != 0 || len(a.MonthlySales()) != 0 || len(a.Segments()) != 0 {
		t.Error("expected no grouped data for an empty dataset")
	}
}

func BenchmarkBuildReport(b *testing.B) {
	records := benchmarkRecords(10000)
	opts := DefaultOptions()

	for b.Loop() {
		_ = BuildReport(records, opts)
	}
}

func BenchmarkAnalytics_TopProducts(b *testing.B) {
	a := NewAnalytics(DefaultOptions(), "", testLogger())
	a.SetData(benchmarkRecords(10000))

	for b.Loop() {
		_ = a.TopProducts(10)
	}
}

func TestAnalytics_CachedEmptyViewsStayNonNil(t *testing.T) {
	path := createTempCSV(t, csvHeader)
	cacheDir := t.TempDir()

	for range 2 {
		analytics := NewAnalytics(DefaultOptions(), cacheDir, testLogger())
		if err := analytics.LoadFromCSV(context.Background(), path); err != nil {
			t.Fatal(err)
		}
		if analytics.Categories() == nil || analytics.MonthlySales() == nil || analytics.Segments() == nil {
			t.Error("empty views should be empty slices, not nil")
		}
	}
}
