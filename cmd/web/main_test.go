package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sales-insights/internal/dashboard"
	"sales-insights/internal/models"
	"sales-insights/internal/server"
	"sales-insights/internal/services"
	"sales-insights/internal/ui/templates"
)

func testRecord(id, customer, product, category string, qty int, price, cost float64, status models.Status, date time.Time) models.SalesRecord {
	r := models.SalesRecord{
		OrderID:    id,
		Date:       date,
		CustomerID: customer,
		Product:    product,
		Category:   category,
		Quantity:   qty,
		UnitPrice:  price,
		UnitCost:   cost,
		Region:     "North",
		Channel:    "Online",
		Status:     status,
	}
	r.DeriveTotals()
	return r
}

// Test helper to create analytics with test data
func newTestAnalytics() *services.Analytics {
	a := services.NewAnalytics(services.DefaultOptions(), "", slog.Default())
	a.SetData([]models.SalesRecord{
		testRecord("ORD-20230100001", "C1001", "Laptop", "Electronics", 1, 899, 600, models.StatusDelivered, time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)),
		testRecord("ORD-20230200002", "C1002", "Mouse", "Accessories", 2, 29, 15, models.StatusDelivered, time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC)),
		testRecord("ORD-20230300003", "C1003", "Keyboard", "Accessories", 1, 79, 40, models.StatusCancelled, time.Date(2023, 3, 5, 0, 0, 0, 0, time.UTC)),
	})
	return a
}

func newTestServer(t *testing.T, dir string) *server.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	analytics := newTestAnalytics()
	templateHandlers := &server.TemplateHandlers{
		Dashboard: newDashboardHandler(analytics, dir),
		Files:     http.FileServer(http.Dir(dir)),
	}
	return server.NewServer(analytics, logger, templateHandlers)
}

// Integration tests for HTTP routes
func TestServer_Routes(t *testing.T) {
	srv := newTestServer(t, t.TempDir())

	tests := []struct {
		path           string
		expectedStatus int
		contentType    string
	}{
		{"/", http.StatusOK, "text/html"},
		{"/api/kpis", http.StatusOK, "application/json"},
		{"/api/categories", http.StatusOK, "application/json"},
		{"/api/regions", http.StatusOK, "application/json"},
		{"/api/channels", http.StatusOK, "application/json"},
		{"/api/top-products", http.StatusOK, "application/json"},
		{"/api/monthly-sales", http.StatusOK, "application/json"},
		{"/api/segments", http.StatusOK, "application/json"},
		{"/health", http.StatusOK, "application/json"},
		{"/admin/stats", http.StatusOK, "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", tt.path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}

			ct := w.Header().Get("Content-Type")
			if !strings.Contains(ct, tt.contentType) {
				t.Errorf("content-type = %q, want %q", ct, tt.contentType)
			}

			// Validate JSON responses
			if tt.contentType == "application/json" {
				var result any
				if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
					t.Errorf("invalid json: %v", err)
				}
			}
		})
	}
}

func TestServer_UnknownPath(t *testing.T) {
	srv := newTestServer(t, t.TempDir())

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/does-not-exist", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// Test JSON API responses
func TestServer_JSONResponse(t *testing.T) {
	srv := newTestServer(t, t.TempDir())

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/top-products", nil)
	srv.ServeHTTP(w, r)

	var response map[string]any
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}

	if success, ok := response["success"].(bool); !ok || !success {
		t.Error("expected success=true in response")
	}

	data, ok := response["data"].([]any)
	if !ok {
		t.Fatalf("expected data array in response")
	}

	// the cancelled keyboard order is excluded
	if len(data) != 2 {
		t.Fatalf("expected 2 products, got %d", len(data))
	}

	item, ok := data[0].(map[string]any)
	if !ok {
		t.Fatal("invalid product structure")
	}
	if key, _ := item["key"].(string); key != "Laptop" {
		t.Errorf("first product = %q, want Laptop", key)
	}
	if revenue, _ := item["revenue"].(float64); revenue != 899 {
		t.Errorf("laptop revenue = %v, want 899", revenue)
	}
}

// Test Server-Sent Events routes
func TestServer_SSERoutes(t *testing.T) {
	srv := newTestServer(t, t.TempDir())

	sseRoutes := []string{
		"/sse/kpis",
		"/sse/top-products",
		"/sse/monthly-sales",
		"/sse/segments",
		"/sse/refresh-all",
	}

	for _, route := range sseRoutes {
		t.Run(route, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", route, nil)

			srv.ServeHTTP(w, r)

			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
			}

			// Check for SSE headers
			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
				t.Errorf("content-type = %q, should contain 'text/event-stream'", ct)
			}

			if cc := w.Header().Get("Cache-Control"); cc != "no-cache" {
				t.Errorf("cache-control = %q, want 'no-cache'", cc)
			}
		})
	}
}

// Test health endpoint
func TestServer_HandleHealth(t *testing.T) {
	srv := newTestServer(t, t.TempDir())

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	srv.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var response map[string]any
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode health JSON: %v", err)
	}

	healthData, ok := response["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected health data in response")
	}

	if status, ok := healthData["status"].(string); !ok || status != "healthy" {
		t.Errorf("health status = %v, want 'healthy'", healthData["status"])
	}

	if _, ok := healthData["timestamp"]; !ok {
		t.Error("health response should include timestamp")
	}
}

// Test error handling for invalid methods
func TestServer_ErrorHandling(t *testing.T) {
	srv := newTestServer(t, t.TempDir())

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"POST", "/api/kpis", http.StatusMethodNotAllowed},
		{"PUT", "/", http.StatusMethodNotAllowed},
		{"DELETE", "/health", http.StatusMethodNotAllowed},
		{"PATCH", "/api/top-products", http.StatusMethodNotAllowed},
		{"GET", "/api/top-products?limit=0", http.StatusBadRequest},
		{"GET", "/api/top-products?limit=abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(tt.method, tt.path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}

func TestServer_Files(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, dashboard.InteractiveFile), []byte("<html>charts</html>"), 0644); err != nil {
		t.Fatal(err)
	}
	srv := newTestServer(t, dir)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/files/"+dashboard.InteractiveFile, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "charts") {
		t.Error("expected dashboard file content")
	}
}

// Test dashboard template rendering
func TestDashboardTemplate(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, dashboard.OverviewFile), []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)

	newDashboardHandler(newTestAnalytics(), dir)(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	body := w.Body.String()
	if !strings.Contains(body, templates.Title) {
		t.Error("dashboard should contain title")
	}

	expectedComponents := []string{
		`id="kpi-cards"`,
		"Revenue by Category",
		"Revenue by Region",
		"Top Products",
		"Monthly Trend",
		"Customer Segments",
		"/files/" + dashboard.OverviewFile,
		"$899.00",
	}

	for _, component := range expectedComponents {
		if !strings.Contains(body, component) {
			t.Errorf("dashboard should contain '%s'", component)
		}
	}

	if strings.Contains(body, "/files/"+dashboard.InteractiveFile) {
		t.Error("dashboard should only link files that exist")
	}
}
