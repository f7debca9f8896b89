// Command web serves a read-only, localhost-bound preview of the latest
// analyzed dataset and the dashboards rendered next to it.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"sales-insights/internal/config"
	"sales-insights/internal/dashboard"
	"sales-insights/internal/middleware"
	"sales-insights/internal/observability"
	"sales-insights/internal/server"
	"sales-insights/internal/services"
	"sales-insights/internal/ui/templates"
)

const (
	renderTimeout  = 10 * time.Second
	csvLoadTimeout = 30 * time.Second
	cacheMaxAge    = "public, max-age=300"
)

// renderedFiles lists the dashboard files already present in dir.
func renderedFiles(dir string) []string {
	var files []string
	for _, name := range dashboard.Files {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			files = append(files, name)
		}
	}
	return files
}

func newDashboardHandler(analytics *services.Analytics, dashboardDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		page := templates.Page{
			Report: analytics.Report(),
			Files:  renderedFiles(dashboardDir),
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", cacheMaxAge)
		if err := templates.Dashboard(page).Render(ctx, w); err != nil {
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("starting preview",
		"version", "1.0.0",
		"addr", cfg.Address(),
		"data_file", cfg.Analyzer.DataFile,
		"dashboard_dir", cfg.Dashboard.OutputDir,
	)

	analytics := services.NewAnalytics(
		services.Options{TopN: cfg.Analyzer.TopN, Segments: cfg.Analyzer.Segments},
		cfg.Analyzer.CacheDir,
		logger,
	)

	loadCtx, cancel := context.WithTimeout(context.Background(), csvLoadTimeout)
	start := time.Now()
	err = analytics.LoadFromCSV(loadCtx, cfg.Analyzer.DataFile)
	cancel()
	if err != nil {
		logger.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}
	logger.Info("dataset loaded", "duration", time.Since(start))

	templateHandlers := &server.TemplateHandlers{
		Dashboard: newDashboardHandler(analytics, cfg.Dashboard.OutputDir),
		Files:     http.FileServer(http.Dir(cfg.Dashboard.OutputDir)),
	}

	srv := server.NewServer(analytics, logger, templateHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.LocalOnly(logger),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      middlewareChain(srv),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("preview stopped", "stats", analytics.Stats())
		return nil
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := gracefulServer.Run(ctx); err != nil {
		logger.Error("server failed", "error", err)
		stop()
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
