package server

import (
	"log/slog"
	"net/http"

	"sales-insights/internal/handlers"
	"sales-insights/internal/services"
)

type Server struct {
	analytics   *services.Analytics
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

// TemplateHandlers are the page handlers owned by the command. Files serves
// the rendered dashboard directory and may be nil.
type TemplateHandlers struct {
	Dashboard http.HandlerFunc
	Files     http.Handler
}

func NewServer(analytics *services.Analytics, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		analytics:   analytics,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analytics, logger),
		sseHandlers: handlers.NewSSEHandlers(analytics, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	if templateHandlers.Files != nil {
		s.mux.Handle("GET /files/", http.StripPrefix("/files/", templateHandlers.Files))
	}
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/kpis", s.apiHandlers.HandleKPIs)
	s.mux.HandleFunc("GET /api/categories", s.apiHandlers.HandleCategories)
	s.mux.HandleFunc("GET /api/regions", s.apiHandlers.HandleRegions)
	s.mux.HandleFunc("GET /api/channels", s.apiHandlers.HandleChannels)
	s.mux.HandleFunc("GET /api/top-products", s.apiHandlers.HandleTopProducts)
	s.mux.HandleFunc("GET /api/monthly-sales", s.apiHandlers.HandleMonthlySales)
	s.mux.HandleFunc("GET /api/segments", s.apiHandlers.HandleSegments)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/kpis", s.sseHandlers.HandleKPIs)
	s.mux.HandleFunc("GET /sse/top-products", s.sseHandlers.HandleTopProducts)
	s.mux.HandleFunc("GET /sse/monthly-sales", s.sseHandlers.HandleMonthlySales)
	s.mux.HandleFunc("GET /sse/segments", s.sseHandlers.HandleSegments)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
