package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"sales-insights/internal/errors"
	"sales-insights/internal/observability"
	"sales-insights/internal/services"
)

const (
	defaultProductLimit = 10
	maxProductLimit     = 100
)

var cacheHeaders = map[string]string{
	"Cache-Control": "public, max-age=300",
}

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *APIHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.KPIs(), cacheHeaders)
}

func (h *APIHandlers) HandleCategories(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.Categories(), cacheHeaders)
}

func (h *APIHandlers) HandleRegions(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.Regions(), cacheHeaders)
}

func (h *APIHandlers) HandleChannels(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.Channels(), cacheHeaders)
}

// HandleTopProducts accepts an optional ?limit=N in [1, 100].
func (h *APIHandlers) HandleTopProducts(w http.ResponseWriter, r *http.Request) {
	limit := defaultProductLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxProductLimit {
			requestID := observability.GetRequestID(r.Context())
			errors.WriteError(w, h.logger, errors.BadRequest("limit must be an integer between 1 and 100"), requestID)
			return
		}
		limit = n
	}

	errors.WriteSuccessWithHeaders(w, h.analytics.TopProducts(limit), cacheHeaders)
}

func (h *APIHandlers) HandleMonthlySales(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.MonthlySales(), cacheHeaders)
}

func (h *APIHandlers) HandleSegments(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.Segments(), cacheHeaders)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {

	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {

	stats := h.analytics.Stats()

	errors.WriteSuccess(w, stats)
}
