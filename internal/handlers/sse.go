package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"sales-insights/internal/services"
	"sales-insights/internal/ui/templates"
)

const maxProducts = 20

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *SSEHandlers) renderComponent(r *http.Request, c templ.Component) (string, error) {
	var buf strings.Builder
	err := c.Render(r.Context(), &buf)
	return buf.String(), err
}

// patchSignals marshals signals and pushes them to the client.
func (h *SSEHandlers) patchSignals(sse *datastar.ServerSentEventGenerator, signals map[string]any) bool {
	data, err := json.Marshal(signals)
	if err != nil {
		h.logger.Error("marshal signals", "error", err)
		return false
	}
	if err := sse.PatchSignals(data); err != nil {
		h.logger.Warn("patch signals", "error", err)
		return false
	}
	return true
}

func (h *SSEHandlers) patchElements(sse *datastar.ServerSentEventGenerator, r *http.Request, c templ.Component) bool {
	html, err := h.renderComponent(r, c)
	if err != nil {
		h.logger.Error("render component", "error", err)
		return false
	}
	if err := sse.PatchElements(html); err != nil {
		h.logger.Warn("patch elements", "error", err)
		return false
	}
	return true
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	kpis := h.analytics.KPIs()
	if !h.patchElements(sse, r, templates.KPICards(kpis)) {
		return
	}
	h.patchSignals(sse, map[string]any{"kpis": kpis})

	flush(w)
}

func (h *SSEHandlers) HandleTopProducts(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	data := h.analytics.TopProducts(maxProducts)
	if !h.patchSignals(sse, map[string]any{"productsData": data}) {
		return
	}
	h.patchElements(sse, r, templates.GroupTable("products", "Top Products", data))

	flush(w)
}

func (h *SSEHandlers) HandleMonthlySales(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	data := h.analytics.MonthlySales()
	if !h.patchSignals(sse, map[string]any{"monthlyData": data}) {
		return
	}
	h.patchElements(sse, r, templates.MonthlyTable(data))

	flush(w)
}

func (h *SSEHandlers) HandleSegments(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	data := h.analytics.Segments()
	if !h.patchSignals(sse, map[string]any{"segmentsData": data}) {
		return
	}
	h.patchElements(sse, r, templates.SegmentTable(data))

	flush(w)
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	report := h.analytics.Report()
	components := []templ.Component{
		templates.KPICards(report.KPIs),
		templates.GroupTable("categories", "Revenue by Category", report.Categories),
		templates.GroupTable("regions", "Revenue by Region", report.Regions),
		templates.GroupTable("channels", "Revenue by Channel", report.Channels),
		templates.MonthlyTable(report.Monthly),
		templates.SegmentTable(report.Segments),
	}
	for _, c := range components {
		if !h.patchElements(sse, r, c) {
			return
		}
	}

	// Send all signals in one call
	h.patchSignals(sse, map[string]any{
		"kpis":         report.KPIs,
		"productsData": h.analytics.TopProducts(maxProducts),
		"monthlyData":  report.Monthly,
		"segmentsData": report.Segments,
	})

	flush(w)
}
