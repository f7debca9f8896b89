// Package templates holds the templ components of the preview page.
package templates

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/a-h/templ"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"sales-insights/internal/models"
)

const (
	Title    = "Sales Insights Preview"
	Subtitle = "Read-only view of the latest analyzed dataset"

	datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"
)

var printer = message.NewPrinter(language.English)

// Page is everything the preview index renders.
type Page struct {
	Report models.Report
	// Files are dashboard file names served under /files/.
	Files []string
}

type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) printf(format string, args ...any) {
	if h.err != nil {
		return
	}
	_, h.err = fmt.Fprintf(h.w, format, args...)
}

func (h *htmlWriter) render(ctx context.Context, c templ.Component) {
	if h.err != nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

func Dashboard(p Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.printf(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.printf(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.printf(`<title>%s</title><script type="module" src="%s"></script><style>%s</style></head>`,
			Title, datastarScript, styles)
		h.printf(`<body data-init="@get('/sse/kpis')"><header><h1>%s</h1><p>%s</p>`, Title, Subtitle)
		if p.Report.Source != "" {
			h.printf(`<p class="source">Source: %s, run %s</p>`,
				templ.EscapeString(p.Report.Source), templ.EscapeString(p.Report.RunID))
		}
		h.printf(`</header><main>`)

		h.render(ctx, KPICards(p.Report.KPIs))
		h.render(ctx, GroupTable("categories", "Revenue by Category", p.Report.Categories))
		h.render(ctx, GroupTable("regions", "Revenue by Region", p.Report.Regions))
		h.render(ctx, GroupTable("channels", "Revenue by Channel", p.Report.Channels))
		h.render(ctx, GroupTable("products", "Top Products", p.Report.Products))
		h.render(ctx, MonthlyTable(p.Report.Monthly))
		h.render(ctx, SegmentTable(p.Report.Segments))
		h.render(ctx, FileList(p.Files))

		h.printf(`</main></body></html>`)
		return h.err
	})
}

// KPICards renders the element patched by the /sse/kpis stream.
func KPICards(k models.KPISet) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		cards := []struct{ label, value string }{
			{"Total Revenue", printer.Sprintf("$%.2f", k.TotalRevenue)},
			{"Total Profit", printer.Sprintf("$%.2f", k.TotalProfit)},
			{"Average Margin", printer.Sprintf("%.2f%%", k.AverageMargin)},
			{"Orders", printer.Sprintf("%d", k.OrderCount)},
			{"Average Order Value", printer.Sprintf("$%.2f", k.AverageOrderValue)},
			{"Customers", printer.Sprintf("%d", k.CustomerCount)},
			{"Revenue per Customer", printer.Sprintf("$%.2f", k.RevenuePerCustomer)},
			{"Cancellation Rate", printer.Sprintf("%.2f%%", k.CancellationRate)},
		}

		h := &htmlWriter{w: w}
		h.printf(`<section id="kpi-cards" class="cards">`)
		for _, c := range cards {
			h.printf(`<div class="card"><span class="label">%s</span><strong>%s</strong></div>`,
				c.label, templ.EscapeString(c.value))
		}
		h.printf(`</section>`)
		return h.err
	})
}

func GroupTable(id, title string, groups []models.GroupStats) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.printf(`<section id="%s"><h2>%s</h2>`, templ.EscapeString(id), templ.EscapeString(title))
		if len(groups) == 0 {
			h.printf(`<p class="empty">No delivered orders.</p></section>`)
			return h.err
		}
		h.printf(`<table><thead><tr><th>Name</th><th>Revenue</th><th>Profit</th><th>Units</th><th>Orders</th><th>Margin</th><th>Customers</th></tr></thead><tbody>`)
		for _, g := range groups {
			h.printf(`<tr><td>%s</td><td>%s</td><td>%s</td><td>%d</td><td>%d</td><td>%.1f%%</td><td>%d</td></tr>`,
				templ.EscapeString(g.Key),
				printer.Sprintf("$%.2f", g.Revenue),
				printer.Sprintf("$%.2f", g.Profit),
				g.Quantity, g.Orders, g.AverageMargin, g.Customers)
		}
		h.printf(`</tbody></table></section>`)
		return h.err
	})
}

func MonthlyTable(months []models.MonthlyStats) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.printf(`<section id="monthly"><h2>Monthly Trend</h2>`)
		if len(months) == 0 {
			h.printf(`<p class="empty">No delivered orders.</p></section>`)
			return h.err
		}
		h.printf(`<table><thead><tr><th>Month</th><th>Revenue</th><th>Profit</th><th>Orders</th><th>Customers</th></tr></thead><tbody>`)
		for _, m := range months {
			h.printf(`<tr><td>%s</td><td>%s</td><td>%s</td><td>%d</td><td>%d</td></tr>`,
				templ.EscapeString(m.Month),
				printer.Sprintf("$%.2f", m.Revenue),
				printer.Sprintf("$%.2f", m.Profit),
				m.Orders, m.Customers)
		}
		h.printf(`</tbody></table></section>`)
		return h.err
	})
}

func SegmentTable(segments []models.SegmentSummary) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.printf(`<section id="segments"><h2>Customer Segments</h2>`)
		if len(segments) == 0 {
			h.printf(`<p class="empty">No customers with delivered orders.</p></section>`)
			return h.err
		}
		h.printf(`<table><thead><tr><th>Segment</th><th>Customers</th><th>Avg Spend</th><th>Avg Orders</th><th>Avg Recency (days)</th></tr></thead><tbody>`)
		for _, s := range segments {
			h.printf(`<tr><td><span class="badge">%s</span></td><td>%d</td><td>%s</td><td>%.1f</td><td>%.0f</td></tr>`,
				templ.EscapeString(string(s.Segment)), s.Customers,
				printer.Sprintf("$%.2f", s.AverageSpend), s.AverageOrders, s.AverageRecency)
		}
		h.printf(`</tbody></table></section>`)
		return h.err
	})
}

func FileList(files []string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.printf(`<section id="files"><h2>Rendered Dashboards</h2>`)
		if len(files) == 0 {
			h.printf(`<p class="empty">No dashboards rendered yet. Run the dashboard command first.</p></section>`)
			return h.err
		}
		h.printf(`<ul>`)
		for _, f := range files {
			h.printf(`<li><a href="/files/%s">%s</a></li>`,
				templ.EscapeString(url.PathEscape(f)), templ.EscapeString(f))
		}
		h.printf(`</ul></section>`)
		return h.err
	})
}

const styles = `body{font-family:system-ui,sans-serif;margin:0;background:#f8fafc;color:#1e293b}
header{padding:1.5rem 2rem;background:#1e293b;color:#f8fafc}
header p{margin:.25rem 0 0;opacity:.8}
main{padding:1.5rem 2rem;display:grid;gap:1.5rem}
.cards{display:grid;grid-template-columns:repeat(auto-fit,minmax(180px,1fr));gap:1rem}
.card{background:#fff;border-radius:8px;padding:1rem;box-shadow:0 1px 3px rgba(0,0,0,.1)}
.card .label{display:block;font-size:.85rem;color:#64748b}
.card strong{font-size:1.4rem}
table{width:100%;border-collapse:collapse;background:#fff}
th,td{padding:.5rem .75rem;text-align:left;border-bottom:1px solid #e2e8f0}
th{background:#e2e8f0}
.badge{background:#dbeafe;border-radius:4px;padding:.1rem .4rem}
.empty{color:#64748b}`
