package dashboard

import (
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"sales-insights/internal/models"
)

func renderInteractive(path string, v views) error {
	page := components.NewPage()
	page.PageTitle = "Sales performance dashboard"
	page.AddCharts(
		categoryChart(v),
		monthlyChart(v.monthly),
		productChart(v),
		regionChart(v.regions),
	)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := page.Render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func kpiSubtitle(k models.KPISet) string {
	return printer.Sprintf("Revenue $%.0f | Profit $%.0f | Margin %.1f%% | Orders %d | Customers %d | Cancelled %.1f%%",
		k.TotalRevenue, k.TotalProfit, k.AverageMargin, k.OrderCount, k.CustomerCount, k.CancellationRate)
}

func categoryChart(v views) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Revenue by category", Subtitle: kpiSubtitle(v.kpis)}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)

	keys := make([]string, len(v.categories))
	revenue := make([]opts.BarData, len(v.categories))
	profit := make([]opts.BarData, len(v.categories))
	for i, g := range v.categories {
		keys[i] = g.Key
		revenue[i] = opts.BarData{Value: round2(g.Revenue)}
		profit[i] = opts.BarData{Value: round2(g.Profit)}
	}
	bar.SetXAxis(keys).
		AddSeries("Revenue", revenue).
		AddSeries("Profit", profit)
	return bar
}

func monthlyChart(monthly []models.MonthlyStats) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Monthly revenue trend"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)

	months := make([]string, len(monthly))
	revenue := make([]opts.LineData, len(monthly))
	profit := make([]opts.LineData, len(monthly))
	for i, m := range monthly {
		months[i] = m.Month
		revenue[i] = opts.LineData{Value: round2(m.Revenue)}
		profit[i] = opts.LineData{Value: round2(m.Profit)}
	}
	line.SetXAxis(months).
		AddSeries("Revenue", revenue).
		AddSeries("Profit", profit)
	return line
}

// productChart lists the top products with the largest on top.
func productChart(v views) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: printer.Sprintf("Top %d products by revenue", v.topN)}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)

	n := len(v.products)
	names := make([]string, n)
	revenue := make([]opts.BarData, n)
	for i, p := range v.products {
		names[n-1-i] = p.Key
		revenue[n-1-i] = opts.BarData{Value: round2(p.Revenue)}
	}
	bar.SetXAxis(names).AddSeries("Revenue", revenue)
	bar.XYReversal()
	return bar
}

func regionChart(regions []models.GroupStats) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Revenue share by region"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "item"}),
	)

	data := make([]opts.PieData, len(regions))
	for i, g := range regions {
		data[i] = opts.PieData{Name: g.Key, Value: round2(g.Revenue)}
	}
	pie.AddSeries("Region", data).
		SetSeriesOptions(charts.WithPieChartOpts(opts.PieChart{Radius: []string{"35%", "65%"}}))
	return pie
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
