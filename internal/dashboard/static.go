package dashboard

import (
	"fmt"
	"image/color"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"sales-insights/internal/models"
)

var (
	steelBlue = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	coral     = color.RGBA{R: 255, G: 127, B: 80, A: 255}
	seaGreen  = color.RGBA{R: 46, G: 139, B: 87, A: 255}
	purple    = color.RGBA{R: 128, G: 0, B: 128, A: 255}
	goldenrod = color.RGBA{R: 218, G: 165, B: 32, A: 255}

	printer = message.NewPrinter(language.English)
)

const barWidth = 14

type bar struct {
	label string
	value float64
}

func renderOverview(path string, v views) error {
	kpiPanel, err := kpiPlot(v.kpis)
	if err != nil {
		return err
	}
	category, err := horizontalBars("Revenue by category", "Revenue ($)", revenueBars(v.categories), steelBlue)
	if err != nil {
		return err
	}
	region, err := horizontalBars("Revenue by region", "Revenue ($)", revenueBars(v.regions), goldenrod)
	if err != nil {
		return err
	}
	channel, err := horizontalBars("Revenue by channel", "Revenue ($)", revenueBars(v.channels), coral)
	if err != nil {
		return err
	}

	return saveGrid(path, [][]*plot.Plot{
		{kpiPanel, category},
		{region, channel},
	}, 16*vg.Inch, 10*vg.Inch)
}

func renderTimeSeries(path string, v views) error {
	months := make([]string, len(v.monthly))
	revenue := make(plotter.XYs, len(v.monthly))
	profit := make(plotter.XYs, len(v.monthly))
	orders := make(plotter.Values, len(v.monthly))
	for i, m := range v.monthly {
		months[i] = m.Month
		revenue[i] = plotter.XY{X: float64(i), Y: m.Revenue}
		profit[i] = plotter.XY{X: float64(i), Y: m.Profit}
		orders[i] = float64(m.Orders)
	}

	trend := plot.New()
	trend.Title.Text = "Monthly revenue and profit"
	trend.Y.Label.Text = "Amount ($)"
	trend.Add(plotter.NewGrid())
	if len(v.monthly) > 0 {
		if err := addLine(trend, "Revenue", revenue, steelBlue); err != nil {
			return err
		}
		if err := addLine(trend, "Profit", profit, seaGreen); err != nil {
			return err
		}
		trend.Legend.Top = true
		trend.Legend.Left = true
		trend.NominalX(months...)
		rotateTicks(trend)
	}

	counts := plot.New()
	counts.Title.Text = "Monthly delivered orders"
	counts.Y.Label.Text = "Orders"
	if len(v.monthly) > 0 {
		bars, err := plotter.NewBarChart(orders, vg.Points(barWidth))
		if err != nil {
			return err
		}
		bars.Color = coral
		bars.LineStyle.Width = 0
		counts.Add(bars)
		counts.NominalX(months...)
		rotateTicks(counts)
	}

	return saveGrid(path, [][]*plot.Plot{{trend}, {counts}}, 16*vg.Inch, 10*vg.Inch)
}

func renderProducts(path string, v views) error {
	revenue := make([]bar, len(v.products))
	quantity := make([]bar, len(v.products))
	profit := make([]bar, len(v.products))
	margin := make([]bar, len(v.products))
	for i, p := range v.products {
		revenue[i] = bar{p.Key, p.Revenue}
		quantity[i] = bar{p.Key, float64(p.Quantity)}
		profit[i] = bar{p.Key, p.Profit}
		margin[i] = bar{p.Key, p.AverageMargin}
	}

	panels := []struct {
		title, label string
		bars         []bar
		color        color.Color
	}{
		{"Revenue", "Revenue ($)", revenue, steelBlue},
		{"Units sold", "Units", quantity, coral},
		{"Profit", "Profit ($)", profit, seaGreen},
		{"Average margin", "Margin (%)", margin, purple},
	}

	plots := make([]*plot.Plot, len(panels))
	for i, p := range panels {
		var err error
		plots[i], err = horizontalBars(fmt.Sprintf("Top %d products: %s", v.topN, p.title), p.label, p.bars, p.color)
		if err != nil {
			return err
		}
	}

	return saveGrid(path, [][]*plot.Plot{
		{plots[0], plots[1]},
		{plots[2], plots[3]},
	}, 16*vg.Inch, 10*vg.Inch)
}

func kpiPlot(k models.KPISet) (*plot.Plot, error) {
	lines := []string{
		printer.Sprintf("Revenue:              $%.0f", k.TotalRevenue),
		printer.Sprintf("Total profit:         $%.0f", k.TotalProfit),
		printer.Sprintf("Average margin:       %.1f%%", k.AverageMargin),
		printer.Sprintf("Delivered orders:     %d", k.OrderCount),
		printer.Sprintf("Average order value:  $%.2f", k.AverageOrderValue),
		printer.Sprintf("Customers:            %d", k.CustomerCount),
		printer.Sprintf("Revenue per customer: $%.2f", k.RevenuePerCustomer),
		printer.Sprintf("Cancellation rate:    %.1f%%", k.CancellationRate),
	}

	xys := make(plotter.XYs, len(lines))
	for i := range lines {
		xys[i] = plotter.XY{X: 0, Y: float64(len(lines) - i)}
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: lines})
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = "Key performance indicators"
	p.Add(labels)
	p.HideAxes()
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, float64(len(lines)+1)
	return p, nil
}

// horizontalBars draws bars top to bottom in the order given.
func horizontalBars(title, xLabel string, bars []bar, c color.Color) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Add(plotter.NewGrid())
	if len(bars) == 0 {
		return p, nil
	}

	values := make(plotter.Values, len(bars))
	names := make([]string, len(bars))
	for i, b := range bars {
		j := len(bars) - 1 - i
		values[j] = b.value
		names[j] = b.label
	}

	chart, err := plotter.NewBarChart(values, vg.Points(barWidth))
	if err != nil {
		return nil, err
	}
	chart.Horizontal = true
	chart.Color = c
	chart.LineStyle.Width = 0
	p.Add(chart)
	p.NominalY(names...)
	return p, nil
}

func addLine(p *plot.Plot, name string, xys plotter.XYs, c color.Color) error {
	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return err
	}
	line.Color = c
	line.Width = vg.Points(2)
	points.Color = c
	p.Add(line, points)
	p.Legend.Add(name, line, points)
	return nil
}

func rotateTicks(p *plot.Plot) {
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
}

func revenueBars(groups []models.GroupStats) []bar {
	bars := make([]bar, len(groups))
	for i, g := range groups {
		bars[i] = bar{g.Key, g.Revenue}
	}
	return bars
}

func saveGrid(path string, plots [][]*plot.Plot, width, height vg.Length) error {
	img := vgimg.New(width, height)
	dc := draw.New(img)

	tiles := draw.Tiles{
		Rows:      len(plots),
		Cols:      len(plots[0]),
		PadX:      vg.Millimeter * 6,
		PadY:      vg.Millimeter * 6,
		PadTop:    vg.Millimeter * 4,
		PadBottom: vg.Millimeter * 4,
		PadLeft:   vg.Millimeter * 4,
		PadRight:  vg.Millimeter * 4,
	}

	canvases := plot.Align(plots, tiles, dc)
	for j := range plots {
		for i := range plots[j] {
			plots[j][i].Draw(canvases[j][i])
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
