package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"sales-insights/internal/config"
	"sales-insights/internal/models"
)

const (
	kpiSheet      = "KPIs"
	categorySheet = "Categories"
	columnWidth   = 18
)

var groupHeaders = []string{"Key", "Revenue", "Profit", "Quantity", "Orders", "Avg order value", "Avg margin %", "Customers"}

// ExportXLSX writes the report as a workbook with one sheet per view and a
// column chart of revenue by category.
func ExportXLSX(path string, r models.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", kpiSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	k := r.KPIs
	kpiRows := [][]any{
		{"Total revenue", k.TotalRevenue},
		{"Total profit", k.TotalProfit},
		{"Average margin %", k.AverageMargin},
		{"Delivered orders", k.OrderCount},
		{"Average order value", k.AverageOrderValue},
		{"Customers", k.CustomerCount},
		{"Revenue per customer", k.RevenuePerCustomer},
		{"Cancellation rate %", k.CancellationRate},
		{"Records", k.RecordCount},
		{"Run ID", r.RunID},
	}

	sheets := []struct {
		name    string
		headers []string
		rows    [][]any
	}{
		{kpiSheet, []string{"Metric", "Value"}, kpiRows},
		{categorySheet, groupHeaders, groupRows(r.Categories)},
		{"Regions", groupHeaders, groupRows(r.Regions)},
		{"Channels", groupHeaders, groupRows(r.Channels)},
		{"Products", groupHeaders, groupRows(r.Products)},
		{"Monthly", []string{"Month", "Revenue", "Profit", "Orders", "Customers"}, monthlyRows(r.Monthly)},
		{"Segments", []string{"Segment", "Customers", "Total spend", "Avg spend", "Total orders", "Avg orders", "Avg recency days"}, segmentRows(r.Segments)},
		{"Customers", []string{"Customer", "Last order", "Orders", "Spend", "Recency days", "Segment"}, customerRows(r.Customers)},
		{"Statuses", []string{"Status", "Orders", "Share %"}, statusRows(r.Statuses)},
	}

	for _, s := range sheets {
		if s.name != kpiSheet {
			if _, err := f.NewSheet(s.name); err != nil {
				return fmt.Errorf("create sheet %s: %w", s.name, err)
			}
		}
		if err := writeSheet(f, s.name, s.headers, s.rows, headerStyle); err != nil {
			return err
		}
	}

	if n := len(r.Categories); n > 0 {
		err := f.AddChart(categorySheet, "J2", &excelize.Chart{
			Type: excelize.Col,
			Series: []excelize.ChartSeries{{
				Name:       fmt.Sprintf("%s!$B$1", categorySheet),
				Categories: fmt.Sprintf("%s!$A$2:$A$%d", categorySheet, n+1),
				Values:     fmt.Sprintf("%s!$B$2:$B$%d", categorySheet, n+1),
			}},
			Title: []excelize.RichTextRun{{Text: "Revenue by category"}},
		})
		if err != nil {
			return fmt.Errorf("add category chart: %w", err)
		}
	}

	f.SetActiveSheet(0)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create workbook directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any, headerStyle int) error {
	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, columnWidth)
}

func groupRows(groups []models.GroupStats) [][]any {
	rows := make([][]any, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []any{g.Key, g.Revenue, g.Profit, g.Quantity, g.Orders, g.AverageOrderValue, g.AverageMargin, g.Customers})
	}
	return rows
}

func monthlyRows(months []models.MonthlyStats) [][]any {
	rows := make([][]any, 0, len(months))
	for _, m := range months {
		rows = append(rows, []any{m.Month, m.Revenue, m.Profit, m.Orders, m.Customers})
	}
	return rows
}

func segmentRows(segments []models.SegmentSummary) [][]any {
	rows := make([][]any, 0, len(segments))
	for _, s := range segments {
		rows = append(rows, []any{string(s.Segment), s.Customers, s.TotalSpend, s.AverageSpend, s.TotalOrders, s.AverageOrders, s.AverageRecency})
	}
	return rows
}

func customerRows(customers []models.CustomerMetrics) [][]any {
	rows := make([][]any, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, []any{c.CustomerID, c.LastOrder.Format(config.DateLayout), c.Orders, c.Spend, c.RecencyDays, string(c.Segment)})
	}
	return rows
}

func statusRows(statuses []models.StatusCount) [][]any {
	rows := make([][]any, 0, len(statuses))
	for _, s := range statuses {
		rows = append(rows, []any{string(s.Status), s.Orders, s.Share})
	}
	return rows
}
