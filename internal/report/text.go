// Package report renders analyzer output as text, xlsx workbooks and SQLite
// snapshots.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"sales-insights/internal/config"
	"sales-insights/internal/generator"
	"sales-insights/internal/models"
)

const (
	ruleWidth      = 70
	topCategories  = 3
	topRegions     = 3
	topProductRows = 5
)

var printer = message.NewPrinter(language.English)

// WriteText writes the human readable analysis report.
func WriteText(w io.Writer, r models.Report) error {
	var b strings.Builder
	rule := strings.Repeat("=", ruleWidth)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "SALES ANALYSIS REPORT")
	fmt.Fprintln(&b, rule)
	if r.Source != "" {
		fmt.Fprintf(&b, "Source: %s\n", r.Source)
	}
	fmt.Fprintf(&b, "Run: %s (%s)\n", r.RunID, r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	k := r.KPIs
	fmt.Fprintln(&b, "\nKEY PERFORMANCE INDICATORS")
	printer.Fprintf(&b, "  - Revenue:              $%.2f\n", k.TotalRevenue)
	printer.Fprintf(&b, "  - Total profit:         $%.2f\n", k.TotalProfit)
	printer.Fprintf(&b, "  - Average margin:       %.2f%%\n", k.AverageMargin)
	printer.Fprintf(&b, "  - Delivered orders:     %d\n", k.OrderCount)
	printer.Fprintf(&b, "  - Average order value:  $%.2f\n", k.AverageOrderValue)
	printer.Fprintf(&b, "  - Customers:            %d\n", k.CustomerCount)
	printer.Fprintf(&b, "  - Revenue per customer: $%.2f\n", k.RevenuePerCustomer)
	printer.Fprintf(&b, "  - Cancellation rate:    %.2f%%\n", k.CancellationRate)

	fmt.Fprintln(&b, "\nORDER STATUS")
	for _, st := range r.Statuses {
		printer.Fprintf(&b, "  - %s: %d (%.1f%%)\n", st.Status, st.Orders, st.Share)
	}

	fmt.Fprintf(&b, "\nTOP %d CATEGORIES\n", topCategories)
	for _, g := range head(r.Categories, topCategories) {
		printer.Fprintf(&b, "  - %s: $%.2f (margin: %.2f%%)\n", g.Key, g.Revenue, g.AverageMargin)
	}

	fmt.Fprintf(&b, "\nTOP %d REGIONS\n", topRegions)
	for _, g := range head(r.Regions, topRegions) {
		printer.Fprintf(&b, "  - %s: $%.2f (%d customers)\n", g.Key, g.Revenue, g.Customers)
	}

	fmt.Fprintln(&b, "\nCHANNEL PERFORMANCE")
	for _, g := range r.Channels {
		printer.Fprintf(&b, "  - %s: $%.2f (margin: %.2f%%)\n", g.Key, g.Revenue, g.AverageMargin)
	}

	fmt.Fprintf(&b, "\nTOP %d PRODUCTS\n", topProductRows)
	for _, g := range head(r.Products, topProductRows) {
		printer.Fprintf(&b, "  - %s: $%.2f (%d units)\n", g.Key, g.Revenue, g.Quantity)
	}

	fmt.Fprintln(&b, "\nCUSTOMER SEGMENTS")
	for _, s := range r.Segments {
		printer.Fprintf(&b, "  - %s: $%.2f (%d customers)\n", s.Segment, s.TotalSpend, s.Customers)
	}

	fmt.Fprintln(&b, "\n"+rule)

	_, err := io.WriteString(w, b.String())
	return err
}

// SaveText persists the text report, creating parent directories.
func SaveText(path string, r models.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := WriteText(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}

// WriteDataSummary prints the overview shown after a dataset is generated.
func WriteDataSummary(w io.Writer, s generator.Summary) error {
	var b strings.Builder
	rule := strings.Repeat("=", ruleWidth)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "DATASET SUMMARY")
	fmt.Fprintln(&b, rule)

	fmt.Fprintln(&b, "\nGeneral")
	printer.Fprintf(&b, "  - Records:          %d\n", s.Records)
	printer.Fprintf(&b, "  - Unique customers: %d\n", s.Customers)
	printer.Fprintf(&b, "  - Products:         %d\n", s.Products)
	if s.Records > 0 {
		fmt.Fprintf(&b, "  - Period:           %s -> %s\n", s.From.Format(config.DateLayout), s.To.Format(config.DateLayout))
	}

	fmt.Fprintln(&b, "\nFinancials (all statuses)")
	printer.Fprintf(&b, "  - Revenue:          $%.2f\n", s.Revenue)
	printer.Fprintf(&b, "  - Cost:             $%.2f\n", s.Cost)
	printer.Fprintf(&b, "  - Profit:           $%.2f\n", s.Profit)
	printer.Fprintf(&b, "  - Average margin:   %.2f%%\n", s.AverageMargin)

	fmt.Fprintf(&b, "\nTop %d products by revenue\n", len(s.TopProducts))
	for _, p := range s.TopProducts {
		printer.Fprintf(&b, "  - %s: $%.2f\n", p.Name, p.Revenue)
	}

	fmt.Fprintln(&b, "\nRevenue by region")
	for _, r := range s.Regions {
		printer.Fprintf(&b, "  - %s: $%.2f (%.1f%%)\n", r.Name, r.Revenue, r.Share)
	}

	fmt.Fprintln(&b, "\n"+rule)

	_, err := io.WriteString(w, b.String())
	return err
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
