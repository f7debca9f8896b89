package services

import (
	"cmp"
	"slices"

	"sales-insights/internal/models"
)

// ComputeKPIs derives the scalar metrics of a dataset. Revenue-bearing
// metrics use delivered orders only, CancellationRate uses every record.
// An empty dataset, or one with no delivered orders, yields zeros.
func ComputeKPIs(records []models.SalesRecord) models.KPISet {
	kpis := models.KPISet{RecordCount: len(records)}
	if len(records) == 0 {
		return kpis
	}

	customers := make(map[string]struct{})
	cancelled := 0
	marginSum := 0.0

	for _, r := range records {
		if r.Status == models.StatusCancelled {
			cancelled++
		}
		if !r.Delivered() {
			continue
		}
		kpis.TotalRevenue += r.TotalPrice
		kpis.TotalProfit += r.Profit
		marginSum += r.MarginPercent
		kpis.OrderCount++
		customers[r.CustomerID] = struct{}{}
	}

	kpis.CancellationRate = float64(cancelled) / float64(len(records)) * 100
	kpis.CustomerCount = len(customers)
	if kpis.OrderCount > 0 {
		kpis.AverageMargin = marginSum / float64(kpis.OrderCount)
		kpis.AverageOrderValue = kpis.TotalRevenue / float64(kpis.OrderCount)
	}
	if kpis.CustomerCount > 0 {
		kpis.RevenuePerCustomer = kpis.TotalRevenue / float64(kpis.CustomerCount)
	}
	return kpis
}

type groupAccumulator struct {
	stats     models.GroupStats
	marginSum float64
	customers map[string]struct{}
}

// groupBy aggregates delivered orders by key and returns the groups sorted by
// revenue descending, ties broken by key.
func groupBy(records []models.SalesRecord, key func(models.SalesRecord) string) []models.GroupStats {
	groups := make(map[string]*groupAccumulator)

	for _, r := range records {
		if !r.Delivered() {
			continue
		}
		k := key(r)
		g := groups[k]
		if g == nil {
			g = &groupAccumulator{
				stats:     models.GroupStats{Key: k},
				customers: make(map[string]struct{}),
			}
			groups[k] = g
		}
		g.stats.Revenue += r.TotalPrice
		g.stats.Profit += r.Profit
		g.stats.Quantity += r.Quantity
		g.stats.Orders++
		g.marginSum += r.MarginPercent
		g.customers[r.CustomerID] = struct{}{}
	}

	result := make([]models.GroupStats, 0, len(groups))
	for _, g := range groups {
		s := g.stats
		s.Customers = len(g.customers)
		s.AverageOrderValue = s.Revenue / float64(s.Orders)
		s.AverageMargin = g.marginSum / float64(s.Orders)
		result = append(result, s)
	}
	slices.SortFunc(result, func(a, b models.GroupStats) int {
		if c := cmp.Compare(b.Revenue, a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return result
}

func GroupByCategory(records []models.SalesRecord) []models.GroupStats {
	return groupBy(records, func(r models.SalesRecord) string { return r.Category })
}

func GroupByRegion(records []models.SalesRecord) []models.GroupStats {
	return groupBy(records, func(r models.SalesRecord) string { return r.Region })
}

func GroupByChannel(records []models.SalesRecord) []models.GroupStats {
	return groupBy(records, func(r models.SalesRecord) string { return r.Channel })
}

// TopProducts ranks products by delivered revenue. A non-positive limit
// returns every product.
func TopProducts(records []models.SalesRecord, limit int) []models.GroupStats {
	products := groupBy(records, func(r models.SalesRecord) string { return r.Product })
	if limit > 0 && len(products) > limit {
		return products[:limit]
	}
	return products
}

type monthAccumulator struct {
	stats     models.MonthlyStats
	customers map[string]struct{}
}

// MonthlyTrend returns delivered revenue, profit, orders and customers per
// calendar month in chronological order.
func MonthlyTrend(records []models.SalesRecord) []models.MonthlyStats {
	months := make(map[string]*monthAccumulator)

	for _, r := range records {
		if !r.Delivered() {
			continue
		}
		month := r.Month()
		m := months[month]
		if m == nil {
			m = &monthAccumulator{
				stats:     models.MonthlyStats{Month: month},
				customers: make(map[string]struct{}),
			}
			months[month] = m
		}
		m.stats.Revenue += r.TotalPrice
		m.stats.Profit += r.Profit
		m.stats.Orders++
		m.customers[r.CustomerID] = struct{}{}
	}

	result := make([]models.MonthlyStats, 0, len(months))
	for _, m := range months {
		s := m.stats
		s.Customers = len(m.customers)
		result = append(result, s)
	}
	slices.SortFunc(result, func(a, b models.MonthlyStats) int {
		return cmp.Compare(a.Month, b.Month)
	})
	return result
}

// StatusCounts counts records per status in models.Statuses order. Every
// status is listed, including those with no records.
func StatusCounts(records []models.SalesRecord) []models.StatusCount {
	counts := make(map[models.Status]int, len(models.Statuses))
	for _, r := range records {
		counts[r.Status]++
	}

	result := make([]models.StatusCount, len(models.Statuses))
	for i, s := range models.Statuses {
		result[i] = models.StatusCount{Status: s, Orders: counts[s]}
		if len(records) > 0 {
			result[i].Share = float64(counts[s]) / float64(len(records)) * 100
		}
	}
	return result
}
