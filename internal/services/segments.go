package services

import (
	"cmp"
	"slices"
	"time"

	"sales-insights/internal/config"
	"sales-insights/internal/models"
)

// Classify assigns a tier from order frequency and spend.
func Classify(orders int, spend float64, t config.SegmentThresholds) models.Segment {
	switch {
	case orders > t.VIPMinOrders || spend > t.VIPMinSpend:
		return models.SegmentVIP
	case orders >= t.RegularMinOrders:
		return models.SegmentRegular
	default:
		return models.SegmentOccasional
	}
}

// SegmentCustomers computes recency, frequency and monetary value per
// customer over delivered orders, tiers each customer, and summarises the
// tiers. Recency is measured from the latest delivered order in the dataset.
func SegmentCustomers(records []models.SalesRecord, t config.SegmentThresholds) ([]models.CustomerMetrics, []models.SegmentSummary) {
	byCustomer := make(map[string]*models.CustomerMetrics)
	var latest time.Time

	for _, r := range records {
		if !r.Delivered() {
			continue
		}
		c := byCustomer[r.CustomerID]
		if c == nil {
			c = &models.CustomerMetrics{CustomerID: r.CustomerID}
			byCustomer[r.CustomerID] = c
		}
		c.Orders++
		c.Spend += r.TotalPrice
		if r.Date.After(c.LastOrder) {
			c.LastOrder = r.Date
		}
		if r.Date.After(latest) {
			latest = r.Date
		}
	}

	customers := make([]models.CustomerMetrics, 0, len(byCustomer))
	for _, c := range byCustomer {
		m := *c
		m.RecencyDays = int(latest.Sub(m.LastOrder).Hours() / 24)
		m.Segment = Classify(m.Orders, m.Spend, t)
		customers = append(customers, m)
	}
	slices.SortFunc(customers, func(a, b models.CustomerMetrics) int {
		if c := cmp.Compare(b.Spend, a.Spend); c != 0 {
			return c
		}
		return cmp.Compare(a.CustomerID, b.CustomerID)
	})

	return customers, summarizeSegments(customers)
}

func summarizeSegments(customers []models.CustomerMetrics) []models.SegmentSummary {
	type accumulator struct {
		summary    models.SegmentSummary
		recencySum int
	}
	tiers := make(map[models.Segment]*accumulator)

	for _, c := range customers {
		a := tiers[c.Segment]
		if a == nil {
			a = &accumulator{summary: models.SegmentSummary{Segment: c.Segment}}
			tiers[c.Segment] = a
		}
		a.summary.Customers++
		a.summary.TotalSpend += c.Spend
		a.summary.TotalOrders += c.Orders
		a.recencySum += c.RecencyDays
	}

	result := make([]models.SegmentSummary, 0, len(tiers))
	for _, segment := range models.Segments {
		a := tiers[segment]
		if a == nil {
			continue
		}
		s := a.summary
		n := float64(s.Customers)
		s.AverageSpend = s.TotalSpend / n
		s.AverageOrders = float64(s.TotalOrders) / n
		s.AverageRecency = float64(a.recencySum) / n
		result = append(result, s)
	}
	return result
}
