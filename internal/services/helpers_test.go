package services

import (
	"fmt"
	"time"

	"sales-insights/internal/models"
)

func record(id, customer, product, category, region, channel string, qty int, price, cost float64, status models.Status, date time.Time) models.SalesRecord {
	r := models.SalesRecord{
		OrderID:    id,
		Date:       date,
		CustomerID: customer,
		Product:    product,
		Category:   category,
		Quantity:   qty,
		UnitPrice:  price,
		UnitCost:   cost,
		Region:     region,
		Channel:    channel,
		Status:     status,
	}
	r.DeriveTotals()
	return r
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// scenarioRecords is the three-order dataset: two delivered, one cancelled.
func scenarioRecords() []models.SalesRecord {
	return []models.SalesRecord{
		record("ORD-20230100001", "C1001", "Mouse", "Accessories", "North", "Online", 2, 10, 6, models.StatusDelivered, day(2023, 1, 15)),
		record("ORD-20230200002", "C1002", "Keyboard", "Accessories", "South", "Store", 1, 20, 15, models.StatusCancelled, day(2023, 2, 10)),
		record("ORD-20230200003", "C1001", "USB Cable", "Accessories", "North", "Online", 5, 5, 2, models.StatusDelivered, day(2023, 2, 20)),
	}
}

func benchmarkRecords(n int) []models.SalesRecord {
	categories := []string{"Electronics", "Accessories", "Storage"}
	regions := []string{"North", "South", "East", "West", "Central"}
	channels := []string{"Online", "Store", "Reseller", "Direct"}
	statuses := []models.Status{models.StatusDelivered, models.StatusDelivered, models.StatusPending, models.StatusCancelled}

	records := make([]models.SalesRecord, n)
	for i := range records {
		records[i] = record(
			fmt.Sprintf("ORD-%05d", i),
			fmt.Sprintf("C%d", 1000+i%500),
			fmt.Sprintf("Product %d", i%12),
			categories[i%len(categories)],
			regions[i%len(regions)],
			channels[i%len(channels)],
			1+i%5,
			float64(20+i%80),
			float64(10+i%10),
			statuses[i%len(statuses)],
			day(2023, time.Month(1+i%12), 1+i%28),
		)
	}
	return records
}
