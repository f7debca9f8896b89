package generator

import (
	"cmp"
	"slices"
	"time"

	"sales-insights/internal/models"
)

type Amount struct {
	Name    string  `json:"name"`
	Revenue float64 `json:"revenue"`
	Share   float64 `json:"share"`
}

// Summary describes a freshly generated dataset across every status.
type Summary struct {
	Records       int       `json:"records"`
	Customers     int       `json:"customers"`
	Products      int       `json:"products"`
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
	Revenue       float64   `json:"revenue"`
	Cost          float64   `json:"cost"`
	Profit        float64   `json:"profit"`
	AverageMargin float64   `json:"average_margin"`
	TopProducts   []Amount  `json:"top_products"`
	Regions       []Amount  `json:"regions"`
}

func Summarize(records []models.SalesRecord, topN int) Summary {
	s := Summary{Records: len(records)}
	if len(records) == 0 {
		return s
	}

	customers := make(map[string]struct{})
	products := make(map[string]float64)
	regions := make(map[string]float64)
	marginSum := 0.0

	s.From, s.To = records[0].Date, records[0].Date
	for _, r := range records {
		customers[r.CustomerID] = struct{}{}
		products[r.Product] += r.TotalPrice
		regions[r.Region] += r.TotalPrice
		s.Revenue += r.TotalPrice
		s.Cost += r.TotalCost
		s.Profit += r.Profit
		marginSum += r.MarginPercent
		if r.Date.Before(s.From) {
			s.From = r.Date
		}
		if r.Date.After(s.To) {
			s.To = r.Date
		}
	}

	s.Customers = len(customers)
	s.Products = len(products)
	s.AverageMargin = marginSum / float64(len(records))
	s.TopProducts = rankAmounts(products, s.Revenue)
	if topN > 0 && len(s.TopProducts) > topN {
		s.TopProducts = s.TopProducts[:topN]
	}
	s.Regions = rankAmounts(regions, s.Revenue)
	return s
}

func rankAmounts(groups map[string]float64, total float64) []Amount {
	result := make([]Amount, 0, len(groups))
	for name, revenue := range groups {
		a := Amount{Name: name, Revenue: revenue}
		if total > 0 {
			a.Share = revenue / total * 100
		}
		result = append(result, a)
	}
	slices.SortFunc(result, func(a, b Amount) int {
		if c := cmp.Compare(b.Revenue, a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return result
}
