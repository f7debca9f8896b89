package models

import "time"

type Status string

const (
	StatusDelivered Status = "Delivered"
	StatusPending   Status = "Pending"
	StatusCancelled Status = "Cancelled"
)

// Statuses lists every order status in reporting order.
var Statuses = []Status{StatusDelivered, StatusPending, StatusCancelled}

func (s Status) Valid() bool {
	switch s {
	case StatusDelivered, StatusPending, StatusCancelled:
		return true
	}
	return false
}

// SalesRecord is one row of the dataset. TotalPrice, TotalCost, Profit and
// MarginPercent are derived from Quantity, UnitPrice and UnitCost.
type SalesRecord struct {
	OrderID       string    `json:"order_id"`
	Date          time.Time `json:"date"`
	CustomerID    string    `json:"customer_id"`
	Product       string    `json:"product"`
	Category      string    `json:"category"`
	Quantity      int       `json:"quantity"`
	UnitPrice     float64   `json:"unit_price"`
	UnitCost      float64   `json:"unit_cost"`
	TotalPrice    float64   `json:"total_price"`
	TotalCost     float64   `json:"total_cost"`
	Profit        float64   `json:"profit"`
	MarginPercent float64   `json:"margin_percent"`
	Region        string    `json:"region"`
	Channel       string    `json:"channel"`
	Status        Status    `json:"status"`
}

func (r SalesRecord) Delivered() bool {
	return r.Status == StatusDelivered
}

// Month returns the calendar month of the order as YYYY-MM.
func (r SalesRecord) Month() string {
	return r.Date.Format("2006-01")
}

// KPISet is a snapshot of aggregate metrics over one dataset. Revenue-bearing
// metrics cover delivered orders only; CancellationRate covers every record.
type KPISet struct {
	TotalRevenue       float64 `json:"total_revenue"`
	TotalProfit        float64 `json:"total_profit"`
	AverageMargin      float64 `json:"average_margin"`
	OrderCount         int     `json:"order_count"`
	AverageOrderValue  float64 `json:"average_order_value"`
	CustomerCount      int     `json:"customer_count"`
	RevenuePerCustomer float64 `json:"revenue_per_customer"`
	CancellationRate   float64 `json:"cancellation_rate"`
	RecordCount        int     `json:"record_count"`
}

// GroupStats aggregates delivered orders sharing one dimension value.
type GroupStats struct {
	Key               string  `json:"key"`
	Revenue           float64 `json:"revenue"`
	Profit            float64 `json:"profit"`
	Quantity          int     `json:"quantity"`
	Orders            int     `json:"orders"`
	AverageOrderValue float64 `json:"average_order_value"`
	AverageMargin     float64 `json:"average_margin"`
	Customers         int     `json:"customers"`
}

type MonthlyStats struct {
	Month     string  `json:"month"`
	Revenue   float64 `json:"revenue"`
	Profit    float64 `json:"profit"`
	Orders    int     `json:"orders"`
	Customers int     `json:"customers"`
}

// StatusCount is the number of records with one status and their share of
// all records, in percent.
type StatusCount struct {
	Status Status  `json:"status"`
	Orders int     `json:"orders"`
	Share  float64 `json:"share"`
}

type Segment string

const (
	SegmentVIP        Segment = "VIP"
	SegmentRegular    Segment = "Regular"
	SegmentOccasional Segment = "Occasional"
)

// Segments lists customer tiers from most to least valuable.
var Segments = []Segment{SegmentVIP, SegmentRegular, SegmentOccasional}

type CustomerMetrics struct {
	CustomerID  string    `json:"customer_id"`
	LastOrder   time.Time `json:"last_order"`
	Orders      int       `json:"orders"`
	Spend       float64   `json:"spend"`
	RecencyDays int       `json:"recency_days"`
	Segment     Segment   `json:"segment"`
}

type SegmentSummary struct {
	Segment        Segment `json:"segment"`
	Customers      int     `json:"customers"`
	TotalSpend     float64 `json:"total_spend"`
	AverageSpend   float64 `json:"average_spend"`
	TotalOrders    int     `json:"total_orders"`
	AverageOrders  float64 `json:"average_orders"`
	AverageRecency float64 `json:"average_recency"`
}

// Report bundles every view the analyzer computes over one dataset.
type Report struct {
	RunID       string            `json:"run_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Source      string            `json:"source,omitempty"`
	KPIs        KPISet            `json:"kpis"`
	Categories  []GroupStats      `json:"categories"`
	Regions     []GroupStats      `json:"regions"`
	Channels    []GroupStats      `json:"channels"`
	Products    []GroupStats      `json:"products"`
	Monthly     []MonthlyStats    `json:"monthly"`
	Customers   []CustomerMetrics `json:"customers"`
	Segments    []SegmentSummary  `json:"segments"`
	Statuses    []StatusCount     `json:"statuses"`
}
