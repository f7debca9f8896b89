package report

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"sales-insights/internal/models"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		generated_at TEXT NOT NULL,
		source TEXT,
		record_count INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS kpis (
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		metric TEXT NOT NULL,
		value REAL NOT NULL,
		PRIMARY KEY (run_id, metric)
	)`,
	`CREATE TABLE IF NOT EXISTS group_stats (
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		dimension TEXT NOT NULL,
		key TEXT NOT NULL,
		revenue REAL, profit REAL, quantity INTEGER, orders INTEGER,
		avg_order_value REAL, avg_margin REAL, customers INTEGER,
		PRIMARY KEY (run_id, dimension, key)
	)`,
	`CREATE TABLE IF NOT EXISTS monthly (
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		month TEXT NOT NULL,
		revenue REAL, profit REAL, orders INTEGER, customers INTEGER,
		PRIMARY KEY (run_id, month)
	)`,
	`CREATE TABLE IF NOT EXISTS segments (
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		segment TEXT NOT NULL,
		customers INTEGER, total_spend REAL, avg_spend REAL,
		total_orders INTEGER, avg_orders REAL, avg_recency REAL,
		PRIMARY KEY (run_id, segment)
	)`,
}

// SQLiteSink appends report snapshots to a SQLite file so successive runs can
// be compared with plain SQL.
type SQLiteSink struct {
	db *sql.DB
}

func OpenSQLiteSink(ctx context.Context, path string) (*SQLiteSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
		}
	}

	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

func kpiMetrics(k models.KPISet) []struct {
	name  string
	value float64
} {
	return []struct {
		name  string
		value float64
	}{
		{"total_revenue", k.TotalRevenue},
		{"total_profit", k.TotalProfit},
		{"average_margin", k.AverageMargin},
		{"order_count", float64(k.OrderCount)},
		{"average_order_value", k.AverageOrderValue},
		{"customer_count", float64(k.CustomerCount)},
		{"revenue_per_customer", k.RevenuePerCustomer},
		{"cancellation_rate", k.CancellationRate},
		{"record_count", float64(k.RecordCount)},
	}
}

// SaveReport stores one report in a single transaction.
func (s *SQLiteSink) SaveReport(ctx context.Context, r models.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, generated_at, source, record_count) VALUES (?, ?, ?, ?)`,
		r.RunID, r.GeneratedAt.UTC().Format(time.RFC3339Nano), r.Source, r.KPIs.RecordCount,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, m := range kpiMetrics(r.KPIs) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO kpis (run_id, metric, value) VALUES (?, ?, ?)`,
			r.RunID, m.name, m.value,
		); err != nil {
			return fmt.Errorf("insert kpi %s: %w", m.name, err)
		}
	}

	dimensions := []struct {
		name   string
		groups []models.GroupStats
	}{
		{"category", r.Categories},
		{"region", r.Regions},
		{"channel", r.Channels},
		{"product", r.Products},
	}
	for _, d := range dimensions {
		for _, g := range d.groups {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO group_stats (run_id, dimension, key, revenue, profit, quantity, orders, avg_order_value, avg_margin, customers)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				r.RunID, d.name, g.Key, g.Revenue, g.Profit, g.Quantity, g.Orders, g.AverageOrderValue, g.AverageMargin, g.Customers,
			); err != nil {
				return fmt.Errorf("insert %s %s: %w", d.name, g.Key, err)
			}
		}
	}

	for _, m := range r.Monthly {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO monthly (run_id, month, revenue, profit, orders, customers) VALUES (?, ?, ?, ?, ?, ?)`,
			r.RunID, m.Month, m.Revenue, m.Profit, m.Orders, m.Customers,
		); err != nil {
			return fmt.Errorf("insert month %s: %w", m.Month, err)
		}
	}

	for _, sg := range r.Segments {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO segments (run_id, segment, customers, total_spend, avg_spend, total_orders, avg_orders, avg_recency)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.RunID, string(sg.Segment), sg.Customers, sg.TotalSpend, sg.AverageSpend, sg.TotalOrders, sg.AverageOrders, sg.AverageRecency,
		); err != nil {
			return fmt.Errorf("insert segment %s: %w", sg.Segment, err)
		}
	}

	return tx.Commit()
}

// LatestKPIs reads back the KPIs of the most recently stored run.
func (s *SQLiteSink) LatestKPIs(ctx context.Context) (string, models.KPISet, error) {
	var runID string
	err := s.db.QueryRowContext(ctx, `SELECT run_id FROM runs ORDER BY rowid DESC LIMIT 1`).Scan(&runID)
	if err != nil {
		return "", models.KPISet{}, fmt.Errorf("query latest run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT metric, value FROM kpis WHERE run_id = ?`, runID)
	if err != nil {
		return "", models.KPISet{}, fmt.Errorf("query kpis: %w", err)
	}
	defer rows.Close()

	var k models.KPISet
	for rows.Next() {
		var metric string
		var value float64
		if err := rows.Scan(&metric, &value); err != nil {
			return "", models.KPISet{}, err
		}
		switch metric {
		case "total_revenue":
			k.TotalRevenue = value
		case "total_profit":
			k.TotalProfit = value
		case "average_margin":
			k.AverageMargin = value
		case "order_count":
			k.OrderCount = int(value)
		case "average_order_value":
			k.AverageOrderValue = value
		case "customer_count":
			k.CustomerCount = int(value)
		case "revenue_per_customer":
			k.RevenuePerCustomer = value
		case "cancellation_rate":
			k.CancellationRate = value
		case "record_count":
			k.RecordCount = int(value)
		}
	}
	return runID, k, rows.Err()
}
