// Package generator produces synthetic sales datasets from a catalog and a
// seed. The same Config and Catalog always yield the same records.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"sales-insights/internal/config"
	apperrors "sales-insights/internal/errors"
	"sales-insights/internal/models"
)

const ctxCheckInterval = 1000

var (
	DefaultStartDate = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	DefaultEndDate   = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	oneCent = decimal.New(1, -2)
)

type Config struct {
	Records   int
	Seed      uint64
	StartDate time.Time
	EndDate   time.Time
}

// withDefaults fills a zero start or end with the default window bound.
func (c Config) withDefaults() Config {
	if c.StartDate.IsZero() {
		c.StartDate = DefaultStartDate
	}
	if c.EndDate.IsZero() {
		c.EndDate = DefaultEndDate
	}
	return c
}

func (c Config) Validate() error {
	if c.Records <= 0 {
		return apperrors.Configuration("record count must be positive, got %d", c.Records)
	}
	if c.EndDate.Before(c.StartDate) {
		return apperrors.Configuration("end date %s is before start date %s",
			c.EndDate.Format(config.DateLayout), c.StartDate.Format(config.DateLayout))
	}
	return nil
}

type Generator struct {
	catalog    config.Catalog
	logger     *slog.Logger
	products   *weighted[config.Product]
	regions    *weighted[string]
	channels   *weighted[string]
	statuses   *weighted[models.Status]
	quantities *weighted[int]
}

func New(catalog config.Catalog, logger *slog.Logger) (*Generator, error) {
	if err := catalog.Validate(); err != nil {
		return nil, apperrors.ConfigurationWrap(err, "invalid catalog")
	}
	if logger == nil {
		logger = slog.Default()
	}

	g := &Generator{
		catalog:    catalog,
		logger:     logger,
		products:   &weighted[config.Product]{},
		regions:    &weighted[string]{},
		channels:   &weighted[string]{},
		statuses:   &weighted[models.Status]{},
		quantities: &weighted[int]{},
	}
	for _, p := range catalog.Products {
		g.products.add(p, p.Weight)
	}
	for _, r := range catalog.Regions {
		g.regions.add(r.Name, r.Weight)
	}
	for _, c := range catalog.Channels {
		g.channels.add(c.Name, c.Weight)
	}
	for _, s := range catalog.Statuses {
		g.statuses.add(models.Status(s.Name), s.Weight)
	}
	for _, q := range catalog.Quantities {
		g.quantities.add(q.Quantity, q.Weight)
	}
	return g, nil
}

// Generate returns cfg.Records records with order ids assigned in
// generation order.
func (g *Generator) Generate(ctx context.Context, cfg Config) ([]models.SalesRecord, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	rangeDays := int(cfg.EndDate.Sub(cfg.StartDate).Hours() / 24)

	g.logger.Info("generating sales records",
		"records", cfg.Records,
		"seed", cfg.Seed,
		"start", cfg.StartDate.Format(config.DateLayout),
		"end", cfg.EndDate.Format(config.DateLayout),
	)

	records := make([]models.SalesRecord, 0, cfg.Records)
	for i := range cfg.Records {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		records = append(records, g.record(rng, i, cfg.EndDate, rangeDays))
	}

	return records, nil
}

func (g *Generator) record(rng *rand.Rand, index int, end time.Time, rangeDays int) models.SalesRecord {
	// Recent dates are more frequent: days back from the end of the window
	// follow an exponential with mean a quarter of the window.
	daysAgo := min(int(rng.ExpFloat64()*float64(rangeDays)/4), rangeDays)
	date := end.AddDate(0, 0, -daysAgo)

	product := g.products.pick(rng)
	quantity := g.quantities.pick(rng)

	factor := 1 + (rng.Float64()*2-1)*g.catalog.PriceVariation
	unitPrice := decimal.NewFromFloat(product.Price * factor).Round(2)
	unitCost := decimal.NewFromFloat(product.Cost * factor).Round(2)
	if unitCost.LessThan(oneCent) {
		unitCost = oneCent
	}
	if unitPrice.LessThanOrEqual(unitCost) {
		unitPrice = unitCost.Add(oneCent)
	}

	region := g.regions.pick(rng)
	channel := g.channels.pick(rng)
	status := g.statuses.pick(rng)
	pool := g.catalog.Customers
	customerID := fmt.Sprintf("%s%d", pool.Prefix, pool.First+rng.IntN(pool.Size))

	r := models.SalesRecord{
		OrderID:    fmt.Sprintf("ORD-%d%02d%05d", date.Year(), int(date.Month()), index+1),
		Date:       date,
		CustomerID: customerID,
		Product:    product.Name,
		Category:   product.Category,
		Quantity:   quantity,
		UnitPrice:  unitPrice.InexactFloat64(),
		UnitCost:   unitCost.InexactFloat64(),
		Region:     region,
		Channel:    channel,
		Status:     status,
	}
	r.DeriveTotals()
	return r
}
