package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"sales-insights/internal/models"
)

// Product is a catalog entry. Price and Cost are the base unit values before
// the per-order variation is applied.
type Product struct {
	Name     string  `yaml:"name" toml:"name"`
	Category string  `yaml:"category" toml:"category"`
	Price    float64 `yaml:"price" toml:"price"`
	Cost     float64 `yaml:"cost" toml:"cost"`
	Weight   float64 `yaml:"weight" toml:"weight"`
}

type Choice struct {
	Name   string  `yaml:"name" toml:"name"`
	Weight float64 `yaml:"weight" toml:"weight"`
}

type QuantityChoice struct {
	Quantity int     `yaml:"quantity" toml:"quantity"`
	Weight   float64 `yaml:"weight" toml:"weight"`
}

type CustomerPool struct {
	Prefix string `yaml:"prefix" toml:"prefix"`
	First  int    `yaml:"first" toml:"first"`
	Size   int    `yaml:"size" toml:"size"`
}

// Catalog holds every enumeration the generator samples from.
type Catalog struct {
	Products       []Product        `yaml:"products" toml:"products"`
	Regions        []Choice         `yaml:"regions" toml:"regions"`
	Channels       []Choice         `yaml:"channels" toml:"channels"`
	Statuses       []Choice         `yaml:"statuses" toml:"statuses"`
	Quantities     []QuantityChoice `yaml:"quantities" toml:"quantities"`
	PriceVariation float64          `yaml:"price_variation" toml:"price_variation"`
	Customers      CustomerPool     `yaml:"customers" toml:"customers"`
}

func DefaultCatalog() Catalog {
	return Catalog{
		Products: []Product{
			{Name: "Laptop", Category: "Electronics", Price: 899, Cost: 600, Weight: 2},
			{Name: "Smartphone", Category: "Electronics", Price: 699, Cost: 450, Weight: 3},
			{Name: "Tablet", Category: "Electronics", Price: 499, Cost: 320, Weight: 1.5},
			{Name: "Headphones", Category: "Accessories", Price: 149, Cost: 80, Weight: 2.5},
			{Name: "Mouse", Category: "Accessories", Price: 29, Cost: 15, Weight: 3},
			{Name: "Keyboard", Category: "Accessories", Price: 79, Cost: 40, Weight: 2},
			{Name: "Monitor", Category: "Electronics", Price: 349, Cost: 220, Weight: 1},
			{Name: "Webcam", Category: "Accessories", Price: 89, Cost: 50, Weight: 1.5},
			{Name: "SSD 1TB", Category: "Storage", Price: 119, Cost: 70, Weight: 2},
			{Name: "External HDD", Category: "Storage", Price: 79, Cost: 45, Weight: 1.5},
			{Name: "USB Cable", Category: "Accessories", Price: 12, Cost: 5, Weight: 4},
			{Name: "Charger", Category: "Accessories", Price: 35, Cost: 18, Weight: 2.5},
		},
		Regions: []Choice{
			{Name: "North", Weight: 0.25},
			{Name: "South", Weight: 0.20},
			{Name: "East", Weight: 0.22},
			{Name: "West", Weight: 0.18},
			{Name: "Central", Weight: 0.15},
		},
		Channels: []Choice{
			{Name: "Online", Weight: 0.45},
			{Name: "Store", Weight: 0.30},
			{Name: "Reseller", Weight: 0.15},
			{Name: "Direct", Weight: 0.10},
		},
		Statuses: []Choice{
			{Name: string(models.StatusDelivered), Weight: 0.85},
			{Name: string(models.StatusPending), Weight: 0.10},
			{Name: string(models.StatusCancelled), Weight: 0.05},
		},
		Quantities: []QuantityChoice{
			{Quantity: 1, Weight: 0.50},
			{Quantity: 2, Weight: 0.25},
			{Quantity: 3, Weight: 0.15},
			{Quantity: 4, Weight: 0.07},
			{Quantity: 5, Weight: 0.03},
		},
		PriceVariation: 0.10,
		Customers: CustomerPool{
			Prefix: "C",
			First:  1000,
			Size:   2000,
		},
	}
}

// LoadCatalog reads a YAML or TOML catalog file, chosen by extension.
// Sections absent from the file keep their DefaultCatalog values.
func LoadCatalog(path string) (Catalog, error) {
	catalog := DefaultCatalog()

	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &catalog)
	case ".toml":
		err = toml.Unmarshal(data, &catalog)
	default:
		return Catalog{}, fmt.Errorf("unsupported catalog format %q, use .yaml, .yml or .toml", filepath.Ext(path))
	}
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}

	if err := catalog.Validate(); err != nil {
		return Catalog{}, fmt.Errorf("catalog %s: %w", path, err)
	}
	return catalog, nil
}

func (c Catalog) Validate() error {
	if len(c.Products) == 0 {
		return fmt.Errorf("catalog must contain at least one product")
	}

	seen := make(map[string]bool, len(c.Products))
	weights := make([]float64, 0, len(c.Products))
	for _, p := range c.Products {
		if p.Name == "" || p.Category == "" {
			return fmt.Errorf("product name and category cannot be empty")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate product %q", p.Name)
		}
		seen[p.Name] = true
		if p.Cost <= 0 || p.Price <= p.Cost {
			return fmt.Errorf("product %q must satisfy price > cost > 0, got price=%.2f cost=%.2f", p.Name, p.Price, p.Cost)
		}
		weights = append(weights, p.Weight)
	}
	if err := checkWeights("products", weights); err != nil {
		return err
	}

	if err := checkChoices("regions", c.Regions); err != nil {
		return err
	}
	if err := checkChoices("channels", c.Channels); err != nil {
		return err
	}
	if err := checkChoices("statuses", c.Statuses); err != nil {
		return err
	}
	for _, s := range c.Statuses {
		if !models.Status(s.Name).Valid() {
			return fmt.Errorf("unknown status %q", s.Name)
		}
	}

	if len(c.Quantities) == 0 {
		return fmt.Errorf("quantities cannot be empty")
	}
	weights = weights[:0]
	for _, q := range c.Quantities {
		if q.Quantity <= 0 {
			return fmt.Errorf("quantity must be positive, got %d", q.Quantity)
		}
		weights = append(weights, q.Weight)
	}
	if err := checkWeights("quantities", weights); err != nil {
		return err
	}

	// A variation of 1 or more could drive a unit cost to zero.
	if c.PriceVariation < 0 || c.PriceVariation >= 1 {
		return fmt.Errorf("price variation must be in [0, 1), got %.2f", c.PriceVariation)
	}

	if c.Customers.Size <= 0 {
		return fmt.Errorf("customer pool size must be positive, got %d", c.Customers.Size)
	}
	if c.Customers.First < 0 {
		return fmt.Errorf("customer pool first id cannot be negative")
	}

	return nil
}

// Categories returns the distinct product categories in catalog order.
func (c Catalog) Categories() []string {
	seen := make(map[string]bool)
	var categories []string
	for _, p := range c.Products {
		if !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	return categories
}

func checkChoices(name string, choices []Choice) error {
	if len(choices) == 0 {
		return fmt.Errorf("%s cannot be empty", name)
	}
	weights := make([]float64, len(choices))
	for i, c := range choices {
		if c.Name == "" {
			return fmt.Errorf("%s entries need a name", name)
		}
		weights[i] = c.Weight
	}
	return checkWeights(name, weights)
}

func checkWeights(name string, weights []float64) error {
	total := 0.0
	for _, w := range weights {
		if w < 0 {
			return fmt.Errorf("%s weights cannot be negative", name)
		}
		total += w
	}
	if total <= 0 {
		return fmt.Errorf("%s weights must sum to a positive value", name)
	}
	return nil
}
