// Package dataset reads and writes the flat CSV file shared by the generate,
// analyze and dashboard stages.
package dataset

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sales-insights/internal/config"
	apperrors "sales-insights/internal/errors"
	"sales-insights/internal/models"
)

// Columns is the header row, in file order.
var Columns = []string{
	"order_id",
	"date",
	"customer_id",
	"product",
	"category",
	"quantity",
	"unit_price",
	"unit_cost",
	"total_price",
	"total_cost",
	"profit",
	"margin_percent",
	"region",
	"channel",
	"status",
}

const (
	// Values are written with two decimals.
	consistencyTolerance = 0.011
	ctxCheckInterval     = 1000
)

func WriteCSV(w io.Writer, records []models.SalesRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(Columns))
	for _, r := range records {
		row[0] = r.OrderID
		row[1] = r.Date.Format(config.DateLayout)
		row[2] = r.CustomerID
		row[3] = r.Product
		row[4] = r.Category
		row[5] = strconv.Itoa(r.Quantity)
		row[6] = money(r.UnitPrice)
		row[7] = money(r.UnitCost)
		row[8] = money(r.TotalPrice)
		row[9] = money(r.TotalCost)
		row[10] = money(r.Profit)
		row[11] = money(r.MarginPercent)
		row[12] = r.Region
		row[13] = r.Channel
		row[14] = string(r.Status)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write order %s: %w", r.OrderID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the dataset to path, creating parent directories. The file
// is written next to its destination and renamed into place.
func SaveCSV(path string, records []models.SalesRecord) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.InternalWrap(err, "create data directory")
	}

	tmp, err := os.CreateTemp(dir, ".sales-*.csv")
	if err != nil {
		return apperrors.InternalWrap(err, "create temporary dataset file")
	}
	defer os.Remove(tmp.Name())

	if err := WriteCSV(tmp, records); err != nil {
		tmp.Close()
		return apperrors.InternalWrap(err, "write dataset")
	}
	if err := tmp.Close(); err != nil {
		return apperrors.InternalWrap(err, "close dataset")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return apperrors.InternalWrap(err, "move dataset into place")
	}
	return nil
}

// LoadCSV opens and parses the dataset at path. A missing file yields a
// MISSING_INPUT error.
func LoadCSV(ctx context.Context, path string) ([]models.SalesRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.MissingInput(path, err)
		}
		return nil, apperrors.InternalWrap(err, "open dataset")
	}
	defer file.Close()

	return ReadCSV(ctx, file)
}

// ReadCSV parses a dataset. Columns are matched by header name, so extra
// columns and reordering are tolerated. A header with no rows is an empty
// dataset, not an error.
func ReadCSV(ctx context.Context, r io.Reader) ([]models.SalesRecord, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, apperrors.InvalidData("dataset is empty, expected a header row")
	}
	if err != nil {
		return nil, apperrors.InvalidDataWrap(err, "read header")
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []models.SalesRecord
	for line := 2; ; line++ {
		if line%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.InvalidDataWrap(err, fmt.Sprintf("line %d", line))
		}

		record, err := parseRecord(row, index)
		if err != nil {
			return nil, apperrors.InvalidDataWrap(err, fmt.Sprintf("line %d", line))
		}
		records = append(records, record)
	}

	return records, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		index[name] = i
	}

	var missing []string
	for _, col := range Columns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.InvalidData("dataset header is missing columns: %s", strings.Join(missing, ", "))
	}
	return index, nil
}

func parseRecord(row []string, index map[string]int) (models.SalesRecord, error) {
	field := func(name string) string {
		i := index[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	date, err := time.Parse(config.DateLayout, field("date"))
	if err != nil {
		return models.SalesRecord{}, fmt.Errorf("date: %w", err)
	}

	quantity, err := strconv.Atoi(field("quantity"))
	if err != nil {
		return models.SalesRecord{}, fmt.Errorf("quantity: %w", err)
	}

	r := models.SalesRecord{
		OrderID:    field("order_id"),
		Date:       date,
		CustomerID: field("customer_id"),
		Product:    field("product"),
		Category:   field("category"),
		Quantity:   quantity,
		Region:     field("region"),
		Channel:    field("channel"),
		Status:     models.Status(field("status")),
	}

	floats := []struct {
		name string
		dst  *float64
	}{
		{"unit_price", &r.UnitPrice},
		{"unit_cost", &r.UnitCost},
		{"total_price", &r.TotalPrice},
		{"total_cost", &r.TotalCost},
		{"profit", &r.Profit},
		{"margin_percent", &r.MarginPercent},
	}
	for _, f := range floats {
		v, err := strconv.ParseFloat(field(f.name), 64)
		if err != nil {
			return models.SalesRecord{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}

	if r.OrderID == "" || r.CustomerID == "" {
		return models.SalesRecord{}, fmt.Errorf("order_id and customer_id are required")
	}
	if !r.Status.Valid() {
		return models.SalesRecord{}, fmt.Errorf("unknown status %q", r.Status)
	}
	if !r.Consistent(consistencyTolerance) {
		return models.SalesRecord{}, fmt.Errorf("order %s: derived fields do not match quantity and unit values", r.OrderID)
	}
	return r, nil
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
