package models

import (
	"math"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DeriveTotals fills TotalPrice, TotalCost, Profit and MarginPercent from
// Quantity, UnitPrice and UnitCost. Arithmetic is done in decimal cents so
// that TotalPrice-TotalCost equals Profit without float drift.
func (r *SalesRecord) DeriveTotals() {
	quantity := decimal.NewFromInt(int64(r.Quantity))
	unitPrice := decimal.NewFromFloat(r.UnitPrice).Round(2)
	unitCost := decimal.NewFromFloat(r.UnitCost).Round(2)

	totalPrice := unitPrice.Mul(quantity)
	totalCost := unitCost.Mul(quantity)
	profit := totalPrice.Sub(totalCost)

	r.UnitPrice = unitPrice.InexactFloat64()
	r.UnitCost = unitCost.InexactFloat64()
	r.TotalPrice = totalPrice.InexactFloat64()
	r.TotalCost = totalCost.InexactFloat64()
	r.Profit = profit.InexactFloat64()
	r.MarginPercent = 0
	if totalPrice.IsPositive() {
		r.MarginPercent = profit.Div(totalPrice).Mul(hundred).Round(2).InexactFloat64()
	}
}

// Consistent reports whether the derived fields agree with their inputs
// within tol, and whether quantity and unit values are in range.
func (r SalesRecord) Consistent(tol float64) bool {
	if r.Quantity <= 0 || r.UnitCost <= 0 || r.UnitPrice <= r.UnitCost {
		return false
	}
	if math.Abs(float64(r.Quantity)*r.UnitPrice-r.TotalPrice) > tol {
		return false
	}
	if math.Abs(float64(r.Quantity)*r.UnitCost-r.TotalCost) > tol {
		return false
	}
	if math.Abs(r.TotalPrice-r.TotalCost-r.Profit) > tol {
		return false
	}
	// Margin is stored rounded to two decimals.
	return math.Abs(r.Profit/r.TotalPrice*100-r.MarginPercent) <= 0.005+tol
}
