// Package costing prices material-to-product mappings from a fixed unit
// price table.
package costing

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type Price struct {
	Material string          `json:"material"`
	Unit     string          `json:"unit"`
	Amount   decimal.Decimal `json:"amount"`
}

var prices = []Price{
	{Material: "Stainless Steel", Unit: "kg", Amount: decimal.RequireFromString("12.5")},
	{Material: "Copper Wire", Unit: "m", Amount: decimal.RequireFromString("8.75")},
	{Material: "Nylon Polymer", Unit: "kg", Amount: decimal.RequireFromString("6.2")},
	{Material: "Silicon Wafer", Unit: "units", Amount: decimal.RequireFromString("45")},
	{Material: "Aluminum Sheets", Unit: "m²", Amount: decimal.RequireFromString("18.3")},
}

// Prices returns the unit price table in display order.
func Prices() []Price {
	out := make([]Price, len(prices))
	copy(out, prices)
	return out
}

// Materials returns the priced material names.
func Materials() []string {
	names := make([]string, len(prices))
	for i, p := range prices {
		names[i] = p.Material
	}
	return names
}

// UnitPrice returns the price of one unit of material, or zero when the
// material is not in the table.
func UnitPrice(material string) decimal.Decimal {
	for _, p := range prices {
		if p.Material == material {
			return p.Amount
		}
	}
	return decimal.Zero
}

// Cost is unit price times quantity rounded half away from zero to cents
// and prefixed with "$". Unknown materials cost "$0.00".
func Cost(material string, quantity float64) string {
	total := UnitPrice(material).Mul(decimal.NewFromFloat(quantity))
	return "$" + total.StringFixed(2)
}

// ParseQuantity reads a form quantity. Anything that is not a finite number
// becomes 0.
func ParseQuantity(s string) float64 {
	q, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(q) || math.IsInf(q, 0) {
		return 0
	}
	return q
}
