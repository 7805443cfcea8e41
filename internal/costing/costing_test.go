package costing

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCost(t *testing.T) {
	tests := []struct {
		material string
		quantity float64
		want     string
	}{
		{"Stainless Steel", 2.5, "$31.25"},
		{"Copper Wire", 0.5, "$4.38"},
		{"Copper Wire", 15, "$131.25"},
		{"Silicon Wafer", 2, "$90.00"},
		{"Aluminum Sheets", 1.2, "$21.96"},
		{"Stainless Steel", 1.8, "$22.50"},
		{"Nylon Polymer", 0.75, "$4.65"},
		{"Unobtainium", 10, "$0.00"},
		{"stainless steel", 1, "$0.00"},
		{"Stainless Steel", 0, "$0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.material, func(t *testing.T) {
			assert.Equal(t, tt.want, Cost(tt.material, tt.quantity))
		})
	}
}

func TestParseQuantity(t *testing.T) {
	assert.Equal(t, 2.5, ParseQuantity("2.5"))
	assert.Equal(t, 3.0, ParseQuantity(" 3 "))
	assert.Equal(t, 0.0, ParseQuantity("abc"))
	assert.Equal(t, 0.0, ParseQuantity(""))
	assert.Equal(t, 0.0, ParseQuantity("NaN"))
	assert.Equal(t, 0.0, ParseQuantity("Inf"))
}

func TestPriceTable(t *testing.T) {
	assert.Equal(t, []string{"Stainless Steel", "Copper Wire", "Nylon Polymer", "Silicon Wafer", "Aluminum Sheets"}, Materials())
	assert.Equal(t, "45", UnitPrice("Silicon Wafer").String())
	assert.True(t, UnitPrice("Gold").IsZero())

	p := Prices()
	p[0].Material = "changed"
	assert.Equal(t, "Stainless Steel", Prices()[0].Material)
}

func TestPricesHandler(t *testing.T) {
	app := fiber.New()
	app.Get("/api/material-prices", PricesHandler())

	resp, err := app.Test(httptest.NewRequest("GET", "/api/material-prices", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body []map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 5)
	assert.Equal(t, map[string]string{"material": "Stainless Steel", "unit": "kg", "unit_price": "12.50"}, body[0])
}
