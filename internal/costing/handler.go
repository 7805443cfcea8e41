package costing

import "github.com/gofiber/fiber/v2"

type priceResponse struct {
	Material  string `json:"material"`
	Unit      string `json:"unit"`
	UnitPrice string `json:"unit_price"`
}

// GET /api/material-prices
func PricesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		prices := Prices()
		resp := make([]priceResponse, len(prices))
		for i, p := range prices {
			resp[i] = priceResponse{
				Material:  p.Material,
				Unit:      p.Unit,
				UnitPrice: p.Amount.StringFixed(2),
			}
		}
		return c.JSON(resp)
	}
}
