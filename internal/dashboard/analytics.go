// Package dashboard serves the overview tiles and the analytics charts.
package dashboard

import "github.com/gofiber/fiber/v2"

type ProductionPoint struct {
	Month      string `json:"month"`
	Production int    `json:"production"`
	Target     int    `json:"target"`
}

type Slice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type Analytics struct {
	Production             []ProductionPoint `json:"production"`
	DefectCategories       []Slice           `json:"defect_categories"`
	MaterialDistribution   []Slice           `json:"material_distribution"`
	DepartmentProductivity []Slice           `json:"department_productivity"`
}

// Canned returns the static analytics data set. It is not derived from the
// store.
func Canned() Analytics {
	return Analytics{
		Production: []ProductionPoint{
			{"Jan", 65, 70},
			{"Feb", 59, 65},
			{"Mar", 80, 75},
			{"Apr", 81, 80},
			{"May", 56, 60},
			{"Jun", 55, 55},
			{"Jul", 40, 45},
		},
		DefectCategories: []Slice{
			{"Manufacturing", 35},
			{"Design", 15},
			{"Material", 20},
			{"Electrical", 10},
			{"Other", 5},
		},
		MaterialDistribution: []Slice{
			{"Stainless Steel", 40},
			{"Copper Wire", 25},
			{"Nylon Polymer", 15},
			{"Silicon Wafer", 12},
			{"Aluminum Sheets", 8},
		},
		DepartmentProductivity: []Slice{
			{"Production", 85},
			{"R&D", 70},
			{"QA", 90},
			{"Logistics", 75},
			{"Admin", 65},
		},
	}
}

// Percent is v as a whole percentage of the slice total.
func Percent(slices []Slice, v int) int {
	total := 0
	for _, s := range slices {
		total += s.Value
	}
	if total == 0 {
		return 0
	}
	return (v*100 + total/2) / total
}

// GET /api/analytics
func AnalyticsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(Canned())
	}
}
