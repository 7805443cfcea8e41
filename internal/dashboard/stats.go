package dashboard

import (
	"context"

	"factory-admin/internal/entity"
	"factory-admin/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Stat is one dashboard tile. Error is set instead of Value when the count
// failed; the other tiles still render.
type Stat struct {
	Title string `json:"title"`
	Table string `json:"table"`
	Link  string `json:"link"`
	Value int64  `json:"value"`
	Error string `json:"error,omitempty"`
}

var tiles = []struct {
	table string
	title string
}{
	{models.TableDepartments, "Departments"},
	{models.TableEmployees, "Employees"},
	{models.TableProducts, "Products"},
	{models.TableRawMaterials, "Raw Materials"},
	{models.TableCustomers, "Customers"},
	{models.TableSuppliers, "Suppliers"},
	{models.TableDefects, "Defects Reported"},
}

// Stats counts the rows of every dashboard table.
func Stats(ctx context.Context, apis []entity.API, logger *zap.Logger) []Stat {
	if logger == nil {
		logger = zap.NewNop()
	}
	byTable := make(map[string]entity.API, len(apis))
	for _, a := range apis {
		byTable[a.Meta().Table] = a
	}

	stats := make([]Stat, 0, len(tiles))
	for _, t := range tiles {
		api, ok := byTable[t.table]
		if !ok {
			continue
		}
		s := Stat{Title: t.title, Table: t.table, Link: api.Meta().Route()}
		n, err := api.Count(ctx)
		if err != nil {
			logger.Error("dashboard count failed", zap.String("table", t.table), zap.Error(err))
			s.Error = "unavailable"
		} else {
			s.Value = n
		}
		stats = append(stats, s)
	}
	return stats
}

// GET /api/dashboard/stats
func StatsHandler(apis []entity.API, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(Stats(c.UserContext(), apis, logger))
	}
}
