package dashboard

import (
	"context"
	"fmt"
	"sort"

	"factory-admin/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ChartPoint struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type DefectChartResponse struct {
	Group  string       `json:"group"` // status | severity | category | product
	Points []ChartPoint `json:"points"`
	Total  int64        `json:"total"`
}

// known label order per group; labels outside it sort last, alphabetically
var defectGroups = map[string][]string{
	"status":   {models.DefectOpen, models.DefectInProgress, models.DefectResolved, models.DefectClosed},
	"severity": {models.SeverityLow, models.SeverityMedium, models.SeverityHigh, models.SeverityCritical},
	"category": models.DefectCategories,
	"product":  nil,
}

// DefectChart counts defects per value of group.
func DefectChart(ctx context.Context, db *gorm.DB, group string) (DefectChartResponse, error) {
	order, ok := defectGroups[group]
	if !ok {
		return DefectChartResponse{}, fmt.Errorf("unknown defect grouping %q", group)
	}

	var rows []ChartPoint
	err := db.WithContext(ctx).
		Model(&models.Defect{}).
		Select(group + " AS label, COUNT(*) AS count").
		Group(group).
		Scan(&rows).Error
	if err != nil {
		return DefectChartResponse{}, fmt.Errorf("aggregate defects by %s: %w", group, err)
	}

	rank := make(map[string]int, len(order))
	for i, label := range order {
		rank[label] = i
	}
	sort.SliceStable(rows, func(i, j int) bool {
		ri, iok := rank[rows[i].Label]
		rj, jok := rank[rows[j].Label]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return rows[i].Label < rows[j].Label
		}
	})

	resp := DefectChartResponse{Group: group, Points: rows}
	if resp.Points == nil {
		resp.Points = []ChartPoint{}
	}
	for _, p := range rows {
		resp.Total += p.Count
	}
	return resp, nil
}

// GET /api/dashboard/defects?group=severity
func DefectChartHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		group := c.Query("group", "status")
		if _, ok := defectGroups[group]; !ok {
			return fiber.NewError(fiber.StatusBadRequest, "group must be status, severity, category or product")
		}
		resp, err := DefectChart(c.UserContext(), db, group)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to aggregate defects")
		}
		return c.JSON(resp)
	}
}
