package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"factory-admin/internal/catalog"
	"factory-admin/internal/entity"
	"factory-admin/internal/models"
	"factory-admin/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenAPI struct{ meta entity.Meta }

func (b brokenAPI) Meta() entity.Meta                    { return b.meta }
func (b brokenAPI) Count(context.Context) (int64, error) { return 0, errors.New("timeout") }
func (b brokenAPI) Register(fiber.Router)                {}

func TestStatsCountsTables(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cat := catalog.New(db, nil, nil, nil)

	require.NoError(t, db.Create(&models.Department{Name: "QA", Location: "B", Manager: "M"}).Error)
	require.NoError(t, db.Create(&models.Defect{Product: "Valve", Status: models.DefectOpen, Severity: models.SeverityHigh}).Error)
	require.NoError(t, db.Create(&models.Defect{Product: "Pump", Status: models.DefectClosed, Severity: models.SeverityLow}).Error)

	stats := Stats(context.Background(), cat.APIs, nil)
	require.Len(t, stats, 7)
	assert.Equal(t, "Departments", stats[0].Title)
	assert.Equal(t, int64(1), stats[0].Value)
	assert.Equal(t, "/departments", stats[0].Link)
	assert.Equal(t, "Defects Reported", stats[6].Title)
	assert.Equal(t, int64(2), stats[6].Value)
	assert.Equal(t, int64(0), stats[1].Value)
}

func TestStatsKeepsOtherTilesOnFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cat := catalog.New(db, nil, nil, nil)
	apis := append([]entity.API{}, cat.APIs...)
	apis[1] = brokenAPI{meta: catalog.Employees().Meta}

	stats := Stats(context.Background(), apis, nil)
	require.Len(t, stats, 7)
	assert.Equal(t, "unavailable", stats[1].Error)
	assert.Empty(t, stats[0].Error)
}

func TestCannedAnalytics(t *testing.T) {
	a := Canned()
	require.Len(t, a.Production, 7)
	assert.Equal(t, ProductionPoint{"Mar", 80, 75}, a.Production[2])
	assert.Len(t, a.DefectCategories, 5)
	assert.Equal(t, 41, Percent(a.DefectCategories, 35))
	assert.Equal(t, 0, Percent(nil, 3))

	app := fiber.New()
	app.Get("/api/analytics", AnalyticsHandler())
	resp, err := app.Test(httptest.NewRequest("GET", "/api/analytics", nil))
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body, "department_productivity")
}

func TestDefectChartOrdersKnownLabels(t *testing.T) {
	db := testutil.SetupTestDB(t)
	for _, d := range []models.Defect{
		{Product: "Valve", Status: models.DefectResolved, Severity: models.SeverityCritical},
		{Product: "Pump", Status: models.DefectOpen, Severity: models.SeverityHigh},
		{Product: "Motor", Status: models.DefectOpen, Severity: models.SeverityLow},
		{Product: "Pipe", Status: "Escalated", Severity: models.SeverityLow},
	} {
		require.NoError(t, db.Create(&d).Error)
	}

	resp, err := DefectChart(context.Background(), db, "status")
	require.NoError(t, err)
	assert.Equal(t, int64(4), resp.Total)
	assert.Equal(t, []ChartPoint{
		{Label: models.DefectOpen, Count: 2},
		{Label: models.DefectResolved, Count: 1},
		{Label: "Escalated", Count: 1},
	}, resp.Points)

	resp, err = DefectChart(context.Background(), db, "severity")
	require.NoError(t, err)
	assert.Equal(t, models.SeverityLow, resp.Points[0].Label)
	assert.Equal(t, int64(2), resp.Points[0].Count)

	_, err = DefectChart(context.Background(), db, "reported_by; DROP TABLE defects")
	assert.Error(t, err)
}

func TestDefectChartHandler(t *testing.T) {
	db := testutil.SetupTestDB(t)
	app := fiber.New()
	app.Get("/api/dashboard/defects", DefectChartHandler(db))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/dashboard/defects", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body DefectChartResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "status", body.Group)
	assert.Empty(t, body.Points)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/dashboard/defects?group=bogus", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
