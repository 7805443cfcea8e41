package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"factory-admin/internal/cache"
	"factory-admin/internal/catalog"
	"factory-admin/internal/config"
	"factory-admin/internal/feed"
	"factory-admin/internal/models"
	"factory-admin/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		StoreURL:  "postgres://admin@db.example.com:5432/factory",
		LogLevel:  "info",
		LogoutURL: "https://sso.example.com/logout",
	}
}

func setupSite(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	hub := feed.NewHub(nil)
	c := cache.New(nil)
	c.Attach(hub)
	t.Cleanup(c.Detach)

	cat := catalog.New(db, hub, c, nil)
	app := fiber.New(fiber.Config{Views: Engine(), ErrorHandler: ErrorHandler(nil)})
	New(cat.Screens, cat.APIs, db, testConfig(), nil).Register(app)
	app.Use(NotFound())
	return app, db
}

func get(t *testing.T, app *fiber.App, path string) (int, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
	require.NoError(t, err)
	return resp.StatusCode, body(t, resp)
}

func post(t *testing.T, app *fiber.App, path string, form url.Values) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode, body(t, resp)
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func id(n uint) string { return strconv.FormatUint(uint64(n), 10) }

func TestListPageRendersRowsAndSearch(t *testing.T) {
	app, db := setupSite(t)
	require.NoError(t, db.Create(&models.Department{Name: "Production", Location: "Building A", Manager: "John Smith", EmployeeCount: 45}).Error)
	require.NoError(t, db.Create(&models.Department{Name: "Logistics", Location: "Warehouse", Manager: "Michael Brown"}).Error)

	status, html := get(t, app, "/departments")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, html, "Add Department")
	assert.Contains(t, html, "Building A")
	assert.Contains(t, html, "Warehouse")

	_, html = get(t, app, "/departments?q=warehouse")
	assert.Contains(t, html, "Michael Brown")
	assert.NotContains(t, html, "John Smith")

	_, html = get(t, app, "/departments?q=xyz-not-present")
	assert.Contains(t, html, "No results found.")
}

func TestCreateFromForm(t *testing.T) {
	app, db := setupSite(t)

	status, html := post(t, app, "/departments", url.Values{
		"name": {"Packaging"}, "location": {"Building D"}, "manager": {"Amy Lee"}, "employeeCount": {""},
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, html, "Department Added")
	assert.Contains(t, html, "Packaging has been added successfully.")
	assert.Contains(t, html, "Amy Lee")
	assert.NotContains(t, html, "<dialog open>")

	var saved models.Department
	require.NoError(t, db.First(&saved).Error)
	assert.Equal(t, "Packaging", saved.Name)
	assert.Equal(t, 0, saved.EmployeeCount)
}

func TestCreateFailureKeepsDialogOpen(t *testing.T) {
	app, db := setupSite(t)

	status, html := post(t, app, "/departments", url.Values{"name": {"Packaging"}})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, html, "Failed to add department")
	assert.Contains(t, html, "<dialog open>")
	assert.Contains(t, html, `value="Packaging"`)

	var n int64
	require.NoError(t, db.Model(&models.Department{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestDialogsOpenFromQuery(t *testing.T) {
	app, db := setupSite(t)
	c := models.Customer{Name: "Acme Corp", Contact: "Jane", Email: "jane@acme.test", Status: models.StatusActive}
	require.NoError(t, db.Create(&c).Error)

	_, html := get(t, app, "/customers?dialog=add")
	assert.Contains(t, html, "<dialog open>")
	assert.Contains(t, html, `<option value="Active" selected>`)

	_, html = get(t, app, "/customers?dialog=edit&id="+id(c.ID))
	assert.Contains(t, html, "Edit Customer")
	assert.Contains(t, html, `value="jane@acme.test"`)

	_, html = get(t, app, "/customers?dialog=delete&id="+id(c.ID))
	assert.Contains(t, html, "Confirm Deletion")
	assert.Contains(t, html, "Acme Corp")

	_, html = get(t, app, "/customers?dialog=edit&id=999")
	assert.NotContains(t, html, "<dialog open>")
}

func TestEditAfterDeleteShowsFailure(t *testing.T) {
	app, db := setupSite(t)
	c := models.Customer{Name: "Acme Corp", Contact: "Jane", Email: "jane@acme.test", Status: models.StatusActive}
	require.NoError(t, db.Create(&c).Error)

	status, html := post(t, app, "/customers/"+id(c.ID)+"/delete", url.Values{})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, html, "Customer Deleted")
	assert.Contains(t, html, "Acme Corp has been deleted successfully.")

	status, html = post(t, app, "/customers/"+id(c.ID)+"/edit", url.Values{
		"name": {"Acme Inc"}, "contact": {"Jane"}, "email": {"jane@acme.test"}, "status": {"Active"},
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, html, "Failed to update customer")
	assert.Contains(t, html, "Edit Customer")
	assert.Contains(t, html, `value="Acme Inc"`)

	status, _ = post(t, app, "/customers/abc/edit", url.Values{})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestDeleteMissingRowKeepsDialogOpen(t *testing.T) {
	app, db := setupSite(t)
	c := models.Customer{Name: "Acme Corp", Contact: "Jane", Email: "jane@acme.test", Status: models.StatusActive}
	require.NoError(t, db.Create(&c).Error)
	require.NoError(t, db.Delete(&models.Customer{}, c.ID).Error)

	status, html := post(t, app, "/customers/"+id(c.ID)+"/delete", url.Values{})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, html, "Failed to delete customer")
	assert.Contains(t, html, "Confirm Deletion")
	assert.Contains(t, html, "/customers/"+id(c.ID)+"/delete")
}

func TestUpdateFromForm(t *testing.T) {
	app, db := setupSite(t)
	c := models.Customer{Name: "Acme Corp", Contact: "Jane", Email: "jane@acme.test", OrderCount: 3, Status: models.StatusActive}
	require.NoError(t, db.Create(&c).Error)

	status, html := post(t, app, "/customers/"+id(c.ID)+"/edit", url.Values{
		"name": {"Acme Inc"}, "contact": {"Jane"}, "email": {"jane@acme.test"}, "orderCount": {"4"}, "status": {"Inactive"},
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, html, "Customer Updated")

	var saved models.Customer
	require.NoError(t, db.First(&saved, c.ID).Error)
	assert.Equal(t, "Acme Inc", saved.Name)
	assert.Equal(t, 4, saved.OrderCount)
	assert.Equal(t, models.StatusInactive, saved.Status)
}

func TestMaterialMappingCostsOnSubmit(t *testing.T) {
	app, db := setupSite(t)

	status, html := post(t, app, "/material-mapping", url.Values{
		"product": {"Valve"}, "material": {"Stainless Steel"}, "quantity": {"2.5"}, "unit": {"kg"},
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, html, "$31.25")
	assert.Contains(t, html, "Unit prices")

	var saved models.MaterialMapping
	require.NoError(t, db.First(&saved).Error)
	assert.Equal(t, "$31.25", saved.Cost)
}

func TestStaticPages(t *testing.T) {
	app, db := setupSite(t)
	require.NoError(t, db.Create(&models.Defect{Product: "Valve", Status: models.DefectOpen, Severity: models.SeverityHigh}).Error)

	status, html := get(t, app, "/")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, html, "Defects Reported")
	assert.Contains(t, html, "Defects by severity")

	status, html = get(t, app, "/analytics")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, html, "Production vs target")
	assert.Contains(t, html, "41%")

	status, html = get(t, app, "/settings")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, html, "db.example.com:5432")
	assert.Contains(t, html, "$12.50")
}

func TestLogoutRedirects(t *testing.T) {
	app, _ := setupSite(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/logout", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "https://sso.example.com/logout", resp.Header.Get("Location"))
}

func TestNotFound(t *testing.T) {
	app, _ := setupSite(t)

	status, html := get(t, app, "/nowhere")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Contains(t, html, "Page not found")

	status, payload := get(t, app, "/api/nowhere")
	assert.Equal(t, fiber.StatusNotFound, status)
	var msg map[string]string
	require.NoError(t, json.Unmarshal([]byte(payload), &msg))
	assert.Equal(t, "Page not found", msg["error"])
}

func TestSetupMode(t *testing.T) {
	cfg := &config.Config{}
	cause := errors.New("backing store connection is not configured: set STORE_URL and STORE_ACCESS_KEY")

	app := fiber.New(fiber.Config{Views: Engine(), ErrorHandler: ErrorHandler(nil)})
	Setup(app, cfg, cause)

	status, html := get(t, app, "/departments")
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Contains(t, html, "Backing store not configured")
	assert.Contains(t, html, "STORE_ACCESS_KEY")

	status, payload := get(t, app, "/api/departments")
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Contains(t, payload, "STORE_URL")
}
