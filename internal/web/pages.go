package web

import (
	"fmt"
	"net/url"
	"strconv"

	"factory-admin/internal/config"
	"factory-admin/internal/costing"
	"factory-admin/internal/dashboard"
	"factory-admin/internal/entity"
	"factory-admin/internal/screen"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Site serves the HTML screens. Each request builds its own screen, loads
// it and renders it; live updates reach the browser over the change stream.
type Site struct {
	screens []screen.Factory
	apis    []entity.API
	db      *gorm.DB
	cfg     *config.Config
	logger  *zap.Logger
}

func New(screens []screen.Factory, apis []entity.API, db *gorm.DB, cfg *config.Config, logger *zap.Logger) *Site {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Site{screens: screens, apis: apis, db: db, cfg: cfg, logger: logger}
}

// Register mounts every page. NotFound must be registered after it.
func (s *Site) Register(app fiber.Router) {
	app.Get("/", s.DashboardPage())
	app.Get("/analytics", s.AnalyticsPage())
	app.Get("/settings", s.SettingsPage())
	app.Get("/logout", s.Logout())

	for _, f := range s.screens {
		route := f.Meta.Route()
		app.Get(route, s.ListPage(f))
		app.Post(route, s.CreateAction(f))
		app.Post(route+"/:id/edit", s.UpdateAction(f))
		app.Post(route+"/:id/delete", s.DeleteAction(f))
	}
}

func (s *Site) nav() []navItem {
	items := []navItem{{Label: "Dashboard", Href: "/"}}
	for _, f := range s.screens {
		items = append(items, navItem{Label: f.Meta.Plural, Href: f.Meta.Route()})
	}
	return append(items,
		navItem{Label: "Analytics", Href: "/analytics"},
		navItem{Label: "Settings", Href: "/settings"},
		navItem{Label: "Logout", Href: "/logout"},
	)
}

func (s *Site) page(c *fiber.Ctx, title string, data fiber.Map) fiber.Map {
	data["Title"] = title
	data["Nav"] = s.nav()
	data["Path"] = c.Path()
	return data
}

// -------------------------
// Screens
// -------------------------

// GET /<route>?q=&dialog=add|edit|delete&id=
func (s *Site) ListPage(f screen.Factory) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m := f.New()
		m.Load(c.UserContext())

		id := uint(0)
		if n := c.QueryInt("id"); n > 0 {
			id = uint(n)
		}
		switch c.Query("dialog") {
		case "add":
			m.OpenAdd()
		case "edit":
			m.OpenEdit(id)
		case "delete":
			m.OpenDelete(id)
		}
		return s.renderScreen(c, m, fiber.StatusOK, false)
	}
}

// POST /<route>
func (s *Site) CreateAction(f screen.Factory) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		m := f.New()
		m.Load(ctx)

		status := fiber.StatusOK
		if err := m.Create(ctx, formDraft(c, f.Meta)); err != nil {
			status = fiber.StatusUnprocessableEntity
		}
		return s.renderScreen(c, m, status, true)
	}
}

// POST /<route>/:id/edit
func (s *Site) UpdateAction(f screen.Factory) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := entity.ParseID(c.Params("id"))
		if err != nil {
			return err
		}
		ctx := c.UserContext()
		m := f.New()
		m.Load(ctx)

		status := fiber.StatusOK
		if err := m.Update(ctx, id, formDraft(c, f.Meta)); err != nil {
			status = fiber.StatusUnprocessableEntity
		}
		return s.renderScreen(c, m, status, true)
	}
}

// POST /<route>/:id/delete
func (s *Site) DeleteAction(f screen.Factory) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := entity.ParseID(c.Params("id"))
		if err != nil {
			return err
		}
		ctx := c.UserContext()
		m := f.New()
		m.Load(ctx)
		m.OpenDelete(id)

		status := fiber.StatusOK
		if err := m.Remove(ctx, id); err != nil {
			status = fiber.StatusUnprocessableEntity
		}
		return s.renderScreen(c, m, status, true)
	}
}

func formDraft(c *fiber.Ctx, meta entity.Meta) entity.Draft {
	d := make(entity.Draft, len(meta.Fields))
	for _, f := range meta.Fields {
		d[f.Key] = c.FormValue(f.Key)
	}
	return d
}

// renderScreen draws the generic list view for m. After a form post the
// browser address is reset to the list route so a reload does not resubmit.
func (s *Site) renderScreen(c *fiber.Ctx, m screen.Model, status int, posted bool) error {
	snap := m.Snapshot()
	meta := snap.Meta
	route := meta.Route()
	query := c.FormValue("q")

	rows := entity.FilterRows(snap.Rows, query)
	back := route
	if query != "" {
		back += "?q=" + url.QueryEscape(query)
	}

	data := fiber.Map{
		"Meta":          meta,
		"Subtitle":      meta.Subtitle,
		"Columns":       meta.Columns,
		"Loaded":        snap.Loaded,
		"Rows":          rows,
		"Query":         query,
		"Notifications": m.TakeNotifications(),
		"Busy":          snap.Dialogs.Add != nil || snap.Dialogs.Edit != nil || snap.Dialogs.Delete != nil,
		"Export":        "/api/" + meta.Slug + "/export.xlsx",
	}
	if a := formOf(meta, snap.Dialogs.Add, "Add "+meta.Name, route, "Add "+meta.Name); a != nil {
		a.Cancel, a.Query = back, query
		data["AddForm"] = a
	}
	if e := snap.Dialogs.Edit; e != nil {
		form := formOf(meta, e, "Edit "+meta.Name, fmt.Sprintf("%s/%d/edit", route, e.ID), "Save Changes")
		form.Cancel, form.Query = back, query
		data["EditForm"] = form
	}
	if d := snap.Dialogs.Delete; d != nil {
		data["DeleteForm"] = &deleteView{
			Action:  fmt.Sprintf("%s/%d/delete", route, d.ID),
			Cancel:  back,
			Query:   query,
			Noun:    meta.Noun(),
			Subject: subjectOf(snap.Rows, d.ID),
		}
	}
	if meta.Route() == "/material-mapping" {
		data["Prices"] = costing.Prices()
	}
	if posted {
		data["Canonical"] = back
	}

	return c.Status(status).Render("pages/entity", s.page(c, meta.Plural, data), "layouts/base")
}

func subjectOf(rows []entity.Row, id uint) string {
	for _, r := range rows {
		if r.ID == id && len(r.Cells) > 0 {
			return r.Cells[0]
		}
	}
	return "#" + strconv.FormatUint(uint64(id), 10)
}

// -------------------------
// Dashboard, analytics, settings
// -------------------------

// GET /
func (s *Site) DashboardPage() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		data := fiber.Map{
			"Stats": dashboard.Stats(ctx, s.apis, s.logger),
		}
		if s.db != nil {
			chart, err := dashboard.DefectChart(ctx, s.db, "severity")
			if err != nil {
				s.logger.Error("defect chart failed", zap.Error(err))
			} else {
				data["Defects"] = chart
			}
		}
		return c.Render("pages/dashboard", s.page(c, "Dashboard", data), "layouts/base")
	}
}

// GET /analytics
func (s *Site) AnalyticsPage() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Render("pages/analytics", s.page(c, "Analytics", fiber.Map{
			"Analytics": dashboard.Canned(),
		}), "layouts/base")
	}
}

// GET /settings
func (s *Site) SettingsPage() fiber.Handler {
	return func(c *fiber.Ctx) error {
		realtime := "In-process"
		if s.cfg.RedisURL != "" {
			realtime = "Redis"
		}
		return c.Render("pages/settings", s.page(c, "Settings", fiber.Map{
			"StoreHost": s.cfg.StoreHost(),
			"Realtime":  realtime,
			"LogLevel":  s.cfg.LogLevel,
			"Prices":    costing.Prices(),
		}), "layouts/base")
	}
}

// GET /logout
func (s *Site) Logout() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Redirect(s.cfg.LogoutURL, fiber.StatusSeeOther)
	}
}
