// Package web renders the admin screens as server-side HTML pages.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"time"

	"factory-admin/internal/dashboard"
	"factory-admin/internal/entity"
	"factory-admin/internal/screen"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var templateFS embed.FS

// Engine returns the template engine over the embedded templates.
func Engine() *html.Engine {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")

	engine.AddFunc("percent", dashboard.Percent)
	engine.AddFunc("clock", func(t time.Time) string {
		return t.Format("15:04:05")
	})
	engine.AddFunc("share", func(n, total int64) int64 {
		if total == 0 {
			return 0
		}
		return n * 100 / total
	})
	engine.AddFunc("add", func(a, b int) int {
		return a + b
	})
	return engine
}

type navItem struct {
	Label string
	Href  string
}

type fieldView struct {
	Key      string
	Label    string
	Type     string // text, email, date, number, textarea, select
	Step     string
	Required bool
	Options  []string
	Value    string
}

type formView struct {
	Title  string
	Action string
	Submit string
	Cancel string
	Query  string
	Fields []fieldView
}

type deleteView struct {
	Action  string
	Cancel  string
	Query   string
	Noun    string
	Subject string
}

func inputOf(f entity.Field, value string) fieldView {
	v := fieldView{Key: f.Key, Label: f.Label, Required: f.Required, Value: value}
	switch f.Kind {
	case entity.KindEmail:
		v.Type = "email"
	case entity.KindDate:
		v.Type = "date"
	case entity.KindInt:
		v.Type, v.Step = "number", "1"
	case entity.KindNumber:
		v.Type, v.Step = "number", "any"
	case entity.KindTextarea:
		v.Type = "textarea"
	case entity.KindSelect:
		v.Type = "select"
		v.Options = f.Options
		if value != "" && !contains(f.Options, value) {
			v.Options = append([]string{value}, f.Options...)
		}
	default:
		v.Type = "text"
	}
	return v
}

func formOf(meta entity.Meta, form *screen.Form, title, action, submit string) *formView {
	if form == nil {
		return nil
	}
	view := &formView{Title: title, Action: action, Submit: submit, Cancel: meta.Route()}
	for _, f := range meta.Fields {
		view.Fields = append(view.Fields, inputOf(f, form.Draft[f.Key]))
	}
	return view
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
