// Package web holds the embedded HTML templates and static assets.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"Inshorts/internal/models"
)

//go:embed templates static
var files embed.FS

// page -> layout it renders in
var pages = map[string]string{
	"articles.html":        "main.html",
	"article.html":         "main.html",
	"login.html":           "main.html",
	"register.html":        "main.html",
	"pending.html":         "main.html",
	"admin_dashboard.html": "admin.html",
	"admin_articles.html":  "admin.html",
	"article_form.html":    "admin.html",
}

var funcs = template.FuncMap{
	"ago": func(t models.LocalTime) string {
		if t.IsZero() {
			return ""
		}
		return humanize.Time(t.Time)
	},
	"date": func(t models.LocalTime) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("Jan 2, 2006")
	},
	"canDelete": models.CanDeleteComment,
}

var templates = mustParse()

func mustParse() map[string]*template.Template {
	out := make(map[string]*template.Template, len(pages))
	for page, layout := range pages {
		t := template.New(page).Funcs(funcs)
		out[page] = template.Must(t.ParseFS(files,
			"templates/"+layout,
			"templates/partials.html",
			"templates/"+page,
		))
	}
	return out
}

// Render executes page inside its layout. The output is buffered so a
// template error never leaves a half-written page.
func Render(w http.ResponseWriter, status int, page string, data map[string]any) {
	t, ok := templates[page]
	if !ok {
		http.Error(w, "unknown template "+page, http.StatusInternalServerError)
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["Year"]; !ok {
		data["Year"] = time.Now().Year()
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		zap.L().Error("render failed", zap.String("page", page), zap.Error(err))
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Static serves the embedded static directory.
func Static() http.Handler {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
