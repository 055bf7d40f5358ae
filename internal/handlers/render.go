// Package handlers serves the HTML pages. Every handler reads the visitor
// from the request context, delegates to a page controller and renders
// the result; mutations answer with a redirect.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Inshorts/internal/models"
	"Inshorts/internal/sessions"
	"Inshorts/web"
)

// render injects the layout values every page needs: the user, the admin
// flag, pending flashes and the current path.
func render(w http.ResponseWriter, r *http.Request, status int, page string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	var user *models.User
	if v := sessions.FromContext(r.Context()); v != nil {
		user = v.Principal()
		data["Flashes"] = v.Flashes
	}
	data["User"] = user
	data["IsAdmin"] = user.IsAdmin()
	data["Path"] = r.URL.Path
	web.Render(w, status, page, data)
}

func visitor(r *http.Request) *sessions.Visitor {
	return sessions.FromContext(r.Context())
}

// flash queues msg for the page the redirect lands on.
func flash(w http.ResponseWriter, r *http.Request, msg string) {
	if v := visitor(r); v != nil {
		v.AddFlash(w, r, msg)
	}
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusFound)
}

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// localPath accepts only same-site absolute paths as a redirect target.
func localPath(p, fallback string) string {
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return fallback
	}
	return p
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("json encode failed", zap.Error(err))
	}
}

func jsonError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}
