package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"Inshorts/internal/models"
	"Inshorts/internal/sessions"
	"Inshorts/web"
)

// RequireRole guards a route with Decide. An empty role only requires a
// logged-in visitor. A stored principal is confirmed with the backend
// first, so an expired backend session is sent to the login page.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				principal *models.User
				loading   bool
			)
			if v := sessions.FromContext(r.Context()); v != nil {
				v.Auth.Revalidate(r.Context())
				principal = v.Principal()
				loading = v.Auth.Loading()
			}

			switch Decide(principal, role, loading) {
			case Pending:
				w.Header().Set("Refresh", "1")
				web.Render(w, http.StatusOK, "pending.html", map[string]any{"Title": "Loading", "Path": r.URL.Path})
			case RedirectLogin:
				http.Redirect(w, r, "/login", http.StatusFound)
			case RedirectHome:
				http.Redirect(w, r, "/", http.StatusFound)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// RequireUser lets through any logged-in visitor.
func RequireUser(next http.Handler) http.Handler { return RequireRole("")(next) }

// AdminOnlyMW lets through visitors holding ROLE_ADMIN.
// Usage: g.Use(middleware.AdminOnlyMW)
func AdminOnlyMW(next http.Handler) http.Handler { return RequireRole(models.RoleAdmin)(next) }

// AccessLog logs METHOD PATH -> STATUS (duration) for every request.
func AccessLog(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("took", time.Since(start).Truncate(time.Millisecond)),
				zap.String("request_id", chimw.GetReqID(r.Context())))
		})
	}
}
