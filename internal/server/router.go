// Package server wires the HTTP routes.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"Inshorts/internal/handlers"
	mw "Inshorts/internal/middleware"
	"Inshorts/internal/sessions"
	"Inshorts/web"
)

// NewRouter builds the front's routes. Every page route runs behind the
// visitor session middleware; static assets do not.
func NewRouter(mgr *sessions.Manager, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.AccessLog(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.RedirectSlashes)

	r.Handle("/static/*", http.StripPrefix("/static/", web.Static()))

	r.Group(func(r chi.Router) {
		r.Use(mgr.Middleware)

		r.Get("/", handlers.ShowHome)
		r.Get("/newest", handlers.ShowNewest)
		r.Get("/trending", handlers.ShowTrending)
		r.Get("/article/{id}", handlers.ShowArticle)

		r.Get("/login", handlers.ShowLoginPage)
		r.Post("/login", handlers.HandleLogin)
		r.Get("/register", handlers.ShowRegisterPage)
		r.Post("/register", handlers.HandleRegister)
		r.Post("/logout", handlers.HandleLogout)

		r.Group(func(g chi.Router) {
			g.Use(mw.RequireUser)

			g.Post("/article/{id}/like", handlers.ToggleLike)
			g.Post("/article/{id}/comments", handlers.AddComment)
			g.Post("/article/{id}/comments/{commentId}/delete", handlers.DeleteComment)
		})

		r.Route("/admin", func(g chi.Router) {
			g.Use(mw.AdminOnlyMW)

			g.Get("/", handlers.AdminDashboard)
			g.Get("/articles", handlers.AdminArticles)
			g.Post("/articles/{id}/delete", handlers.AdminDeleteArticle)
			g.Get("/articles/new", handlers.ShowArticleForm)
			g.Post("/articles/new", handlers.SubmitArticleForm)
			g.Get("/articles/edit/{id}", handlers.ShowArticleForm)
			g.Post("/articles/edit/{id}", handlers.SubmitArticleForm)
		})
	})

	home := func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusFound)
	}
	r.NotFound(home)
	r.MethodNotAllowed(home)
	return r
}
