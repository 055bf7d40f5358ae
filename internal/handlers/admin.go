package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"Inshorts/internal/models"
	"Inshorts/internal/pages"
)

// AdminDashboard shows the article figures and the latest articles.
func AdminDashboard(w http.ResponseWriter, r *http.Request) {
	view := pages.LoadDashboard(r.Context(), visitor(r).API, time.Now())
	render(w, r, http.StatusOK, "admin_dashboard.html", map[string]any{
		"Title": "Dashboard",
		"Stats": view.Stats,
		"Error": view.Error,
	})
}

// AdminArticles lists all articles, filtered by ?q=.
func AdminArticles(w http.ResponseWriter, r *http.Request) {
	view := pages.LoadAdminList(r.Context(), visitor(r).API, r.URL.Query().Get("q"))
	render(w, r, http.StatusOK, "admin_articles.html", map[string]any{
		"Title":    "Manage Articles",
		"Articles": view.Articles,
		"Query":    view.Query,
		"Error":    view.Error,
	})
}

func AdminDeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		redirect(w, r, "/admin/articles")
		return
	}
	if err := visitor(r).API.DeleteArticle(r.Context(), id); err != nil {
		zap.L().Warn("article delete failed", zap.Int64("article", id), zap.Error(err))
		flash(w, r, pages.MsgDeleteFailed)
	}
	redirect(w, r, "/admin/articles")
}

func renderForm(w http.ResponseWriter, r *http.Request, status int, view pages.FormView) {
	render(w, r, status, "article_form.html", map[string]any{
		"Title":  view.Title(),
		"Form":   view.Form,
		"EditID": view.EditID,
		"Action": view.Action(),
		"Error":  view.Error,
	})
}

// ShowArticleForm renders the empty create form or the pre-filled edit form.
func ShowArticleForm(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		renderForm(w, r, http.StatusOK, pages.NewForm(time.Now()))
		return
	}
	renderForm(w, r, http.StatusOK, pages.LoadForm(r.Context(), visitor(r).API, id))
}

// SubmitArticleForm creates or updates the article and returns to the table.
func SubmitArticleForm(w http.ResponseWriter, r *http.Request) {
	id, _ := idParam(r, "id")
	in := models.ArticleInput{
		Title:       r.FormValue("title"),
		Summary:     r.FormValue("summary"),
		Content:     r.FormValue("content"),
		Author:      r.FormValue("author"),
		PublishedAt: r.FormValue("publishedAt"),
	}
	view, err := pages.SubmitForm(r.Context(), visitor(r).API, id, in)
	if err != nil {
		renderForm(w, r, http.StatusBadRequest, view)
		return
	}
	redirect(w, r, "/admin/articles")
}
