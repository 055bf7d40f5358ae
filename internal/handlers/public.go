package handlers

import (
	"net/http"
	"strconv"

	"Inshorts/internal/pages"
)

func showList(kind pages.ListKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := visitor(r)
		view := pages.LoadList(r.Context(), v.API, kind, v.Principal())
		render(w, r, http.StatusOK, "articles.html", map[string]any{
			"Title":   kind.Heading(),
			"Heading": kind.Heading(),
			"Cards":   view.Cards,
			"Error":   view.Error,
		})
	}
}

var (
	ShowHome     = showList(pages.KindAll)
	ShowNewest   = showList(pages.KindNewest)
	ShowTrending = showList(pages.KindTrending)
)

// ShowArticle renders the detail page with its comments.
func ShowArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		render(w, r, http.StatusNotFound, "article.html", map[string]any{"Title": "Article not found"})
		return
	}

	v := visitor(r)
	user := v.Principal()
	view := pages.LoadDetail(r.Context(), v.API, id, user)

	status := http.StatusOK
	title := "Article"
	switch {
	case view.NotFound:
		status = http.StatusNotFound
		title = "Article not found"
	case view.Article != nil:
		title = view.Article.Title
	}
	render(w, r, status, "article.html", map[string]any{
		"Title":    title,
		"Article":  view.Article,
		"Comments": view.Comments,
		"Card":     view.Card(user != nil, "/article/"+strconv.FormatInt(id, 10)),
		"Error":    view.Error,
	})
}
