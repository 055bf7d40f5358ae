package handlers

import (
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"Inshorts/internal/pages"
)

func articlePath(id int64) string { return "/article/" + strconv.FormatInt(id, 10) }

// ToggleLike flips the visitor's like. JSON callers get the server's
// like state back; form posts return to the page they came from.
func ToggleLike(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		redirect(w, r, "/")
		return
	}
	back := localPath(r.FormValue("return"), articlePath(id))

	res, err := pages.ToggleLike(r.Context(), visitor(r).API, id)
	if err != nil {
		zap.L().Warn("like toggle failed", zap.Int64("article", id), zap.Error(err))
		if wantsJSON(r) {
			jsonError(w, http.StatusBadGateway, "Failed to update like")
			return
		}
		flash(w, r, "Failed to update like. Please try again.")
		redirect(w, r, back)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, res)
		return
	}
	redirect(w, r, back)
}

// AddComment posts a comment and returns to the article.
func AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		redirect(w, r, "/")
		return
	}
	err := pages.AddComment(r.Context(), visitor(r).API, id, r.FormValue("content"))
	switch {
	case errors.Is(err, pages.ErrEmptyComment):
		flash(w, r, "Comment cannot be empty.")
	case err != nil:
		zap.L().Warn("add comment failed", zap.Int64("article", id), zap.Error(err))
		flash(w, r, "Failed to post comment. Please try again.")
	}
	redirect(w, r, articlePath(id)+"#comments")
}

// DeleteComment removes a comment the visitor owns (or any, for admins).
func DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	commentID, ok2 := idParam(r, "commentId")
	if !ok || !ok2 {
		redirect(w, r, "/")
		return
	}
	v := visitor(r)
	err := pages.DeleteComment(r.Context(), v.API, v.Principal(), id, commentID)
	switch {
	case errors.Is(err, pages.ErrNotPermitted):
		flash(w, r, "You can only delete your own comments.")
	case errors.Is(err, pages.ErrNoComment):
		flash(w, r, "Comment not found.")
	case err != nil:
		zap.L().Warn("delete comment failed", zap.Int64("comment", commentID), zap.Error(err))
		flash(w, r, "Failed to delete comment. Please try again.")
	}
	redirect(w, r, articlePath(id)+"#comments")
}
