package pages

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"Inshorts/internal/models"
)

const (
	msgFormLoadFailed = "Failed to load article. Please try again."
	MsgMissingFields  = "Please fill out all required fields."
	msgSaveFailed     = "Failed to save article. Please try again."
)

// FormView is the state of the create/edit article form. EditID is zero
// in create mode.
type FormView struct {
	EditID int64
	Form   models.ArticleInput
	Error  string
}

func (f FormView) Action() string {
	if f.EditID == 0 {
		return "/admin/articles/new"
	}
	return "/admin/articles/edit/" + strconv.FormatInt(f.EditID, 10)
}

func (f FormView) Title() string {
	if f.EditID == 0 {
		return "Create New Article"
	}
	return "Edit Article"
}

// NewForm is the empty create form; the publication time defaults to now.
func NewForm(now time.Time) FormView {
	return FormView{Form: models.ArticleInput{PublishedAt: now.Format(models.FormLayout)}}
}

// LoadForm pre-fills the edit form from the stored article.
func LoadForm(ctx context.Context, a API, id int64) FormView {
	view := FormView{EditID: id}
	article, err := a.GetArticle(ctx, id)
	if err != nil {
		zap.L().Warn("article form load failed", zap.Int64("article", id), zap.Error(err))
		view.Error = msgFormLoadFailed
		return view
	}
	view.Form = models.ArticleInputFrom(*article)
	return view
}

// SubmitForm validates the input and creates or updates the article. A
// missing field is reported without any backend call. The returned view
// carries the message to re-render with; it is only meaningful when the
// error is non-nil.
func SubmitForm(ctx context.Context, a API, editID int64, in models.ArticleInput) (FormView, error) {
	view := FormView{EditID: editID, Form: in}
	if err := in.Validate(); err != nil {
		view.Error = MsgMissingFields
		return view, err
	}

	payload := models.ArticleInput{
		Title:   strings.TrimSpace(in.Title),
		Summary: strings.TrimSpace(in.Summary),
		Content: in.Content,
		Author:  strings.TrimSpace(in.Author),
	}
	if in.PublishedAt != "" {
		t, err := models.ParseLocalTime(in.PublishedAt)
		if err != nil {
			view.Error = msgSaveFailed
			return view, errors.Wrap(err, "publication time")
		}
		payload.PublishedAt = t.Format("2006-01-02T15:04:05")
	}

	var err error
	if editID == 0 {
		_, err = a.CreateArticle(ctx, payload)
	} else {
		_, err = a.UpdateArticle(ctx, editID, payload)
	}
	if err != nil {
		zap.L().Warn("article save failed", zap.Int64("article", editID), zap.Error(err))
		view.Error = msgSaveFailed
		return view, errors.Wrap(err, "save article")
	}
	return view, nil
}
