package pages

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"Inshorts/internal/api"
	"Inshorts/internal/models"
)

const (
	msgArticleFailed   = "Failed to load article. Please try again later."
	msgArticleNotFound = "Article not found"
)

// DetailView is the state of the article page.
type DetailView struct {
	Article  *models.Article
	Comments []models.Comment
	Liked    bool
	Error    string
	NotFound bool
}

// Card renders the detail page's like button with the shared partial.
func (d DetailView) Card(canLike bool, returnPath string) Card {
	c := Card{Liked: d.Liked, CanLike: canLike, Return: returnPath}
	if d.Article != nil {
		c.Article = *d.Article
	}
	return c
}

// LoadDetail reads the article, its comments and, for a principal, the
// like status concurrently.
func LoadDetail(ctx context.Context, a API, id int64, principal *models.User) DetailView {
	var (
		view     DetailView
		article  *models.Article
		comments []models.Comment
		liked    bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		article, err = a.GetArticle(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = a.ListComments(gctx, id)
		return err
	})
	if principal != nil {
		g.Go(func() error {
			var err error
			liked, err = a.IsLiked(gctx, id)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		if api.IsNotFound(err) {
			view.NotFound = true
			view.Error = msgArticleNotFound
			return view
		}
		zap.L().Warn("article load failed", zap.Int64("article", id), zap.Error(err))
		view.Error = msgArticleFailed
		return view
	}
	if article == nil {
		view.NotFound = true
		view.Error = msgArticleNotFound
		return view
	}
	view.Article = article
	view.Comments = comments
	view.Liked = liked
	return view
}
