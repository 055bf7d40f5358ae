// Package pages holds the page controllers: each one loads what a view
// needs from the backend and turns failures into the message the view
// shows inline.
package pages

import (
	"context"

	"Inshorts/internal/models"
)

// API is the part of the backend client the pages use. *api.Client
// satisfies it.
type API interface {
	ListArticles(ctx context.Context) ([]models.Article, error)
	NewestArticles(ctx context.Context) ([]models.Article, error)
	TrendingArticles(ctx context.Context) ([]models.Article, error)
	GetArticle(ctx context.Context, id int64) (*models.Article, error)
	CreateArticle(ctx context.Context, in models.ArticleInput) (*models.Article, error)
	UpdateArticle(ctx context.Context, id int64, in models.ArticleInput) (*models.Article, error)
	DeleteArticle(ctx context.Context, id int64) error
	ToggleLike(ctx context.Context, id int64) (bool, error)
	IsLiked(ctx context.Context, id int64) (bool, error)
	ListComments(ctx context.Context, articleID int64) ([]models.Comment, error)
	AddComment(ctx context.Context, articleID int64, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, commentID int64) error
}

// Card is one article as the card partial renders it.
type Card struct {
	Article models.Article
	Liked   bool
	// CanLike is false for anonymous visitors; the button renders disabled.
	CanLike bool
	// Return is where the like form sends the browser back to.
	Return string
}
