package pages

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"Inshorts/internal/models"
)

type ListKind int

const (
	KindAll ListKind = iota
	KindNewest
	KindTrending
)

// like-status lookups in flight per list page
const likeLookups = 8

func (k ListKind) Heading() string {
	switch k {
	case KindNewest:
		return "Newest Articles"
	case KindTrending:
		return "Trending Articles"
	}
	return "Latest News"
}

func (k ListKind) Path() string {
	switch k {
	case KindNewest:
		return "/newest"
	case KindTrending:
		return "/trending"
	}
	return "/"
}

func (k ListKind) failure() string {
	switch k {
	case KindNewest:
		return "Failed to load newest articles. Please try again later."
	case KindTrending:
		return "Failed to load trending articles. Please try again later."
	}
	return "Failed to load articles. Please try again later."
}

func (k ListKind) fetch(ctx context.Context, a API) ([]models.Article, error) {
	switch k {
	case KindNewest:
		return a.NewestArticles(ctx)
	case KindTrending:
		return a.TrendingArticles(ctx)
	}
	return a.ListArticles(ctx)
}

// ListView is the state of a list page.
type ListView struct {
	Kind  ListKind
	Cards []Card
	Error string
}

// LoadList fetches one of the article lists. With a principal each card
// also carries the visitor's like status; a failed status lookup leaves
// that card unliked.
func LoadList(ctx context.Context, a API, kind ListKind, principal *models.User) ListView {
	view := ListView{Kind: kind}
	articles, err := kind.fetch(ctx, a)
	if err != nil {
		zap.L().Warn("article list fetch failed", zap.String("list", kind.Path()), zap.Error(err))
		view.Error = kind.failure()
		return view
	}

	view.Cards = make([]Card, len(articles))
	for i, art := range articles {
		view.Cards[i] = Card{Article: art, CanLike: principal != nil, Return: kind.Path()}
	}
	if principal == nil {
		return view
	}

	var g errgroup.Group
	g.SetLimit(likeLookups)
	for i := range view.Cards {
		card := &view.Cards[i]
		g.Go(func() error {
			liked, err := a.IsLiked(ctx, card.Article.ID)
			if err != nil {
				zap.L().Debug("like status failed", zap.Int64("article", card.Article.ID), zap.Error(err))
				return nil
			}
			card.Liked = liked
			return nil
		})
	}
	_ = g.Wait()
	return view
}
