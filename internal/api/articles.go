package api

import (
	"context"
	"fmt"
	"net/http"

	"Inshorts/internal/models"
)

func (c *Client) ListArticles(ctx context.Context) ([]models.Article, error) {
	return c.listArticles(ctx, "/articles")
}

func (c *Client) NewestArticles(ctx context.Context) ([]models.Article, error) {
	return c.listArticles(ctx, "/articles/newest")
}

func (c *Client) TrendingArticles(ctx context.Context) ([]models.Article, error) {
	return c.listArticles(ctx, "/articles/trending")
}

func (c *Client) listArticles(ctx context.Context, path string) ([]models.Article, error) {
	var articles []models.Article
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

func (c *Client) GetArticle(ctx context.Context, id int64) (*models.Article, error) {
	var a models.Article
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/articles/%d", id), nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) CreateArticle(ctx context.Context, in models.ArticleInput) (*models.Article, error) {
	var a models.Article
	if err := c.doJSON(ctx, http.MethodPost, "/articles", in, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) UpdateArticle(ctx context.Context, id int64, in models.ArticleInput) (*models.Article, error) {
	var a models.Article
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/articles/%d", id), in, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) DeleteArticle(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/articles/%d", id), nil, nil)
}

// ToggleLike flips the caller's like on an article and returns the new state.
func (c *Client) ToggleLike(ctx context.Context, id int64) (bool, error) {
	var st models.LikeStatus
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/articles/%d/like", id), nil, &st); err != nil {
		return false, err
	}
	return st.Liked, nil
}

func (c *Client) IsLiked(ctx context.Context, id int64) (bool, error) {
	var st models.LikeStatus
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/articles/%d/isLiked", id), nil, &st); err != nil {
		return false, err
	}
	return st.Liked, nil
}
