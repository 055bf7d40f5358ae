package api

import (
	"context"
	"fmt"
	"net/http"

	"Inshorts/internal/models"
)

func (c *Client) ListComments(ctx context.Context, articleID int64) ([]models.Comment, error) {
	var comments []models.Comment
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/comments/article/%d", articleID), nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *Client) AddComment(ctx context.Context, articleID int64, content string) (*models.Comment, error) {
	var cm models.Comment
	in := models.CommentInput{Content: content}
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/comments/article/%d", articleID), in, &cm); err != nil {
		return nil, err
	}
	return &cm, nil
}

func (c *Client) DeleteComment(ctx context.Context, commentID int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/comments/%d", commentID), nil, nil)
}
