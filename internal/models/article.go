package models

import (
	"errors"
	"strings"
)

// ErrMissingFields is returned by ArticleInput.Validate when a required
// field is blank.
var ErrMissingFields = errors.New("required field missing")

// Article is a news article as the backend returns it.
// PublishedAt is a zone-less local date-time on the backend.
type Article struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Summary      string    `json:"summary"`
	Content      string    `json:"content"`
	Author       string    `json:"author"`
	PublishedAt  LocalTime `json:"publishedAt"`
	LikeCount    int       `json:"likeCount"`
	ViewCount    int       `json:"viewCount,omitempty"`
	CommentCount int       `json:"commentCount,omitempty"`
}

// Paragraphs splits the article body on newlines, dropping blank lines.
func (a Article) Paragraphs() []string {
	var out []string
	for _, p := range strings.Split(a.Content, "\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ArticleInput is the create/update payload (POST /articles, PUT /articles/{id}).
type ArticleInput struct {
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Content     string `json:"content"`
	Author      string `json:"author"`
	PublishedAt string `json:"publishedAt,omitempty"`
}

// ArticleInputFrom fills the form from an existing article (edit mode).
func ArticleInputFrom(a Article) ArticleInput {
	return ArticleInput{
		Title:       a.Title,
		Summary:     a.Summary,
		Content:     a.Content,
		Author:      a.Author,
		PublishedAt: a.PublishedAt.FormInput(),
	}
}

// Validate checks that title, summary, content and author are present.
func (in ArticleInput) Validate() error {
	for _, v := range []string{in.Title, in.Summary, in.Content, in.Author} {
		if strings.TrimSpace(v) == "" {
			return ErrMissingFields
		}
	}
	return nil
}
