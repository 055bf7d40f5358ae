package pages

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"Inshorts/internal/models"
)

var (
	ErrEmptyComment = errors.New("comment is empty")
	ErrNotPermitted = errors.New("not permitted")
	ErrNoComment    = errors.New("comment not found")
)

// LikeResult is the like state after a toggle, as the server reports it.
type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

// ToggleLike flips the visitor's like and then reads back the article and
// the like status. The three calls run one after another; the result never
// carries a locally computed count.
func ToggleLike(ctx context.Context, a API, id int64) (LikeResult, error) {
	if _, err := a.ToggleLike(ctx, id); err != nil {
		return LikeResult{}, errors.Wrap(err, "toggle like")
	}
	article, err := a.GetArticle(ctx, id)
	if err != nil {
		return LikeResult{}, errors.Wrap(err, "refetch article")
	}
	liked, err := a.IsLiked(ctx, id)
	if err != nil {
		return LikeResult{}, errors.Wrap(err, "refetch like status")
	}
	return LikeResult{Liked: liked, LikeCount: article.LikeCount}, nil
}

// AddComment posts a trimmed, non-blank comment.
func AddComment(ctx context.Context, a API, articleID int64, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyComment
	}
	_, err := a.AddComment(ctx, articleID, content)
	return errors.Wrap(err, "add comment")
}

// DeleteComment deletes a comment of the article when u may do so. The
// comment list is re-read so the permission check sees the server's copy.
func DeleteComment(ctx context.Context, a API, u *models.User, articleID, commentID int64) error {
	comments, err := a.ListComments(ctx, articleID)
	if err != nil {
		return errors.Wrap(err, "list comments")
	}
	for _, c := range comments {
		if c.ID != commentID {
			continue
		}
		if !models.CanDeleteComment(u, c) {
			return ErrNotPermitted
		}
		return errors.Wrap(a.DeleteComment(ctx, commentID), "delete comment")
	}
	return ErrNoComment
}
