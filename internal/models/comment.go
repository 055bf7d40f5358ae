package models

// Comment on an article.
type Comment struct {
	ID        int64     `json:"id"`
	ArticleID int64     `json:"articleId"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt LocalTime `json:"createdAt"`
}

// CommentInput is the body of POST /comments/article/{articleId}.
type CommentInput struct {
	Content string `json:"content"`
}

// CanDeleteComment reports whether u may delete c: its author or an admin.
// Authorship is decided by id when the principal carries one, otherwise by
// username.
func CanDeleteComment(u *User, c Comment) bool {
	if u == nil {
		return false
	}
	if u.IsAdmin() {
		return true
	}
	if u.ID != 0 {
		return u.ID == c.UserID
	}
	return u.Username != "" && u.Username == c.Username
}
