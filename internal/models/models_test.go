package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanDeleteComment(t *testing.T) {
	c := Comment{ID: 1, UserID: 7, Username: "ana"}

	tests := []struct {
		name string
		user *User
		want bool
	}{
		{"anonymous", nil, false},
		{"author by id", &User{ID: 7, Username: "ana"}, true},
		{"other user by id", &User{ID: 8, Username: "ana"}, false},
		{"author by username when id unknown", &User{Username: "ana"}, true},
		{"other username", &User{Username: "bob"}, false},
		{"admin", &User{ID: 9, Username: "root", Roles: []string{RoleAdmin}}, true},
		{"non-admin role", &User{ID: 9, Username: "root", Roles: []string{"ROLE_USER"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanDeleteComment(tt.user, c))
		})
	}
}

func TestArticleInputValidate(t *testing.T) {
	ok := ArticleInput{Title: "T", Summary: "S", Content: "C", Author: "A"}
	require.NoError(t, ok.Validate())

	for _, in := range []ArticleInput{
		{Summary: "S", Content: "C", Author: "A"},
		{Title: "T", Content: "C", Author: "A"},
		{Title: "T", Summary: "S", Author: "A"},
		{Title: "T", Summary: "S", Content: "C", Author: "   "},
	} {
		assert.ErrorIs(t, in.Validate(), ErrMissingFields)
	}
}

func TestArticleInputOmitsEmptyPublishedAt(t *testing.T) {
	b, err := json.Marshal(ArticleInput{Title: "T", Summary: "S", Content: "C", Author: "A"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"T","summary":"S","content":"C","author":"A"}`, string(b))
}

func TestLocalTimeUnmarshal(t *testing.T) {
	for _, raw := range []string{
		`"2025-03-01T10:15:30"`,
		`"2025-03-01T10:15:30.123456"`,
		`"2025-03-01T10:15"`,
	} {
		var lt LocalTime
		require.NoError(t, json.Unmarshal([]byte(raw), &lt), raw)
		assert.Equal(t, 2025, lt.Year())
		assert.Equal(t, time.March, lt.Month())
		assert.Equal(t, "2025-03-01T10:15", lt.FormInput())
	}

	var zero LocalTime
	require.NoError(t, json.Unmarshal([]byte(`null`), &zero))
	assert.True(t, zero.IsZero())

	var bad LocalTime
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &bad))
}

func TestArticleDecode(t *testing.T) {
	var a Article
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": 3, "title": "T", "summary": "S", "content": "one\n\ntwo",
		"author": "A", "publishedAt": "2025-01-02T03:04:05",
		"likeCount": 4, "viewCount": 10, "commentCount": 2, "trendingScore": 1.5
	}`), &a))

	assert.Equal(t, int64(3), a.ID)
	assert.Equal(t, 4, a.LikeCount)
	assert.Equal(t, []string{"one", "two"}, a.Paragraphs())
	assert.Equal(t, "2025-01-02T03:04", ArticleInputFrom(a).PublishedAt)
}

func TestUserRoles(t *testing.T) {
	var nilUser *User
	assert.False(t, nilUser.IsAdmin())
	assert.Equal(t, "", nilUser.Initial())

	u := &User{Username: "édith", Roles: []string{"ROLE_USER", RoleAdmin}}
	assert.True(t, u.IsAdmin())
	assert.True(t, u.HasRole("ROLE_USER"))
	assert.False(t, u.HasRole("ROLE_EDITOR"))
	assert.Equal(t, "É", u.Initial())
}
