package models

import (
	"slices"
	"unicode"
)

// RoleAdmin marks a principal allowed into the admin console.
const RoleAdmin = "ROLE_ADMIN"

// User is the authenticated principal. The session probe (GET /auth/user)
// returns only username and roles, so ID may be zero.
type User struct {
	ID       int64    `json:"id,omitempty"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

func (u *User) HasRole(role string) bool {
	if u == nil {
		return false
	}
	return slices.Contains(u.Roles, role)
}

func (u *User) IsAdmin() bool { return u.HasRole(RoleAdmin) }

// Initial is the upper-cased first letter of the username, for the avatar badge.
func (u *User) Initial() string {
	if u == nil || u.Username == "" {
		return ""
	}
	r := []rune(u.Username)
	return string(unicode.ToUpper(r[0]))
}

// AuthResponse is the envelope of every /auth endpoint.
type AuthResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	User     *User  `json:"user,omitempty"`
	UserID   int64  `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
}

func (r *AuthResponse) OK() bool { return r != nil && r.Status == "success" }

// ErrorResponse is the backend's error body.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// LikeStatus is the body of the like toggle and like status endpoints.
type LikeStatus struct {
	Liked bool `json:"liked"`
}
