package api

import (
	"context"
	"net/http"
	"net/url"

	"Inshorts/internal/models"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Register(ctx context.Context, username, email, password string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	in := registerRequest{Username: username, Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login posts form-encoded credentials; the backend answers with a session
// cookie that the client's jar keeps.
func (c *Client) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var resp models.AuthResponse
	if err := c.doForm(ctx, loginPath, form, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// CurrentUser is the session probe. An anonymous caller gets a
// KindAuthentication error.
func (c *Client) CurrentUser(ctx context.Context) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/auth/user", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
