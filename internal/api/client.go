// Package api is the HTTP client of the news backend's REST API.
// A Client carries one visitor's cookie jar, so the backend session cookie
// issued at login is attached to every later call.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const dialTimeout = 10 * time.Second

// DefaultTimeout bounds a whole request when the caller passes zero.
const DefaultTimeout = 10 * time.Second

var netDialer = &net.Dialer{
	Timeout: dialTimeout,
}

// sharedTransport pools backend connections across all visitors' clients.
var sharedTransport = &http.Transport{
	DialContext:         netDialer.DialContext,
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 20,
	IdleConnTimeout:     90 * time.Second,
}

// loginPath answers 401 for a wrong password; that is not a lost session.
const loginPath = "/auth/login"

type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger

	onUnauthorized func()
}

// NewClient returns a client for the API rooted at baseURL
// (e.g. http://localhost:8080/api). jar may be nil for anonymous use.
func NewClient(baseURL string, jar http.CookieJar, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: sharedTransport,
			Jar:       jar,
			Timeout:   timeout,
		},
		log: log,
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// OnUnauthorized registers fn to run whenever the backend answers 401,
// i.e. the backend session is gone. fn may be called concurrently.
func (c *Client) OnUnauthorized(fn func()) { c.onUnauthorized = fn }

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &Error{Kind: KindOther, Msg: "error marshalling request", Err: errors.WithStack(err)}
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, out)
}

func (c *Client) doForm(ctx context.Context, path string, form url.Values, out any) error {
	return c.do(ctx, http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Kind: KindOther, Msg: "error building request", Err: errors.WithStack(err)}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return &Error{Kind: KindTransport, Msg: "error sending request", Err: errors.Wrapf(err, "%s %s", method, path)}
	}
	defer resp.Body.Close()

	c.log.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode >= 400 {
		errorBody, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusUnauthorized && path != loginPath && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return HandleApiError(resp, errorBody)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &Error{Kind: KindOther, Status: resp.StatusCode, Msg: "error decoding response", Err: errors.Wrapf(err, "%s %s", method, path)}
	}
	return nil
}
