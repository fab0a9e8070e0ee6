// Package identity is the gateway's client for the identity backend: token
// verify/refresh, profile lookup, login and registration. It holds no state
// beyond its configuration.
package identity

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/joeydtaylor/steeze-session/pkg/codec"
	"github.com/joeydtaylor/steeze-session/pkg/session"
)

const (
	verifyPath   = "token/verify/"
	refreshPath  = "token/refresh/"
	profilePath  = "user/profile/"
	loginPath    = "login/"
	registerPath = "register/"

	// error bodies are kept for diagnostics only
	maxErrorBody = 4 << 10
)

// Tokens is the login/refresh answer. Refresh is empty when the backend
// does not rotate refresh tokens.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Registration is the body of a register call.
type Registration struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

type Client struct {
	httpClient HTTPDoer
	baseURL    string
	timeout    time.Duration
	codec      codec.Codec
}

// New returns a client for the backend at baseURL (for example
// "http://backend:8000/api"). timeout bounds each call; zero leaves it to
// the caller's context.
func New(baseURL string, hc HTTPDoer, timeout time.Duration) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient: hc,
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		codec:      codec.JSON,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// Verify succeeds iff the backend accepts token.
func (c *Client) Verify(ctx context.Context, token string) error {
	return c.send(ctx, http.MethodPost, verifyPath, map[string]string{"token": token}, "", nil)
}

// Refresh exchanges a refresh token for a new access token. Every failure
// wraps ErrRefreshDenied as well as the underlying cause.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	var out Tokens
	if err := c.send(ctx, http.MethodPost, refreshPath, map[string]string{"refresh": refreshToken}, "", &out); err != nil {
		return Tokens{}, fmt.Errorf("%w: %w", ErrRefreshDenied, err)
	}
	if out.Access == "" {
		return Tokens{}, fmt.Errorf("%w: response carried no access token", ErrRefreshDenied)
	}
	return out, nil
}

// Profile fetches the user record for an access token.
func (c *Client) Profile(ctx context.Context, accessToken string) (session.Profile, error) {
	var p session.Profile
	if err := c.send(ctx, http.MethodGet, profilePath, nil, accessToken, &p); err != nil {
		return session.Profile{}, err
	}
	return p, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (Tokens, error) {
	var out Tokens
	body := map[string]string{"username": username, "password": password}
	if err := c.send(ctx, http.MethodPost, loginPath, body, "", &out); err != nil {
		return Tokens{}, err
	}
	if out.Access == "" {
		return Tokens{}, fmt.Errorf("%w: login response carried no access token", ErrUpstreamUnavailable)
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, reg Registration) error {
	return c.send(ctx, http.MethodPost, registerPath, reg, "", nil)
}

func (c *Client) send(ctx context.Context, method, path string, in any, token string, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		b, err := c.codec.Marshal(in)
		if err != nil {
			return fmt.Errorf("identity %s: encode: %w", path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, body)
	if err != nil {
		return fmt.Errorf("identity %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", c.codec.ContentType())
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if rid := chimd.GetReqID(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUpstreamUnavailable, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return &StatusError{Op: path, Status: res.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: read: %w", ErrUpstreamUnavailable, path, err)
	}
	if out == nil {
		return nil
	}
	if err := c.codec.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUpstreamUnavailable, path, err)
	}
	return nil
}
