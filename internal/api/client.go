// Package api is the HTTP client for the external auth API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mkolodiy/go-auth-shell/internal"
)

const defaultTimeout = 10 * time.Second

type User struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// Session is what the auth API returns after a successful login or signup.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

// ErrorResponse is the error body of the auth API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Error is returned for every non-2xx answer of the auth API.
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("auth api: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("auth api: %d %s", e.StatusCode, e.Code)
}

// StatusCode returns the HTTP status of err when it is an *Error, 0 otherwise.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.http = c
	}
}

// WithTimeout bounds every call with a context deadline, so a slow API
// fails with context.DeadlineExceeded. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		client.timeout = d
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) CreateLogin(ctx context.Context, data internal.LoginData) (Session, error) {
	var session Session
	err := c.post(ctx, "/auth/login", data, &session)
	return session, err
}

func (c *Client) CreateSignup(ctx context.Context, data internal.SignupData) (Session, error) {
	var session Session
	err := c.post(ctx, "/auth/signup", data, &session)
	return session, err
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return decodeError(res)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func decodeError(res *http.Response) error {
	apiErr := &Error{StatusCode: res.StatusCode, Code: http.StatusText(res.StatusCode)}

	body, err := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	if err != nil || len(body) == 0 {
		return apiErr
	}
	var errRes ErrorResponse
	if json.Unmarshal(body, &errRes) != nil {
		return apiErr
	}
	if errRes.Error != "" {
		apiErr.Code = errRes.Error
	}
	apiErr.Message = errRes.Message
	return apiErr
}
