package users

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL sets a custom base URL (useful for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithAccessToken sets the value sent in the Authorization header of
// account-changing requests.
func WithAccessToken(token string) ClientOption {
	return func(c *Client) {
		c.accessToken = token
	}
}

// WithRateLimiter makes every request wait on limiter first.
func WithRateLimiter(limiter *rate.Limiter) ClientOption {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client is a users API client.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  HTTPClient
	limiter     *rate.Limiter
	logger      *zap.Logger
}

// NewClient creates a new users API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    "http://localhost:8080",
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Signup validates form and registers the account.
func (c *Client) Signup(ctx context.Context, form SignupForm) error {
	if err := ValidateSignup(form); err != nil {
		return err
	}

	payload, err := json.Marshal(signupRequest{Email: form.Email, Password: form.Password, Nickname: form.Nickname})
	if err != nil {
		return fmt.Errorf("failed to encode signup: %w", err)
	}

	_, err = c.do(ctx, request{
		op:          "signup",
		method:      http.MethodPost,
		path:        "/api/users/signup",
		body:        bytes.NewReader(payload),
		contentType: "application/json",
	})
	if errors.Is(err, ErrConflict) {
		return ErrEmailTaken
	}
	return err
}

// CheckEmail reports whether email is still free to sign up with.
func (c *Client) CheckEmail(ctx context.Context, email string) (bool, error) {
	q := url.Values{}
	q.Set("email", email)

	_, err := c.do(ctx, request{op: "check email", method: http.MethodGet, path: "/api/users/email-check", query: q})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrConflict):
		return false, nil
	default:
		return false, err
	}
}

// GetUser returns the profile of user id.
func (c *Client) GetUser(ctx context.Context, id int64) (*User, error) {
	const op = "get user"
	body, err := c.do(ctx, request{op: op, method: http.MethodGet, path: userPath(id)})
	if err != nil {
		return nil, err
	}

	var resp envelope[userResponse]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("failed to parse user response: %w", err)}
	}

	u := resp.Data
	return &User{
		ID:              u.ID,
		Email:           u.Email,
		Nickname:        u.Nickname,
		ProfileImageURL: u.ProfileImage,
		Introduction:    u.Introduction,
	}, nil
}

// UpdateUser sends a multipart profile update for user id.
func (c *Client) UpdateUser(ctx context.Context, id int64, upd UpdateRequest) error {
	if upd.Nickname == "" && upd.ProfileImage == nil {
		return errors.New("nothing to update: give a nickname or a profile image")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if upd.Nickname != "" {
		if err := mw.WriteField("nickname", upd.Nickname); err != nil {
			return fmt.Errorf("failed to encode nickname: %w", err)
		}
	}
	if upd.ProfileImage != nil {
		name := upd.ImageName
		if name == "" {
			name = "profile"
		}
		part, err := mw.CreateFormFile("profileImage", name)
		if err != nil {
			return fmt.Errorf("failed to encode profile image: %w", err)
		}
		if _, err := io.Copy(part, upd.ProfileImage); err != nil {
			return fmt.Errorf("failed to read profile image: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to encode update: %w", err)
	}

	_, err := c.do(ctx, request{
		op:          "update user",
		method:      http.MethodPatch,
		path:        userPath(id),
		body:        &buf,
		contentType: mw.FormDataContentType(),
		authorized:  true,
	})
	return err
}

// DeleteUser removes the account of user id.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	_, err := c.do(ctx, request{op: "delete user", method: http.MethodDelete, path: userPath(id), authorized: true})
	return err
}

// UpdatePassword changes the password of user id.
func (c *Client) UpdatePassword(ctx context.Context, id int64, change PasswordChange) error {
	if !validPassword(change.NewPassword) {
		return &ValidationError{Errors: map[string]string{
			"newPassword": "password must be at least 6 characters and contain both letters and numbers",
		}}
	}

	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to encode password change: %w", err)
	}

	_, err = c.do(ctx, request{
		op:          "update password",
		method:      http.MethodPut,
		path:        userPath(id) + "/password",
		body:        bytes.NewReader(payload),
		contentType: "application/json",
		authorized:  true,
	})
	return err
}

func userPath(id int64) string {
	return "/api/users/" + strconv.FormatInt(id, 10)
}

type request struct {
	op          string
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	authorized  bool
}

func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	if r.authorized && c.accessToken == "" {
		return nil, ErrNoAccessToken
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Op: r.op, Err: err}
		}
	}

	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, r.body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.authorized {
		req.Header.Set("Authorization", c.accessToken)
	}

	c.logger.Debug("users request",
		zap.String("method", r.method),
		zap.String("path", r.path),
		zap.String("request_id", requestID),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: r.op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: r.op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.handleAPIError(r.op, resp.StatusCode, body)
	}
	return body, nil
}

func (c *Client) handleAPIError(op string, statusCode int, body []byte) error {
	var e struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &e)
	c.logger.Debug("users API error",
		zap.String("op", op),
		zap.Int("status", statusCode),
		zap.String("message", e.Message),
	)
	return &ServerError{Op: op, StatusCode: statusCode, Message: e.Message}
}

// API response types (private - implementation detail)

type envelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message"`
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

type userResponse struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Nickname     string `json:"nickname"`
	ProfileImage string `json:"profileImage"`
	Introduction string `json:"introduction"`
}
