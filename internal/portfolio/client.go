package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "http://localhost:8080"

	// DefaultPageSize is the number of portfolios per feed page.
	DefaultPageSize = 10

	// DefaultSearchPageSize is the number of portfolios per search page.
	DefaultSearchPageSize = 12
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

// WithPageSize sets the size query parameter sent with feed page requests.
func WithPageSize(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
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

// Client is a portfolio API client.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	limiter    *rate.Limiter
	logger     *zap.Logger
	pageSize   int

	cursors singleflight.Group
}

// NewClient creates a new portfolio API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
		pageSize:   DefaultPageSize,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchTopCursor returns the highest portfolio id for the category. An empty
// filter or FilterAll asks for the id across the whole category.
func (c *Client) FetchTopCursor(ctx context.Context, category Category, filter string) (int64, error) {
	query := url.Values{}
	query.Set("category", string(category))
	if filter != "" && filter != FilterAll {
		query.Set("filter", filter)
	}

	// Identical lookups in flight at the same time share one request.
	v, err, _ := c.cursors.Do(query.Encode(), func() (interface{}, error) {
		var resp envelope[int64]
		if err := c.getJSON(ctx, "fetch top cursor", "/api/portfolios/last-id", query, &resp); err != nil {
			return int64(0), err
		}
		return resp.Data, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// FetchAllPage returns up to one page of portfolios with ids below lastID.
func (c *Client) FetchAllPage(ctx context.Context, lastID int64, category Category) ([]Summary, error) {
	query := url.Values{}
	query.Set("lastId", strconv.FormatInt(lastID, 10))
	query.Set("category", string(category))
	query.Set("size", strconv.Itoa(c.pageSize))

	var resp envelope[[]summaryResponse]
	if err := c.getJSON(ctx, "fetch portfolios", "/api/portfolios", query, &resp); err != nil {
		return nil, err
	}
	return toSummaries(resp.Data), nil
}

// FetchFilteredPage is FetchAllPage additionally constrained by a filter tag.
func (c *Client) FetchFilteredPage(ctx context.Context, lastID int64, category Category, filter string) ([]Summary, error) {
	query := url.Values{}
	query.Set("lastId", strconv.FormatInt(lastID, 10))
	query.Set("category", string(category))
	query.Set("filter", filter)
	query.Set("size", strconv.Itoa(c.pageSize))

	var resp envelope[[]summaryResponse]
	if err := c.getJSON(ctx, "fetch filtered portfolios", "/api/portfolios/filter", query, &resp); err != nil {
		return nil, err
	}
	return toSummaries(resp.Data), nil
}

// Search returns one page of portfolios matching keyword. Pages start at 0.
func (c *Client) Search(ctx context.Context, keyword string, page, size int) (*SearchPage, error) {
	if size <= 0 {
		size = DefaultSearchPageSize
	}
	query := url.Values{}
	query.Set("keyword", keyword)
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))

	var resp envelope[searchResponse]
	if err := c.getJSON(ctx, "search portfolios", "/api/portfolios/search", query, &resp); err != nil {
		return nil, err
	}

	return &SearchPage{
		Items:         toSummaries(resp.Data.Content),
		Page:          resp.Data.Page,
		Size:          resp.Data.Size,
		TotalPages:    resp.Data.TotalPages,
		TotalElements: resp.Data.TotalElements,
	}, nil
}

// FetchDetail returns a single portfolio.
func (c *Client) FetchDetail(ctx context.Context, id int64) (*Detail, error) {
	var resp envelope[detailResponse]
	path := "/api/portfolios/" + strconv.FormatInt(id, 10)
	if err := c.getJSON(ctx, "fetch portfolio", path, nil, &resp); err != nil {
		return nil, err
	}

	d := resp.Data
	return &Detail{
		Summary:      d.summaryResponse.toSummary(),
		UserID:       d.UserID,
		Introduction: d.Introduction,
		Skills:       nonNil(d.Skills),
		Links:        nonNil(d.Links),
	}, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values, out any) error {
	body, err := c.doRequest(ctx, op, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, op, path string, query url.Values) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Op: op, Err: err}
		}
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("portfolio request",
		zap.String("op", op),
		zap.String("url", u),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServerError{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	return body, nil
}

// errorMessage extracts the backend's message field from an error body.
func errorMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	return e.Message
}

// IsTransport reports whether err came from the network rather than the server.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// API response types (private - implementation detail)

type envelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message"`
}

type summaryResponse struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Nickname     string `json:"nickname"`
	Category     string `json:"category"`
	Filter       string `json:"filter"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Views        int64  `json:"views"`
	Likes        int64  `json:"likes"`
	CreatedAt    string `json:"createdAt"`
}

type detailResponse struct {
	summaryResponse
	UserID       int64    `json:"userId"`
	Introduction string   `json:"introduction"`
	Skills       []string `json:"skills"`
	Links        []string `json:"links"`
}

type searchResponse struct {
	Content       []summaryResponse `json:"content"`
	Page          int               `json:"page"`
	Size          int               `json:"size"`
	TotalPages    int               `json:"totalPages"`
	TotalElements int64             `json:"totalElements"`
}

func (r summaryResponse) toSummary() Summary {
	return Summary{
		ID:           r.ID,
		Title:        r.Title,
		Nickname:     r.Nickname,
		Category:     Category(r.Category),
		Filter:       r.Filter,
		ThumbnailURL: r.ThumbnailURL,
		Views:        r.Views,
		Likes:        r.Likes,
		CreatedAt:    parseCreatedAt(r.CreatedAt),
	}
}

func toSummaries(items []summaryResponse) []Summary {
	out := make([]Summary, 0, len(items))
	for _, item := range items {
		out = append(out, item.toSummary())
	}
	return out
}

// parseCreatedAt accepts RFC 3339 and the zone-less local timestamps the
// backend emits for LocalDateTime fields.
func parseCreatedAt(s string) time.Time {
	formats := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		time.DateTime,
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
