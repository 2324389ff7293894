// Package portfolio tests document the expected behavior of the portfolio client.
//
// Test requirements (this file serves as documentation):
// - Client looks up the top cursor for a category, with or without filter
// - Client pages portfolios below a cursor, all or by filter
// - Client searches by keyword with page and size
// - Client fetches a single portfolio's details
// - Client sends request ids and honors the rate limiter
package portfolio

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func writeData(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
}

func TestNewClient(t *testing.T) {
	client := NewClient()

	if client == nil {
		t.Fatal("client should not be nil")
	}
	if client.pageSize != DefaultPageSize {
		t.Errorf("expected default page size %d, got %d", DefaultPageSize, client.pageSize)
	}
}

func TestClient_FetchTopCursor_AllCategoriesOmitsFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/portfolios/last-id" {
			t.Errorf("expected /api/portfolios/last-id, got %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("category"); got != "Develop" {
			t.Errorf("expected category Develop, got %q", got)
		}
		if r.URL.Query().Has("filter") {
			t.Errorf("filter should be omitted for All, got %q", r.URL.Query().Get("filter"))
		}
		writeData(w, 42)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	cursor, err := client.FetchTopCursor(context.Background(), CategoryDevelop, FilterAll)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cursor != 42 {
		t.Errorf("expected cursor 42, got %d", cursor)
	}
}

func TestClient_FetchTopCursor_SendsFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("filter"); got != "UI/UX" {
			t.Errorf("expected filter UI/UX, got %q", got)
		}
		writeData(w, 7)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	cursor, err := client.FetchTopCursor(context.Background(), CategoryDesign, "UI/UX")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cursor != 7 {
		t.Errorf("expected cursor 7, got %d", cursor)
	}
}

func TestClient_FetchTopCursor_CoalescesConcurrentLookups(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		writeData(w, 99)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	var wg sync.WaitGroup
	results := make([]int64, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = client.FetchTopCursor(context.Background(), CategoryAll, "")
		}(i)
	}

	// Give every goroutine time to join the in-flight lookup.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("expected 1 request for identical lookups, got %d", calls.Load())
	}
	for i, r := range results {
		if r != 99 {
			t.Errorf("caller %d: expected 99, got %d", i, r)
		}
	}
}

func TestClient_FetchAllPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/portfolios" {
			t.Errorf("expected /api/portfolios, got %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("lastId") != "25" || q.Get("category") != "All" || q.Get("size") != "10" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID header")
		}
		writeData(w, []map[string]interface{}{
			{"id": 25, "title": "Portfolio 25", "nickname": "jane", "category": "Develop", "filter": "Backend",
				"thumbnailUrl": "https://example.com/25.png", "views": 10, "likes": 3, "createdAt": "2024-03-01T10:00:00"},
			{"id": 24, "title": "Portfolio 24", "nickname": "kim", "category": "Design", "createdAt": "2024-03-01T09:00:00Z"},
		})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	items, err := client.FetchAllPage(context.Background(), 25, CategoryAll)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	first := items[0]
	if first.ID != 25 || first.Title != "Portfolio 25" || first.Nickname != "jane" {
		t.Errorf("unexpected first item: %+v", first)
	}
	if first.Category != CategoryDevelop || first.Filter != "Backend" {
		t.Errorf("expected Develop/Backend, got %s/%s", first.Category, first.Filter)
	}
	if first.ThumbnailURL != "https://example.com/25.png" || first.Views != 10 || first.Likes != 3 {
		t.Errorf("unexpected display fields: %+v", first)
	}
	if first.CreatedAt.IsZero() || items[1].CreatedAt.IsZero() {
		t.Error("expected both created_at formats to parse")
	}
}

func TestClient_FetchFilteredPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/portfolios/filter" {
			t.Errorf("expected /api/portfolios/filter, got %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("lastId") != "15" || q.Get("category") != "Develop" || q.Get("filter") != "Frontend" || q.Get("size") != "5" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		writeData(w, []map[string]interface{}{{"id": 14, "title": "Frontend work"}})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithPageSize(5))
	items, err := client.FetchFilteredPage(context.Background(), 15, CategoryDevelop, "Frontend")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ID != 14 {
		t.Errorf("expected item 14, got %+v", items)
	}
}

func TestClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/portfolios/search" {
			t.Errorf("expected /api/portfolios/search, got %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("keyword") != "react native" || q.Get("page") != "2" || q.Get("size") != "12" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		writeData(w, map[string]interface{}{
			"content":       []map[string]interface{}{{"id": 3, "title": "RN app"}},
			"page":          2,
			"size":          12,
			"totalPages":    3,
			"totalElements": 25,
		})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	page, err := client.Search(context.Background(), "react native", 2, 0)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Title != "RN app" {
		t.Errorf("unexpected items: %+v", page.Items)
	}
	if page.TotalPages != 3 || page.TotalElements != 25 || page.Page != 2 {
		t.Errorf("unexpected paging: %+v", page)
	}
}

func TestClient_FetchDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/portfolios/31" {
			t.Errorf("expected /api/portfolios/31, got %q", r.URL.Path)
		}
		writeData(w, map[string]interface{}{
			"id":           31,
			"title":        "Wedding shots",
			"category":     "Photographer",
			"filter":       "Wedding",
			"userId":       8,
			"introduction": "Ten years behind the lens.",
			"skills":       []string{"Lightroom"},
		})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	detail, err := client.FetchDetail(context.Background(), 31)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.ID != 31 || detail.UserID != 8 || detail.Introduction != "Ten years behind the lens." {
		t.Errorf("unexpected detail: %+v", detail)
	}
	if len(detail.Skills) != 1 || detail.Links == nil {
		t.Errorf("expected skills and non-nil links, got %+v / %+v", detail.Skills, detail.Links)
	}
}

func TestClient_RateLimiterCanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeData(w, 1)
	}))
	defer server.Close()

	// Burst of one, already consumed: the next Wait must block past the deadline.
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	limiter.Allow()

	client := NewClient(WithBaseURL(server.URL), WithRateLimiter(limiter))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.FetchTopCursor(ctx, CategoryAll, "")
	if err == nil {
		t.Fatal("expected limiter wait to fail")
	}
	if !IsTransport(err) {
		t.Errorf("limiter failure should be a transport error, got %T", err)
	}
}

func TestCategory_Filters(t *testing.T) {
	for _, c := range Categories() {
		filters := c.Filters()
		if len(filters) == 0 || filters[0] != FilterAll {
			t.Errorf("%s: filters should start with All, got %v", c, filters)
		}
	}
	if len(CategoryAll.Filters()) != 1 {
		t.Errorf("All category should only offer the All filter, got %v", CategoryAll.Filters())
	}
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("design")
	if err != nil || c != CategoryDesign {
		t.Errorf("expected Design, got %q (%v)", c, err)
	}
	if _, err := ParseCategory("music"); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestCategory_ResolveFilter(t *testing.T) {
	f, ok := CategoryDesign.ResolveFilter("ui/ux")
	if !ok || f != "UI/UX" {
		t.Errorf("expected UI/UX, got %q (%v)", f, ok)
	}
	if _, ok := CategoryDevelop.ResolveFilter("Wedding"); ok {
		t.Error("Wedding is not a Develop filter")
	}
}
