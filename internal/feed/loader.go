// Package feed keeps the list of portfolios shown for a category and filter
// selection, and grows it page by page as the reader reaches the end.
package feed

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/gauthierbraillon/folio/internal/portfolio"
)

var (
	// ErrSuperseded is returned when a newer selection replaced the one a
	// response belonged to. Its data was discarded.
	ErrSuperseded = errors.New("feed selection superseded")

	ErrUnknownFilter = errors.New("unknown filter for category")
)

// Service is the portfolio query surface the loader pages through.
type Service interface {
	FetchTopCursor(ctx context.Context, category portfolio.Category, filter string) (int64, error)
	FetchAllPage(ctx context.Context, lastID int64, category portfolio.Category) ([]portfolio.Summary, error)
	FetchFilteredPage(ctx context.Context, lastID int64, category portfolio.Category, filter string) ([]portfolio.Summary, error)
}

// Phase is the loader's position in its state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoadingInitial
	PhaseLoadingMore
	PhaseExhausted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoadingInitial:
		return "loading-initial"
	case PhaseLoadingMore:
		return "loading-more"
	case PhaseExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is a point-in-time copy of the feed.
type State struct {
	Items    []portfolio.Summary
	Cursor   int64
	Category portfolio.Category
	Filter   string

	LoadingInitial bool
	LoadingMore    bool
	Exhausted      bool
}

// Phase derives the state machine position from the flags.
func (s State) Phase() Phase {
	switch {
	case s.LoadingInitial:
		return PhaseLoadingInitial
	case s.LoadingMore:
		return PhaseLoadingMore
	case s.Exhausted:
		return PhaseExhausted
	default:
		return PhaseIdle
	}
}

// Option configures a Loader.
type Option func(*Loader)

// WithPageSize sets how far the cursor moves per page.
func WithPageSize(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.pageSize = int64(n)
		}
	}
}

// WithLogger sets the logger used for fetch failures and discarded pages.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// Loader owns one feed. Its methods are safe for concurrent use.
type Loader struct {
	svc      Service
	pageSize int64
	logger   *zap.Logger

	mu    sync.Mutex
	state State
	// generation identifies the current selection; bumped by every select.
	generation uint64
}

// NewLoader creates a loader with the All category selected and no items.
// Nothing is fetched until SelectCategory is called.
func NewLoader(svc Service, opts ...Option) *Loader {
	l := &Loader{
		svc:      svc,
		pageSize: portfolio.DefaultPageSize,
		logger:   zap.NewNop(),
		state: State{
			Items:    []portfolio.Summary{},
			Category: portfolio.CategoryAll,
			Filter:   portfolio.FilterAll,
		},
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// PageSize returns the configured page size.
func (l *Loader) PageSize() int {
	return int(l.pageSize)
}

// Snapshot returns a copy of the current state.
func (l *Loader) Snapshot() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.state
	s.Items = slices.Clone(l.state.Items)
	return s
}

// SelectCategory switches to category with the All filter, replacing the
// items with the first page of the new selection.
func (l *Loader) SelectCategory(ctx context.Context, category portfolio.Category) error {
	return l.Select(ctx, category, portfolio.FilterAll)
}

// SelectFilter switches the filter within the current category. FilterAll
// re-runs the whole-category fetch.
func (l *Loader) SelectFilter(ctx context.Context, filter string) error {
	return l.selectFeed(ctx, func(current State) (portfolio.Category, string, error) {
		return resolve(current.Category, filter)
	})
}

// Select switches category and filter in one step. An empty filter means
// FilterAll.
func (l *Loader) Select(ctx context.Context, category portfolio.Category, filter string) error {
	return l.selectFeed(ctx, func(State) (portfolio.Category, string, error) {
		return resolve(category, filter)
	})
}

// Reload fetches the current selection again from the top.
func (l *Loader) Reload(ctx context.Context) error {
	return l.selectFeed(ctx, func(current State) (portfolio.Category, string, error) {
		return current.Category, current.Filter, nil
	})
}

func resolve(category portfolio.Category, filter string) (portfolio.Category, string, error) {
	if !category.Valid() {
		return "", "", fmt.Errorf("%w: %q", portfolio.ErrUnknownCategory, category)
	}
	if filter == "" {
		filter = portfolio.FilterAll
	}
	resolved, ok := category.ResolveFilter(filter)
	if !ok {
		return "", "", fmt.Errorf("%w: %q in %s", ErrUnknownFilter, filter, category)
	}
	return category, resolved, nil
}

// selectFeed starts a new selection. target picks it from the state at the
// moment the generation is bumped, so it always sees the latest selection.
func (l *Loader) selectFeed(ctx context.Context, target func(current State) (portfolio.Category, string, error)) error {
	l.mu.Lock()
	category, filter, err := target(l.state)
	if err != nil {
		l.mu.Unlock()
		return err
	}
	l.generation++
	gen := l.generation
	previous := l.state
	l.state = State{
		Items:          []portfolio.Summary{},
		Category:       category,
		Filter:         filter,
		LoadingInitial: true,
	}
	l.mu.Unlock()

	items, top, err := l.fetchFirstPage(ctx, category, filter)

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.generation {
		l.logger.Debug("discarding superseded first page",
			zap.String("category", string(category)),
			zap.String("filter", filter))
		return ErrSuperseded
	}

	if err != nil {
		// Put back the last consistent list so the view keeps something coherent to show.
		previous.LoadingInitial = false
		previous.LoadingMore = false
		l.state = previous
		l.logger.Warn("feed selection failed",
			zap.String("category", string(category)),
			zap.String("filter", filter),
			zap.Bool("transport", portfolio.IsTransport(err)),
			zap.Error(err))
		return fmt.Errorf("load %s/%s: %w", category, filter, err)
	}

	l.state.Items = items
	l.state.Cursor = top - l.pageSize
	l.state.Exhausted = top <= 0 || l.exhausted(l.state.Cursor, len(items))
	l.state.LoadingInitial = false
	return nil
}

func (l *Loader) fetchFirstPage(ctx context.Context, category portfolio.Category, filter string) ([]portfolio.Summary, int64, error) {
	lookupFilter := filter
	if filter == portfolio.FilterAll {
		lookupFilter = ""
	}

	top, err := l.svc.FetchTopCursor(ctx, category, lookupFilter)
	if err != nil {
		return nil, 0, err
	}
	if top <= 0 {
		return []portfolio.Summary{}, top, nil
	}

	items, err := l.fetchPage(ctx, top, category, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, top, nil
}

// LoadMore appends the next page and returns how many items were added.
// It does nothing while another load is in flight or once the feed is
// exhausted.
func (l *Loader) LoadMore(ctx context.Context) (int, error) {
	l.mu.Lock()
	s := &l.state
	if s.LoadingInitial || s.LoadingMore || s.Exhausted {
		l.mu.Unlock()
		return 0, nil
	}
	if s.Cursor-l.pageSize <= 0 {
		s.Exhausted = true
		l.mu.Unlock()
		return 0, nil
	}
	s.LoadingMore = true
	gen := l.generation
	lastID, category, filter := s.Cursor, s.Category, s.Filter
	l.mu.Unlock()

	items, err := l.fetchPage(ctx, lastID, category, filter)

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.generation {
		l.logger.Debug("discarding superseded page",
			zap.String("category", string(category)),
			zap.String("filter", filter),
			zap.Int64("last_id", lastID))
		return 0, ErrSuperseded
	}

	l.state.LoadingMore = false
	if err != nil {
		l.logger.Warn("load more failed",
			zap.String("category", string(category)),
			zap.String("filter", filter),
			zap.Int64("last_id", lastID),
			zap.Bool("transport", portfolio.IsTransport(err)),
			zap.Error(err))
		return 0, fmt.Errorf("load more below %d: %w", lastID, err)
	}

	l.state.Items = append(l.state.Items, items...)
	l.state.Cursor -= l.pageSize
	l.state.Exhausted = l.exhausted(l.state.Cursor, len(items))
	return len(items), nil
}

func (l *Loader) fetchPage(ctx context.Context, lastID int64, category portfolio.Category, filter string) ([]portfolio.Summary, error) {
	if filter == portfolio.FilterAll {
		return l.svc.FetchAllPage(ctx, lastID, category)
	}
	return l.svc.FetchFilteredPage(ctx, lastID, category, filter)
}

// exhausted reports whether no further page can be requested: the cursor
// cannot move down a full page, or the last page came back short.
func (l *Loader) exhausted(cursor int64, got int) bool {
	return cursor-l.pageSize <= 0 || int64(got) < l.pageSize
}
