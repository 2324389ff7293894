package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/gauthierbraillon/folio/internal/portfolio"
)

// pageCall records one page request made to fakeService.
type pageCall struct {
	LastID   int64
	Category portfolio.Category
	Filter   string
}

// fakeService serves dense ids 1..top per selection. A gate, when set for a
// selection, blocks its page requests until released.
type fakeService struct {
	mu      sync.Mutex
	tops    map[string]int64
	pageErr error
	topErr  error
	short   bool

	gates map[string]chan struct{}
	calls []pageCall
	// started receives one value per page request after it is recorded.
	started chan pageCall
}

func newFakeService() *fakeService {
	return &fakeService{
		tops:    map[string]int64{},
		gates:   map[string]chan struct{}{},
		started: make(chan pageCall, 64),
	}
}

func key(category portfolio.Category, filter string) string {
	if filter == "" {
		filter = portfolio.FilterAll
	}
	return string(category) + "/" + filter
}

func (f *fakeService) setTop(category portfolio.Category, filter string, top int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tops[key(category, filter)] = top
}

// gate makes page requests for the selection wait until the returned func is called.
func (f *fakeService) gate(category portfolio.Category, filter string) func() {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[key(category, filter)] = ch
	f.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (f *fakeService) setPageErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageErr = err
}

func (f *fakeService) pageCalls() []pageCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]pageCall(nil), f.calls...)
}

func (f *fakeService) FetchTopCursor(_ context.Context, category portfolio.Category, filter string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.topErr != nil {
		return 0, f.topErr
	}
	return f.tops[key(category, filter)], nil
}

func (f *fakeService) FetchAllPage(ctx context.Context, lastID int64, category portfolio.Category) ([]portfolio.Summary, error) {
	return f.page(ctx, lastID, category, portfolio.FilterAll)
}

func (f *fakeService) FetchFilteredPage(ctx context.Context, lastID int64, category portfolio.Category, filter string) ([]portfolio.Summary, error) {
	return f.page(ctx, lastID, category, filter)
}

func (f *fakeService) page(ctx context.Context, lastID int64, category portfolio.Category, filter string) ([]portfolio.Summary, error) {
	call := pageCall{LastID: lastID, Category: category, Filter: filter}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	gate := f.gates[key(category, filter)]
	f.mu.Unlock()

	f.started <- call

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pageErr != nil {
		return nil, f.pageErr
	}

	size := int64(10)
	if f.short {
		size = 3
	}
	items := make([]portfolio.Summary, 0, size)
	for id := lastID; id > lastID-size && id > 0; id-- {
		items = append(items, portfolio.Summary{
			ID:       id,
			Title:    fmt.Sprintf("%s #%d", key(category, filter), id),
			Category: category,
			Filter:   filter,
		})
	}
	return items, nil
}
