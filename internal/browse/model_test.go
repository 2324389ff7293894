package browse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gauthierbraillon/folio/internal/feed"
	"github.com/gauthierbraillon/folio/internal/portfolio"
)

type fakeFeed struct {
	mu    sync.Mutex
	state feed.State
	calls []string
	err   error
	size  int
}

func newFakeFeed(size int) *fakeFeed {
	return &fakeFeed{
		state: feed.State{Category: portfolio.CategoryAll, Filter: portfolio.FilterAll, Items: items(size)},
		size:  size,
	}
}

func items(n int) []portfolio.Summary {
	out := make([]portfolio.Summary, n)
	for i := range out {
		out[i] = portfolio.Summary{ID: int64(n - i), Title: fmt.Sprintf("Portfolio %d", n-i), Nickname: "gopher"}
	}
	return out
}

func (f *fakeFeed) Snapshot() feed.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.state
	s.Items = append([]portfolio.Summary(nil), f.state.Items...)
	return s
}

func (f *fakeFeed) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeFeed) Select(_ context.Context, c portfolio.Category, filter string) error {
	if err := f.record("select:" + string(c) + "/" + filter); err != nil {
		return err
	}
	f.mu.Lock()
	f.state = feed.State{Category: c, Filter: filter, Items: items(f.size)}
	f.mu.Unlock()
	return nil
}

func (f *fakeFeed) Reload(context.Context) error {
	return f.record("reload")
}

func (f *fakeFeed) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// started returns a model whose initial load has completed, with a list
// window of height rows.
func started(t *testing.T, f *fakeFeed, height int, opts ...Option) (Model, chan struct{}) {
	t.Helper()
	visible := make(chan struct{}, 1)
	m := New(context.Background(), f, visible, opts...)
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: height + chromeHeight})
	m = update(t, m, selectionDoneMsg{})
	drain(visible)
	return m, visible
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

// press sends a key and runs the command it returns, if any.
func press(t *testing.T, m Model, k tea.KeyMsg) (Model, tea.Msg) {
	t.Helper()
	next, cmd := m.Update(k)
	out := next.(Model)
	if cmd == nil {
		return out, nil
	}
	return out, cmd()
}

func drain(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_InitialLoadShowsItems(t *testing.T) {
	f := newFakeFeed(30)
	m, _ := started(t, f, 10)

	view := m.View()
	assert.Contains(t, view, "Portfolio 30")
	assert.NotContains(t, view, "Loading portfolios")
}

func TestModel_ShowsSpinnerWhileLoadingInitial(t *testing.T) {
	f := newFakeFeed(30)
	m := New(context.Background(), f, make(chan struct{}, 1))

	assert.Contains(t, m.View(), "Loading portfolios")
}

func TestModel_EmptyState(t *testing.T) {
	f := newFakeFeed(0)
	m, _ := started(t, f, 10)

	assert.Contains(t, m.View(), "No portfolios found.")
}

func TestModel_TabSelectsNextCategory(t *testing.T) {
	f := newFakeFeed(30)
	m, _ := started(t, f, 10)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Equal(t, portfolio.CategoryDevelop, m.state.Category)
	assert.True(t, m.state.LoadingInitial)

	m = update(t, m, cmd())
	assert.Equal(t, []string{"select:Develop/All"}, f.recorded())
	assert.False(t, m.state.LoadingInitial)
	assert.Contains(t, m.View(), "Frontend")
}

func TestModel_ShiftTabWrapsToLastCategory(t *testing.T) {
	f := newFakeFeed(30)
	m, _ := started(t, f, 10)

	m, msg := press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	update(t, m, msg)

	assert.Equal(t, []string{"select:Photographer/All"}, f.recorded())
}

func TestModel_FilterBarHiddenForAll(t *testing.T) {
	f := newFakeFeed(30)
	m, _ := started(t, f, 10)

	assert.NotContains(t, m.View(), "Frontend")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Nil(t, cmd, "filter keys do nothing for the All category")
	assert.Equal(t, portfolio.FilterAll, next.(Model).state.Filter)
}

func TestModel_ArrowsCycleFilters(t *testing.T) {
	f := newFakeFeed(30)
	m, _ := started(t, f, 10)
	m, msg := press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = update(t, m, msg)

	m, msg = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = update(t, m, msg)
	assert.Equal(t, "Frontend", m.state.Filter)

	m, msg = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m = update(t, m, msg)
	m, msg = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	update(t, m, msg)

	assert.Equal(t, []string{
		"select:Develop/All",
		"select:Develop/Frontend",
		"select:Develop/All",
		"select:Develop/Data",
	}, f.recorded())
}

func TestModel_ScrollingNearEndSignalsSentinel(t *testing.T) {
	f := newFakeFeed(30)
	m, visible := started(t, f, 10)

	for i := 0; i < 26; i++ {
		m = update(t, m, runes("j"))
	}
	assert.False(t, drain(visible), "no signal while the end is far away")

	m = update(t, m, runes("j"))
	assert.Equal(t, 27, m.cursor)
	assert.True(t, drain(visible), "selection within reach of the end signals")
}

func TestModel_ShortListSignalsImmediately(t *testing.T) {
	f := newFakeFeed(5)
	visible := make(chan struct{}, 1)
	m := New(context.Background(), f, visible)
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 10 + chromeHeight})

	update(t, m, selectionDoneMsg{})

	assert.True(t, drain(visible), "a list shorter than the window shows its end")
}

func TestModel_ExhaustedNeverSignals(t *testing.T) {
	f := newFakeFeed(5)
	f.state.Exhausted = true
	m, visible := started(t, f, 10)

	for i := 0; i < 5; i++ {
		m = update(t, m, runes("j"))
	}

	assert.False(t, drain(visible))
	assert.Contains(t, m.View(), "end of list")
}

func TestModel_PageErrorStopsSignalsUntilRetry(t *testing.T) {
	f := newFakeFeed(5)
	m, visible := started(t, f, 10)

	m = update(t, m, pageLoadedMsg{err: errors.New("portfolio API unreachable")})
	m = update(t, m, runes("j"))
	assert.False(t, drain(visible))
	assert.Contains(t, m.View(), "r to retry")

	m = update(t, m, runes("r"))
	assert.True(t, drain(visible), "retry signals the sentinel again")
	assert.NotContains(t, m.View(), "Error")
}

func TestModel_SelectionErrorRetryReloads(t *testing.T) {
	f := newFakeFeed(5)
	m, _ := started(t, f, 10)
	f.err = errors.New("server error")

	m, msg := press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = update(t, m, msg)
	assert.Contains(t, m.View(), "server error")

	f.err = nil
	_, msg = press(t, m, runes("r"))
	require.NotNil(t, msg)
	assert.Equal(t, "reload", f.recorded()[len(f.recorded())-1])
}

func TestModel_SupersededSelectionIsIgnored(t *testing.T) {
	f := newFakeFeed(5)
	m, _ := started(t, f, 10)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})

	m = update(t, m, selectionDoneMsg{err: feed.ErrSuperseded})

	assert.Nil(t, m.err)
	assert.NotContains(t, m.View(), "Error")
}

func TestModel_SupersededSelectionReissuesLatest(t *testing.T) {
	f := newFakeFeed(5)
	m, _ := started(t, f, 10)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)

	next, cmd := m.Update(selectionDoneMsg{err: feed.ErrSuperseded})
	m = next.(Model)
	require.NotNil(t, cmd, "the feed never reached Develop, so it is selected again")
	assert.True(t, m.state.LoadingInitial)

	m = update(t, m, cmd())
	assert.Equal(t, []string{"select:Develop/All"}, f.recorded())
	assert.Equal(t, portfolio.CategoryDevelop, m.state.Category)
	assert.False(t, m.state.LoadingInitial)
	assert.Nil(t, m.err)
}

func TestModel_OpenUsesPortfolioURL(t *testing.T) {
	f := newFakeFeed(5)
	var opened string
	m, _ := started(t, f, 10,
		WithWebURL("https://folio.example.com"),
		WithOpener(func(url string) error {
			opened = url
			return nil
		}),
	)
	m = update(t, m, runes("j"))

	m, msg := press(t, m, runes("o"))
	m = update(t, m, msg)

	assert.Equal(t, "https://folio.example.com/portfolios/4", opened)
	assert.Contains(t, m.View(), "opened https://folio.example.com/portfolios/4")
}

func TestModel_Quit(t *testing.T) {
	f := newFakeFeed(5)
	m, _ := started(t, f, 10)

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestModel_ListWindowFollowsCursor(t *testing.T) {
	f := newFakeFeed(30)
	m, _ := started(t, f, 10)

	for i := 0; i < 12; i++ {
		m = update(t, m, runes("j"))
	}

	view := m.View()
	assert.Contains(t, view, "> #18 Portfolio 18")
	assert.NotContains(t, view, "Portfolio 30")
	assert.True(t, strings.Contains(view, "Portfolio 21"))
}
