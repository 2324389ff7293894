// Package browse is the interactive terminal browser for the portfolio feed.
//
// The list is driven by a feed.Loader. Scrolling near the end of the list
// signals a feed.Sentinel, which loads the next page in the background and
// reports back to the program.
package browse

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gauthierbraillon/folio/internal/feed"
	"github.com/gauthierbraillon/folio/internal/portfolio"
	"github.com/gauthierbraillon/folio/pkg/browser"
)

const (
	// sentinelDistance is how close to the last row the selection must be
	// for the next page to be requested.
	sentinelDistance  = 3
	defaultListHeight = 15
	chromeHeight      = 7
	titleWidth        = 48
)

// Feed is the part of feed.Loader the browser drives.
type Feed interface {
	Snapshot() feed.State
	Select(ctx context.Context, category portfolio.Category, filter string) error
	Reload(ctx context.Context) error
}

type selectionDoneMsg struct{ err error }

type pageLoadedMsg struct {
	n   int
	err error
}

type openedMsg struct {
	url string
	err error
}

// Option configures the Model.
type Option func(*Model)

// WithWebURL sets the site the open key points the browser at.
func WithWebURL(webURL string) Option {
	return func(m *Model) {
		m.webURL = webURL
	}
}

// WithOpener replaces browser.Open.
func WithOpener(open func(url string) error) Option {
	return func(m *Model) {
		m.open = open
	}
}

// Model is the bubbletea model of the browser.
type Model struct {
	ctx     context.Context
	feed    Feed
	visible chan<- struct{}
	webURL  string
	open    func(string) error

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	state   feed.State
	pending int
	// want is the last selection issued. Selections run concurrently, so
	// the loader may settle on an older one and has to be brought back.
	wantCategory portfolio.Category
	wantFilter   string
	cursor  int
	offset  int
	height  int
	err     error
	pageErr bool
	status  string
}

// New returns a browser over f that signals visible whenever the end of
// the list comes into view.
func New(ctx context.Context, f Feed, visible chan<- struct{}, opts ...Option) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:     ctx,
		feed:    f,
		visible: visible,
		webURL:  "http://localhost:3000",
		open:    browser.Open,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		height:  defaultListHeight,
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.state = f.Snapshot()
	m.state.LoadingInitial = true
	m.wantCategory, m.wantFilter = m.state.Category, m.state.Filter
	m.pending = 1
	return m
}

// Init loads the first page of the current selection.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.selectCmd(m.feed.Reload))
}

func (m Model) selectCmd(run func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return selectionDoneMsg{err: run(ctx)}
	}
}

// Update handles key presses and load results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-chromeHeight, 3)
		m.help.Width = msg.Width
		m.scroll()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case selectionDoneMsg:
		m.pending--
		if m.pending > 0 {
			return m, nil
		}
		m.refresh()
		if msg.err != nil && !errors.Is(msg.err, feed.ErrSuperseded) {
			// The loader kept its previous selection; show that one.
			m.err, m.pageErr = msg.err, false
			m.wantCategory, m.wantFilter = m.state.Category, m.state.Filter
			return m, nil
		}
		if m.state.Category != m.wantCategory || m.state.Filter != m.wantFilter {
			return m.startSelect(m.wantCategory, m.wantFilter, nil)
		}
		m.err, m.pageErr = nil, false
		m.notifyIfNearEnd()
		return m, nil

	case pageLoadedMsg:
		m.refresh()
		if msg.err != nil {
			m.err, m.pageErr = msg.err, true
			return m, nil
		}
		if m.pageErr {
			m.err, m.pageErr = nil, false
		}
		m.notifyIfNearEnd()
		return m, nil

	case openedMsg:
		if msg.err != nil {
			m.status = "could not open browser: " + msg.err.Error()
		} else {
			m.status = "opened " + msg.url
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.NextCategory):
		return m.selectCategory(1)

	case key.Matches(msg, m.keys.PrevCategory):
		return m.selectCategory(-1)

	case key.Matches(msg, m.keys.NextFilter):
		return m.selectFilter(1)

	case key.Matches(msg, m.keys.PrevFilter):
		return m.selectFilter(-1)

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.state.Items)-1 {
			m.cursor++
			m.scroll()
		}
		m.notifyIfNearEnd()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.scroll()
		}
		return m, nil

	case key.Matches(msg, m.keys.Retry):
		if m.err == nil {
			return m, nil
		}
		if m.pageErr {
			m.err, m.pageErr = nil, false
			m.notifyIfNearEnd()
			return m, nil
		}
		return m.startSelect(m.state.Category, m.state.Filter, m.feed.Reload)

	case key.Matches(msg, m.keys.Open):
		if len(m.state.Items) == 0 {
			return m, nil
		}
		url := browser.PortfolioURL(m.webURL, m.state.Items[m.cursor].ID)
		open := m.open
		return m, func() tea.Msg {
			return openedMsg{url: url, err: open(url)}
		}
	}

	return m, nil
}

func (m Model) selectCategory(step int) (tea.Model, tea.Cmd) {
	cats := portfolio.Categories()
	next := cats[cycle(slices.Index(cats, m.state.Category), step, len(cats))]
	return m.startSelect(next, portfolio.FilterAll, nil)
}

func (m Model) selectFilter(step int) (tea.Model, tea.Cmd) {
	if m.state.Category == portfolio.CategoryAll {
		return m, nil
	}
	filters := m.state.Category.Filters()
	next := filters[cycle(slices.Index(filters, m.state.Filter), step, len(filters))]
	return m.startSelect(m.state.Category, next, nil)
}

// startSelect shows category and filter as loading right away and runs the
// selection. A nil run selects exactly that pair.
func (m Model) startSelect(category portfolio.Category, filter string, run func(context.Context) error) (tea.Model, tea.Cmd) {
	if run == nil {
		f := m.feed
		run = func(ctx context.Context) error {
			return f.Select(ctx, category, filter)
		}
	}
	m.pending++
	m.wantCategory, m.wantFilter = category, filter
	m.state = feed.State{Category: category, Filter: filter, LoadingInitial: true}
	m.cursor, m.offset = 0, 0
	m.err, m.pageErr = nil, false
	m.status = ""
	return m, m.selectCmd(run)
}

// cycle moves i by step within [0, n), treating a missing index as 0.
func cycle(i, step, n int) int {
	if i < 0 {
		i = 0
	}
	return ((i+step)%n + n) % n
}

// refresh pulls the loader state, keeping the optimistic selection while
// one is still in flight.
func (m *Model) refresh() {
	s := m.feed.Snapshot()
	if m.pending > 0 {
		s = feed.State{Category: m.wantCategory, Filter: m.wantFilter, LoadingInitial: true}
	}
	m.state = s

	if m.cursor >= len(s.Items) {
		m.cursor = max(len(s.Items)-1, 0)
	}
	m.scroll()
}

func (m *Model) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

// nearEnd reports whether the end of the list is on screen or the
// selection is within sentinelDistance rows of it.
func (m Model) nearEnd() bool {
	n := len(m.state.Items)
	if n == 0 {
		return false
	}
	return m.cursor >= n-sentinelDistance || n-m.offset <= m.height
}

func (m Model) notifyIfNearEnd() {
	s := m.state
	if s.Exhausted || s.LoadingInitial || s.LoadingMore || (m.err != nil && m.pageErr) {
		return
	}
	if !m.nearEnd() {
		return
	}
	select {
	case m.visible <- struct{}{}:
	default:
	}
}

// View renders the browser.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	if m.state.Category != portfolio.CategoryAll {
		b.WriteString(m.renderFilters())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.renderList())

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString(metaStyle.Render(" (r to retry)"))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString("\n")
		b.WriteString(metaStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.help())))
	return b.String()
}

func (m Model) renderTabs() string {
	var tabs []string
	for _, c := range portfolio.Categories() {
		if c == m.state.Category {
			tabs = append(tabs, activeTabStyle.Render(string(c)))
		} else {
			tabs = append(tabs, tabStyle.Render(string(c)))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderFilters() string {
	var parts []string
	for _, f := range m.state.Category.Filters() {
		if f == m.state.Filter {
			parts = append(parts, activeFilterStyle.Render(f))
		} else {
			parts = append(parts, filterStyle.Render(f))
		}
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderList() string {
	s := m.state
	if s.LoadingInitial {
		return m.spinner.View() + " Loading portfolios...\n"
	}
	if len(s.Items) == 0 {
		return metaStyle.Render("No portfolios found.") + "\n"
	}

	var b strings.Builder
	end := min(m.offset+m.height, len(s.Items))
	for i := m.offset; i < end; i++ {
		item := s.Items[i]
		title := truncate(item.Title, titleWidth)
		if i == m.cursor {
			b.WriteString(selectedRowStyle.Render(fmt.Sprintf("> #%d %s", item.ID, title)))
		} else {
			b.WriteString(rowStyle.Render(fmt.Sprintf("  #%d %s", item.ID, title)))
		}
		b.WriteString(metaStyle.Render(fmt.Sprintf("  by %s", item.Nickname)))
		b.WriteString("\n")
	}

	switch {
	case s.LoadingMore:
		b.WriteString(m.spinner.View() + " Loading more...\n")
	case s.Exhausted:
		b.WriteString(metaStyle.Render(fmt.Sprintf("%d portfolios, end of list", len(s.Items))) + "\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
