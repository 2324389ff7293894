package browse

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gauthierbraillon/folio/internal/feed"
)

// Run starts the browser over loader and blocks until the user quits or
// ctx is cancelled.
func Run(ctx context.Context, loader *feed.Loader, opts ...Option) error {
	visible := make(chan struct{}, 1)
	p := tea.NewProgram(New(ctx, loader, visible, opts...), tea.WithAltScreen(), tea.WithContext(ctx))

	sentinel := feed.NewSentinel(loader, func(n int, err error) {
		p.Send(pageLoadedMsg{n: n, err: err})
	})
	sentinel.Observe(ctx, visible)
	defer sentinel.Disconnect()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("browser stopped: %w", err)
	}
	return nil
}
