package feed

import (
	"context"
	"errors"
	"sync"
)

// Pager is the part of the Loader a Sentinel drives.
type Pager interface {
	LoadMore(ctx context.Context) (int, error)
}

// Sentinel watches the end-of-list marker. Each visibility event asks the
// pager for one more page; onLoad receives the outcome.
type Sentinel struct {
	pager  Pager
	onLoad func(n int, err error)

	mu  sync.Mutex
	obs *observation
}

type observation struct {
	cancel context.CancelFunc
	done   chan struct{}
	loads  sync.WaitGroup
}

// NewSentinel creates a sentinel for pager. onLoad may be nil.
func NewSentinel(pager Pager, onLoad func(n int, err error)) *Sentinel {
	return &Sentinel{pager: pager, onLoad: onLoad}
}

// Observe starts delivering events from visible to the pager until ctx is
// done, visible is closed, or the sentinel is disconnected. Any previous
// observation is disconnected first.
func (s *Sentinel) Observe(ctx context.Context, visible <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.disconnectLocked()

	ctx, cancel := context.WithCancel(ctx)
	obs := &observation{cancel: cancel, done: make(chan struct{})}
	s.obs = obs

	go s.watch(ctx, obs, visible)
}

// Disconnect stops the current observation and waits for its in-flight
// loads. No onLoad call happens after Disconnect returns.
func (s *Sentinel) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.disconnectLocked()
}

func (s *Sentinel) disconnectLocked() {
	if s.obs == nil {
		return
	}
	s.obs.cancel()
	<-s.obs.done
	s.obs.loads.Wait()
	s.obs = nil
}

func (s *Sentinel) watch(ctx context.Context, obs *observation, visible <-chan struct{}) {
	defer close(obs.done)

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-visible:
			if !ok {
				return
			}
			obs.loads.Add(1)
			go func() {
				defer obs.loads.Done()
				n, err := s.pager.LoadMore(ctx)
				if ctx.Err() != nil || errors.Is(err, ErrSuperseded) {
					return
				}
				if s.onLoad != nil {
					s.onLoad(n, err)
				}
			}()
		}
	}
}
