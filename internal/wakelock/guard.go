// Package wakelock keeps the display awake while a run is in progress.
package wakelock

import (
	"context"
	"errors"
	"sync"
)

// KindScreen is the lock kind requested for runs.
const KindScreen = "screen"

// ErrUnsupported is returned by sinks on platforms without a wake lock.
var ErrUnsupported = errors.New("wake lock not supported")

// Handle is a held lock.
type Handle interface {
	Release(ctx context.Context) error
}

// Sink is the platform screen-lock facility.
type Sink interface {
	Request(ctx context.Context, kind string) (Handle, error)
}

// Guard holds at most one lock from its Sink.
type Guard struct {
	sink Sink

	mu   sync.Mutex
	held Handle
}

func NewGuard(sink Sink) *Guard {
	if sink == nil {
		sink = Unsupported{}
	}
	return &Guard{sink: sink}
}

// Acquire requests the lock. It reports true when the lock is held, already
// held, or the platform has no wake lock; false with the cause otherwise.
func (g *Guard) Acquire(ctx context.Context) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.held != nil {
		return true, nil
	}
	h, err := g.sink.Request(ctx, KindScreen)
	if errors.Is(err, ErrUnsupported) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	g.held = h
	return true, nil
}

// Release drops the held lock, if any. Safe to call repeatedly.
func (g *Guard) Release(ctx context.Context) error {
	g.mu.Lock()
	h := g.held
	g.held = nil
	g.mu.Unlock()

	if h == nil {
		return nil
	}
	return h.Release(ctx)
}

// Held reports whether a platform lock is currently held.
func (g *Guard) Held() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.held != nil
}

// Unsupported is the sink for platforms without a wake lock.
type Unsupported struct{}

func (Unsupported) Request(context.Context, string) (Handle, error) {
	return nil, ErrUnsupported
}
