package watch

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Registry tracks the live reader sessions of a single device instance.
//
// Readers are keyed by a stable UUID handle so that removal is exact
// even if the same goroutine registers twice. The registry lock is held
// only for map manipulation and flag updates; it is never held across a
// blocking wait.
type Registry struct {
	mu      sync.Mutex
	readers map[uuid.UUID]*Reader
	limit   int
	closed  bool
}

// Reader is one registered reader session.
//
// The pending flag records that the device state changed since the
// reader last consumed an update. The wake channel has capacity one so
// a notification never blocks the notifier and repeated notifications
// collapse.
type Reader struct {
	id  uuid.UUID
	reg *Registry

	mu      sync.Mutex
	pending bool
	closed  bool
	wake    chan struct{}
}

// NewRegistry creates an empty registry.
//
// Parameters:
//   - limit: Maximum concurrent readers; 0 means unlimited.
func NewRegistry(limit int) *Registry {
	return &Registry{
		readers: make(map[uuid.UUID]*Reader),
		limit:   limit,
	}
}

// Register adds a new reader session.
//
// Parameters:
//   - ready: When true the reader starts with an update pending, so its
//     first Wait/TryWait returns immediately. Hub devices use this so a
//     fresh session can read the current state without waiting for a
//     change; the video device starts not-ready.
//
// Returns:
//   - *Reader: Handle the session uses to wait and to unregister.
//   - error: ErrClosed after Close, ErrTooManyReaders at the limit.
func (g *Registry) Register(ready bool) (*Reader, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil, ErrClosed
	}
	if g.limit > 0 && len(g.readers) >= g.limit {
		return nil, ErrTooManyReaders
	}

	r := &Reader{
		id:      uuid.New(),
		reg:     g,
		pending: ready,
		wake:    make(chan struct{}, 1),
	}
	g.readers[r.id] = r
	return r, nil
}

// NotifyAll marks every registered reader pending and wakes the blocked
// ones. Safe to call from timer callbacks and writer paths.
func (g *Registry) NotifyAll() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, r := range g.readers {
		r.notify()
	}
}

// Len returns the number of registered readers.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.readers)
}

// Close detaches every reader and rejects future registrations.
// Blocked readers are woken and their Wait returns ErrClosed.
// Called during device teardown.
func (g *Registry) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return
	}
	g.closed = true

	for id, r := range g.readers {
		r.markClosed()
		delete(g.readers, id)
	}
}

// notify sets the pending flag and delivers a wakeup without blocking.
func (r *Reader) notify() {
	r.mu.Lock()
	r.pending = true
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// markClosed flags the reader as detached and wakes it.
func (r *Reader) markClosed() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// consume atomically reads and clears the pending flag.
func (r *Reader) consume() (pending, closed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending {
		r.pending = false
		return true, r.closed
	}
	return false, r.closed
}

// Ready reports whether an update is pending without consuming it.
// This is the poll/select readiness probe.
func (r *Reader) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

// TryWait consumes a pending update if there is one.
//
// Returns:
//   - error: nil if an update was pending, ErrWouldBlock if not,
//     ErrClosed if the reader has been detached.
func (r *Reader) TryWait() error {
	pending, closed := r.consume()
	if pending {
		return nil
	}
	if closed {
		return ErrClosed
	}
	return ErrWouldBlock
}

// Wait blocks until an update is pending, then consumes it.
//
// Parameters:
//   - ctx: Cancellation aborts the wait with ErrInterrupted.
//
// Returns:
//   - error: nil when an update was consumed, ErrInterrupted on context
//     cancellation, ErrClosed if the device is torn down while waiting.
func (r *Reader) Wait(ctx context.Context) error {
	for {
		pending, closed := r.consume()
		if pending {
			return nil
		}
		if closed {
			return ErrClosed
		}

		select {
		case <-r.wake:
		case <-ctx.Done():
			return ErrInterrupted
		}
	}
}

// Close unregisters the reader from its registry. The reader must not
// be used afterwards. Safe to call more than once.
func (r *Reader) Close() {
	g := r.reg

	g.mu.Lock()
	delete(g.readers, r.id)
	g.mu.Unlock()

	r.markClosed()
}
