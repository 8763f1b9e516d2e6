package watch

import "errors"

// Domain-specific errors for reader registration and waiting.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrWouldBlock is returned by TryWait when no state change is pending.
	ErrWouldBlock = errors.New("watch: no update pending")

	// ErrInterrupted is returned by Wait when the context is cancelled
	// before a state change arrives.
	ErrInterrupted = errors.New("watch: wait interrupted")

	// ErrClosed is returned when the registry or reader has been closed.
	ErrClosed = errors.New("watch: closed")

	// ErrTooManyReaders is returned by Register when the registry's
	// reader limit has been reached.
	ErrTooManyReaders = errors.New("watch: reader limit reached")
)
