package devices

import (
	"context"
	"io"
	"sync"

	"github.com/domiot-io/drivers/internal/hub"
	"github.com/domiot-io/drivers/internal/video"
	"github.com/domiot-io/drivers/internal/vint"
	"github.com/domiot-io/drivers/internal/watch"
)

// Mode selects the read behaviour of a session.
type Mode int

const (
	// Blocking reads suspend until new state is available.
	Blocking Mode = iota

	// NonBlocking reads return watch.ErrWouldBlock instead of
	// suspending.
	NonBlocking
)

// Conn is an open session on a device instance.
//
// Read blocks (or fails with watch.ErrWouldBlock in non-blocking
// mode) until the device has state the session has not consumed yet,
// then returns a copy of the device's read payload. Write submits a
// payload to the device. Ready reports whether a Read would return
// without blocking. Close releases the session; the device instance
// itself stays alive.
type Conn interface {
	Read(ctx context.Context) ([]byte, error)
	Write(p []byte) (int, error)
	Ready() bool
	Close() error
}

// Open creates a session on a device instance.
//
// Parameters:
//   - kind: device kind
//   - index: instance index within the kind
//   - mode: Blocking or NonBlocking read behaviour
//
// Returns: the session, ErrInvalidInstance for an out-of-range index,
// or watch.ErrTooManyReaders when the instance's reader limit is
// reached.
func (t *Table) Open(kind Kind, index int, mode Mode) (Conn, error) {
	switch kind {
	case KindInputHub:
		h, err := t.InputHub(index)
		if err != nil {
			return nil, err
		}
		r, err := h.Watchers().Register(true)
		if err != nil {
			return nil, err
		}
		return &inputSession{hub: h, reader: r, mode: mode}, nil

	case KindOutputHub:
		h, err := t.OutputHub(index)
		if err != nil {
			return nil, err
		}
		return &outputSession{hub: h}, nil

	case KindIOHub:
		h, err := t.IOHub(index)
		if err != nil {
			return nil, err
		}
		return &ioSession{hub: h}, nil

	case KindDisplay:
		d, err := t.Display(index)
		if err != nil {
			return nil, err
		}
		return &displaySession{display: d}, nil

	case KindVint:
		h, err := t.Vint(index)
		if err != nil {
			return nil, err
		}
		r, err := h.Watchers().Register(true)
		if err != nil {
			return nil, err
		}
		return &vintSession{hub: h, reader: r, mode: mode}, nil

	case KindVideo:
		p, err := t.Video(index)
		if err != nil {
			return nil, err
		}
		p.ResetForReader()
		r, err := p.Watchers().Register(false)
		if err != nil {
			return nil, err
		}
		return &videoSession{player: p, reader: r, mode: mode}, nil
	}

	return nil, ErrUnknownKind
}

// wait applies the session mode to a registered reader.
func wait(ctx context.Context, r *watch.Reader, mode Mode) error {
	if mode == NonBlocking {
		return r.TryWait()
	}
	return r.Wait(ctx)
}

// inputSession reads state lines from an input hub.
type inputSession struct {
	hub    *hub.InputHub
	reader *watch.Reader
	mode   Mode
}

func (s *inputSession) Read(ctx context.Context) ([]byte, error) {
	if err := wait(ctx, s.reader, s.mode); err != nil {
		return nil, err
	}
	return s.hub.State().Line(), nil
}

func (s *inputSession) Write(p []byte) (int, error) { return 0, ErrReadOnly }
func (s *inputSession) Ready() bool                 { return s.reader.Ready() }

func (s *inputSession) Close() error {
	s.reader.Close()
	return nil
}

// outputSession writes state lines to an output hub.
type outputSession struct {
	hub *hub.OutputHub
}

func (s *outputSession) Read(ctx context.Context) ([]byte, error) { return nil, ErrWriteOnly }
func (s *outputSession) Write(p []byte) (int, error)              { return s.hub.Write(p) }
func (s *outputSession) Ready() bool                              { return false }
func (s *outputSession) Close() error                             { return nil }

// ioSession reads and writes a combined hub. The hub has no change
// notification: a session delivers the current states once, then
// reports end of stream.
type ioSession struct {
	hub *hub.IOHub

	mu       sync.Mutex
	consumed bool
}

func (s *ioSession) Read(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.consumed {
		return nil, io.EOF
	}
	s.consumed = true
	return s.hub.State().Line(), nil
}

func (s *ioSession) Write(p []byte) (int, error) { return s.hub.Write(p) }

func (s *ioSession) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.consumed
}

func (s *ioSession) Close() error { return nil }

// displaySession writes text to a display.
type displaySession struct {
	display interface {
		Write(p []byte) (int, error)
	}
}

func (s *displaySession) Read(ctx context.Context) ([]byte, error) { return nil, ErrWriteOnly }
func (s *displaySession) Write(p []byte) (int, error)              { return s.display.Write(p) }
func (s *displaySession) Ready() bool                              { return false }
func (s *displaySession) Close() error                             { return nil }

// vintSession reads fed input states and writes output states on an
// externally-fed hub. Reads and writes fail with vint.ErrNotConnected
// until a producer attaches; a read never returns stale data from
// before the producer went away.
type vintSession struct {
	hub    *vint.Hub
	reader *watch.Reader
	mode   Mode
}

func (s *vintSession) Read(ctx context.Context) ([]byte, error) {
	if !s.hub.Connected() {
		return nil, vint.ErrNotConnected
	}
	if err := wait(ctx, s.reader, s.mode); err != nil {
		return nil, err
	}
	return s.hub.InputLine(), nil
}

func (s *vintSession) Write(p []byte) (int, error) { return s.hub.WriteOutputs(p) }
func (s *vintSession) Ready() bool                 { return s.reader.Ready() }

func (s *vintSession) Close() error {
	s.reader.Close()
	return nil
}

// videoSession reads playback status lines and writes commands on a
// video player.
type videoSession struct {
	player *video.Player
	reader *watch.Reader
	mode   Mode
}

func (s *videoSession) Read(ctx context.Context) ([]byte, error) {
	if err := wait(ctx, s.reader, s.mode); err != nil {
		return nil, err
	}
	return s.player.Status(), nil
}

func (s *videoSession) Write(p []byte) (int, error) { return s.player.Write(p) }
func (s *videoSession) Ready() bool                 { return s.reader.Ready() }

func (s *videoSession) Close() error {
	s.reader.Close()
	return nil
}
