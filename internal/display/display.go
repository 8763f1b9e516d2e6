// Package display implements the character display sink (lcd).
//
// The device file is write-only. Incoming text is sanitised to
// printable ASCII, capped at the display width, and stored as the
// current display content. Every accepted write is appended to a
// bounded ring log and optionally archived.
package display

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/domiot-io/drivers/internal/history"
	"github.com/domiot-io/drivers/internal/infrastructure/logging"
)

const (
	// MaxTextLen is the display width in characters.
	MaxTextLen = 120

	// ringSize is the number of accepted writes kept in the ring log.
	ringSize = 30
)

// Display simulates a write-only character display.
//
// Thread Safety: all methods are safe for concurrent use.
type Display struct {
	name string
	log  *logging.Logger
	ring *history.Ring

	mu   sync.Mutex
	text string

	archive history.Archiver
}

// New creates a display instance.
func New(index int, log *logging.Logger) *Display {
	name := fmt.Sprintf("lcd-%d", index)
	return &Display{
		name: name,
		log:  log.With("device", name),
		ring: history.NewRing(ringSize),
	}
}

// Name returns the device instance name, e.g. "lcd-0".
func (d *Display) Name() string { return d.name }

// SetArchiver attaches an optional persistent write log.
func (d *Display) SetArchiver(a history.Archiver) { d.archive = a }

// Write accepts a text payload for the display.
//
// The payload is sanitised (see Sanitize) and becomes the current
// display content. Malformed bytes are dropped, never rejected: the
// entire payload is reported as consumed.
func (d *Display) Write(p []byte) (int, error) {
	text := Sanitize(p, MaxTextLen)

	d.mu.Lock()
	d.text = text
	d.mu.Unlock()

	d.ring.Append(text)
	d.log.Debug("display text written", "text", text)

	if d.archive != nil {
		if err := d.archive.Record(context.Background(), d.name, text); err != nil {
			d.log.Warn("archiving display text failed", "error", err)
		}
	}

	return len(p), nil
}

// Text returns the current display content.
func (d *Display) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text
}

// Log returns the ring log entries, newest first.
func (d *Display) Log() []history.Entry {
	return d.ring.Entries()
}

// Close releases the instance.
func (d *Display) Close() error {
	return nil
}

// Sanitize normalises a text payload for display.
//
// '\n' and '\r' become spaces, printable ASCII (32-126) is kept,
// everything else is dropped. The result is capped at max characters
// and trailing spaces are trimmed.
func Sanitize(p []byte, max int) string {
	var b strings.Builder
	for _, c := range p {
		if b.Len() == max {
			break
		}
		switch {
		case c == '\n' || c == '\r':
			b.WriteByte(' ')
		case c >= 32 && c <= 126:
			b.WriteByte(c)
		default:
			// dropped
		}
	}
	return strings.TrimRight(b.String(), " ")
}
