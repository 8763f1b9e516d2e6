// Package history records accepted device writes.
//
// Every write-capable sink (output hub, display) keeps a bounded
// in-memory ring of its accepted writes, mirroring the log files the
// devices expose. The ring is authoritative and always active. An
// optional SQLite-backed Store additionally persists the same records
// across restarts for the history API.
package history

import (
	"context"
	"sync"
	"time"
)

// Entry is one accepted write.
type Entry struct {
	// Text is the recorded payload: channel states for hubs, the
	// sanitised display text for character sinks.
	Text string `json:"text"`

	// At is the timestamp of the write (UTC).
	At time.Time `json:"at"`
}

// Archiver persists accepted writes. Implementations must be
// thread-safe. The ring log does not depend on the archiver; archive
// failures never fail the device write.
type Archiver interface {
	// Record stores one accepted write for the named device.
	Record(ctx context.Context, device, text string) error
}

// Ring is a bounded log of accepted writes, oldest evicted first.
//
// Thread Safety: all methods are safe for concurrent use.
type Ring struct {
	mu      sync.Mutex
	entries []Entry
	cap     int
}

// NewRing creates a ring holding at most capacity entries.
func NewRing(capacity int) *Ring {
	return &Ring{cap: capacity}
}

// Append records a write with the current timestamp. When the ring is
// full the oldest entry is evicted.
func (r *Ring) Append(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) == r.cap {
		copy(r.entries, r.entries[1:])
		r.entries = r.entries[:r.cap-1]
	}
	r.entries = append(r.entries, Entry{Text: text, At: time.Now().UTC()})
}

// Entries returns a copy of the log, newest first.
func (r *Ring) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Entry, len(r.entries))
	for i, e := range r.entries {
		out[len(r.entries)-1-i] = e
	}
	return out
}

// Len returns the number of entries currently held.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
