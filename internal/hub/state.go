package hub

import (
	"bytes"
	"sync"
)

// Channels is the channel count of the x24 hub family.
const Channels = 24

// State is a fixed-width array of per-channel boolean values encoded as
// '0'/'1' bytes, plus the previous snapshot for change detection.
//
// Thread Safety: all methods are safe for concurrent use.
type State struct {
	mu   sync.Mutex
	cur  []byte
	prev []byte
}

// NewState creates a state store with the given channel count, all
// channels initialised to '0'.
func NewState(width int) *State {
	return &State{
		cur:  bytes.Repeat([]byte{'0'}, width),
		prev: bytes.Repeat([]byte{'0'}, width),
	}
}

// Width returns the channel count.
func (s *State) Width() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cur)
}

// Update replaces the full channel state with the given digits.
// Channels beyond len(bits) reset to '0'. The previous state is kept
// for the change comparison.
//
// Returns:
//   - bool: true if any channel differs from the previous state.
//     Notifying readers is the caller's responsibility.
func (s *State) Update(bits []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	copy(s.prev, s.cur)
	for i := range s.cur {
		if i < len(bits) {
			s.cur[i] = bits[i]
		} else {
			s.cur[i] = '0'
		}
	}
	return !bytes.Equal(s.cur, s.prev)
}

// Snapshot returns a copy of the current channel states.
func (s *State) Snapshot() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]byte, len(s.cur))
	copy(out, s.cur)
	return out
}

// Line returns the current channel states followed by a newline.
// This is the device read payload: width+1 bytes.
func (s *State) Line() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]byte, len(s.cur)+1)
	copy(out, s.cur)
	out[len(s.cur)] = '\n'
	return out
}

// FilterBits extracts up to width binary digits from p.
//
// '0' and '1' are collected in order, '\n' and '\r' are treated as
// separators and skipped, and every other byte is dropped. Collection
// stops once width digits have been seen; the remainder of the payload
// is ignored.
func FilterBits(p []byte, width int) []byte {
	out := make([]byte, 0, width)
	for _, b := range p {
		if len(out) == width {
			break
		}
		switch b {
		case '0', '1':
			out = append(out, b)
		case '\n', '\r':
			// separators between state groups
		default:
			// dropped
		}
	}
	return out
}
