package vint

import (
	"fmt"
	"sync"

	"github.com/domiot-io/drivers/internal/hub"
	"github.com/domiot-io/drivers/internal/infrastructure/logging"
	"github.com/domiot-io/drivers/internal/watch"
)

// Channels is the fixed channel width of a vint hub.
const Channels = 6

// Hub simulates a 6-channel hub fed by an external producer.
//
// Thread Safety: all methods are safe for concurrent use.
type Hub struct {
	name     string
	log      *logging.Logger
	in       *hub.State
	out      *hub.State
	watchers *watch.Registry

	mu        sync.Mutex
	connected bool
	onOutput  func(states string)
}

// NewHub creates a vint hub instance.
func NewHub(index, maxReaders int, log *logging.Logger) *Hub {
	name := fmt.Sprintf("vintx6-%d", index)
	return &Hub{
		name:     name,
		log:      log.With("device", name),
		in:       hub.NewState(Channels),
		out:      hub.NewState(Channels),
		watchers: watch.NewRegistry(maxReaders),
	}
}

// Name returns the device instance name, e.g. "vintx6-0".
func (h *Hub) Name() string { return h.name }

// Watchers returns the reader registry for this hub.
func (h *Hub) Watchers() *watch.Registry { return h.watchers }

// SetConnected records whether the external producer is attached.
func (h *Hub) SetConnected(connected bool) {
	h.mu.Lock()
	h.connected = connected
	h.mu.Unlock()
	h.log.Info("producer connection changed", "connected", connected)
}

// Connected reports whether the external producer is attached.
func (h *Hub) Connected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.connected
}

// SetOutputSink registers a callback invoked with the full output
// state line after every accepted output write. Used by the bridge
// to forward outputs to the external producer.
func (h *Hub) SetOutputSink(fn func(states string)) {
	h.mu.Lock()
	h.onOutput = fn
	h.mu.Unlock()
}

// FeedInputs applies externally produced input states and wakes
// blocked readers when the states changed.
func (h *Hub) FeedInputs(p []byte) {
	bits := hub.FilterBits(p, Channels)
	if !h.in.Update(bits) {
		return
	}
	h.log.Debug("input states fed", "states", string(h.in.Snapshot()))
	h.watchers.NotifyAll()
}

// WriteOutputs accepts an output write for the hub.
//
// Returns: the full payload length on success, or ErrNotConnected
// when no external producer is attached.
func (h *Hub) WriteOutputs(p []byte) (int, error) {
	h.mu.Lock()
	connected := h.connected
	sink := h.onOutput
	h.mu.Unlock()

	if !connected {
		return 0, ErrNotConnected
	}

	bits := hub.FilterBits(p, Channels)
	h.out.Update(bits)
	states := string(h.out.Snapshot())
	h.log.Debug("output states written", "states", states)

	if sink != nil {
		sink(states)
	}
	return len(p), nil
}

// InputLine returns the input states with a trailing newline, the
// payload delivered to readers.
func (h *Hub) InputLine() []byte { return h.in.Line() }

// InputStates returns the input states without the newline.
func (h *Hub) InputStates() string { return string(h.in.Snapshot()) }

// OutputStates returns the last accepted output states.
func (h *Hub) OutputStates() string { return string(h.out.Snapshot()) }

// Close wakes all blocked readers and releases the instance.
func (h *Hub) Close() error {
	h.watchers.Close()
	return nil
}
