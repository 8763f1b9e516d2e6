package hub

import (
	"context"
	"fmt"

	"github.com/domiot-io/drivers/internal/history"
	"github.com/domiot-io/drivers/internal/infrastructure/logging"
)

// ringSize is the number of accepted writes kept in the in-memory log,
// oldest evicted first.
const ringSize = 30

// OutputHub simulates a 24-channel digital output hub (ohubx24).
//
// The device file is write-only. Every accepted write fully replaces
// the channel states and appends a timestamped record of the resulting
// states to a bounded ring log. An optional archiver persists the same
// records to SQLite.
type OutputHub struct {
	name  string
	state *State
	ring  *history.Ring
	log   *logging.Logger

	archive   history.Archiver
	telemetry Telemetry
}

// NewOutputHub creates an output hub instance.
func NewOutputHub(index int, log *logging.Logger) *OutputHub {
	name := fmt.Sprintf("ohubx24-%d", index)
	return &OutputHub{
		name:  name,
		state: NewState(Channels),
		ring:  history.NewRing(ringSize),
		log:   log.With("device", name),
	}
}

// Name returns the device instance name, e.g. "ohubx24-0".
func (h *OutputHub) Name() string { return h.name }

// State returns the channel state store.
func (h *OutputHub) State() *State { return h.state }

// SetArchiver attaches an optional persistent write log.
func (h *OutputHub) SetArchiver(a history.Archiver) { h.archive = a }

// SetTelemetry attaches an optional time-series recorder.
func (h *OutputHub) SetTelemetry(t Telemetry) { h.telemetry = t }

// Write applies a command payload to the output channels.
//
// The payload is filtered to its binary digits and installed as the
// full channel state; unspecified trailing channels reset to '0'.
// Malformed bytes are dropped, never rejected: the entire payload is
// reported as consumed.
func (h *OutputHub) Write(p []byte) (int, error) {
	bits := FilterBits(p, Channels)
	changed := h.state.Update(bits)

	states := string(h.state.Snapshot())
	h.ring.Append(states)
	h.log.Debug("output states written", "states", states, "changed", changed)

	if h.archive != nil {
		if err := h.archive.Record(context.Background(), h.name, states); err != nil {
			h.log.Warn("archiving output states failed", "error", err)
		}
	}
	if changed && h.telemetry != nil {
		h.telemetry.WriteChannelStates(h.name, states)
	}

	return len(p), nil
}

// Log returns the ring log entries, newest first.
func (h *OutputHub) Log() []history.Entry {
	return h.ring.Entries()
}

// Close releases the instance. Present for symmetric teardown; the
// output hub holds no background resources.
func (h *OutputHub) Close() error {
	return nil
}
