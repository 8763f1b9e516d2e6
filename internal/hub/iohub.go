package hub

import (
	"fmt"

	"github.com/domiot-io/drivers/internal/infrastructure/logging"
)

// IOHub simulates a 24-channel combined input/output hub (iohubx24).
//
// Unlike InputHub there is no change notification: reads return the
// current states immediately and each session sees end-of-file after
// its first read. Writes replace the channel states like OutputHub but
// are not logged.
type IOHub struct {
	name  string
	state *State
	log   *logging.Logger
}

// NewIOHub creates a combined hub instance.
func NewIOHub(index int, log *logging.Logger) *IOHub {
	name := fmt.Sprintf("iohubx24-%d", index)
	return &IOHub{
		name:  name,
		state: NewState(Channels),
		log:   log.With("device", name),
	}
}

// Name returns the device instance name, e.g. "iohubx24-0".
func (h *IOHub) Name() string { return h.name }

// State returns the channel state store.
func (h *IOHub) State() *State { return h.state }

// Write applies a command payload to the channels, full-replace
// semantics as with OutputHub.
func (h *IOHub) Write(p []byte) (int, error) {
	bits := FilterBits(p, Channels)
	changed := h.state.Update(bits)
	h.log.Debug("io states written", "states", string(h.state.Snapshot()), "changed", changed)
	return len(p), nil
}

// Close releases the instance.
func (h *IOHub) Close() error {
	return nil
}
