package hub

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/domiot-io/drivers/internal/infrastructure/logging"
	"github.com/domiot-io/drivers/internal/watch"
)

// Telemetry receives channel state samples for time-series recording.
// Satisfied by the InfluxDB client; may be nil when telemetry is disabled.
type Telemetry interface {
	WriteChannelStates(device string, states string)
}

// InputHub simulates a 24-channel digital input hub (ihubx24).
//
// A background timer randomises the channel states at a fixed interval.
// When the new states differ from the previous ones, every registered
// reader is woken. The device file is read-only.
type InputHub struct {
	name     string
	state    *State
	watchers *watch.Registry
	log      *logging.Logger
	interval time.Duration

	rngMu sync.Mutex
	rng   *rand.Rand

	telemetry Telemetry

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewInputHub creates an input hub instance. The randomisation timer
// does not run until Start is called.
//
// Parameters:
//   - index: Instance number, used in the device name (ihubx24-0, ...).
//   - interval: Time between state randomisations.
//   - maxReaders: Reader session limit, 0 for unlimited.
//   - log: Logger for state change debug output.
func NewInputHub(index int, interval time.Duration, maxReaders int, log *logging.Logger) *InputHub {
	name := fmt.Sprintf("ihubx24-%d", index)
	return &InputHub{
		name:     name,
		state:    NewState(Channels),
		watchers: watch.NewRegistry(maxReaders),
		log:      log.With("device", name),
		interval: interval,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano() + int64(index))),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Name returns the device instance name, e.g. "ihubx24-2".
func (h *InputHub) Name() string { return h.name }

// State returns the channel state store.
func (h *InputHub) State() *State { return h.state }

// Watchers returns the reader registry for session management.
func (h *InputHub) Watchers() *watch.Registry { return h.watchers }

// SetTelemetry attaches an optional time-series recorder.
func (h *InputHub) SetTelemetry(t Telemetry) { h.telemetry = t }

// Start launches the randomisation timer. It returns immediately; the
// timer runs until Close or until ctx is cancelled.
func (h *InputHub) Start(ctx context.Context) {
	go h.run(ctx)
}

// run is the timer loop.
func (h *InputHub) run(ctx context.Context) {
	defer close(h.done)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.Randomize()
		case <-ctx.Done():
			return
		case <-h.stop:
			return
		}
	}
}

// Randomize replaces every channel with a random '0' or '1' and wakes
// readers if anything changed. Exposed for tests and for the simulation
// control endpoint.
func (h *InputHub) Randomize() {
	bits := make([]byte, Channels)

	h.rngMu.Lock()
	for i := range bits {
		bits[i] = '0' + byte(h.rng.Intn(2))
	}
	h.rngMu.Unlock()

	h.apply(bits)
}

// SetChannels forces the channel states to the digits filtered from p.
// Used by tests and the HTTP simulation control surface; the device
// file itself remains read-only.
func (h *InputHub) SetChannels(p []byte) {
	h.apply(FilterBits(p, Channels))
}

// apply installs new states and notifies readers on change.
func (h *InputHub) apply(bits []byte) {
	if !h.state.Update(bits) {
		return
	}

	states := string(h.state.Snapshot())
	h.log.Debug("input states changed", "states", states)
	h.watchers.NotifyAll()

	if h.telemetry != nil {
		h.telemetry.WriteChannelStates(h.name, states)
	}
}

// Close stops the timer and detaches all readers. Blocked readers are
// woken with an error. Safe to call more than once.
func (h *InputHub) Close() error {
	h.stopOnce.Do(func() { close(h.stop) })
	h.watchers.Close()
	return nil
}
