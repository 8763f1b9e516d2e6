package devices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/domiot-io/drivers/internal/display"
	"github.com/domiot-io/drivers/internal/history"
	"github.com/domiot-io/drivers/internal/hub"
	"github.com/domiot-io/drivers/internal/infrastructure/logging"
	"github.com/domiot-io/drivers/internal/video"
	"github.com/domiot-io/drivers/internal/vint"
)

const (
	minInstances = 1
	maxInstances = 10
)

// Config sets the instance counts and simulation timings for a table.
type Config struct {
	InputHubs  int
	OutputHubs int
	IOHubs     int
	Displays   int
	VintHubs   int
	Videos     int

	// InputUpdateInterval is how often input hubs randomise.
	InputUpdateInterval time.Duration

	// PlayDuration is the simulated media duration.
	PlayDuration time.Duration

	// TickInterval is the playback position tick.
	TickInterval time.Duration

	// MaxReaders limits reader sessions per instance, 0 = unlimited.
	MaxReaders int
}

// Telemetry receives channel-state and playback-position samples.
// It is the union of the per-device telemetry interfaces so a single
// metrics client can serve the whole table.
type Telemetry interface {
	WriteChannelStates(device string, states string)
	WritePlaybackPosition(device string, positionMS int64)
}

// Deps carries the table's optional collaborators.
type Deps struct {
	Logger    *logging.Logger
	Archive   history.Archiver // persistent write log, may be nil
	Telemetry Telemetry        // metrics sink, may be nil
}

// Table is the fixed set of device instances for the process
// lifetime. Instances are created once by NewTable and never added
// or removed afterwards.
type Table struct {
	log *logging.Logger

	inputs   []*hub.InputHub
	outputs  []*hub.OutputHub
	ios      []*hub.IOHub
	displays []*display.Display
	vints    []*vint.Hub
	videos   []*video.Player
}

// NewTable creates every configured device instance.
//
// Parameters:
//   - cfg: instance counts (each 1-10) and simulation timings
//   - deps: logger plus optional archive and telemetry sinks
//
// Returns: the populated table, or a validation error. On error no
// instances are left behind.
func NewTable(cfg Config, deps Deps) (*Table, error) {
	counts := map[string]int{
		"input hubs":  cfg.InputHubs,
		"output hubs": cfg.OutputHubs,
		"io hubs":     cfg.IOHubs,
		"displays":    cfg.Displays,
		"vint hubs":   cfg.VintHubs,
		"videos":      cfg.Videos,
	}
	for name, n := range counts {
		if n < minInstances || n > maxInstances {
			return nil, fmt.Errorf("devices: %s count %d out of range %d-%d", name, n, minInstances, maxInstances)
		}
	}
	if cfg.InputUpdateInterval <= 0 || cfg.PlayDuration <= 0 || cfg.TickInterval <= 0 {
		return nil, errors.New("devices: simulation timings must be positive")
	}

	t := &Table{log: deps.Logger}

	for i := 0; i < cfg.InputHubs; i++ {
		h := hub.NewInputHub(i, cfg.InputUpdateInterval, cfg.MaxReaders, deps.Logger)
		if deps.Telemetry != nil {
			h.SetTelemetry(deps.Telemetry)
		}
		t.inputs = append(t.inputs, h)
	}
	for i := 0; i < cfg.OutputHubs; i++ {
		h := hub.NewOutputHub(i, deps.Logger)
		if deps.Archive != nil {
			h.SetArchiver(deps.Archive)
		}
		if deps.Telemetry != nil {
			h.SetTelemetry(deps.Telemetry)
		}
		t.outputs = append(t.outputs, h)
	}
	for i := 0; i < cfg.IOHubs; i++ {
		t.ios = append(t.ios, hub.NewIOHub(i, deps.Logger))
	}
	for i := 0; i < cfg.Displays; i++ {
		d := display.New(i, deps.Logger)
		if deps.Archive != nil {
			d.SetArchiver(deps.Archive)
		}
		t.displays = append(t.displays, d)
	}
	for i := 0; i < cfg.VintHubs; i++ {
		t.vints = append(t.vints, vint.NewHub(i, cfg.MaxReaders, deps.Logger))
	}
	for i := 0; i < cfg.Videos; i++ {
		p := video.NewPlayer(i, cfg.PlayDuration, cfg.TickInterval, cfg.MaxReaders, deps.Logger)
		if deps.Telemetry != nil {
			p.SetTelemetry(deps.Telemetry)
		}
		t.videos = append(t.videos, p)
	}

	deps.Logger.Info("device table created",
		"input_hubs", cfg.InputHubs,
		"output_hubs", cfg.OutputHubs,
		"io_hubs", cfg.IOHubs,
		"displays", cfg.Displays,
		"vint_hubs", cfg.VintHubs,
		"videos", cfg.Videos)
	return t, nil
}

// Start launches the input hub randomisation timers. They stop when
// ctx is cancelled.
func (t *Table) Start(ctx context.Context) {
	for _, h := range t.inputs {
		h.Start(ctx)
	}
}

// Close tears every instance down in reverse creation order.
func (t *Table) Close() error {
	var errs []error
	for i := len(t.videos) - 1; i >= 0; i-- {
		errs = append(errs, t.videos[i].Close())
	}
	for i := len(t.vints) - 1; i >= 0; i-- {
		errs = append(errs, t.vints[i].Close())
	}
	for i := len(t.displays) - 1; i >= 0; i-- {
		errs = append(errs, t.displays[i].Close())
	}
	for i := len(t.ios) - 1; i >= 0; i-- {
		errs = append(errs, t.ios[i].Close())
	}
	for i := len(t.outputs) - 1; i >= 0; i-- {
		errs = append(errs, t.outputs[i].Close())
	}
	for i := len(t.inputs) - 1; i >= 0; i-- {
		errs = append(errs, t.inputs[i].Close())
	}
	return errors.Join(errs...)
}

// Count returns the number of instances of a kind.
func (t *Table) Count(kind Kind) int {
	switch kind {
	case KindInputHub:
		return len(t.inputs)
	case KindOutputHub:
		return len(t.outputs)
	case KindIOHub:
		return len(t.ios)
	case KindDisplay:
		return len(t.displays)
	case KindVint:
		return len(t.vints)
	case KindVideo:
		return len(t.videos)
	}
	return 0
}

// InputHub returns the input hub at index.
func (t *Table) InputHub(index int) (*hub.InputHub, error) {
	if index < 0 || index >= len(t.inputs) {
		return nil, fmt.Errorf("%w: %s-%d", ErrInvalidInstance, KindInputHub, index)
	}
	return t.inputs[index], nil
}

// OutputHub returns the output hub at index.
func (t *Table) OutputHub(index int) (*hub.OutputHub, error) {
	if index < 0 || index >= len(t.outputs) {
		return nil, fmt.Errorf("%w: %s-%d", ErrInvalidInstance, KindOutputHub, index)
	}
	return t.outputs[index], nil
}

// IOHub returns the combined hub at index.
func (t *Table) IOHub(index int) (*hub.IOHub, error) {
	if index < 0 || index >= len(t.ios) {
		return nil, fmt.Errorf("%w: %s-%d", ErrInvalidInstance, KindIOHub, index)
	}
	return t.ios[index], nil
}

// Display returns the display at index.
func (t *Table) Display(index int) (*display.Display, error) {
	if index < 0 || index >= len(t.displays) {
		return nil, fmt.Errorf("%w: %s-%d", ErrInvalidInstance, KindDisplay, index)
	}
	return t.displays[index], nil
}

// Vint returns the vint hub at index.
func (t *Table) Vint(index int) (*vint.Hub, error) {
	if index < 0 || index >= len(t.vints) {
		return nil, fmt.Errorf("%w: %s-%d", ErrInvalidInstance, KindVint, index)
	}
	return t.vints[index], nil
}

// Video returns the video player at index.
func (t *Table) Video(index int) (*video.Player, error) {
	if index < 0 || index >= len(t.videos) {
		return nil, fmt.Errorf("%w: %s-%d", ErrInvalidInstance, KindVideo, index)
	}
	return t.videos[index], nil
}

// Info describes one device instance for listings.
type Info struct {
	Kind  Kind   `json:"kind"`
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// List returns every device instance in a stable order.
func (t *Table) List() []Info {
	var out []Info
	for _, kind := range Kinds() {
		for i := 0; i < t.Count(kind); i++ {
			out = append(out, Info{
				Kind:  kind,
				Index: i,
				Name:  fmt.Sprintf("%s-%d", kind, i),
			})
		}
	}
	return out
}
