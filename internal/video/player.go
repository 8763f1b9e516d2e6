package video

import (
	"fmt"
	"sync"
	"time"

	"github.com/domiot-io/drivers/internal/display"
	"github.com/domiot-io/drivers/internal/infrastructure/logging"
	"github.com/domiot-io/drivers/internal/watch"
)

// State is the playback state of a player.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// Telemetry receives playback position samples.
type Telemetry interface {
	WritePlaybackPosition(device string, positionMS int64)
}

// Player simulates a video playback device.
//
// Thread Safety: all methods are safe for concurrent use. Timer
// callbacks take the same state lock as command handling; a
// generation counter invalidates callbacks that fire after their
// timer was stopped or re-armed.
type Player struct {
	name     string
	log      *logging.Logger
	watchers *watch.Registry
	duration time.Duration
	tick     time.Duration

	mu          sync.Mutex
	state       State
	src         string
	loaded      bool
	loop        bool
	ended       bool
	positionMS  int64 // position at last play-start, pause or seek
	remainingMS int64
	startedAt   time.Time // valid while Playing
	text        string    // last accepted free-text line
	timerGen    uint64
	endTimer    *time.Timer
	tickTimer   *time.Timer
	closed      bool

	telemetry Telemetry
}

// NewPlayer creates a video player instance.
//
// Parameters:
//   - index: instance number, names the device "video-<index>"
//   - duration: total playback duration of the simulated source
//   - tick: position broadcast interval while playing
//   - maxReaders: reader registration limit, 0 means unlimited
func NewPlayer(index int, duration, tick time.Duration, maxReaders int, log *logging.Logger) *Player {
	name := fmt.Sprintf("video-%d", index)
	return &Player{
		name:        name,
		log:         log.With("device", name),
		watchers:    watch.NewRegistry(maxReaders),
		duration:    duration,
		tick:        tick,
		remainingMS: duration.Milliseconds(),
	}
}

// Name returns the device instance name, e.g. "video-0".
func (p *Player) Name() string { return p.name }

// Watchers returns the reader registry for this player.
func (p *Player) Watchers() *watch.Registry { return p.watchers }

// SetTelemetry attaches an optional playback position sink.
func (p *Player) SetTelemetry(t Telemetry) { p.telemetry = t }

// Write accepts a command line for the player.
//
// Malformed command arguments are logged and ignored. The write
// always reports the full payload as consumed.
func (p *Player) Write(b []byte) (int, error) {
	cmd, err := ParseCommand(b)
	if err != nil {
		p.log.Debug("playback command ignored", "error", err)
		return len(b), nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return len(b), nil
	}

	switch cmd.Kind {
	case CmdPlay:
		p.playLocked()
	case CmdPause:
		p.pauseLocked()
	case CmdLoad:
		p.loadLocked()
	case CmdSetSrc:
		p.setSrcLocked(cmd.Src)
	case CmdSetLoop:
		p.loop = cmd.Loop
		p.log.Debug("loop flag set", "loop", cmd.Loop)
	case CmdSetTime:
		p.seekLocked(cmd.PositionMS)
	case CmdText:
		p.text = display.Sanitize([]byte(cmd.Text), display.MaxTextLen)
		p.log.Debug("status text stored", "text", p.text)
	}

	return len(b), nil
}

// playLocked starts or resumes playback. No-op if no source is
// loaded or playback is already running. A completed non-looping
// play restarts from the beginning.
func (p *Player) playLocked() {
	if !p.loaded || p.state == Playing {
		return
	}
	if p.ended {
		p.positionMS = 0
		p.remainingMS = p.duration.Milliseconds()
		p.ended = false
	}
	p.state = Playing
	p.startedAt = time.Now()
	p.armTimersLocked()
	p.log.Debug("playback started", "position_ms", p.positionMS, "remaining_ms", p.remainingMS)
}

// pauseLocked freezes playback. No-op unless playing.
func (p *Player) pauseLocked() {
	if p.state != Playing {
		return
	}
	elapsed := time.Since(p.startedAt).Milliseconds()
	p.positionMS = minInt64(p.positionMS+elapsed, p.duration.Milliseconds())
	p.remainingMS = maxInt64(0, p.remainingMS-elapsed)
	p.stopTimersLocked()
	p.state = Paused
	p.watchers.NotifyAll()
	p.log.Debug("playback paused", "position_ms", p.positionMS, "remaining_ms", p.remainingMS)
}

// loadLocked rewinds the loaded source. Requires a non-empty source.
func (p *Player) loadLocked() {
	if p.src == "" {
		p.log.Debug("load ignored, no source set")
		return
	}
	p.stopTimersLocked()
	p.state = Stopped
	p.loaded = true
	p.ended = false
	p.positionMS = 0
	p.remainingMS = p.duration.Milliseconds()
	p.watchers.NotifyAll()
	p.log.Debug("source loaded", "src", p.src)
}

// setSrcLocked replaces the source path. Always forces Stopped and
// clears the loaded flag, even when the path is unchanged. The loop
// flag is a persistent preference and survives source changes.
func (p *Player) setSrcLocked(src string) {
	p.stopTimersLocked()
	p.state = Stopped
	p.loaded = false
	p.ended = false
	p.positionMS = 0
	p.remainingMS = p.duration.Milliseconds()
	p.src = src
	p.watchers.NotifyAll()
	p.log.Debug("source set", "src", src)
}

// seekLocked moves the playback position. Out-of-range values are
// ignored. While playing both timers are re-armed from the new
// remaining time; while paused or stopped only the stored position
// changes and the next PLAY picks it up.
func (p *Player) seekLocked(ms int64) {
	dur := p.duration.Milliseconds()
	if ms < 0 || ms > dur {
		p.log.Debug("seek ignored, out of range", "position_ms", ms)
		return
	}
	p.positionMS = ms
	p.remainingMS = dur - ms
	if p.state == Playing {
		p.stopTimersLocked()
		p.startedAt = time.Now()
		p.armTimersLocked()
	}
	p.watchers.NotifyAll()
	p.log.Debug("position set", "position_ms", ms)
}

// armTimersLocked starts the end-of-play countdown and the position
// tick. The tick fires immediately so a blocked reader observes the
// play transition without waiting a full interval.
func (p *Player) armTimersLocked() {
	p.timerGen++
	gen := p.timerGen
	p.endTimer = time.AfterFunc(time.Duration(p.remainingMS)*time.Millisecond, func() {
		p.onEnd(gen)
	})
	p.tickTimer = time.AfterFunc(0, func() {
		p.onTick(gen)
	})
}

// stopTimersLocked cancels both timers and invalidates any callback
// already in flight.
func (p *Player) stopTimersLocked() {
	p.timerGen++
	if p.endTimer != nil {
		p.endTimer.Stop()
		p.endTimer = nil
	}
	if p.tickTimer != nil {
		p.tickTimer.Stop()
		p.tickTimer = nil
	}
}

// onTick broadcasts the current position and re-arms itself.
func (p *Player) onTick(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || gen != p.timerGen || p.state != Playing {
		return
	}

	pos := p.positionLocked()
	p.watchers.NotifyAll()
	if p.telemetry != nil {
		p.telemetry.WritePlaybackPosition(p.name, pos)
	}

	if pos < p.duration.Milliseconds() {
		p.tickTimer = time.AfterFunc(p.tick, func() {
			p.onTick(gen)
		})
	}
}

// onEnd handles the end-of-play countdown firing.
func (p *Player) onEnd(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || gen != p.timerGen || p.state != Playing {
		return
	}

	if p.loop {
		p.positionMS = 0
		p.remainingMS = p.duration.Milliseconds()
		p.startedAt = time.Now()
		// Restart both timers under a fresh generation so a tick
		// callback left over from the finished cycle cannot double
		// the chain.
		p.armTimersLocked()
		p.watchers.NotifyAll()
		p.log.Debug("playback looped")
		return
	}

	p.stopTimersLocked()
	p.state = Stopped
	p.ended = true
	p.positionMS = p.duration.Milliseconds()
	p.remainingMS = 0
	p.watchers.NotifyAll()
	p.log.Debug("playback ended")
}

// positionLocked returns the current position in milliseconds,
// derived from the wall clock while playing.
func (p *Player) positionLocked() int64 {
	if p.state != Playing {
		return p.positionMS
	}
	elapsed := time.Since(p.startedAt).Milliseconds()
	return minInt64(p.positionMS+elapsed, p.duration.Milliseconds())
}

// Status renders the payload delivered to readers: "END\n" once a
// non-looping play has completed, otherwise the current position as
// "CURRENT_TIME=<seconds>.<decisecond>\n".
func (p *Player) Status() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ended && !p.loop {
		return []byte("END\n")
	}
	pos := p.positionLocked()
	return []byte(fmt.Sprintf("CURRENT_TIME=%d.%d\n", pos/1000, (pos%1000)/100))
}

// ResetForReader applies the open-time policy for a new reader
// session: the ended flag is cleared and, if playback is stopped,
// the position rewinds to the start.
func (p *Player) ResetForReader() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ended = false
	if p.state == Stopped {
		p.positionMS = 0
		p.remainingMS = p.duration.Milliseconds()
	}
}

// State returns the current playback state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// PositionMS returns the current playback position in milliseconds.
func (p *Player) PositionMS() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

// DurationMS returns the total playback duration in milliseconds.
func (p *Player) DurationMS() int64 { return p.duration.Milliseconds() }

// Src returns the current source path, empty when none is set.
func (p *Player) Src() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.src
}

// Loaded reports whether a source has been loaded for playback.
func (p *Player) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded
}

// Loop reports whether looping is enabled.
func (p *Player) Loop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loop
}

// Ended reports whether a non-looping play has run to completion.
func (p *Player) Ended() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ended
}

// Text returns the last accepted free-text line.
func (p *Player) Text() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.text
}

// Close cancels the timers and wakes all blocked readers.
func (p *Player) Close() error {
	p.mu.Lock()
	p.closed = true
	p.stopTimersLocked()
	p.mu.Unlock()

	p.watchers.Close()
	return nil
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
