// Package video implements the video playback sink.
//
// Each player is a small state machine (stopped, playing, paused, plus
// an "ended" flag) driven by line-oriented commands written to the
// device and by two timers: an end-of-play countdown armed for the
// remaining playback time, and a position tick that fires every tick
// interval while playing so blocked readers observe the advancing
// position.
//
// Commands are parsed by ParseCommand. Recognised verbs mutate the
// player; unrecognised text is accepted and retained as the device's
// current status line. Malformed command arguments are absorbed
// silently, never surfaced to the writer.
//
// Timer callbacks run on their own goroutines. A generation counter
// guards every callback: stopping or re-arming the timers bumps the
// generation, so a callback that fires late against a stale generation
// returns without touching state.
package video
