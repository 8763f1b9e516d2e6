package video

import (
	"fmt"
	"strings"
)

// MaxCommandLen is the maximum number of bytes considered from a
// single write. Longer payloads are truncated before parsing.
const MaxCommandLen = 1024

// CommandKind identifies a parsed command verb.
type CommandKind int

const (
	// CmdText is any line that matches no verb. It is accepted and
	// stored as the device's current status text.
	CmdText CommandKind = iota
	CmdPlay
	CmdPause
	CmdLoad
	CmdSetSrc
	CmdSetLoop
	CmdSetTime
)

// Command is a parsed playback command.
type Command struct {
	Kind CommandKind

	// Src holds the argument of SET SRC=.
	Src string

	// Loop holds the argument of SET LOOP=.
	Loop bool

	// PositionMS holds the argument of SET CURRENT_TIME= in
	// milliseconds.
	PositionMS int64

	// Text holds the raw line for CmdText.
	Text string
}

// ParseCommand parses a line written to a video device.
//
// The payload is truncated to MaxCommandLen bytes and trailing
// newline/carriage-return characters are stripped before matching.
// Verbs are matched exactly (PLAY, PAUSE, LOAD) or by prefix
// (SET SRC=, SET LOOP=, SET CURRENT_TIME=). Lines matching no verb
// are returned as CmdText.
//
// Returns: the parsed command, or ErrInvalidArgument when a matched
// verb carries a malformed or out-of-range argument. Callers are
// expected to ignore such commands without failing the write.
func ParseCommand(p []byte) (Command, error) {
	if len(p) > MaxCommandLen {
		p = p[:MaxCommandLen]
	}
	line := strings.TrimRight(string(p), "\r\n")

	switch {
	case line == "PLAY":
		return Command{Kind: CmdPlay}, nil

	case line == "PAUSE":
		return Command{Kind: CmdPause}, nil

	case line == "LOAD":
		return Command{Kind: CmdLoad}, nil

	case strings.HasPrefix(line, "SET SRC="):
		return Command{Kind: CmdSetSrc, Src: line[len("SET SRC="):]}, nil

	case strings.HasPrefix(line, "SET LOOP="):
		loop, err := parseLoop(line[len("SET LOOP="):])
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdSetLoop, Loop: loop}, nil

	case strings.HasPrefix(line, "SET CURRENT_TIME="):
		ms, err := parseMillis(line[len("SET CURRENT_TIME="):])
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdSetTime, PositionMS: ms}, nil
	}

	return Command{Kind: CmdText, Text: line}, nil
}

// parseLoop accepts case-insensitive TRUE/FALSE and 1/0.
func parseLoop(arg string) (bool, error) {
	switch strings.ToUpper(arg) {
	case "TRUE", "1":
		return true, nil
	case "FALSE", "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: loop value %q", ErrInvalidArgument, arg)
}

// parseMillis parses "<seconds>" or "<seconds>.<fraction>" with at
// most three fractional digits, right-padded to milliseconds.
func parseMillis(arg string) (int64, error) {
	whole := arg
	frac := ""
	if i := strings.IndexByte(arg, '.'); i >= 0 {
		whole, frac = arg[:i], arg[i+1:]
	}

	if whole == "" || !allDigits(whole) {
		return 0, fmt.Errorf("%w: time value %q", ErrInvalidArgument, arg)
	}
	if len(frac) > 3 || !allDigits(frac) {
		return 0, fmt.Errorf("%w: time value %q", ErrInvalidArgument, arg)
	}

	var ms int64
	for _, c := range whole {
		ms = ms*10 + int64(c-'0')
		if ms > 1<<40 {
			return 0, fmt.Errorf("%w: time value %q", ErrInvalidArgument, arg)
		}
	}
	ms *= 1000

	// Right-pad the fraction to millisecond precision.
	scale := int64(100)
	for _, c := range frac {
		ms += int64(c-'0') * scale
		scale /= 10
	}
	return ms, nil
}

func allDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
