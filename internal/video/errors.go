package video

import "errors"

var (
	// ErrInvalidArgument indicates a command with a malformed or
	// out-of-range argument. Writers never see it: the command is
	// ignored and the write reports full consumption.
	ErrInvalidArgument = errors.New("video: invalid command argument")
)
