package vint

import "errors"

var (
	// ErrNotConnected indicates an output write while no external
	// producer is attached to the hub.
	ErrNotConnected = errors.New("vint: external producer not connected")
)
