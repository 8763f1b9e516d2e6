// Package vint implements the externally-fed 6-channel hub (vintx6).
//
// Unlike the self-contained hubs, a vint hub has no internal timer:
// its input channels are fed by an external producer (typically the
// MQTT bridge) and its output channels are forwarded back to that
// producer. Until a producer declares itself connected, output writes
// fail with ErrNotConnected.
package vint
