// Package devices owns the device instance table: the fixed set of
// simulated device instances created once at startup, and the session
// layer that exposes each instance as a byte-stream endpoint.
//
// Opening a device yields a Conn. Reads and writes on the Conn follow
// the per-kind device file semantics: input hubs deliver one state
// line per change and then block (or report ErrWouldBlock in
// non-blocking mode), output-only devices reject reads, the combined
// hub delivers its states once per session, and video players deliver
// position or end-of-stream lines.
package devices
