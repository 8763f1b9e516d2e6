// Package hub implements the 24-channel digital hub simulations.
//
// Three device kinds share the channel state machinery:
//
//   - InputHub (ihubx24): read-only; a timer randomises the channel
//     states periodically and wakes blocked readers on change.
//   - OutputHub (ohubx24): write-only; accepted writes fully replace
//     the channel states and are recorded in a bounded ring log.
//   - IOHub (iohubx24): plain read/write with no change notification.
//
// Channel states are fixed-width byte arrays of '0'/'1'. A write is a
// full replacement: the payload is filtered down to its binary digits
// ('\n' and '\r' act as separators, everything else is dropped) and
// channels without an incoming digit reset to '0'. Writes never fail
// on malformed payloads; the full input length is reported as consumed.
package hub
