// Package watch implements per-device reader registration and change
// notification.
//
// Each device instance owns a Registry. A reader session registers
// itself and receives a Reader handle with a private pending flag and a
// wake channel. When the device state changes, the device calls
// NotifyAll, which marks every registered reader pending and wakes any
// that are blocked.
//
// The pending flag is level-triggered: multiple state changes between
// two reads collapse into a single wakeup, and consuming the flag
// (Wait or TryWait returning nil) rearms the reader for the next
// change. Readers for hub devices register with the flag already set,
// so the first read always returns the current state without blocking.
//
// # Usage
//
//	reg := watch.NewRegistry(0)
//	r, _ := reg.Register(true)
//	defer r.Close()
//
//	if err := r.Wait(ctx); err != nil { ... }
//	payload := device.Snapshot()
//
// Thread Safety: all Registry and Reader methods are safe for
// concurrent use.
package watch
