package devices

import "errors"

var (
	// ErrUnknownKind indicates a device kind string that matches no
	// supported device.
	ErrUnknownKind = errors.New("devices: unknown device kind")

	// ErrInvalidInstance indicates an instance index outside the
	// configured range for the kind.
	ErrInvalidInstance = errors.New("devices: invalid device instance")

	// ErrReadOnly indicates a write to a read-only device.
	ErrReadOnly = errors.New("devices: device is read-only")

	// ErrWriteOnly indicates a read from a write-only device.
	ErrWriteOnly = errors.New("devices: device is write-only")
)
