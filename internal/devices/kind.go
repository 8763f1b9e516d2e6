package devices

import "fmt"

// Kind identifies a device kind.
type Kind string

const (
	// KindInputHub is the 24-channel digital input hub (read-only,
	// randomised on a timer).
	KindInputHub Kind = "ihubx24"

	// KindOutputHub is the 24-channel digital output hub (write-only,
	// ring-logged).
	KindOutputHub Kind = "ohubx24"

	// KindIOHub is the 24-channel combined hub (read/write, no
	// change notification).
	KindIOHub Kind = "iohubx24"

	// KindDisplay is the character display sink (write-only).
	KindDisplay Kind = "lcd"

	// KindVint is the 6-channel externally-fed hub.
	KindVint Kind = "vintx6"

	// KindVideo is the video playback sink.
	KindVideo Kind = "video"
)

// Kinds returns all supported device kinds in a stable order.
func Kinds() []Kind {
	return []Kind{KindInputHub, KindOutputHub, KindIOHub, KindDisplay, KindVint, KindVideo}
}

// ParseKind validates a device kind string.
//
// Returns: the kind, or ErrUnknownKind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindInputHub, KindOutputHub, KindIOHub, KindDisplay, KindVint, KindVideo:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}
