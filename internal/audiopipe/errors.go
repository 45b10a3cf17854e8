package audiopipe

import "errors"

// Sentinel errors surfaced by Stream: device unavailable, stream failed,
// and unsupported format cover the capture-side failure modes.
var (
	ErrDeviceUnavailable = errors.New("audiopipe: no capture device available")
	ErrStreamFailed      = errors.New("audiopipe: capture stream failed")
	ErrUnsupportedFormat = errors.New("audiopipe: capture device does not support the requested format")
)
