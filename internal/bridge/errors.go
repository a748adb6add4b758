package bridge

import "errors"

var (
	// ErrTelemetryUnavailable wraps a telemetry link connect failure.
	ErrTelemetryUnavailable = errors.New("bridge: telemetry link unavailable")

	// ErrCapabilityMissing is returned when the device connected but lacks
	// the required capability model. The link is treated as disconnected
	// until the capability appears.
	ErrCapabilityMissing = errors.New("bridge: required capability not present")

	// ErrBusUnavailable wraps a bus link connect failure.
	ErrBusUnavailable = errors.New("bridge: bus link unavailable")
)
