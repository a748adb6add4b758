package telemetry

import "errors"

// Snapshot-level failures. Each aborts the whole poll; no partial snapshot
// is ever returned alongside one of these.
var (
	// ErrNotConnected is returned when the telemetry link is down.
	ErrNotConnected = errors.New("telemetry: not connected")

	// ErrModelMissing is returned when the device lacks the MPPT extension model.
	ErrModelMissing = errors.New("telemetry: mppt model not present")

	// ErrNoModules is returned when the MPPT model reports no modules.
	ErrNoModules = errors.New("telemetry: no mppt modules available")

	// ErrReadFailed is returned when the block-level register read fails.
	ErrReadFailed = errors.New("telemetry: mppt read failed")
)

// ErrFieldUnavailable marks a single field the device does not implement
// (SunSpec "unimplemented" sentinel or a truncated module block). Core
// electrical fields default to zero on this error; diagnostic fields become
// nil. Any other error from a core field degrades the whole module.
var ErrFieldUnavailable = errors.New("telemetry: field unavailable")
