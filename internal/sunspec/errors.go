package sunspec

import "errors"

var (
	// ErrNotConnected is returned when an operation requires an open
	// connection and there is none.
	ErrNotConnected = errors.New("sunspec: not connected")

	// ErrNoDevice is returned when no SunSpec marker was found at any of
	// the well-known base addresses.
	ErrNoDevice = errors.New("sunspec: no sunspec device found")

	// ErrModelNotPresent is returned when the device's model chain does not
	// contain the requested model.
	ErrModelNotPresent = errors.New("sunspec: model not present")

	// ErrModuleOutOfRange is returned for a module index beyond the block's
	// module count.
	ErrModuleOutOfRange = errors.New("sunspec: module index out of range")
)
