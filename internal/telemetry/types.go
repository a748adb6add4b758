package telemetry

import "time"

// ChannelReading holds the electrical values of a single MPPT channel.
// A channel whose registers could not be read is represented as the zero
// value rather than being dropped, so channel indexes stay stable.
type ChannelReading struct {
	Voltage float64 // Volts
	Current float64 // Amps
	Power   float64 // Watts
}

// Diagnostics holds the optional diagnostic values of a single MPPT module.
//
// The raw fields are pointers because firmware may not implement them; nil
// means "unavailable", which is distinct from a zero reading. The formatted
// fields are derived from the raw fields at construction time and are never
// set directly - use NewDiagnostics so the pair can never disagree.
type Diagnostics struct {
	Temperature    *float64 // Celsius, nil if unavailable
	OperatingState *int     // Raw enum value, nil if unavailable
	Events         *uint32  // Raw bitfield, nil if unavailable

	FormattedState  string
	FormattedEvents string
}

// NewDiagnostics builds a Diagnostics with the formatted fields filled in.
// This is the only constructor; building the struct literally would allow
// the raw and formatted fields to drift apart.
func NewDiagnostics(temperature *float64, operatingState *int, events *uint32) Diagnostics {
	return Diagnostics{
		Temperature:     temperature,
		OperatingState:  operatingState,
		Events:          events,
		FormattedState:  FormatOperatingState(operatingState),
		FormattedEvents: DecodeEvents(events),
	}
}

// Snapshot is one complete telemetry poll of the inverter.
//
// Channels always has at least two entries (consumers expect the dual-channel
// shape; missing modules are padded with zero readings). Diagnostics is
// parallel to the modules actually present on the device, so its length may
// be shorter than Channels when padding was applied.
//
// TotalPower is the arithmetic sum of the channel powers at read time.
type Snapshot struct {
	Channels    []ChannelReading
	Diagnostics []Diagnostics
	TotalPower  float64
	Timestamp   time.Time
}
