package telemetry

import "testing"

func intPtr(v int) *int         { return &v }
func u32Ptr(v uint32) *uint32   { return &v }
func f64Ptr(v float64) *float64 { return &v }

func TestFormatOperatingState(t *testing.T) {
	tests := []struct {
		name string
		code *int
		want string
	}{
		{"nil code", nil, "unknown"},
		{"off", intPtr(1), "OFF"},
		{"sleeping", intPtr(2), "SLEEPING"},
		{"starting", intPtr(3), "STARTING"},
		{"mppt", intPtr(4), "MPPT"},
		{"throttled", intPtr(5), "THROTTLED"},
		{"shutting down", intPtr(6), "SHUTTING_DOWN"},
		{"fault", intPtr(7), "FAULT"},
		{"standby", intPtr(8), "STANDBY"},
		{"test", intPtr(9), "TEST"},
		{"reserved", intPtr(10), "RESERVED_10"},
		{"zero is unknown", intPtr(0), "unknown_0"},
		{"out of range high", intPtr(99), "unknown_99"},
		{"negative", intPtr(-3), "unknown_-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatOperatingState(tt.code)
			if got != tt.want {
				t.Errorf("FormatOperatingState() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeEvents(t *testing.T) {
	tests := []struct {
		name     string
		bitfield *uint32
		want     string
	}{
		{"nil bitfield", nil, "unavailable"},
		{"no events", u32Ptr(0), "No active events"},
		{"single bit", u32Ptr(1 << 0), "GROUND_FAULT"},
		{"high bit", u32Ptr(1 << 22), "INPUT_OVER_CURRENT"},
		{
			"multiple bits ascending order",
			u32Ptr(1<<7 | 1<<0 | 1<<15),
			"GROUND_FAULT, OVER_TEMP, ARC_DETECTION",
		},
		{
			"all known bits",
			u32Ptr(1<<0 | 1<<1 | 1<<3 | 1<<5 | 1<<6 | 1<<7 | 1<<12 | 1<<13 | 1<<14 | 1<<15 | 1<<20 | 1<<21 | 1<<22),
			"GROUND_FAULT, INPUT_OVER_VOLTAGE, DC_DISCONNECT, CABINET_OPEN, " +
				"MANUAL_SHUTDOWN, OVER_TEMP, BLOWN_FUSE, UNDER_TEMP, MEMORY_LOSS, " +
				"ARC_DETECTION, TEST_FAILED, INPUT_UNDER_VOLTAGE, INPUT_OVER_CURRENT",
		},
		{"only reserved bits", u32Ptr(1<<2 | 1<<4 | 1<<30), "No active events"},
		{"reserved mixed with known", u32Ptr(1<<2 | 1<<13), "UNDER_TEMP"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeEvents(tt.bitfield)
			if got != tt.want {
				t.Errorf("DecodeEvents() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewDiagnosticsFormatsEagerly(t *testing.T) {
	d := NewDiagnostics(f64Ptr(42.5), intPtr(4), u32Ptr(1<<7))

	if d.FormattedState != "MPPT" {
		t.Errorf("FormattedState = %q, want %q", d.FormattedState, "MPPT")
	}
	if d.FormattedEvents != "OVER_TEMP" {
		t.Errorf("FormattedEvents = %q, want %q", d.FormattedEvents, "OVER_TEMP")
	}
	if d.Temperature == nil || *d.Temperature != 42.5 {
		t.Errorf("Temperature = %v, want 42.5", d.Temperature)
	}
}

func TestNewDiagnosticsAllNil(t *testing.T) {
	d := NewDiagnostics(nil, nil, nil)

	if d.FormattedState != "unknown" {
		t.Errorf("FormattedState = %q, want %q", d.FormattedState, "unknown")
	}
	if d.FormattedEvents != "unavailable" {
		t.Errorf("FormattedEvents = %q, want %q", d.FormattedEvents, "unavailable")
	}
}
