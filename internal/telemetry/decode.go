package telemetry

import (
	"fmt"
	"strings"
)

// operatingStateNames maps SunSpec DCSt enum values to display names.
// Values outside this table are rendered as "unknown_<code>".
var operatingStateNames = map[int]string{
	1:  "OFF",
	2:  "SLEEPING",
	3:  "STARTING",
	4:  "MPPT",
	5:  "THROTTLED",
	6:  "SHUTTING_DOWN",
	7:  "FAULT",
	8:  "STANDBY",
	9:  "TEST",
	10: "RESERVED_10",
}

// moduleEventBits lists the known DCEvt bit positions in ascending order,
// paired with their event names. Bits not listed here are reserved and are
// ignored when decoding.
var moduleEventBits = []struct {
	bit  uint
	name string
}{
	{0, "GROUND_FAULT"},
	{1, "INPUT_OVER_VOLTAGE"},
	{3, "DC_DISCONNECT"},
	{5, "CABINET_OPEN"},
	{6, "MANUAL_SHUTDOWN"},
	{7, "OVER_TEMP"},
	{12, "BLOWN_FUSE"},
	{13, "UNDER_TEMP"},
	{14, "MEMORY_LOSS"},
	{15, "ARC_DETECTION"},
	{20, "TEST_FAILED"},
	{21, "INPUT_UNDER_VOLTAGE"},
	{22, "INPUT_OVER_CURRENT"},
}

// FormatOperatingState converts a raw operating state value to a
// human-readable name.
//
// A nil code (field unavailable on the device) yields "unknown". Any value
// outside the known table, including negatives, yields "unknown_<code>" with
// the raw value printed verbatim.
func FormatOperatingState(code *int) string {
	if code == nil {
		return "unknown"
	}
	if name, ok := operatingStateNames[*code]; ok {
		return name
	}
	return fmt.Sprintf("unknown_%d", *code)
}

// DecodeEvents converts a raw module events bitfield to a comma-separated
// list of active event names, in ascending bit-position order.
//
// A nil bitfield (field unavailable on the device) yields "unavailable".
// A zero bitfield, or one where only reserved bits are set, yields
// "No active events".
func DecodeEvents(bitfield *uint32) string {
	if bitfield == nil {
		return "unavailable"
	}
	if *bitfield == 0 {
		return "No active events"
	}

	var active []string
	for _, e := range moduleEventBits {
		if *bitfield&(1<<e.bit) != 0 {
			active = append(active, e.name)
		}
	}

	if len(active) == 0 {
		return "No active events"
	}
	return strings.Join(active, ", ")
}
