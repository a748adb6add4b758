// Package telemetry turns raw SunSpec MPPT register values into structured,
// display-ready readings.
//
// It has two halves:
//
//   - The decoder: pure functions mapping the DCSt operating-state enum and
//     the DCEvt events bitfield to stable human-readable strings, with
//     defined output for unknown and missing values.
//   - The reader: converts a capability-block handle into a Snapshot with
//     per-field fault isolation, so one dead module or one unimplemented
//     diagnostic register never costs a whole poll.
//
// The package has no transport dependencies; it consumes the Block interface
// and is exercised in tests with an in-memory fake.
package telemetry
