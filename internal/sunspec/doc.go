// Package sunspec reads SunSpec-mapped registers from an inverter over
// Modbus TCP.
//
// Connect dials the device, probes the well-known base addresses for the
// "SunS" marker and walks the model chain, recording where each model's
// payload lives. The Common Model (1) yields the device identity; the MPPT
// extension model (160) yields per-tracker DC telemetry through MPPTBlock,
// which satisfies the telemetry package's Block interface.
//
// All transport goes through a one-method registerReader interface, so the
// decoding paths are testable against an in-memory register map.
package sunspec
