// Package bridge contains the orchestration core: the dual-link connection
// state machine, the drift-free poll scheduler, the Home Assistant
// publication layer and the controller that composes them into the run loop.
//
// The two links (register telemetry, message bus) fail and recover
// independently, each with its own bounded exponential backoff curve. State
// derived from a link - capability verification on the telemetry side,
// discovery publication on the bus side - is re-established whenever that
// link reconnects. All state lives in one ConnectionState owned by the
// Controller and mutated only by the transition functions, on a single
// goroutine.
package bridge
