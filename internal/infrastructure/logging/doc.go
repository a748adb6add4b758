// Package logging provides structured logging for the Fronius bridge.
//
// It wraps log/slog with the bridge's default fields (service, version) and
// config-driven handler selection. Components that should not depend on the
// concrete logger (sunspec, telemetry, bridge) accept their own narrow Logger
// interfaces, which *logging.Logger satisfies.
package logging
