package bridge

import (
	"fmt"
	"time"

	"github.com/nerrad567/fronius-bridge/internal/telemetry"
)

// Identity is the device self-description used in bus topics and discovery
// payloads. Absent identity (best-effort fetch failed) is a nil pointer on
// ConnectionState.
type Identity struct {
	Manufacturer string
	Model        string
	SerialNumber string
}

// TelemetryLink is the register-protocol collaborator as seen by the state
// machine. Connect performs the full dial-and-scan; HasCapability answers
// from the most recent scan.
type TelemetryLink interface {
	Connect() error
	Close() error
	HasCapability(id uint16) bool
	DeviceInfo() (Identity, error)
	ReadSnapshot() (*telemetry.Snapshot, error)
}

// BusLink is the message-bus collaborator as seen by the state machine.
type BusLink interface {
	Connect() error
	Close() error
	IsConnected() bool
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Logger is the narrow logging interface the bridge needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ConnectionState tracks both link lifecycles and the state derived from
// them. One instance lives for the whole process, owned by the Controller
// and mutated only by the transition functions in this file.
//
// Invariant, enforced by the transitions: CapabilityVerified implies
// TelemetryConnected.
type ConnectionState struct {
	TelemetryConnected bool
	BusConnected       bool
	CapabilityVerified bool
	DiscoveryPublished bool

	Identity *Identity

	TelemetryRetries    int
	BusRetries          int
	VerificationRetries int
}

// maxBackoff caps every retry curve.
const maxBackoff = 60 * time.Second

// Backoff returns the retry delay for a 0-indexed attempt count:
// 1s, 2s, 4s, ... capped at 60s. Each retry counter gets its own curve.
func Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= 6 {
		return maxBackoff
	}
	return time.Second << uint(attempt)
}

// stepTelemetryLink drives the telemetry link toward connected-and-verified.
//
// Already connected is a no-op. Otherwise it connects, verifies the
// capability model is present, and fetches the device identity once
// (best-effort). A connected device without the capability is demoted back
// to disconnected, with the transport closed so the retry performs a fresh
// connect and scan; verifying again on the same handle could never succeed
// because model presence is fixed at scan time.
//
// On failure the relevant retry counter supplies the backoff delay and then
// advances, so the first failure sleeps Backoff(0).
func stepTelemetryLink(link TelemetryLink, capability uint16, state *ConnectionState, log Logger) (time.Duration, error) {
	if state.TelemetryConnected {
		return 0, nil
	}

	if err := link.Connect(); err != nil {
		delay := Backoff(state.TelemetryRetries)
		state.TelemetryRetries++
		return delay, fmt.Errorf("%w: %w", ErrTelemetryUnavailable, err)
	}
	state.TelemetryConnected = true
	state.TelemetryRetries = 0

	if !link.HasCapability(capability) {
		state.TelemetryConnected = false
		state.CapabilityVerified = false
		if err := link.Close(); err != nil {
			log.Warn("telemetry link close failed", "error", err)
		}
		delay := Backoff(state.VerificationRetries)
		state.VerificationRetries++
		return delay, fmt.Errorf("%w: model %d", ErrCapabilityMissing, capability)
	}
	state.CapabilityVerified = true
	state.VerificationRetries = 0

	if state.Identity == nil {
		id, err := link.DeviceInfo()
		if err != nil {
			log.Warn("device identity unavailable", "error", err)
		} else {
			state.Identity = &id
			log.Info("device identified",
				"manufacturer", id.Manufacturer,
				"model", id.Model,
				"serial", id.SerialNumber)
		}
	}
	return 0, nil
}

// stepBusLink drives the bus link toward connected. Already connected is a
// no-op. After a successful connect, discovery is published best-effort if
// the device identity is known; a discovery failure is logged and retried
// next cycle, it never fails the step or blocks telemetry publishing.
func stepBusLink(link BusLink, publishDiscovery func() error, state *ConnectionState, log Logger) (time.Duration, error) {
	if state.BusConnected {
		return 0, nil
	}

	if err := link.Connect(); err != nil {
		delay := Backoff(state.BusRetries)
		state.BusRetries++
		return delay, fmt.Errorf("%w: %w", ErrBusUnavailable, err)
	}
	state.BusConnected = true
	state.BusRetries = 0

	if state.Identity == nil {
		log.Debug("discovery deferred, device identity not yet known")
		return 0, nil
	}
	if err := publishDiscovery(); err != nil {
		log.Warn("discovery publish failed, will retry next cycle", "error", err)
		return 0, nil
	}
	state.DiscoveryPublished = true
	return 0, nil
}

// onPublishFailure handles a failed snapshot publish. If the bus reports
// itself disconnected, the bus state is demoted and DiscoveryPublished is
// cleared so discovery is republished after reconnection, since the broker
// may have lost retained state. Telemetry state is never touched here.
func onPublishFailure(link BusLink, state *ConnectionState, log Logger) {
	if link.IsConnected() {
		return
	}
	state.BusConnected = false
	state.DiscoveryPublished = false
	log.Warn("bus connection lost, discovery will be republished on reconnect")
}

// onTelemetryReadFailure demotes the telemetry link so the next cycle does a
// full reconnect and reverify. Bus state and the discovery flag are never
// touched here; a telemetry fault is not a bus fault.
func onTelemetryReadFailure(state *ConnectionState) {
	state.TelemetryConnected = false
	state.CapabilityVerified = false
}
