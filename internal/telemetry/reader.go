package telemetry

import (
	"errors"
	"fmt"
	"time"
)

// minChannels is the minimum number of channel slots in a snapshot.
// Downstream consumers (discovery payloads, dashboards) expect the
// dual-channel shape of the common two-tracker inverters.
const minChannels = 2

// Block is the capability-block handle the reader consumes. It is satisfied
// by *sunspec.MPPTBlock; tests use an in-memory fake.
//
// Field accessors return ErrFieldUnavailable when the device does not
// implement the field (absence and read-of-unimplemented are treated
// identically). Any other error means the read itself failed.
type Block interface {
	// Refresh re-reads the model's registers from the device.
	Refresh() error

	// ModuleCount returns the number of MPPT modules in the block.
	ModuleCount() int

	Voltage(module int) (float64, error)
	Current(module int) (float64, error)
	Power(module int) (float64, error)

	Temperature(module int) (float64, error)
	OperatingState(module int) (int, error)
	Events(module int) (uint32, error)
}

// Logger is the narrow logging interface the reader needs.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Reader converts raw MPPT block reads into snapshots, applying per-field
// fault isolation: a single broken module or missing diagnostic field never
// costs the rest of the poll.
type Reader struct {
	log Logger
}

// NewReader creates a Reader. The logger may be nil.
func NewReader(log Logger) *Reader {
	return &Reader{log: log}
}

// Snapshot reads one complete telemetry snapshot from the block.
//
// Failure scopes, narrowest first:
//   - a missing diagnostic field -> nil for that field only, logged
//   - a missing core field -> 0.0 for that field only
//   - a failed core-field read -> the whole module zeroed, logged,
//     remaining modules unaffected
//   - a failed block-level read (Refresh) or an empty module list ->
//     the snapshot is aborted with ErrReadFailed / ErrNoModules
func (r *Reader) Snapshot(b Block) (*Snapshot, error) {
	if err := b.Refresh(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}

	count := b.ModuleCount()
	if count < 1 {
		return nil, ErrNoModules
	}

	channels := make([]ChannelReading, 0, count)
	diags := make([]Diagnostics, 0, count)
	total := 0.0

	for i := 0; i < count; i++ {
		ch, diag, err := r.readModule(b, i)
		if err != nil {
			// Degrade this module only; the rest of the block is still good.
			r.warn("mppt module read failed", "module", i, "error", err)
			ch = ChannelReading{}
			diag = NewDiagnostics(nil, nil, nil)
		}
		channels = append(channels, ch)
		diags = append(diags, diag)
		total += ch.Power
	}

	// Pad to the dual-channel shape. Diagnostics stay parallel to the
	// modules that actually exist, so they are not padded.
	for len(channels) < minChannels {
		channels = append(channels, ChannelReading{})
	}

	return &Snapshot{
		Channels:    channels,
		Diagnostics: diags,
		TotalPower:  total,
		Timestamp:   time.Now(),
	}, nil
}

// readModule reads one module's core and diagnostic fields.
// A returned error means a core-field read failed and the module should be
// zeroed; diagnostic misses are absorbed here and never propagate.
func (r *Reader) readModule(b Block, module int) (ChannelReading, Diagnostics, error) {
	voltage, err := coreField(b.Voltage, module)
	if err != nil {
		return ChannelReading{}, Diagnostics{}, fmt.Errorf("voltage: %w", err)
	}
	current, err := coreField(b.Current, module)
	if err != nil {
		return ChannelReading{}, Diagnostics{}, fmt.Errorf("current: %w", err)
	}
	power, err := coreField(b.Power, module)
	if err != nil {
		return ChannelReading{}, Diagnostics{}, fmt.Errorf("power: %w", err)
	}

	// Each diagnostic field has its own failure scope: a miss in one must
	// not prevent the other two (or the core fields) from being captured.
	temperature := optionalField(r, "temperature", module, b.Temperature)
	state := optionalField(r, "operating_state", module, b.OperatingState)
	events := optionalField(r, "module_events", module, b.Events)

	return ChannelReading{
		Voltage: voltage,
		Current: current,
		Power:   power,
	}, NewDiagnostics(temperature, state, events), nil
}

// coreField reads a core electrical field. An unimplemented field defaults
// to zero; any other failure propagates so the caller can zero the module.
func coreField(read func(int) (float64, error), module int) (float64, error) {
	v, err := read(module)
	if err != nil {
		if errors.Is(err, ErrFieldUnavailable) {
			return 0, nil
		}
		return 0, err
	}
	return v, nil
}

// optionalField reads a diagnostic field, treating absence and read errors
// identically as "unavailable" (nil). Every miss is logged individually with
// the field name and module index so firmware gaps are diagnosable.
func optionalField[T any](r *Reader, field string, module int, read func(int) (T, error)) *T {
	v, err := read(module)
	if err != nil {
		r.debug("diagnostic field unavailable", "field", field, "module", module, "error", err)
		return nil
	}
	return &v
}

func (r *Reader) debug(msg string, args ...any) {
	if r.log != nil {
		r.log.Debug(msg, args...)
	}
}

func (r *Reader) warn(msg string, args ...any) {
	if r.log != nil {
		r.log.Warn(msg, args...)
	}
}
