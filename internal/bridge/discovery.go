package bridge

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/fronius-bridge/internal/infrastructure/config"
	"github.com/nerrad567/fronius-bridge/internal/telemetry"
)

// channelCount is the number of PV string channels exposed to the platform.
// Snapshots are padded to this shape by the telemetry reader.
const channelCount = 2

// expireAfterSeconds marks sensor values stale when no state update arrived
// for this long.
const expireAfterSeconds = 3600

// discoveryPayload is a Home Assistant MQTT discovery config message.
type discoveryPayload struct {
	Name              string        `json:"name"`
	UniqueID          string        `json:"unique_id"`
	StateTopic        string        `json:"state_topic"`
	UnitOfMeasurement string        `json:"unit_of_measurement,omitempty"`
	DeviceClass       string        `json:"device_class,omitempty"`
	StateClass        string        `json:"state_class,omitempty"`
	ValueTemplate     string        `json:"value_template"`
	ExpireAfter       int           `json:"expire_after"`
	EntityCategory    string        `json:"entity_category,omitempty"`
	EnabledByDefault  *bool         `json:"enabled_by_default,omitempty"`
	Device            devicePayload `json:"device"`
}

// devicePayload is the shared device block linking all sensors to one
// device entry in the platform.
type devicePayload struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
}

// statePayload is one sensor state message.
type statePayload struct {
	Value     any    `json:"value"`
	Timestamp string `json:"timestamp"`
}

// sensorDef describes one sensor's discovery metadata and how to extract its
// value from a snapshot. A nil value function means the sensor can be
// missing from a given snapshot (diagnostics on absent modules).
type sensorDef struct {
	id               string
	name             string
	unit             string
	deviceClass      string
	stateClass       string
	entityCategory   string
	enabledByDefault *bool
	value            func(*telemetry.Snapshot) (any, bool)
}

// Publisher shapes snapshots and discovery metadata into bus messages.
type Publisher struct {
	bus    BusLink
	prefix string
	qos    byte
	diag   config.DiagnosticsConfig
	log    Logger
}

// NewPublisher creates a Publisher. The QoS applies to discovery messages;
// state messages always go out at QoS 0, losing one reading is cheaper than
// queueing them during broker trouble.
func NewPublisher(bus BusLink, mqttCfg config.MQTTConfig, diag config.DiagnosticsConfig, log Logger) *Publisher {
	return &Publisher{
		bus:    bus,
		prefix: mqttCfg.TopicPrefix,
		qos:    byte(mqttCfg.QoS),
		diag:   diag,
		log:    log,
	}
}

// PublishDiscovery publishes the retained discovery config for every enabled
// sensor. Any publish failure aborts and is returned so the caller can retry
// the whole set next cycle.
func (p *Publisher) PublishDiscovery(id Identity) error {
	device := devicePayload{
		Identifiers:  []string{deviceID(id)},
		Name:         fmt.Sprintf("%s %s", id.Manufacturer, id.Model),
		Manufacturer: id.Manufacturer,
		Model:        id.Model,
	}

	for _, s := range p.sensors() {
		payload := discoveryPayload{
			Name:              s.name,
			UniqueID:          fmt.Sprintf("%s_%s", deviceID(id), s.id),
			StateTopic:        p.stateTopic(id, s.id),
			UnitOfMeasurement: s.unit,
			DeviceClass:       s.deviceClass,
			StateClass:        s.stateClass,
			ValueTemplate:     "{{ value_json.value }}",
			ExpireAfter:       expireAfterSeconds,
			EntityCategory:    s.entityCategory,
			EnabledByDefault:  s.enabledByDefault,
			Device:            device,
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("bridge: discovery payload %s: %w", s.id, err)
		}
		topic := fmt.Sprintf("%s/sensor/%s/%s/config", p.prefix, deviceID(id), s.id)
		if err := p.bus.Publish(topic, data, p.qos, true); err != nil {
			return fmt.Errorf("bridge: discovery publish %s: %w", s.id, err)
		}
	}
	p.log.Info("discovery published", "device", deviceID(id), "sensors", len(p.sensors()))
	return nil
}

// PublishSnapshot publishes one state message per sensor with a value in the
// snapshot. The first transport failure aborts the set.
func (p *Publisher) PublishSnapshot(id Identity, snap *telemetry.Snapshot) error {
	ts := snap.Timestamp.Format(time.RFC3339)

	for _, s := range p.sensors() {
		value, ok := s.value(snap)
		if !ok {
			continue
		}
		data, err := json.Marshal(statePayload{Value: value, Timestamp: ts})
		if err != nil {
			return fmt.Errorf("bridge: state payload %s: %w", s.id, err)
		}
		if err := p.bus.Publish(p.stateTopic(id, s.id), data, 0, false); err != nil {
			return fmt.Errorf("bridge: state publish %s: %w", s.id, err)
		}
	}
	return nil
}

func (p *Publisher) stateTopic(id Identity, sensorID string) string {
	return fmt.Sprintf("%s/sensor/%s/%s/state", p.prefix, deviceID(id), sensorID)
}

// sensors returns the full sensor set: the core electrical sensors per PV
// channel plus total power, and the diagnostic sensors the configuration
// enables.
func (p *Publisher) sensors() []sensorDef {
	defs := make([]sensorDef, 0, 4*channelCount+1)

	for ch := 0; ch < channelCount; ch++ {
		label := fmt.Sprintf("pv%d", ch+1)
		defs = append(defs,
			sensorDef{
				id:          label + "_voltage",
				name:        fmt.Sprintf("PV%d Voltage", ch+1),
				unit:        "V",
				deviceClass: "voltage",
				stateClass:  "measurement",
				value: func(s *telemetry.Snapshot) (any, bool) {
					return s.Channels[ch].Voltage, true
				},
			},
			sensorDef{
				id:          label + "_current",
				name:        fmt.Sprintf("PV%d Current", ch+1),
				unit:        "A",
				deviceClass: "current",
				stateClass:  "measurement",
				value: func(s *telemetry.Snapshot) (any, bool) {
					return s.Channels[ch].Current, true
				},
			},
			sensorDef{
				id:          label + "_power",
				name:        fmt.Sprintf("PV%d Power", ch+1),
				unit:        "W",
				deviceClass: "power",
				stateClass:  "measurement",
				value: func(s *telemetry.Snapshot) (any, bool) {
					return s.Channels[ch].Power, true
				},
			},
		)
		defs = append(defs, p.diagnosticSensors(ch)...)
	}

	defs = append(defs, sensorDef{
		id:          "total_power",
		name:        "Total DC Power",
		unit:        "W",
		deviceClass: "power",
		stateClass:  "measurement",
		value: func(s *telemetry.Snapshot) (any, bool) {
			return s.TotalPower, true
		},
	})
	return defs
}

// diagnosticSensors returns the enabled diagnostic sensors for one channel.
func (p *Publisher) diagnosticSensors(ch int) []sensorDef {
	if !p.diag.Enabled {
		return nil
	}
	label := fmt.Sprintf("pv%d", ch+1)

	var defs []sensorDef
	if p.diag.Temperature.Enabled {
		defs = append(defs, sensorDef{
			id:               label + "_temperature",
			name:             fmt.Sprintf("PV%d Temperature", ch+1),
			unit:             "°C",
			deviceClass:      "temperature",
			stateClass:       "measurement",
			entityCategory:   "diagnostic",
			enabledByDefault: boolPtr(p.diag.Temperature.EnabledByDefault),
			value: func(s *telemetry.Snapshot) (any, bool) {
				if ch >= len(s.Diagnostics) || s.Diagnostics[ch].Temperature == nil {
					return nil, false
				}
				return *s.Diagnostics[ch].Temperature, true
			},
		})
	}
	if p.diag.OperatingState.Enabled {
		defs = append(defs, sensorDef{
			id:               label + "_operating_state",
			name:             fmt.Sprintf("PV%d Operating State", ch+1),
			entityCategory:   "diagnostic",
			enabledByDefault: boolPtr(p.diag.OperatingState.EnabledByDefault),
			value: func(s *telemetry.Snapshot) (any, bool) {
				if ch >= len(s.Diagnostics) {
					return nil, false
				}
				return s.Diagnostics[ch].FormattedState, true
			},
		})
	}
	if p.diag.ModuleEvents.Enabled {
		defs = append(defs, sensorDef{
			id:               label + "_module_events",
			name:             fmt.Sprintf("PV%d Module Events", ch+1),
			entityCategory:   "diagnostic",
			enabledByDefault: boolPtr(p.diag.ModuleEvents.EnabledByDefault),
			value: func(s *telemetry.Snapshot) (any, bool) {
				if ch >= len(s.Diagnostics) {
					return nil, false
				}
				return s.Diagnostics[ch].FormattedEvents, true
			},
		})
	}
	return defs
}

// deviceID is the stable per-device identifier used in topics and unique
// ids.
func deviceID(id Identity) string {
	return "fronius_" + id.SerialNumber
}

func boolPtr(v bool) *bool { return &v }
