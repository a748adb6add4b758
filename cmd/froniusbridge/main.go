// Fronius Bridge - SunSpec inverter to MQTT bridge
//
// Polls a Fronius inverter's SunSpec registers over Modbus TCP and publishes
// per-string DC telemetry to an MQTT broker with Home Assistant discovery.
// Both connections recover independently with bounded exponential backoff;
// the process itself never exits on a link failure.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/fronius-bridge/internal/bridge"
	"github.com/nerrad567/fronius-bridge/internal/infrastructure/config"
	"github.com/nerrad567/fronius-bridge/internal/infrastructure/logging"
	"github.com/nerrad567/fronius-bridge/internal/infrastructure/mqtt"
	"github.com/nerrad567/fronius-bridge/internal/sunspec"
	"github.com/nerrad567/fronius-bridge/internal/telemetry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Fronius bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Neither client dials here; the bridge controller owns both connection
	// lifecycles, including every retry.
	sunspecClient := sunspec.New(sunspec.Config{
		Host:    cfg.Modbus.Host,
		Port:    cfg.Modbus.Port,
		UnitID:  uint8(cfg.Modbus.UnitID),
		Timeout: cfg.GetModbusTimeout(),
	}, log.With("component", "sunspec"))

	mqttClient := mqtt.New(cfg.MQTT)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT connected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	telemetryLink := &telemetryLinkAdapter{
		client: sunspecClient,
		reader: telemetry.NewReader(log.With("component", "telemetry")),
	}
	busLink := &busLinkAdapter{client: mqttClient}

	publisher := bridge.NewPublisher(busLink, cfg.MQTT, cfg.Diagnostics, log.With("component", "publisher"))
	controller := bridge.NewController(telemetryLink, busLink, publisher, bridge.Config{
		Capability:        sunspec.ModelMPPT,
		PollInterval:      cfg.GetPollInterval(),
		RepublishInterval: cfg.GetRepublishInterval(),
	}, log.With("component", "bridge"))

	log.Info("bridge configured",
		"inverter", fmt.Sprintf("%s:%d", cfg.Modbus.Host, cfg.Modbus.Port),
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"poll_interval", cfg.GetPollInterval(),
	)

	return controller.Run(ctx)
}

// getConfigPath returns the configuration file path.
// Uses FRONIUS_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("FRONIUS_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// telemetryLinkAdapter binds the SunSpec client and the telemetry reader to
// the bridge's TelemetryLink interface. The MPPT block handle is rebuilt
// after every reconnect because model regions are fixed at scan time.
type telemetryLinkAdapter struct {
	client *sunspec.Client
	reader *telemetry.Reader
	block  *sunspec.MPPTBlock
}

// Connect implements bridge.TelemetryLink.
func (a *telemetryLinkAdapter) Connect() error {
	a.block = nil
	return a.client.Connect()
}

// Close implements bridge.TelemetryLink.
func (a *telemetryLinkAdapter) Close() error {
	a.block = nil
	return a.client.Close()
}

// HasCapability implements bridge.TelemetryLink.
func (a *telemetryLinkAdapter) HasCapability(id uint16) bool {
	return a.client.HasModel(id)
}

// DeviceInfo implements bridge.TelemetryLink.
func (a *telemetryLinkAdapter) DeviceInfo() (bridge.Identity, error) {
	info, err := a.client.DeviceInfo()
	if err != nil {
		return bridge.Identity{}, err
	}
	return bridge.Identity{
		Manufacturer: info.Manufacturer,
		Model:        info.Model,
		SerialNumber: info.SerialNumber,
	}, nil
}

// ReadSnapshot implements bridge.TelemetryLink.
func (a *telemetryLinkAdapter) ReadSnapshot() (*telemetry.Snapshot, error) {
	if !a.client.Connected() {
		return nil, telemetry.ErrNotConnected
	}
	if a.block == nil {
		block, err := a.client.MPPT()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", telemetry.ErrModelMissing, err)
		}
		a.block = block
	}
	return a.reader.Snapshot(a.block)
}

// busLinkAdapter binds the infrastructure MQTT client to the bridge's
// BusLink interface.
type busLinkAdapter struct {
	client *mqtt.Client
}

// Connect implements bridge.BusLink.
func (a *busLinkAdapter) Connect() error {
	return a.client.Connect()
}

// Close implements bridge.BusLink.
func (a *busLinkAdapter) Close() error {
	return a.client.Close()
}

// IsConnected implements bridge.BusLink.
func (a *busLinkAdapter) IsConnected() bool {
	return a.client.IsConnected()
}

// Publish implements bridge.BusLink.
func (a *busLinkAdapter) Publish(topic string, payload []byte, qos byte, retained bool) error {
	return a.client.Publish(topic, payload, qos, retained)
}
