package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the Fronius bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Modbus      ModbusConfig      `yaml:"modbus"`
	MQTT        MQTTConfig        `yaml:"mqtt"`
	Application ApplicationConfig `yaml:"application"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ModbusConfig contains the inverter's Modbus TCP connection settings.
type ModbusConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	UnitID  int    `yaml:"unit_id"`
	Timeout int    `yaml:"timeout"` // seconds
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker      MQTTBrokerConfig `yaml:"broker"`
	Auth        MQTTAuthConfig   `yaml:"auth"`
	QoS         int              `yaml:"qos"`
	TopicPrefix string           `yaml:"topic_prefix"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// ApplicationConfig contains polling behaviour settings.
type ApplicationConfig struct {
	// PollInterval is the telemetry polling cadence in seconds.
	PollInterval int `yaml:"poll_interval"`

	// RepublishInterval is how often (seconds) discovery messages are
	// refreshed on the broker, in case retained state was lost.
	RepublishInterval int `yaml:"republish_interval"`
}

// DiagnosticsConfig controls which diagnostic sensor categories are exposed
// to the home-automation platform.
type DiagnosticsConfig struct {
	Enabled        bool             `yaml:"enabled"`
	Temperature    SensorFlagConfig `yaml:"temperature"`
	OperatingState SensorFlagConfig `yaml:"operating_state"`
	ModuleEvents   SensorFlagConfig `yaml:"module_events"`
}

// SensorFlagConfig holds the per-category diagnostic sensor flags.
// Enabled controls whether the sensor is published at all;
// EnabledByDefault controls its initial visibility in the platform UI.
type SensorFlagConfig struct {
	Enabled          bool `yaml:"enabled"`
	EnabledByDefault bool `yaml:"enabled_by_default"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: FRONIUS_SECTION_KEY
// For example: FRONIUS_MODBUS_HOST, FRONIUS_MQTT_PASSWORD
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Modbus: ModbusConfig{
			Port:    502,
			UnitID:  1,
			Timeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "fronius-bridge",
			},
			QoS:         1,
			TopicPrefix: "homeassistant",
		},
		Application: ApplicationConfig{
			PollInterval:      10,
			RepublishInterval: 3600,
		},
		Diagnostics: DiagnosticsConfig{
			Enabled:        true,
			Temperature:    SensorFlagConfig{Enabled: true, EnabledByDefault: false},
			OperatingState: SensorFlagConfig{Enabled: true, EnabledByDefault: true},
			ModuleEvents:   SensorFlagConfig{Enabled: true, EnabledByDefault: false},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: FRONIUS_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Modbus
	if v := os.Getenv("FRONIUS_MODBUS_HOST"); v != "" {
		cfg.Modbus.Host = v
	}

	// MQTT
	if v := os.Getenv("FRONIUS_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("FRONIUS_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("FRONIUS_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
}

// Validate checks the configuration for errors.
//
// All problems are collected so a broken config reports everything at once
// rather than one failure per restart.
//
// Returns:
//   - error: Description of validation failures, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Modbus validation
	if c.Modbus.Host == "" {
		errs = append(errs, "modbus.host is required")
	}
	if c.Modbus.Port < 1 || c.Modbus.Port > 65535 {
		errs = append(errs, "modbus.port must be between 1 and 65535")
	}
	if c.Modbus.UnitID < 0 || c.Modbus.UnitID > 255 {
		errs = append(errs, "modbus.unit_id must be between 0 and 255")
	}
	if c.Modbus.Timeout <= 0 {
		errs = append(errs, "modbus.timeout must be greater than 0")
	}

	// MQTT validation
	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if strings.TrimSpace(c.MQTT.Broker.ClientID) == "" {
		errs = append(errs, "mqtt.broker.client_id is required")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if strings.TrimSpace(c.MQTT.TopicPrefix) == "" {
		errs = append(errs, "mqtt.topic_prefix is required")
	}

	// Application validation
	if c.Application.PollInterval <= 0 {
		errs = append(errs, "application.poll_interval must be greater than 0")
	}
	if c.Application.RepublishInterval <= 0 {
		errs = append(errs, "application.republish_interval must be greater than 0")
	}

	// Logging validation
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, "logging.level must be one of: debug, info, warn, error")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, "logging.format must be json or text")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetModbusTimeout returns the Modbus connection timeout as a Duration.
func (c *Config) GetModbusTimeout() time.Duration {
	return time.Duration(c.Modbus.Timeout) * time.Second
}

// GetPollInterval returns the telemetry polling interval as a Duration.
func (c *Config) GetPollInterval() time.Duration {
	return time.Duration(c.Application.PollInterval) * time.Second
}

// GetRepublishInterval returns the discovery republish interval as a Duration.
func (c *Config) GetRepublishInterval() time.Duration {
	return time.Duration(c.Application.RepublishInterval) * time.Second
}
