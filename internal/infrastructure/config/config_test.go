package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
modbus:
  host: "192.168.1.50"
  port: 502
  unit_id: 1
  timeout: 5
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "fronius-test"
  qos: 1
  topic_prefix: "homeassistant"
application:
  poll_interval: 10
  republish_interval: 3600
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Modbus.Host != "192.168.1.50" {
		t.Errorf("Modbus.Host = %q, want %q", cfg.Modbus.Host, "192.168.1.50")
	}

	if cfg.MQTT.Broker.ClientID != "fronius-test" {
		t.Errorf("MQTT.Broker.ClientID = %q, want %q", cfg.MQTT.Broker.ClientID, "fronius-test")
	}

	if cfg.Application.PollInterval != 10 {
		t.Errorf("Application.PollInterval = %d, want 10", cfg.Application.PollInterval)
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	// Minimal config: everything not specified should come from defaults.
	content := `
modbus:
  host: "inverter.local"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Modbus.Port != 502 {
		t.Errorf("Modbus.Port = %d, want default 502", cfg.Modbus.Port)
	}

	if cfg.MQTT.TopicPrefix != "homeassistant" {
		t.Errorf("MQTT.TopicPrefix = %q, want default %q", cfg.MQTT.TopicPrefix, "homeassistant")
	}

	if !cfg.Diagnostics.OperatingState.EnabledByDefault {
		t.Error("Diagnostics.OperatingState.EnabledByDefault = false, want default true")
	}

	if cfg.Diagnostics.Temperature.EnabledByDefault {
		t.Error("Diagnostics.Temperature.EnabledByDefault = true, want default false")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	content := `
modbus:
  host: "from-file"
mqtt:
  auth:
    username: "file-user"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("FRONIUS_MODBUS_HOST", "from-env")
	t.Setenv("FRONIUS_MQTT_PASSWORD", "secret-from-env")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Modbus.Host != "from-env" {
		t.Errorf("Modbus.Host = %q, want env override %q", cfg.Modbus.Host, "from-env")
	}

	if cfg.MQTT.Auth.Username != "file-user" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "file-user")
	}

	if cfg.MQTT.Auth.Password != "secret-from-env" {
		t.Errorf("MQTT.Auth.Password = %q, want env override", cfg.MQTT.Auth.Password)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Modbus.Host = "192.168.1.50"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: "",
		},
		{
			name:    "missing modbus host",
			mutate:  func(c *Config) { c.Modbus.Host = "" },
			wantErr: "modbus.host",
		},
		{
			name:    "modbus port out of range",
			mutate:  func(c *Config) { c.Modbus.Port = 70000 },
			wantErr: "modbus.port",
		},
		{
			name:    "unit id out of range",
			mutate:  func(c *Config) { c.Modbus.UnitID = 300 },
			wantErr: "modbus.unit_id",
		},
		{
			name:    "zero modbus timeout",
			mutate:  func(c *Config) { c.Modbus.Timeout = 0 },
			wantErr: "modbus.timeout",
		},
		{
			name:    "empty client id",
			mutate:  func(c *Config) { c.MQTT.Broker.ClientID = "  " },
			wantErr: "mqtt.broker.client_id",
		},
		{
			name:    "invalid qos",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "mqtt.qos",
		},
		{
			name:    "empty topic prefix",
			mutate:  func(c *Config) { c.MQTT.TopicPrefix = "" },
			wantErr: "mqtt.topic_prefix",
		},
		{
			name:    "zero poll interval",
			mutate:  func(c *Config) { c.Application.PollInterval = 0 },
			wantErr: "application.poll_interval",
		},
		{
			name:    "negative poll interval",
			mutate:  func(c *Config) { c.Application.PollInterval = -5 },
			wantErr: "application.poll_interval",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_CollectsAllErrors(t *testing.T) {
	cfg := defaultConfig()
	cfg.Modbus.Host = ""
	cfg.MQTT.QoS = 5
	cfg.Application.PollInterval = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() error = nil, want error")
	}

	for _, want := range []string{"modbus.host", "mqtt.qos", "application.poll_interval"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error = %v, want it to mention %q", err, want)
		}
	}
}

func TestConfig_DurationAccessors(t *testing.T) {
	cfg := defaultConfig()
	cfg.Modbus.Timeout = 7
	cfg.Application.PollInterval = 15

	if got := cfg.GetModbusTimeout().Seconds(); got != 7 {
		t.Errorf("GetModbusTimeout() = %vs, want 7s", got)
	}
	if got := cfg.GetPollInterval().Seconds(); got != 15 {
		t.Errorf("GetPollInterval() = %vs, want 15s", got)
	}
}
