package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
devices:
  input_hubs: 3
  output_hubs: 2
  io_hubs: 1
  displays: 1
  vint_hubs: 1
  videos: 2
  input_update_interval: 5
history:
  enabled: true
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  enabled: true
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
api:
  host: "0.0.0.0"
  port: 8080
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

	if cfg.Devices.InputHubs != 3 {
		t.Errorf("Devices.InputHubs = %d, want 3", cfg.Devices.InputHubs)
	}

	if cfg.Devices.InputUpdateInterval != 5 {
		t.Errorf("Devices.InputUpdateInterval = %d, want 5", cfg.Devices.InputUpdateInterval)
	}

	if cfg.History.Path != "/tmp/test.db" {
		t.Errorf("History.Path = %q, want %q", cfg.History.Path, "/tmp/test.db")
	}

	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
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

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
devices:
  input_hubs: 11
api:
  port: 8080
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for input_hubs=11, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "default config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "zero instances",
			mutate:  func(c *Config) { c.Devices.Videos = 0 },
			wantErr: true,
		},
		{
			name:    "too many instances",
			mutate:  func(c *Config) { c.Devices.OutputHubs = 11 },
			wantErr: true,
		},
		{
			name:    "negative instances",
			mutate:  func(c *Config) { c.Devices.VintHubs = -1 },
			wantErr: true,
		},
		{
			name:    "zero update interval",
			mutate:  func(c *Config) { c.Devices.InputUpdateInterval = 0 },
			wantErr: true,
		},
		{
			name:    "zero tick interval",
			mutate:  func(c *Config) { c.Devices.TickInterval = 0 },
			wantErr: true,
		},
		{
			name:    "invalid QoS when mqtt enabled",
			mutate:  func(c *Config) { c.MQTT.Enabled = true; c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "invalid QoS ignored when mqtt disabled",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: false,
		},
		{
			name:    "history enabled without path",
			mutate:  func(c *Config) { c.History.Enabled = true; c.History.Path = "" },
			wantErr: true,
		},
		{
			name:    "invalid port low",
			mutate:  func(c *Config) { c.API.Port = 0 },
			wantErr: true,
		},
		{
			name:    "invalid port high",
			mutate:  func(c *Config) { c.API.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "JWT secret too short",
			mutate:  func(c *Config) { c.Security.JWT.Secret = "short" },
			wantErr: true,
		},
		{
			name:    "empty JWT secret is allowed",
			mutate:  func(c *Config) { c.Security.JWT.Secret = "" },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}

	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}

	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
}

func TestConfig_GetSimulationTimings(t *testing.T) {
	cfg := defaultConfig()

	if got := cfg.GetInputUpdateInterval().Seconds(); got != 10 {
		t.Errorf("GetInputUpdateInterval() = %v, want 10s", got)
	}

	if got := cfg.GetPlayDuration().Seconds(); got != 20 {
		t.Errorf("GetPlayDuration() = %v, want 20s", got)
	}

	if got := cfg.GetTickInterval().Milliseconds(); got != 100 {
		t.Errorf("GetTickInterval() = %v, want 100ms", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("DOMIOT_HISTORY_PATH", "/custom/path.db")
	t.Setenv("DOMIOT_MQTT_HOST", "mqtt.example.com")
	t.Setenv("DOMIOT_MQTT_USERNAME", "testuser")
	t.Setenv("DOMIOT_MQTT_PASSWORD", "testpass")
	t.Setenv("DOMIOT_API_HOST", "192.168.1.1")
	t.Setenv("DOMIOT_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("DOMIOT_JWT_SECRET", "jwt-secret")

	applyEnvOverrides(cfg)

	if cfg.History.Path != "/custom/path.db" {
		t.Errorf("History.Path = %q, want %q", cfg.History.Path, "/custom/path.db")
	}

	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}

	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}

	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}

	if cfg.API.Host != "192.168.1.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "192.168.1.1")
	}

	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}

	if cfg.Security.JWT.Secret != "jwt-secret" {
		t.Errorf("Security.JWT.Secret = %q, want %q", cfg.Security.JWT.Secret, "jwt-secret")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Devices.InputHubs != 1 {
		t.Errorf("defaultConfig Devices.InputHubs = %d, want 1", cfg.Devices.InputHubs)
	}

	if cfg.Devices.PlayDuration != 20 {
		t.Errorf("defaultConfig Devices.PlayDuration = %d, want 20", cfg.Devices.PlayDuration)
	}

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}

	if cfg.API.Port != 8080 {
		t.Errorf("defaultConfig API.Port = %d, want 8080", cfg.API.Port)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig should validate, got %v", err)
	}
}
