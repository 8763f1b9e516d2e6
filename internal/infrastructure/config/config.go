package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the DOMIoT simulated
// device daemon. All configuration is loaded from YAML and can be
// overridden by environment variables.
type Config struct {
	Devices   DevicesConfig   `yaml:"devices"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	History   HistoryConfig   `yaml:"history"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Security  SecurityConfig  `yaml:"security"`
}

// Instance count bounds per device kind. The table is fixed at startup;
// counts outside this range are a configuration error.
const (
	MinInstances = 1
	MaxInstances = 10
)

// DevicesConfig controls how many instances of each simulated device kind
// are created, and the timing parameters of the simulation.
type DevicesConfig struct {
	// InputHubs is the number of ihubx24 digital input hubs (1-10).
	InputHubs int `yaml:"input_hubs"`

	// OutputHubs is the number of ohubx24 digital output hubs (1-10).
	OutputHubs int `yaml:"output_hubs"`

	// IOHubs is the number of iohubx24 combined input/output hubs (1-10).
	IOHubs int `yaml:"io_hubs"`

	// Displays is the number of lcd character display sinks (1-10).
	Displays int `yaml:"displays"`

	// VintHubs is the number of vintx6 externally-fed hubs (1-10).
	VintHubs int `yaml:"vint_hubs"`

	// Videos is the number of video playback sinks (1-10).
	Videos int `yaml:"videos"`

	// InputUpdateInterval is how often input hubs randomise their
	// channel states, in seconds. Default: 10.
	InputUpdateInterval int `yaml:"input_update_interval"`

	// PlayDuration is the simulated media duration in seconds. Default: 20.
	PlayDuration int `yaml:"play_duration"`

	// TickInterval is the playback position tick in milliseconds. Default: 100.
	TickInterval int `yaml:"tick_interval"`

	// MaxReaders limits concurrent reader sessions per device instance.
	// 0 means unlimited.
	MaxReaders int `yaml:"max_readers"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket streaming settings.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
}

// MQTTConfig contains MQTT broker connection settings for the vintx6
// controller bridge. The bridge is optional; when disabled the vintx6
// hubs are fed over the HTTP attribute endpoints only.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
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

// MQTTReconnectConfig contains MQTT reconnection settings in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// HistoryConfig contains settings for the SQLite write-log archive.
// The in-memory ring log on each device is always active; the archive
// additionally persists accepted writes across restarts.
type HistoryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// RetentionHours is how long archived entries are kept. 0 disables pruning.
	RetentionHours int `yaml:"retention_hours"`
}

// InfluxDBConfig contains InfluxDB telemetry settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig contains bearer token settings for the HTTP API.
// An empty secret disables authentication (development mode).
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// Load reads configuration from a YAML file and applies environment
// variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: DOMIOT_SECTION_KEY
// For example: DOMIOT_HISTORY_PATH, DOMIOT_API_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
// One instance of each device kind, original simulation timings.
func defaultConfig() *Config {
	return &Config{
		Devices: DevicesConfig{
			InputHubs:           1,
			OutputHubs:          1,
			IOHubs:              1,
			Displays:            1,
			VintHubs:            1,
			Videos:              1,
			InputUpdateInterval: 10,
			PlayDuration:        20,
			TickInterval:        100,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "domiot-simd",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		History: HistoryConfig{
			Path:        "./data/domiot.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: DOMIOT_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// History archive
	if v := os.Getenv("DOMIOT_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}

	// MQTT
	if v := os.Getenv("DOMIOT_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("DOMIOT_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("DOMIOT_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("DOMIOT_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	// InfluxDB
	if v := os.Getenv("DOMIOT_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Security - JWT secret (set in production to enable API auth)
	if v := os.Getenv("DOMIOT_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Device instance counts
	counts := map[string]int{
		"devices.input_hubs":  c.Devices.InputHubs,
		"devices.output_hubs": c.Devices.OutputHubs,
		"devices.io_hubs":     c.Devices.IOHubs,
		"devices.displays":    c.Devices.Displays,
		"devices.vint_hubs":   c.Devices.VintHubs,
		"devices.videos":      c.Devices.Videos,
	}
	for name, n := range counts {
		if n < MinInstances || n > MaxInstances {
			errs = append(errs, fmt.Sprintf("%s must be between %d and %d", name, MinInstances, MaxInstances))
		}
	}

	// Simulation timings
	if c.Devices.InputUpdateInterval < 1 {
		errs = append(errs, "devices.input_update_interval must be at least 1 second")
	}
	if c.Devices.PlayDuration < 1 {
		errs = append(errs, "devices.play_duration must be at least 1 second")
	}
	if c.Devices.TickInterval < 1 {
		errs = append(errs, "devices.tick_interval must be at least 1 millisecond")
	}
	if c.Devices.MaxReaders < 0 {
		errs = append(errs, "devices.max_readers must not be negative")
	}

	// MQTT validation (only when the bridge is enabled)
	if c.MQTT.Enabled {
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
		}
	}

	// History archive validation
	if c.History.Enabled && c.History.Path == "" {
		errs = append(errs, "history.path is required when history is enabled")
	}

	// API validation
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	// Security validation. The secret is optional (no auth when empty),
	// but a configured secret must be long enough to resist brute force.
	const minJWTSecretLength = 32
	if c.Security.JWT.Secret != "" && len(c.Security.JWT.Secret) < minJWTSecretLength {
		errs = append(errs, "security.jwt.secret must be at least 32 characters")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// GetInputUpdateInterval returns the input hub randomisation interval.
func (c *Config) GetInputUpdateInterval() time.Duration {
	return time.Duration(c.Devices.InputUpdateInterval) * time.Second
}

// GetPlayDuration returns the simulated media duration.
func (c *Config) GetPlayDuration() time.Duration {
	return time.Duration(c.Devices.PlayDuration) * time.Second
}

// GetTickInterval returns the playback position tick interval.
func (c *Config) GetTickInterval() time.Duration {
	return time.Duration(c.Devices.TickInterval) * time.Millisecond
}
