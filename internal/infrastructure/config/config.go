package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default relay ports the ULC and LVC controllers connect to.
const (
	DefaultULCPort = 8765
	DefaultLVCPort = 8766
)

// minJWTSecretLength is the shortest accepted api.jwt_secret.
const minJWTSecretLength = 32

// Config is the root configuration structure for the deck bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Relay      RelayConfig      `yaml:"relay"`
	Gestures   GesturesConfig   `yaml:"gestures"`
	Grid       GridConfig       `yaml:"grid"`
	Profile    ProfileConfig    `yaml:"profile"`
	Images     ImagesConfig     `yaml:"images"`
	StreamDeck StreamDeckConfig `yaml:"streamdeck"`
	API        APIConfig        `yaml:"api"`
	Database   DatabaseConfig   `yaml:"database"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	InfluxDB   InfluxDBConfig   `yaml:"influxdb"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// RelayConfig contains the two controller relay listeners.
type RelayConfig struct {
	ULC ChannelConfig `yaml:"ulc"`
	LVC ChannelConfig `yaml:"lvc"`
}

// ChannelConfig contains one relay listener's settings.
type ChannelConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"` // seconds
	PongTimeout    int    `yaml:"pong_timeout"`  // seconds
}

// GesturesConfig contains press disambiguation thresholds.
type GesturesConfig struct {
	HoldThresholdMS        int `yaml:"hold_threshold_ms"`
	DoubleClickThresholdMS int `yaml:"double_click_threshold_ms"`
}

// GridConfig describes the ULC folder page layout.
type GridConfig struct {
	ColumnsPerRow int `yaml:"columns_per_row"`
}

// ProfileConfig names the Stream Deck profiles switched on controller
// connect. An empty LVCProfile disables profile switching for LVC.
type ProfileConfig struct {
	ULCProfile string `yaml:"ulc_profile"`
	LVCProfile string `yaml:"lvc_profile"`
}

// ImagesConfig locates the button images shipped with the plugin.
type ImagesConfig struct {
	Dir string `yaml:"dir"`
}

// StreamDeckConfig contains plugin SDK connection settings. The port and
// registration values come from the launch flags, not from here.
type StreamDeckConfig struct {
	ActionPrefix   string `yaml:"action_prefix"`
	SendBufferSize int    `yaml:"send_buffer_size"`
	WriteTimeout   int    `yaml:"write_timeout"` // seconds
}

// APIConfig contains the local status API settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`

	// JWTSecret enables bearer-token auth on every route except health.
	JWTSecret string `yaml:"jwt_secret"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// DatabaseConfig contains SQLite event journal settings.
type DatabaseConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled     bool                `yaml:"enabled"`
	Broker      MQTTBrokerConfig    `yaml:"broker"`
	Auth        MQTTAuthConfig      `yaml:"auth"`
	QoS         int                 `yaml:"qos"`
	TopicPrefix string              `yaml:"topic_prefix"`
	Reconnect   MQTTReconnectConfig `yaml:"reconnect"`
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

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// TelemetryConfig contains the event fan-out settings.
type TelemetryConfig struct {
	BufferSize int `yaml:"buffer_size"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string            `yaml:"level"`
	Format string            `yaml:"format"`
	Output string            `yaml:"output"`
	File   FileLoggingConfig `yaml:"file"`
}

// FileLoggingConfig contains file-based logging settings.
type FileLoggingConfig struct {
	Path string `yaml:"path"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// A missing file is not an error: the plugin is usually launched by the
// Stream Deck application with no config next to it and runs on defaults.
// An empty path skips the file entirely.
//
// Environment variables follow the pattern: ULCDECK_SECTION_KEY
// For example: ULCDECK_ULC_PORT, ULCDECK_LOG_LEVEL
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If the file cannot be parsed, an override is invalid, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// Run on defaults.
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the default configuration.
func Default() *Config {
	return defaultConfig()
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Relay: RelayConfig{
			ULC: ChannelConfig{
				Enabled:        true,
				Host:           "127.0.0.1",
				Port:           DefaultULCPort,
				MaxMessageSize: 65536,
				PingInterval:   30,
				PongTimeout:    10,
			},
			LVC: ChannelConfig{
				Enabled:        true,
				Host:           "127.0.0.1",
				Port:           DefaultLVCPort,
				MaxMessageSize: 65536,
				PingInterval:   30,
				PongTimeout:    10,
			},
		},
		Gestures: GesturesConfig{
			HoldThresholdMS:        300,
			DoubleClickThresholdMS: 300,
		},
		Grid: GridConfig{
			ColumnsPerRow: 4,
		},
		Profile: ProfileConfig{
			ULCProfile: "ULC",
		},
		Images: ImagesConfig{
			Dir: "imgs",
		},
		StreamDeck: StreamDeckConfig{
			ActionPrefix:   "dev.sratzel.ulc-streamdeck-plugin",
			SendBufferSize: 256,
			WriteTimeout:   5,
		},
		API: APIConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    8767,
			Timeouts: APITimeoutConfig{
				Read:  10,
				Write: 10,
				Idle:  60,
			},
		},
		Database: DatabaseConfig{
			Enabled:     false,
			Path:        "./data/ulcdeck.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Enabled: false,
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "ulcdeck",
			},
			QoS:         1,
			TopicPrefix: "ulcdeck",
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		InfluxDB: InfluxDBConfig{
			Enabled:       false,
			Bucket:        "ulcdeck",
			BatchSize:     100,
			FlushInterval: 10,
		},
		Telemetry: TelemetryConfig{
			BufferSize: 512,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: ULCDECK_SECTION_KEY
func applyEnvOverrides(cfg *Config) error {
	var errs []string

	setInt := func(key string, dst *int) {
		v := os.Getenv(key)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %q is not an integer", key, v))
			return
		}
		*dst = n
	}
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	// Relay
	setInt("ULCDECK_ULC_PORT", &cfg.Relay.ULC.Port)
	setInt("ULCDECK_LVC_PORT", &cfg.Relay.LVC.Port)
	setString("ULCDECK_RELAY_HOST", &cfg.Relay.ULC.Host)
	setString("ULCDECK_RELAY_HOST", &cfg.Relay.LVC.Host)

	// Profiles
	setString("ULCDECK_ULC_PROFILE", &cfg.Profile.ULCProfile)
	setString("ULCDECK_LVC_PROFILE", &cfg.Profile.LVCProfile)

	// Images
	setString("ULCDECK_IMAGES_DIR", &cfg.Images.Dir)

	// API
	setString("ULCDECK_API_HOST", &cfg.API.Host)
	setInt("ULCDECK_API_PORT", &cfg.API.Port)
	setString("ULCDECK_API_JWT_SECRET", &cfg.API.JWTSecret)

	// Database
	setString("ULCDECK_DATABASE_PATH", &cfg.Database.Path)

	// MQTT
	setString("ULCDECK_MQTT_HOST", &cfg.MQTT.Broker.Host)
	setString("ULCDECK_MQTT_USERNAME", &cfg.MQTT.Auth.Username)
	setString("ULCDECK_MQTT_PASSWORD", &cfg.MQTT.Auth.Password)

	// InfluxDB
	setString("ULCDECK_INFLUXDB_TOKEN", &cfg.InfluxDB.Token)

	// Logging
	setString("ULCDECK_LOG_LEVEL", &cfg.Logging.Level)

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	validPort := func(p int) bool { return p >= 1 && p <= 65535 }

	// Relay validation
	for name, ch := range map[string]ChannelConfig{"relay.ulc": c.Relay.ULC, "relay.lvc": c.Relay.LVC} {
		if !ch.Enabled {
			continue
		}
		if !validPort(ch.Port) {
			errs = append(errs, name+".port must be between 1 and 65535")
		}
		if ch.MaxMessageSize <= 0 {
			errs = append(errs, name+".max_message_size must be positive")
		}
		if ch.PingInterval <= 0 || ch.PongTimeout <= 0 {
			errs = append(errs, name+".ping_interval and pong_timeout must be positive")
		}
	}
	if c.Relay.ULC.Enabled && c.Relay.LVC.Enabled && c.Relay.ULC.Port == c.Relay.LVC.Port {
		errs = append(errs, "relay.ulc.port and relay.lvc.port must differ")
	}

	// Gesture validation
	if c.Gestures.HoldThresholdMS <= 0 {
		errs = append(errs, "gestures.hold_threshold_ms must be positive")
	}
	if c.Gestures.DoubleClickThresholdMS <= 0 {
		errs = append(errs, "gestures.double_click_threshold_ms must be positive")
	}

	// Grid validation
	if c.Grid.ColumnsPerRow <= 0 {
		errs = append(errs, "grid.columns_per_row must be positive")
	}

	// Profile validation
	if c.Profile.ULCProfile == "" {
		errs = append(errs, "profile.ulc_profile is required")
	}

	// Stream Deck validation
	if c.StreamDeck.ActionPrefix == "" {
		errs = append(errs, "streamdeck.action_prefix is required")
	}
	if c.StreamDeck.SendBufferSize <= 0 {
		errs = append(errs, "streamdeck.send_buffer_size must be positive")
	}

	// API validation
	if c.API.Enabled && !validPort(c.API.Port) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}
	if c.API.JWTSecret != "" && len(c.API.JWTSecret) < minJWTSecretLength {
		errs = append(errs, fmt.Sprintf("api.jwt_secret must be at least %d characters", minJWTSecretLength))
	}

	// Database validation
	if c.Database.Enabled && c.Database.Path == "" {
		errs = append(errs, "database.path is required when the journal is enabled")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled && c.MQTT.TopicPrefix == "" {
		errs = append(errs, "mqtt.topic_prefix is required when mqtt is enabled")
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Bucket == "") {
		errs = append(errs, "influxdb.url and influxdb.bucket are required when influxdb is enabled")
	}

	// Logging validation
	if strings.EqualFold(c.Logging.Output, "file") && c.Logging.File.Path == "" {
		errs = append(errs, "logging.file.path is required when logging.output is file")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// HoldThreshold returns the tap-vs-hold threshold as a Duration.
func (c *Config) HoldThreshold() time.Duration {
	return time.Duration(c.Gestures.HoldThresholdMS) * time.Millisecond
}

// DoubleClickThreshold returns the single-vs-double threshold as a Duration.
func (c *Config) DoubleClickThreshold() time.Duration {
	return time.Duration(c.Gestures.DoubleClickThresholdMS) * time.Millisecond
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

// Address returns the channel's host:port listen address.
func (ch ChannelConfig) Address() string {
	return fmt.Sprintf("%s:%d", ch.Host, ch.Port)
}
