package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
relay:
  ulc:
    port: 9765
  lvc:
    port: 9766
gestures:
  hold_threshold_ms: 450
profile:
  ulc_profile: "ULC Police"
  lvc_profile: "LVC"
database:
  enabled: true
  path: "/tmp/test.db"
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
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

	if cfg.Relay.ULC.Port != 9765 || cfg.Relay.LVC.Port != 9766 {
		t.Errorf("relay ports = %d/%d, want 9765/9766", cfg.Relay.ULC.Port, cfg.Relay.LVC.Port)
	}
	if cfg.Relay.ULC.Host != "127.0.0.1" {
		t.Errorf("Relay.ULC.Host = %q, want default retained", cfg.Relay.ULC.Host)
	}
	if cfg.HoldThreshold() != 450*time.Millisecond {
		t.Errorf("HoldThreshold() = %v, want 450ms", cfg.HoldThreshold())
	}
	if cfg.DoubleClickThreshold() != 300*time.Millisecond {
		t.Errorf("DoubleClickThreshold() = %v, want default 300ms", cfg.DoubleClickThreshold())
	}
	if cfg.Profile.ULCProfile != "ULC Police" || cfg.Profile.LVCProfile != "LVC" {
		t.Errorf("Profile = %+v", cfg.Profile)
	}
	if !cfg.Database.Enabled || cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database = %+v", cfg.Database)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v, want defaults", err)
	}
	if cfg.Relay.ULC.Port != DefaultULCPort || cfg.Relay.LVC.Port != DefaultLVCPort {
		t.Errorf("relay ports = %d/%d", cfg.Relay.ULC.Port, cfg.Relay.LVC.Port)
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	if _, err := Load(""); err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
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
relay:
  ulc:
    port: 8765
  lvc:
    port: 8765
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil || !strings.Contains(err.Error(), "must differ") {
		t.Errorf("Load() error = %v, want port clash", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"ulc port zero", func(c *Config) { c.Relay.ULC.Port = 0 }, true},
		{"lvc port high", func(c *Config) { c.Relay.LVC.Port = 70000 }, true},
		{"disabled channel ignores port", func(c *Config) {
			c.Relay.LVC.Enabled = false
			c.Relay.LVC.Port = 0
		}, false},
		{"same ports", func(c *Config) { c.Relay.LVC.Port = c.Relay.ULC.Port }, true},
		{"zero hold threshold", func(c *Config) { c.Gestures.HoldThresholdMS = 0 }, true},
		{"negative double threshold", func(c *Config) { c.Gestures.DoubleClickThresholdMS = -1 }, true},
		{"zero columns", func(c *Config) { c.Grid.ColumnsPerRow = 0 }, true},
		{"missing ulc profile", func(c *Config) { c.Profile.ULCProfile = "" }, true},
		{"invalid QoS", func(c *Config) { c.MQTT.QoS = 3 }, true},
		{"journal without path", func(c *Config) {
			c.Database.Enabled = true
			c.Database.Path = ""
		}, true},
		{"influx without url", func(c *Config) { c.InfluxDB.Enabled = true }, true},
		{"api bad port", func(c *Config) {
			c.API.Enabled = true
			c.API.Port = 0
		}, true},
		{"short jwt secret", func(c *Config) { c.API.JWTSecret = "too-short" }, true},
		{"jwt secret", func(c *Config) { c.API.JWTSecret = "0123456789abcdef0123456789abcdef" }, false},
		{"file logging without path", func(c *Config) { c.Logging.Output = "file" }, true},
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

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("ULCDECK_ULC_PORT", "9001")
	t.Setenv("ULCDECK_LVC_PORT", "9002")
	t.Setenv("ULCDECK_ULC_PROFILE", "Fire")
	t.Setenv("ULCDECK_DATABASE_PATH", "/custom/path.db")
	t.Setenv("ULCDECK_MQTT_HOST", "mqtt.example.com")
	t.Setenv("ULCDECK_MQTT_USERNAME", "testuser")
	t.Setenv("ULCDECK_MQTT_PASSWORD", "testpass")
	t.Setenv("ULCDECK_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("ULCDECK_LOG_LEVEL", "debug")

	if err := applyEnvOverrides(cfg); err != nil {
		t.Fatalf("applyEnvOverrides() error = %v", err)
	}

	if cfg.Relay.ULC.Port != 9001 || cfg.Relay.LVC.Port != 9002 {
		t.Errorf("relay ports = %d/%d, want 9001/9002", cfg.Relay.ULC.Port, cfg.Relay.LVC.Port)
	}
	if cfg.Profile.ULCProfile != "Fire" {
		t.Errorf("Profile.ULCProfile = %q, want %q", cfg.Profile.ULCProfile, "Fire")
	}
	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/custom/path.db")
	}
	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}
	if cfg.MQTT.Auth.Username != "testuser" || cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth = %+v", cfg.MQTT.Auth)
	}
	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestApplyEnvOverrides_InvalidInteger(t *testing.T) {
	cfg := defaultConfig()
	t.Setenv("ULCDECK_ULC_PORT", "not-a-port")

	err := applyEnvOverrides(cfg)
	if err == nil || !strings.Contains(err.Error(), "ULCDECK_ULC_PORT") {
		t.Errorf("applyEnvOverrides() error = %v, want ULCDECK_ULC_PORT error", err)
	}
	if cfg.Relay.ULC.Port != DefaultULCPort {
		t.Errorf("Relay.ULC.Port = %d, want unchanged", cfg.Relay.ULC.Port)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.Relay.ULC.Address() != "127.0.0.1:8765" {
		t.Errorf("ULC address = %q", cfg.Relay.ULC.Address())
	}
	if cfg.Relay.LVC.Address() != "127.0.0.1:8766" {
		t.Errorf("LVC address = %q", cfg.Relay.LVC.Address())
	}
	if cfg.Profile.LVCProfile != "" {
		t.Errorf("LVC profile switching should be off by default, got %q", cfg.Profile.LVCProfile)
	}
	if cfg.Database.Enabled || cfg.MQTT.Enabled || cfg.InfluxDB.Enabled || cfg.API.Enabled {
		t.Error("optional integrations should default to disabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}
