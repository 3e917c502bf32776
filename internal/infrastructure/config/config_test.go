package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	// Create a temporary config file
	content := `
rig:
  id: "test-rig"
device:
  path: "/dev/input/js3"
ingest:
  tick_period_us: 2000
  start_button: 8
  enable_delay_seconds: 3
conditioning:
  alpha: 0.3
  dead_zone: 0.15
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
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

	if cfg.Rig.ID != "test-rig" {
		t.Errorf("Rig.ID = %q, want %q", cfg.Rig.ID, "test-rig")
	}

	if cfg.Device.Path != "/dev/input/js3" {
		t.Errorf("Device.Path = %q, want %q", cfg.Device.Path, "/dev/input/js3")
	}

	if cfg.Ingest.TickPeriodUs != 2000 {
		t.Errorf("Ingest.TickPeriodUs = %d, want 2000", cfg.Ingest.TickPeriodUs)
	}

	if cfg.Conditioning.Alpha != 0.3 {
		t.Errorf("Conditioning.Alpha = %v, want 0.3", cfg.Conditioning.Alpha)
	}

	// Sections the file omits keep their defaults.
	if cfg.Conditioning.Slew.SteadyMaxDelta != 0.001 {
		t.Errorf("Conditioning.Slew.SteadyMaxDelta = %v, want default 0.001", cfg.Conditioning.Slew.SteadyMaxDelta)
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
rig:
  id: ""
device:
  path: "/dev/input/js0"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for empty rig.id, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing rig ID",
			mutate:  func(c *Config) { c.Rig.ID = "" },
			wantErr: true,
		},
		{
			name:    "missing device path",
			mutate:  func(c *Config) { c.Device.Path = "" },
			wantErr: true,
		},
		{
			name:    "zero tick period",
			mutate:  func(c *Config) { c.Ingest.TickPeriodUs = 0 },
			wantErr: true,
		},
		{
			name:    "start button out of range",
			mutate:  func(c *Config) { c.Ingest.StartButton = 13 },
			wantErr: true,
		},
		{
			name:    "alpha above one",
			mutate:  func(c *Config) { c.Conditioning.Alpha = 1.5 },
			wantErr: true,
		},
		{
			name:    "alpha zero",
			mutate:  func(c *Config) { c.Conditioning.Alpha = 0 },
			wantErr: true,
		},
		{
			name:    "dead zone at one",
			mutate:  func(c *Config) { c.Conditioning.DeadZone = 1 },
			wantErr: true,
		},
		{
			name:    "negative steady slew",
			mutate:  func(c *Config) { c.Conditioning.Slew.SteadyMaxDelta = -0.001 },
			wantErr: true,
		},
		{
			name:    "too few accumulator pairs",
			mutate:  func(c *Config) { c.Accumulators.Pairs = c.Accumulators.Pairs[:1] },
			wantErr: true,
		},
		{
			name: "accumulator pair reuses a button",
			mutate: func(c *Config) {
				c.Accumulators.Pairs[1] = AccumulatorPairConfig{Decrement: 6, Increment: 6}
			},
			wantErr: true,
		},
		{
			name: "accumulator pair button out of range",
			mutate: func(c *Config) {
				c.Accumulators.Pairs[0] = AccumulatorPairConfig{Decrement: 4, Increment: 20}
			},
			wantErr: true,
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "zero state interval",
			mutate:  func(c *Config) { c.Telemetry.StateIntervalMs = 0 },
			wantErr: true,
		},
		{
			name:    "zero retention",
			mutate:  func(c *Config) { c.Session.RetentionHours = 0 },
			wantErr: true,
		},
		{
			name: "monitor enabled without interval",
			mutate: func(c *Config) {
				c.Monitor.Enabled = true
				c.Monitor.IntervalMs = 0
			},
			wantErr: true,
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

func TestConfig_GetDurations(t *testing.T) {
	cfg := &Config{
		Device: DeviceConfig{RetryBackoffSeconds: 2},
		Ingest: IngestConfig{
			TickPeriodUs:       1000,
			EnableDelaySeconds: 5,
		},
		Conditioning: ConditioningConfig{
			Slew: SlewConfig{WarmupMs: 1500},
		},
		Telemetry: TelemetryConfig{
			StateIntervalMs:  50,
			SampleIntervalMs: 100,
		},
		Session: SessionConfig{
			SnapshotIntervalMs: 1000,
			RetentionHours:     72,
		},
		Monitor: MonitorConfig{IntervalMs: 500},
	}

	if got := cfg.GetTickPeriod(); got != time.Millisecond {
		t.Errorf("GetTickPeriod() = %v, want 1ms", got)
	}

	if got := cfg.GetEnableDelay(); got != 5*time.Second {
		t.Errorf("GetEnableDelay() = %v, want 5s", got)
	}

	if got := cfg.GetRetryBackoff(); got != 2*time.Second {
		t.Errorf("GetRetryBackoff() = %v, want 2s", got)
	}

	if got := cfg.GetSlewWarmup(); got != 1500*time.Millisecond {
		t.Errorf("GetSlewWarmup() = %v, want 1.5s", got)
	}

	if got := cfg.GetStateInterval(); got != 50*time.Millisecond {
		t.Errorf("GetStateInterval() = %v, want 50ms", got)
	}

	if got := cfg.GetSampleInterval(); got != 100*time.Millisecond {
		t.Errorf("GetSampleInterval() = %v, want 100ms", got)
	}

	if got := cfg.GetSnapshotInterval(); got != time.Second {
		t.Errorf("GetSnapshotInterval() = %v, want 1s", got)
	}

	if got := cfg.GetSessionRetention(); got != 72*time.Hour {
		t.Errorf("GetSessionRetention() = %v, want 72h", got)
	}

	if got := cfg.GetMonitorInterval(); got != 500*time.Millisecond {
		t.Errorf("GetMonitorInterval() = %v, want 500ms", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	// Set environment variables
	t.Setenv("STICKD_DEVICE_PATH", "/dev/input/js7")
	t.Setenv("STICKD_DATABASE_PATH", "/custom/path.db")
	t.Setenv("STICKD_MQTT_HOST", "mqtt.example.com")
	t.Setenv("STICKD_MQTT_USERNAME", "testuser")
	t.Setenv("STICKD_MQTT_PASSWORD", "testpass")
	t.Setenv("STICKD_INFLUXDB_TOKEN", "secret-token")

	applyEnvOverrides(cfg)

	if cfg.Device.Path != "/dev/input/js7" {
		t.Errorf("Device.Path = %q, want %q", cfg.Device.Path, "/dev/input/js7")
	}

	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/custom/path.db")
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

	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Rig.ID == "" {
		t.Error("defaultConfig should have non-empty Rig.ID")
	}

	if cfg.Device.Path == "" {
		t.Error("defaultConfig should have non-empty Device.Path")
	}

	if cfg.Database.Path == "" {
		t.Error("defaultConfig should have non-empty Database.Path")
	}

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}

	if cfg.Ingest.TickPeriodUs != 1000 {
		t.Errorf("defaultConfig Ingest.TickPeriodUs = %d, want 1000", cfg.Ingest.TickPeriodUs)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig failed validation: %v", err)
	}
}
