package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/quiethelm/stickd/internal/state"
)

// Config is the root configuration structure for stickd.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Rig          RigConfig          `yaml:"rig"`
	Device       DeviceConfig       `yaml:"device"`
	Ingest       IngestConfig       `yaml:"ingest"`
	Conditioning ConditioningConfig `yaml:"conditioning"`
	Accumulators AccumulatorsConfig `yaml:"accumulators"`
	Database     DatabaseConfig     `yaml:"database"`
	MQTT         MQTTConfig         `yaml:"mqtt"`
	InfluxDB     InfluxDBConfig     `yaml:"influxdb"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
	Session      SessionConfig      `yaml:"session"`
	Monitor      MonitorConfig      `yaml:"monitor"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// RigConfig identifies the rig this controller drives. The ID ends up
// in MQTT topics, InfluxDB tags, and log lines.
type RigConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// DeviceConfig contains joystick device node settings.
type DeviceConfig struct {
	// Path is the kernel joystick node to read.
	Path string `yaml:"path"`

	// OpenRetries is how many extra open attempts follow a failure
	// before startup gives up. RetryBackoffSeconds spaces them.
	OpenRetries         int `yaml:"open_retries"`
	RetryBackoffSeconds int `yaml:"retry_backoff_seconds"`
}

// IngestConfig contains tick-loop and initialization-gate settings.
type IngestConfig struct {
	// TickPeriodUs is the fixed loop period in microseconds.
	TickPeriodUs int `yaml:"tick_period_us"`

	// StartButton is the button that arms the system.
	StartButton int `yaml:"start_button"`

	// EnableDelaySeconds is the minimum settle time before the start
	// button is honoured.
	EnableDelaySeconds int `yaml:"enable_delay_seconds"`
}

// ConditioningConfig contains the axis conditioning tuning.
type ConditioningConfig struct {
	// Alpha is the low-pass blend factor in (0, 1].
	Alpha float64 `yaml:"alpha"`

	// DeadZone is the shaper threshold in [0, 1).
	DeadZone float64 `yaml:"dead_zone"`

	Slew SlewConfig `yaml:"slew"`
}

// SlewConfig contains the per-tick rate limit settings.
type SlewConfig struct {
	// InitialMaxDelta applies for WarmupMs after enable, letting the
	// output reach the stick quickly.
	InitialMaxDelta float64 `yaml:"initial_max_delta"`

	// SteadyMaxDelta applies afterwards.
	SteadyMaxDelta float64 `yaml:"steady_max_delta"`

	WarmupMs int `yaml:"warmup_ms"`
}

// AccumulatorsConfig assigns the paired-button accumulators.
type AccumulatorsConfig struct {
	// Step is the per-tick change while a button is held.
	Step float64 `yaml:"step"`

	// Pairs lists exactly one decrement/increment button pair per
	// accumulator channel.
	Pairs []AccumulatorPairConfig `yaml:"pairs"`
}

// AccumulatorPairConfig names the two buttons driving one accumulator.
type AccumulatorPairConfig struct {
	Decrement int `yaml:"decrement"`
	Increment int `yaml:"increment"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
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

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled         bool   `yaml:"enabled"`
	URL             string `yaml:"url"`
	Token           string `yaml:"token"`
	Org             string `yaml:"org"`
	Bucket          string `yaml:"bucket"`
	BatchSize       int    `yaml:"batch_size"`
	FlushIntervalMs int    `yaml:"flush_interval_ms"`
}

// TelemetryConfig sets the cadence of the snapshot consumers.
type TelemetryConfig struct {
	// StateIntervalMs is the MQTT state publish period.
	StateIntervalMs int `yaml:"state_interval_ms"`

	// SampleIntervalMs is the InfluxDB sampling period.
	SampleIntervalMs int `yaml:"sample_interval_ms"`
}

// SessionConfig contains session journal settings.
type SessionConfig struct {
	// SnapshotIntervalMs is the snapshot history period. Zero disables
	// history recording; lifecycle events are always journalled.
	SnapshotIntervalMs int `yaml:"snapshot_interval_ms"`

	// RetentionHours bounds how much snapshot history PruneHistory
	// keeps.
	RetentionHours int `yaml:"retention_hours"`
}

// MonitorConfig contains console monitor settings.
type MonitorConfig struct {
	Enabled    bool `yaml:"enabled"`
	IntervalMs int  `yaml:"interval_ms"`
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
// Environment variables follow the pattern: STICKD_SECTION_KEY
// For example: STICKD_DEVICE_PATH, STICKD_MQTT_HOST
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
		Rig: RigConfig{
			ID:   "rig-001",
			Name: "stickd",
		},
		Device: DeviceConfig{
			Path:                "/dev/input/js0",
			OpenRetries:         3,
			RetryBackoffSeconds: 2,
		},
		Ingest: IngestConfig{
			TickPeriodUs:       1000,
			StartButton:        9,
			EnableDelaySeconds: 5,
		},
		Conditioning: ConditioningConfig{
			Alpha:    0.2,
			DeadZone: 0.1,
			Slew: SlewConfig{
				InitialMaxDelta: 0.1,
				SteadyMaxDelta:  0.001,
				WarmupMs:        1000,
			},
		},
		Accumulators: AccumulatorsConfig{
			Step: 0.001,
			Pairs: []AccumulatorPairConfig{
				{Decrement: 4, Increment: 5},
				{Decrement: 6, Increment: 7},
			},
		},
		Database: DatabaseConfig{
			Path:        "./data/stickd.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Enabled: true,
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "stickd",
			},
			QoS: 0,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		InfluxDB: InfluxDBConfig{
			Enabled:         false,
			URL:             "http://localhost:8086",
			Bucket:          "stickd",
			BatchSize:       100,
			FlushIntervalMs: 1000,
		},
		Telemetry: TelemetryConfig{
			StateIntervalMs:  50,
			SampleIntervalMs: 100,
		},
		Session: SessionConfig{
			SnapshotIntervalMs: 1000,
			RetentionHours:     72,
		},
		Monitor: MonitorConfig{
			Enabled:    false,
			IntervalMs: 500,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: STICKD_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Device
	if v := os.Getenv("STICKD_DEVICE_PATH"); v != "" {
		cfg.Device.Path = v
	}

	// Database
	if v := os.Getenv("STICKD_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("STICKD_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("STICKD_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("STICKD_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("STICKD_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Rig validation
	if c.Rig.ID == "" {
		errs = append(errs, "rig.id is required")
	}

	// Device validation
	if c.Device.Path == "" {
		errs = append(errs, "device.path is required")
	}
	if c.Device.OpenRetries < 0 {
		errs = append(errs, "device.open_retries must not be negative")
	}
	if c.Device.RetryBackoffSeconds < 0 {
		errs = append(errs, "device.retry_backoff_seconds must not be negative")
	}

	// Ingest validation
	if c.Ingest.TickPeriodUs < 1 {
		errs = append(errs, "ingest.tick_period_us must be at least 1")
	}
	if c.Ingest.StartButton < 0 || c.Ingest.StartButton >= state.MaxButtons {
		errs = append(errs, fmt.Sprintf("ingest.start_button must be between 0 and %d", state.MaxButtons-1))
	}
	if c.Ingest.EnableDelaySeconds < 0 {
		errs = append(errs, "ingest.enable_delay_seconds must not be negative")
	}

	// Conditioning validation
	if c.Conditioning.Alpha <= 0 || c.Conditioning.Alpha > 1 {
		errs = append(errs, "conditioning.alpha must be in (0, 1]")
	}
	if c.Conditioning.DeadZone < 0 || c.Conditioning.DeadZone >= 1 {
		errs = append(errs, "conditioning.dead_zone must be in [0, 1)")
	}
	if c.Conditioning.Slew.InitialMaxDelta <= 0 {
		errs = append(errs, "conditioning.slew.initial_max_delta must be positive")
	}
	if c.Conditioning.Slew.SteadyMaxDelta <= 0 {
		errs = append(errs, "conditioning.slew.steady_max_delta must be positive")
	}
	if c.Conditioning.Slew.WarmupMs < 0 {
		errs = append(errs, "conditioning.slew.warmup_ms must not be negative")
	}

	// Accumulator validation
	if c.Accumulators.Step <= 0 {
		errs = append(errs, "accumulators.step must be positive")
	}
	if len(c.Accumulators.Pairs) != state.NumAccumulators {
		errs = append(errs, fmt.Sprintf("accumulators.pairs must name exactly %d button pairs", state.NumAccumulators))
	}
	for i, pair := range c.Accumulators.Pairs {
		if pair.Decrement < 0 || pair.Decrement >= state.MaxButtons ||
			pair.Increment < 0 || pair.Increment >= state.MaxButtons {
			errs = append(errs, fmt.Sprintf("accumulators.pairs[%d] buttons must be between 0 and %d", i, state.MaxButtons-1))
		}
		if pair.Decrement == pair.Increment {
			errs = append(errs, fmt.Sprintf("accumulators.pairs[%d] must name two different buttons", i))
		}
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// Telemetry validation
	if c.Telemetry.StateIntervalMs < 1 {
		errs = append(errs, "telemetry.state_interval_ms must be at least 1")
	}
	if c.Telemetry.SampleIntervalMs < 1 {
		errs = append(errs, "telemetry.sample_interval_ms must be at least 1")
	}

	// Session validation
	if c.Session.SnapshotIntervalMs < 0 {
		errs = append(errs, "session.snapshot_interval_ms must not be negative")
	}
	if c.Session.RetentionHours < 1 {
		errs = append(errs, "session.retention_hours must be at least 1")
	}

	// Monitor validation
	if c.Monitor.Enabled && c.Monitor.IntervalMs < 1 {
		errs = append(errs, "monitor.interval_ms must be at least 1 when the monitor is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetTickPeriod returns the ingest tick period as a Duration.
func (c *Config) GetTickPeriod() time.Duration {
	return time.Duration(c.Ingest.TickPeriodUs) * time.Microsecond
}

// GetEnableDelay returns the initialization-gate delay as a Duration.
func (c *Config) GetEnableDelay() time.Duration {
	return time.Duration(c.Ingest.EnableDelaySeconds) * time.Second
}

// GetRetryBackoff returns the device open retry spacing as a Duration.
func (c *Config) GetRetryBackoff() time.Duration {
	return time.Duration(c.Device.RetryBackoffSeconds) * time.Second
}

// GetSlewWarmup returns the initial slew window as a Duration.
func (c *Config) GetSlewWarmup() time.Duration {
	return time.Duration(c.Conditioning.Slew.WarmupMs) * time.Millisecond
}

// GetStateInterval returns the MQTT state publish period as a Duration.
func (c *Config) GetStateInterval() time.Duration {
	return time.Duration(c.Telemetry.StateIntervalMs) * time.Millisecond
}

// GetSampleInterval returns the InfluxDB sampling period as a Duration.
func (c *Config) GetSampleInterval() time.Duration {
	return time.Duration(c.Telemetry.SampleIntervalMs) * time.Millisecond
}

// GetSnapshotInterval returns the session history period as a Duration.
func (c *Config) GetSnapshotInterval() time.Duration {
	return time.Duration(c.Session.SnapshotIntervalMs) * time.Millisecond
}

// GetSessionRetention returns the snapshot history retention as a Duration.
func (c *Config) GetSessionRetention() time.Duration {
	return time.Duration(c.Session.RetentionHours) * time.Hour
}

// GetMonitorInterval returns the console monitor period as a Duration.
func (c *Config) GetMonitorInterval() time.Duration {
	return time.Duration(c.Monitor.IntervalMs) * time.Millisecond
}
