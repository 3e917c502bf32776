// stickd - Game Controller Input Conditioning Daemon
//
// This is the main entry point for the stickd daemon. stickd reads a
// kernel joystick node on a fixed tick, conditions the raw samples into
// application-ready values, and fans the published state out to MQTT,
// InfluxDB, and a local SQLite session journal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/quiethelm/stickd/migrations"

	"github.com/quiethelm/stickd/internal/conditioning"
	"github.com/quiethelm/stickd/internal/infrastructure/config"
	"github.com/quiethelm/stickd/internal/infrastructure/database"
	"github.com/quiethelm/stickd/internal/infrastructure/influxdb"
	"github.com/quiethelm/stickd/internal/infrastructure/logging"
	"github.com/quiethelm/stickd/internal/infrastructure/mqtt"
	"github.com/quiethelm/stickd/internal/ingest"
	"github.com/quiethelm/stickd/internal/joystick"
	"github.com/quiethelm/stickd/internal/monitor"
	"github.com/quiethelm/stickd/internal/session"
	"github.com/quiethelm/stickd/internal/state"
	"github.com/quiethelm/stickd/internal/telemetry"
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

// stopEventTimeout bounds the final journal write during shutdown.
const stopEventTimeout = 5 * time.Second

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	// This is the Go pattern for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Run the application
	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // linear startup wiring: each block is one subsystem
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting stickd",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath, "rig", cfg.Rig.ID)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Journal the start of this run
	journal := session.NewSQLiteRepository(db.DB)
	if err := journal.RecordEvent(ctx, cfg.Rig.ID, session.EventStarted, "version "+version); err != nil {
		return fmt.Errorf("journalling start event: %w", err)
	}

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		// Set up MQTT logging callbacks
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		// Set up InfluxDB error callback
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// The store is the hand-off point between the ingest loop and every
	// consumer.
	store := state.NewStore()

	// Build the ingest loop
	loop := ingest.New(ingestConfig(cfg), openDevice(cfg, log), store)
	loop.SetLogger(log)

	var publisher *telemetry.Publisher
	if mqttClient != nil {
		publisher = telemetry.NewPublisher(mqttClient, store, cfg.Rig.ID, cfg.GetStateInterval(), log)
	}

	// The hook runs on the loop goroutine; journalling and announcing
	// happen off it so a slow broker or disk cannot stall a tick.
	loop.OnEnable(func(elapsed time.Duration) {
		go func() {
			detail := "after " + elapsed.Round(time.Millisecond).String()
			if err := journal.RecordEvent(ctx, cfg.Rig.ID, session.EventEnabled, detail); err != nil {
				log.Error("failed to journal enable event", "error", err)
			}
			if publisher != nil {
				if err := publisher.AnnounceEnabled(elapsed); err != nil {
					log.Warn("failed to announce enable", "error", err)
				}
			}
		}()
	})

	// Launch the loop and its consumers. The first component to fail
	// cancels the rest; a clean signal shutdown cancels them all with no
	// error recorded.
	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	var wg sync.WaitGroup
	failures := make(chan error, 1)
	launch := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(runCtx); err != nil {
				select {
				case failures <- fmt.Errorf("%s: %w", name, err):
				default:
				}
				stop()
			}
		}()
	}

	launch("ingest loop", loop.Run)

	if publisher != nil {
		launch("state publisher", publisher.Run)
		log.Info("state publishing enabled", "interval", cfg.GetStateInterval())
	}

	if influxClient != nil {
		sampler := telemetry.NewRecorder(influxClient, store, cfg.Rig.ID, cfg.GetSampleInterval())
		launch("sample recorder", sampler.Run)
		log.Info("telemetry sampling enabled", "interval", cfg.GetSampleInterval())
	}

	if cfg.Session.SnapshotIntervalMs > 0 {
		recorder := session.NewRecorder(journal, store, cfg.Rig.ID, cfg.GetSnapshotInterval(), cfg.GetSessionRetention())
		recorder.SetLogger(log)
		launch("session recorder", recorder.Run)
		log.Info("session history enabled",
			"interval", cfg.GetSnapshotInterval(),
			"retention", cfg.GetSessionRetention(),
		)
	}

	if cfg.Monitor.Enabled {
		launch("console monitor", monitor.New(store, os.Stdout, cfg.Rig.ID, cfg.GetMonitorInterval()).Run)
		log.Info("console monitor enabled", "interval", cfg.GetMonitorInterval())
	}

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		stop()
		wg.Wait()
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for a shutdown signal or a component failure
	<-runCtx.Done()
	wg.Wait()

	var runErr error
	select {
	case runErr = <-failures:
		log.Error("shutting down after component failure", "error", runErr)
	default:
		log.Info("shutdown signal received, cleaning up")
	}

	// Journal the stop with a fresh context; ctx is already cancelled.
	stopCtx, cancelStop := context.WithTimeout(context.Background(), stopEventTimeout)
	defer cancelStop()
	detail := "signal"
	if runErr != nil {
		detail = runErr.Error()
	}
	if err := journal.RecordEvent(stopCtx, cfg.Rig.ID, session.EventStopped, detail); err != nil {
		log.Error("failed to journal stop event", "error", err)
	}

	// Deferred Close() calls will run in reverse order:
	// 1. InfluxDB (if enabled)
	// 2. MQTT (if enabled)
	// 3. Database

	log.Info("stickd stopped")
	return runErr
}

// getConfigPath returns the configuration file path.
// Uses STICKD_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("STICKD_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	// Check database
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	// Check MQTT (if enabled)
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	// Check InfluxDB (if enabled)
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}

// ingestConfig maps the loaded configuration onto the loop tuning.
//
// Parameters:
//   - cfg: Application configuration
//
// Returns:
//   - ingest.Config: Loop configuration ready for ingest.New
func ingestConfig(cfg *config.Config) ingest.Config {
	ic := ingest.Config{
		TickPeriod:   cfg.GetTickPeriod(),
		EnableDelay:  cfg.GetEnableDelay(),
		StartButton:  cfg.Ingest.StartButton,
		OpenRetries:  cfg.Device.OpenRetries,
		RetryBackoff: cfg.GetRetryBackoff(),
		Axis: conditioning.Params{
			Alpha:    cfg.Conditioning.Alpha,
			DeadZone: cfg.Conditioning.DeadZone,
			Slew: conditioning.SlewBounds{
				Initial: cfg.Conditioning.Slew.InitialMaxDelta,
				Steady:  cfg.Conditioning.Slew.SteadyMaxDelta,
				Warmup:  cfg.GetSlewWarmup(),
			},
			Norm: conditioning.DefaultNormalizer(),
		},
		AccumulatorStep: cfg.Accumulators.Step,
	}
	for i, pair := range cfg.Accumulators.Pairs {
		if i >= len(ic.AccumulatorPairs) {
			break
		}
		ic.AccumulatorPairs[i] = ingest.ButtonPair{
			Decrement: pair.Decrement,
			Increment: pair.Increment,
		}
	}
	return ic
}

// openDevice returns an OpenFunc that logs the device identity on every
// successful open.
//
// Parameters:
//   - cfg: Application configuration
//   - log: Logger instance
//
// Returns:
//   - ingest.OpenFunc: Opener for the configured joystick node
func openDevice(cfg *config.Config, log *logging.Logger) ingest.OpenFunc {
	return func() (ingest.Device, error) {
		dev, err := joystick.Open(cfg.Device.Path)
		if err != nil {
			return nil, err
		}
		info := dev.Info()
		log.Info("joystick opened",
			"path", dev.Path(),
			"name", info.Name,
			"axes", info.Axes,
			"buttons", info.Buttons,
		)
		return dev, nil
	}
}
