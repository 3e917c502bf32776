// Package influxdb provides InfluxDB connectivity for stickd.
//
// It wraps the official influxdb-client-go v2 library with stickd-specific
// patterns for connection management, sample writing, and health monitoring.
//
// # Purpose
//
// This package handles time-series storage for:
//   - Conditioned axis samples
//   - Paired-button accumulator samples
//   - Initialization gate state and tick sequence
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "stickd",
//	    Bucket: "telemetry",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Record one axis sample stamped with its tick time
//	client.WriteAxisSample("rig-001", 0, 0.42, snap.Time)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a callback.
// Connection and health check errors are returned directly.
//
// # Performance
//
// Writes are batched according to config.yaml settings (batch_size,
// flush_interval_ms). This keeps high-frequency sampling cheap on the wire.
package influxdb
