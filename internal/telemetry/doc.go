// Package telemetry fans the published controller state out to remote
// consumers.
//
// Two consumers run as long-lived goroutines, each sampling the
// lock-free state store on its own cadence:
//
//   - Publisher mirrors the whole conditioned frame to MQTT as a
//     retained JSON document, so a subscriber receives the current
//     frame immediately on connect.
//   - Recorder streams per-channel samples to InfluxDB for dashboards
//     and conditioning tuning.
//
// Both skip intervals where the sequence number has not advanced, so an
// idle loop produces no traffic. Neither consumer touches the ingest
// path: they read published snapshots and hand them to infrastructure
// clients that buffer internally.
package telemetry
