// Package session records what happened during a run of the daemon.
//
// Two kinds of rows are kept in SQLite: lifecycle events (the daemon
// started, the initialization gate opened, the daemon stopped) and
// periodic conditioned-state snapshots. Together they provide a local
// audit trail that survives restarts and works even when the
// time-series database is unavailable.
//
// The Recorder samples the published state on a fixed interval, skips
// ticks where nothing new was published, and prunes snapshots past the
// retention window. Lifecycle events are never pruned; a run produces
// only a handful of them.
package session
