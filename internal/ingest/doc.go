// Package ingest drives the fixed-period tick loop that owns the
// joystick device and publishes conditioned snapshots.
//
// One goroutine runs the whole cycle: drain at most one pending device
// event into a private frame, evaluate the initialization gate, run the
// conditioning chain when enabled, publish a complete snapshot, then
// sleep whatever remains of the tick period. Cancellation is checked
// once per tick at the top of the cycle, so shutdown latency is at most
// one tick plus the remainder sleep.
//
// Until the gate opens the loop publishes an idle snapshot that mirrors
// only the designated start button; every other value stays at its
// default. The gate opens exactly once, when the settling delay has
// fully elapsed and the start button is held, and never reverts.
package ingest
