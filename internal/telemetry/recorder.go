package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/quiethelm/stickd/internal/state"
)

// Sink is the interface the recorder needs from the InfluxDB client.
// Writes are buffered and non-blocking; delivery failures surface
// through the client's error callback rather than these methods.
type Sink interface {
	WriteAxisSample(rigID string, axis int, value float64, at time.Time)
	WriteAccumulatorSample(rigID string, index int, value float64, at time.Time)
	WriteGateSample(rigID string, enabled bool, seq uint64, at time.Time)
}

// Recorder streams per-channel samples to the time-series database.
//
// On each interval it loads the current snapshot and, when the sequence
// number has advanced, writes one point per axis, one per accumulator,
// and one gate point. Points carry the snapshot time, so the series
// reflects when the frame was produced rather than when the batch
// flushed.
type Recorder struct {
	sink     Sink
	store    *state.Store
	rigID    string
	interval time.Duration
	lastSeq  uint64
}

// NewRecorder creates a time-series sample recorder.
//
// Parameters:
//   - sink: Connected InfluxDB client
//   - store: Published-state store to sample
//   - rigID: Rig identifier stamped on every point
//   - interval: Sampling period, must be positive
func NewRecorder(sink Sink, store *state.Store, rigID string, interval time.Duration) *Recorder {
	return &Recorder{
		sink:     sink,
		store:    store,
		rigID:    rigID,
		interval: interval,
	}
}

// Run samples until the context is cancelled. It returns nil on
// cancellation and an error only for invalid configuration.
func (r *Recorder) Run(ctx context.Context) error {
	if r.interval <= 0 {
		return fmt.Errorf("sample interval must be positive")
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.sample()
		}
	}
}

// sample writes one round of points if the snapshot is newer than the
// last one sampled.
func (r *Recorder) sample() {
	snap := r.store.Load()
	if snap.Seq == r.lastSeq {
		return
	}

	for i, v := range snap.Axes {
		r.sink.WriteAxisSample(r.rigID, i, v, snap.Time)
	}
	for i, v := range snap.Accumulators {
		r.sink.WriteAccumulatorSample(r.rigID, i, v, snap.Time)
	}
	r.sink.WriteGateSample(r.rigID, snap.Enabled, snap.Seq, snap.Time)

	r.lastSeq = snap.Seq
}
