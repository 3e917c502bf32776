package telemetry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/quiethelm/stickd/internal/state"
)

// startRecorder runs the recorder in a goroutine and returns its result channel.
func startRecorder(ctx context.Context, rec *Recorder) chan error {
	done := make(chan error, 1)
	go func() {
		done <- rec.Run(ctx)
	}()
	return done
}

// TestRecorderWritesPointsPerChannel verifies one frame fans out into
// one point per axis, one per accumulator, and one gate point, all
// stamped with the snapshot time.
func TestRecorderWritesPointsPerChannel(t *testing.T) {
	sink := newFakeSink()
	store := state.NewStore()

	snap := state.Snapshot{
		Seq:     5,
		Time:    time.Date(2026, 7, 15, 10, 30, 0, 0, time.UTC),
		Enabled: true,
	}
	snap.Axes[0] = 0.5
	snap.Axes[7] = -0.75
	snap.Accumulators[1] = 0.25
	store.Publish(snap)

	rec := NewRecorder(sink, store, "rig-1", 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := startRecorder(ctx, rec)

	if !waitForCondition(t, time.Second, func() bool { return sink.gateCount() >= 1 }) {
		t.Fatal("frame was never sampled")
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancellation")
	}

	axes := sink.axisSamples()
	if len(axes) != state.MaxAxes {
		t.Fatalf("axis samples = %d, want %d", len(axes), state.MaxAxes)
	}
	for i, sample := range axes {
		if sample.rigID != "rig-1" {
			t.Errorf("axis %d rig = %q, want %q", i, sample.rigID, "rig-1")
		}
		if sample.axis != i {
			t.Errorf("axis sample %d carries index %d", i, sample.axis)
		}
		if sample.value != snap.Axes[i] {
			t.Errorf("axis %d value = %v, want %v", i, sample.value, snap.Axes[i])
		}
		if !sample.at.Equal(snap.Time) {
			t.Errorf("axis %d time = %v, want snapshot time %v", i, sample.at, snap.Time)
		}
	}

	accums := sink.accumulatorSamples()
	if len(accums) != state.NumAccumulators {
		t.Fatalf("accumulator samples = %d, want %d", len(accums), state.NumAccumulators)
	}
	for i, sample := range accums {
		if sample.index != i {
			t.Errorf("accumulator sample %d carries index %d", i, sample.index)
		}
		if sample.value != snap.Accumulators[i] {
			t.Errorf("accumulator %d value = %v, want %v", i, sample.value, snap.Accumulators[i])
		}
	}

	gates := sink.gateSamples()
	if gates[0].seq != 5 || !gates[0].enabled {
		t.Errorf("gate sample = %+v, want seq 5 enabled", gates[0])
	}
	if !gates[0].at.Equal(snap.Time) {
		t.Errorf("gate time = %v, want snapshot time %v", gates[0].at, snap.Time)
	}
}

// TestRecorderSkipsUnchanged verifies an idle store produces one round
// of points, not one per interval.
func TestRecorderSkipsUnchanged(t *testing.T) {
	sink := newFakeSink()
	store := state.NewStore()
	store.Publish(state.Snapshot{Seq: 7})

	rec := NewRecorder(sink, store, "rig-1", 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := startRecorder(ctx, rec)

	if !waitForCondition(t, time.Second, func() bool { return sink.gateCount() >= 1 }) {
		t.Fatal("frame was never sampled")
	}

	// Let several more intervals elapse with nothing new published.
	time.Sleep(40 * time.Millisecond)
	cancel()
	<-done

	if count := sink.gateCount(); count != 1 {
		t.Errorf("gate samples = %d, want 1 (unchanged seq must be skipped)", count)
	}
}

// TestRecorderIgnoresZeroSnapshot verifies nothing is written before
// the loop publishes its first frame.
func TestRecorderIgnoresZeroSnapshot(t *testing.T) {
	sink := newFakeSink()
	store := state.NewStore()

	rec := NewRecorder(sink, store, "rig-1", 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := startRecorder(ctx, rec)

	time.Sleep(30 * time.Millisecond)
	cancel()
	<-done

	if count := sink.gateCount(); count != 0 {
		t.Errorf("gate samples = %d, want 0 before first frame", count)
	}
}

// TestRecorderFollowsSequence verifies successive frames each produce a
// round of points.
func TestRecorderFollowsSequence(t *testing.T) {
	sink := newFakeSink()
	store := state.NewStore()
	store.Publish(state.Snapshot{Seq: 1})

	rec := NewRecorder(sink, store, "rig-1", 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := startRecorder(ctx, rec)

	if !waitForCondition(t, time.Second, func() bool { return sink.gateCount() >= 1 }) {
		t.Fatal("first frame was never sampled")
	}

	store.Publish(state.Snapshot{Seq: 2, Enabled: true})
	if !waitForCondition(t, time.Second, func() bool { return sink.gateCount() >= 2 }) {
		t.Fatal("second frame was never sampled")
	}

	cancel()
	<-done

	gates := sink.gateSamples()
	if gates[0].seq != 1 || gates[1].seq != 2 {
		t.Errorf("gate seqs = [%d %d], want [1 2]", gates[0].seq, gates[1].seq)
	}
	if gates[0].enabled || !gates[1].enabled {
		t.Errorf("gate enabled flags = [%t %t], want [false true]", gates[0].enabled, gates[1].enabled)
	}
}

// TestTelemetryRecorderRequiresInterval verifies invalid configuration
// is rejected.
func TestTelemetryRecorderRequiresInterval(t *testing.T) {
	rec := NewRecorder(newFakeSink(), state.NewStore(), "rig-1", 0)

	if err := rec.Run(context.Background()); err == nil {
		t.Error("Run() with zero interval should error")
	}
}

// ─── Mock Dependencies ───

type axisSample struct {
	rigID string
	axis  int
	value float64
	at    time.Time
}

type accumulatorSample struct {
	rigID string
	index int
	value float64
	at    time.Time
}

type gateSample struct {
	rigID   string
	enabled bool
	seq     uint64
	at      time.Time
}

// fakeSink is an in-memory Sink for recorder tests.
type fakeSink struct {
	mu     sync.Mutex
	axes   []axisSample
	accums []accumulatorSample
	gates  []gateSample
}

func newFakeSink() *fakeSink {
	return &fakeSink{}
}

func (s *fakeSink) WriteAxisSample(rigID string, axis int, value float64, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.axes = append(s.axes, axisSample{rigID: rigID, axis: axis, value: value, at: at})
}

func (s *fakeSink) WriteAccumulatorSample(rigID string, index int, value float64, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accums = append(s.accums, accumulatorSample{rigID: rigID, index: index, value: value, at: at})
}

func (s *fakeSink) WriteGateSample(rigID string, enabled bool, seq uint64, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gates = append(s.gates, gateSample{rigID: rigID, enabled: enabled, seq: seq, at: at})
}

func (s *fakeSink) axisSamples() []axisSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	samples := make([]axisSample, len(s.axes))
	copy(samples, s.axes)
	return samples
}

func (s *fakeSink) accumulatorSamples() []accumulatorSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	samples := make([]accumulatorSample, len(s.accums))
	copy(samples, s.accums)
	return samples
}

func (s *fakeSink) gateSamples() []gateSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	samples := make([]gateSample, len(s.gates))
	copy(samples, s.gates)
	return samples
}

func (s *fakeSink) gateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.gates)
}

var _ Sink = (*fakeSink)(nil)
