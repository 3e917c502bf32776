package monitor

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/quiethelm/stickd/internal/state"
)

// waitForCondition polls until the condition holds or the deadline passes.
func waitForCondition(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return cond()
}

// TestMonitorPrintsFrame verifies the dump carries the whole frame in a
// readable layout.
func TestMonitorPrintsFrame(t *testing.T) {
	out := &syncBuffer{}
	store := state.NewStore()

	snap := state.Snapshot{Seq: 3, Enabled: true}
	snap.Axes[0] = 0.5
	snap.Axes[1] = -0.25
	snap.Buttons[9] = 1
	snap.Accumulators[1] = 0.125
	store.Publish(snap)

	mon := New(store, out, "rig-1", 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mon.Run(ctx) }()

	if !waitForCondition(t, time.Second, func() bool { return out.String() != "" }) {
		t.Fatal("monitor never printed a frame")
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}

	got := out.String()
	for _, want := range []string{
		"----- rig-1 seq 3 (enabled) -----",
		"axes:",
		"0.5000",
		"-0.2500",
		"buttons: 0 0 0 0 0 0 0 0 0 1 0 0 0",
		"accumulators:",
		"0.1250",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
}

// TestMonitorShowsWaitingGate verifies the pre-enable frame is labelled.
func TestMonitorShowsWaitingGate(t *testing.T) {
	out := &syncBuffer{}
	store := state.NewStore()
	store.Publish(state.Snapshot{Seq: 1})

	mon := New(store, out, "rig-1", 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mon.Run(ctx) }()

	if !waitForCondition(t, time.Second, func() bool { return out.String() != "" }) {
		t.Fatal("monitor never printed a frame")
	}
	cancel()
	<-done

	if !strings.Contains(out.String(), "(waiting)") {
		t.Errorf("output %q missing gate label %q", out.String(), "(waiting)")
	}
}

// TestMonitorPrintsEveryInterval verifies frames keep coming even when
// nothing changes, unlike the network consumers.
func TestMonitorPrintsEveryInterval(t *testing.T) {
	out := &syncBuffer{}
	store := state.NewStore()
	store.Publish(state.Snapshot{Seq: 1})

	mon := New(store, out, "rig-1", 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mon.Run(ctx) }()

	if !waitForCondition(t, time.Second, func() bool {
		return strings.Count(out.String(), "----- rig-1") >= 3
	}) {
		t.Fatal("monitor did not keep printing an unchanged frame")
	}
	cancel()
	<-done
}

// TestMonitorRequiresInterval verifies invalid configuration is rejected.
func TestMonitorRequiresInterval(t *testing.T) {
	mon := New(state.NewStore(), &syncBuffer{}, "rig-1", 0)

	if err := mon.Run(context.Background()); err == nil {
		t.Error("Run() with zero interval should error")
	}
}

// ─── Mock Dependencies ───

// syncBuffer is a bytes.Buffer safe to read while the monitor writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
