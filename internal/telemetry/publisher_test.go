package telemetry

import (
	"context"
	"encoding/json"
	"errors"
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

// startPublisher runs the publisher in a goroutine and returns its result channel.
func startPublisher(ctx context.Context, pub *Publisher) chan error {
	done := make(chan error, 1)
	go func() {
		done <- pub.Run(ctx)
	}()
	return done
}

// TestPublisherPublishesNewSnapshots verifies each advance of the
// sequence number reaches the broker on the rig's state topic.
func TestPublisherPublishesNewSnapshots(t *testing.T) {
	broker := newFakeBroker()
	store := state.NewStore()
	store.Publish(state.Snapshot{Seq: 1})

	pub := NewPublisher(broker, store, "rig-1", 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := startPublisher(ctx, pub)

	if !waitForCondition(t, time.Second, func() bool { return broker.publishCount() >= 1 }) {
		t.Fatal("first snapshot was never published")
	}

	store.Publish(state.Snapshot{Seq: 2, Enabled: true})
	if !waitForCondition(t, time.Second, func() bool { return broker.publishCount() >= 2 }) {
		t.Fatal("second snapshot was never published")
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

	msgs := broker.messages()
	for _, msg := range msgs {
		if msg.topic != "stickd/state/rig-1" {
			t.Errorf("topic = %q, want %q", msg.topic, "stickd/state/rig-1")
		}
		if !msg.retained {
			t.Error("state messages must be retained")
		}
	}

	var first state.Snapshot
	if err := json.Unmarshal(msgs[0].payload, &first); err != nil {
		t.Fatalf("payload is not valid snapshot JSON: %v", err)
	}
	if first.Seq != 1 {
		t.Errorf("first published seq = %d, want 1", first.Seq)
	}
}

// TestPublisherPayloadRoundTrips verifies the JSON payload carries the
// full frame.
func TestPublisherPayloadRoundTrips(t *testing.T) {
	broker := newFakeBroker()
	store := state.NewStore()

	snap := state.Snapshot{
		Seq:     9,
		Time:    time.Date(2026, 7, 15, 10, 30, 0, 0, time.UTC),
		Enabled: true,
	}
	snap.Axes[0] = 0.5
	snap.Axes[3] = -0.25
	snap.Buttons[9] = 1
	snap.Accumulators[1] = -0.125
	store.Publish(snap)

	pub := NewPublisher(broker, store, "rig-1", 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := startPublisher(ctx, pub)

	if !waitForCondition(t, time.Second, func() bool { return broker.publishCount() >= 1 }) {
		t.Fatal("snapshot was never published")
	}
	cancel()
	<-done

	var got state.Snapshot
	if err := json.Unmarshal(broker.messages()[0].payload, &got); err != nil {
		t.Fatalf("payload is not valid snapshot JSON: %v", err)
	}
	if got.Seq != snap.Seq {
		t.Errorf("seq = %d, want %d", got.Seq, snap.Seq)
	}
	if !got.Time.Equal(snap.Time) {
		t.Errorf("time = %v, want %v", got.Time, snap.Time)
	}
	if !got.Enabled {
		t.Error("enabled flag was lost")
	}
	if got.Axes != snap.Axes {
		t.Errorf("axes = %v, want %v", got.Axes, snap.Axes)
	}
	if got.Buttons != snap.Buttons {
		t.Errorf("buttons = %v, want %v", got.Buttons, snap.Buttons)
	}
	if got.Accumulators != snap.Accumulators {
		t.Errorf("accumulators = %v, want %v", got.Accumulators, snap.Accumulators)
	}
}

// TestPublisherSkipsUnchanged verifies an idle store produces one
// message, not one per interval.
func TestPublisherSkipsUnchanged(t *testing.T) {
	broker := newFakeBroker()
	store := state.NewStore()
	store.Publish(state.Snapshot{Seq: 7})

	pub := NewPublisher(broker, store, "rig-1", 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := startPublisher(ctx, pub)

	if !waitForCondition(t, time.Second, func() bool { return broker.publishCount() >= 1 }) {
		t.Fatal("snapshot was never published")
	}

	// Let several more intervals elapse with nothing new published.
	time.Sleep(40 * time.Millisecond)
	cancel()
	<-done

	if count := broker.publishCount(); count != 1 {
		t.Errorf("publish count = %d, want 1 (unchanged seq must be skipped)", count)
	}
}

// TestPublisherIgnoresZeroSnapshot verifies nothing is sent before the
// loop publishes its first frame.
func TestPublisherIgnoresZeroSnapshot(t *testing.T) {
	broker := newFakeBroker()
	store := state.NewStore()

	pub := NewPublisher(broker, store, "rig-1", 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := startPublisher(ctx, pub)

	time.Sleep(30 * time.Millisecond)
	cancel()
	<-done

	if count := broker.publishCount(); count != 0 {
		t.Errorf("publish count = %d, want 0 before first frame", count)
	}
}

// TestPublisherRetriesAfterPublishError verifies a failed publish does
// not advance the high-water mark.
func TestPublisherRetriesAfterPublishError(t *testing.T) {
	broker := newFakeBroker()
	broker.setPublishErr(errors.New("not connected"))
	store := state.NewStore()
	store.Publish(state.Snapshot{Seq: 3})

	pub := NewPublisher(broker, store, "rig-1", 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := startPublisher(ctx, pub)

	// The same frame should be attempted repeatedly while publishes fail.
	if !waitForCondition(t, time.Second, func() bool { return broker.publishAttempts() >= 2 }) {
		t.Fatal("failed publish was never retried")
	}

	broker.setPublishErr(nil)
	if !waitForCondition(t, time.Second, func() bool { return broker.publishCount() == 1 }) {
		t.Fatal("snapshot was never published after the error cleared")
	}

	cancel()
	<-done

	var got state.Snapshot
	if err := json.Unmarshal(broker.messages()[0].payload, &got); err != nil {
		t.Fatalf("payload is not valid snapshot JSON: %v", err)
	}
	if got.Seq != 3 {
		t.Errorf("published seq = %d, want 3", got.Seq)
	}
}

// TestPublisherRequiresInterval verifies invalid configuration is rejected.
func TestPublisherRequiresInterval(t *testing.T) {
	pub := NewPublisher(newFakeBroker(), state.NewStore(), "rig-1", 0, nil)

	if err := pub.Run(context.Background()); err == nil {
		t.Error("Run() with zero interval should error")
	}
}

// TestAnnounceEnabled verifies the gate-open event payload and topic.
func TestAnnounceEnabled(t *testing.T) {
	broker := newFakeBroker()
	pub := NewPublisher(broker, state.NewStore(), "rig-1", time.Second, nil)

	if err := pub.AnnounceEnabled(1500 * time.Millisecond); err != nil {
		t.Fatalf("AnnounceEnabled() error = %v", err)
	}

	msgs := broker.messages()
	if len(msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(msgs))
	}
	if msgs[0].topic != "stickd/event/rig-1/enabled" {
		t.Errorf("topic = %q, want %q", msgs[0].topic, "stickd/event/rig-1/enabled")
	}
	if msgs[0].retained {
		t.Error("enable announcement must not be retained")
	}
	if msgs[0].qos != 1 {
		t.Errorf("qos = %d, want 1", msgs[0].qos)
	}

	var got struct {
		RigID     string `json:"rig_id"`
		ElapsedMs int64  `json:"elapsed_ms"`
	}
	if err := json.Unmarshal(msgs[0].payload, &got); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if got.RigID != "rig-1" {
		t.Errorf("rig_id = %q, want %q", got.RigID, "rig-1")
	}
	if got.ElapsedMs != 1500 {
		t.Errorf("elapsed_ms = %d, want 1500", got.ElapsedMs)
	}
}

// TestAnnounceEnabledPublishError verifies broker failures are surfaced.
func TestAnnounceEnabledPublishError(t *testing.T) {
	broker := newFakeBroker()
	broker.setPublishErr(errors.New("not connected"))
	pub := NewPublisher(broker, state.NewStore(), "rig-1", time.Second, nil)

	if err := pub.AnnounceEnabled(time.Second); err == nil {
		t.Error("AnnounceEnabled() should surface the publish failure")
	}
}

// ─── Mock Dependencies ───

// publishedMessage is one successful publish captured by fakeBroker.
type publishedMessage struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// fakeBroker is an in-memory Broker for publisher tests.
type fakeBroker struct {
	mu         sync.Mutex
	published  []publishedMessage
	attempts   int
	publishErr error
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{}
}

func (b *fakeBroker) Publish(topic string, payload []byte, qos byte, retained bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attempts++
	if b.publishErr != nil {
		return b.publishErr
	}
	b.published = append(b.published, publishedMessage{
		topic:    topic,
		payload:  append([]byte(nil), payload...),
		qos:      qos,
		retained: retained,
	})
	return nil
}

func (b *fakeBroker) PublishRetained(topic string, payload []byte) error {
	return b.Publish(topic, payload, 0, true)
}

func (b *fakeBroker) setPublishErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.publishErr = err
}

func (b *fakeBroker) publishCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.published)
}

func (b *fakeBroker) publishAttempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}

func (b *fakeBroker) messages() []publishedMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	msgs := make([]publishedMessage, len(b.published))
	copy(msgs, b.published)
	return msgs
}

var _ Broker = (*fakeBroker)(nil)
