package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/quiethelm/stickd/internal/infrastructure/mqtt"
	"github.com/quiethelm/stickd/internal/state"
)

// Logger is the interface the telemetry consumers need for logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Broker is the interface the publisher needs from the MQTT client.
type Broker interface {
	// Publish sends a message to the specified MQTT topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// PublishRetained publishes a retained message with the configured
	// default QoS.
	PublishRetained(topic string, payload []byte) error
}

// Publisher mirrors the published snapshot to MQTT.
//
// On each interval it loads the current snapshot and, when the sequence
// number has advanced, publishes the whole frame as retained JSON to
// the rig's state topic. The broker then hands the current frame to any
// late subscriber on connect.
//
// A failed publish is logged and dropped; the next interval publishes
// whatever frame is current by then. Stale frames are never queued.
type Publisher struct {
	broker   Broker
	store    *state.Store
	rigID    string
	interval time.Duration
	logger   Logger
	lastSeq  uint64
}

// NewPublisher creates an MQTT state publisher.
//
// Parameters:
//   - broker: Connected MQTT client
//   - store: Published-state store to sample
//   - rigID: Rig identifier used in topic construction
//   - interval: Publish period, must be positive
//   - logger: Logger instance (nil for no logging)
func NewPublisher(broker Broker, store *state.Store, rigID string, interval time.Duration, logger Logger) *Publisher {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Publisher{
		broker:   broker,
		store:    store,
		rigID:    rigID,
		interval: interval,
		logger:   logger,
	}
}

// Run publishes state until the context is cancelled. It returns nil on
// cancellation and an error only for invalid configuration.
func (p *Publisher) Run(ctx context.Context) error {
	if p.interval <= 0 {
		return fmt.Errorf("state publish interval must be positive")
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.publish()
		}
	}
}

// publish sends the current snapshot if it is newer than the last one
// sent.
func (p *Publisher) publish() {
	snap := p.store.Load()
	if snap.Seq == p.lastSeq {
		return
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		p.logger.Error("failed to encode state snapshot", "error", err, "seq", snap.Seq)
		return
	}

	topic := mqtt.Topics{}.RigState(p.rigID)
	if err := p.broker.PublishRetained(topic, payload); err != nil {
		p.logger.Warn("failed to publish state", "error", err, "seq", snap.Seq)
		return
	}
	p.lastSeq = snap.Seq
}

// enabledAnnouncement is the payload for the gate-enable event.
type enabledAnnouncement struct {
	RigID     string    `json:"rig_id"`
	ElapsedMs int64     `json:"elapsed_ms"`
	Time      time.Time `json:"time"`
}

// AnnounceEnabled publishes a one-shot event marking the moment the
// initialization gate opened. The event is sent at QoS 1 and not
// retained.
//
// Parameters:
//   - elapsed: Time between ingestion start and the gate opening
//
// Returns:
//   - error: nil on success, or the publish failure
func (p *Publisher) AnnounceEnabled(elapsed time.Duration) error {
	payload, err := json.Marshal(enabledAnnouncement{
		RigID:     p.rigID,
		ElapsedMs: elapsed.Milliseconds(),
		Time:      time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encoding enable announcement: %w", err)
	}

	topic := mqtt.Topics{}.RigEvent(p.rigID, "enabled")
	if err := p.broker.Publish(topic, payload, 1, false); err != nil {
		return fmt.Errorf("publishing enable announcement: %w", err)
	}
	return nil
}
