package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/quiethelm/stickd/internal/conditioning"
	"github.com/quiethelm/stickd/internal/infrastructure/logging"
	"github.com/quiethelm/stickd/internal/joystick"
	"github.com/quiethelm/stickd/internal/state"
)

// Device is the event source the loop drains each tick. *joystick.Device
// satisfies it; tests substitute scripted fakes.
type Device interface {
	ReadEvent() (joystick.Event, bool, error)
	Close() error
}

var _ Device = (*joystick.Device)(nil)

// OpenFunc opens the event source. The loop owns the returned Device
// until Run returns.
type OpenFunc func() (Device, error)

// ButtonPair names the two buttons driving one accumulator.
type ButtonPair struct {
	Decrement int
	Increment int
}

// Config carries the loop tuning. Values arrive pre-validated from the
// configuration layer.
type Config struct {
	// TickPeriod is the fixed cycle time. Zero disables the remainder
	// sleep, which tests rely on.
	TickPeriod time.Duration

	// EnableDelay is the minimum time before the gate may open.
	EnableDelay time.Duration

	// StartButton is the designated gate button index.
	StartButton int

	// OpenRetries is how many times a failed device open is retried
	// before Run gives up. RetryBackoff spaces the attempts.
	OpenRetries  int
	RetryBackoff time.Duration

	// Axis is the conditioning tuning shared by every axis pipeline.
	Axis conditioning.Params

	// AccumulatorStep is the per-tick increment for held accumulator
	// buttons; AccumulatorPairs assigns the buttons.
	AccumulatorStep  float64
	AccumulatorPairs [state.NumAccumulators]ButtonPair
}

// Loop owns the device and is the sole writer of the snapshot store.
type Loop struct {
	cfg    Config
	open   OpenFunc
	store  *state.Store
	logger *logging.Logger

	gate      Gate
	startedAt time.Time
	enabledAt time.Time

	// latest raw device state, private to the loop goroutine
	axes    [state.MaxAxes]float64
	buttons [state.MaxButtons]bool

	pipes  [state.MaxAxes]conditioning.AxisPipeline
	accums [state.NumAccumulators]conditioning.Accumulator

	seq      uint64
	onEnable func(elapsed time.Duration)

	now func() time.Time
}

// New returns an unstarted loop that will publish into store.
func New(cfg Config, open OpenFunc, store *state.Store) *Loop {
	return &Loop{
		cfg:   cfg,
		open:  open,
		store: store,
		now:   time.Now,
	}
}

// SetLogger attaches a logger. The loop logs nothing when unset.
func (l *Loop) SetLogger(logger *logging.Logger) {
	l.logger = logger
}

// OnEnable registers a hook invoked exactly once, from the loop
// goroutine, when the initialization gate opens. elapsed is the time
// since Run started.
func (l *Loop) OnEnable(fn func(elapsed time.Duration)) {
	l.onEnable = fn
}

// Run drives the loop until ctx is cancelled. Device-open failure
// (after the configured retries) is fatal: the store keeps its default
// snapshot and Run returns the error. Cancellation returns nil.
func (l *Loop) Run(ctx context.Context) error {
	dev, err := l.openWithRetry(ctx)
	if err != nil {
		l.logError("input device unavailable", "error", err)
		return err
	}
	defer dev.Close()

	l.start(l.now())
	l.logInfo("ingestion started",
		"tick_period", l.cfg.TickPeriod,
		"enable_delay", l.cfg.EnableDelay,
		"start_button", l.cfg.StartButton)

	for {
		select {
		case <-ctx.Done():
			l.logInfo("ingestion stopped", "ticks", l.seq)
			return nil
		default:
		}

		started := l.now()
		l.tick(dev, started)
		l.sleepRemainder(started)
	}
}

// start resets the per-run state. Split out of Run so tests can drive
// ticks with a controlled clock.
func (l *Loop) start(now time.Time) {
	l.startedAt = now
	l.gate = NewGate(l.cfg.EnableDelay, now)
	for i := range l.pipes {
		l.pipes[i] = conditioning.NewAxisPipeline(l.cfg.Axis)
	}
}

// tick runs one full cycle: fold in at most one device event, evaluate
// the gate, publish.
func (l *Loop) tick(dev Device, now time.Time) {
	l.readOne(dev)

	if !l.gate.Enabled() && l.gate.Evaluate(now, l.pressed(l.cfg.StartButton)) {
		l.enabledAt = now
		elapsed := now.Sub(l.startedAt)
		l.logInfo("input enabled", "elapsed", elapsed)
		if l.onEnable != nil {
			l.onEnable(elapsed)
		}
	}

	if l.gate.Enabled() {
		l.publishConditioned(now)
	} else {
		l.publishIdle(now)
	}
}

// readOne drains at most one pending event into the local frame. No
// event, a short record, or a read error all leave the frame untouched
// for this tick. Indices beyond the tracked ranges are dropped.
func (l *Loop) readOne(dev Device) {
	ev, ok, err := dev.ReadEvent()
	if err != nil {
		l.logDebug("event read failed", "error", err)
		return
	}
	if !ok {
		return
	}

	switch ev.Kind() {
	case joystick.EventAxis:
		if int(ev.Number) < len(l.axes) {
			l.axes[ev.Number] = float64(ev.Value)
		}
	case joystick.EventButton:
		if int(ev.Number) < len(l.buttons) {
			l.buttons[ev.Number] = ev.Value != 0
		}
	}
}

// publishIdle emits the pre-enable snapshot: defaults everywhere except
// the mirrored start button.
func (l *Loop) publishIdle(now time.Time) {
	l.seq++
	snap := state.Snapshot{Seq: l.seq, Time: now}
	if l.pressed(l.cfg.StartButton) {
		snap.Buttons[l.cfg.StartButton] = 1
	}
	l.store.Publish(snap)
}

// publishConditioned runs accumulators and the axis pipelines, then
// publishes the complete frame.
func (l *Loop) publishConditioned(now time.Time) {
	elapsed := now.Sub(l.enabledAt)
	prev := l.store.Load()

	l.seq++
	snap := state.Snapshot{Seq: l.seq, Time: now, Enabled: true}

	for i := range l.accums {
		pair := l.cfg.AccumulatorPairs[i]
		snap.Accumulators[i] = l.accums[i].Advance(
			l.pressed(pair.Decrement),
			l.pressed(pair.Increment),
			l.cfg.AccumulatorStep,
		)
	}

	for i := range snap.Axes {
		snap.Axes[i] = l.pipes[i].Advance(l.axes[i], prev.Axes[i], elapsed)
	}
	for i, held := range l.buttons {
		if held {
			snap.Buttons[i] = 1
		}
	}

	l.store.Publish(snap)
}

func (l *Loop) pressed(button int) bool {
	return button >= 0 && button < len(l.buttons) && l.buttons[button]
}

// sleepRemainder holds the cycle to TickPeriod. A tick that overran its
// period starts the next one immediately.
func (l *Loop) sleepRemainder(started time.Time) {
	if l.cfg.TickPeriod <= 0 {
		return
	}
	if remainder := l.cfg.TickPeriod - l.now().Sub(started); remainder > 0 {
		time.Sleep(remainder)
	}
}

func (l *Loop) openWithRetry(ctx context.Context) (Device, error) {
	dev, err := l.open()
	for attempt := 1; err != nil && attempt <= l.cfg.OpenRetries; attempt++ {
		l.logWarn("device open failed, retrying",
			"attempt", attempt,
			"backoff", l.cfg.RetryBackoff,
			"error", err)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("opening input device: %w", err)
		case <-time.After(l.cfg.RetryBackoff):
		}
		dev, err = l.open()
	}
	if err != nil {
		return nil, fmt.Errorf("opening input device: %w", err)
	}
	return dev, nil
}

func (l *Loop) logDebug(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Debug(msg, args...)
	}
}

func (l *Loop) logInfo(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Info(msg, args...)
	}
}

func (l *Loop) logWarn(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Warn(msg, args...)
	}
}

func (l *Loop) logError(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Error(msg, args...)
	}
}
