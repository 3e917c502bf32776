// Package monitor renders the published controller state to a console
// for bench testing without any broker or database running.
package monitor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/quiethelm/stickd/internal/state"
)

// Monitor periodically writes a human-readable dump of the current
// snapshot. Unlike the network consumers it prints every interval,
// changed or not, so a stalled loop is visible at a glance.
type Monitor struct {
	store    *state.Store
	out      io.Writer
	rigID    string
	interval time.Duration
}

// New creates a console monitor writing to out.
func New(store *state.Store, out io.Writer, rigID string, interval time.Duration) *Monitor {
	return &Monitor{
		store:    store,
		out:      out,
		rigID:    rigID,
		interval: interval,
	}
}

// Run prints frames until the context is cancelled. It returns nil on
// cancellation and an error only for invalid configuration.
func (m *Monitor) Run(ctx context.Context) error {
	if m.interval <= 0 {
		return fmt.Errorf("monitor interval must be positive")
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.dump()
		}
	}
}

// dump writes one frame. The frame is assembled first and written in a
// single call so interleaved log output cannot split it mid-line.
func (m *Monitor) dump() {
	snap := m.store.Load()

	gate := "waiting"
	if snap.Enabled {
		gate = "enabled"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "----- %s seq %d (%s) -----\n", m.rigID, snap.Seq, gate)

	buf.WriteString("axes:")
	for _, v := range snap.Axes {
		fmt.Fprintf(&buf, " %7.4f", v)
	}
	buf.WriteByte('\n')

	buf.WriteString("buttons:")
	for _, v := range snap.Buttons {
		fmt.Fprintf(&buf, " %d", v)
	}
	buf.WriteByte('\n')

	buf.WriteString("accumulators:")
	for _, v := range snap.Accumulators {
		fmt.Fprintf(&buf, " %7.4f", v)
	}
	buf.WriteString("\n\n")

	_, _ = m.out.Write(buf.Bytes())
}
