package session

import (
	"context"
	"fmt"
	"time"

	"github.com/quiethelm/stickd/internal/infrastructure/logging"
	"github.com/quiethelm/stickd/internal/state"
)

// pruneEvery is how often the retention window is enforced while running.
// A prune also runs once at startup.
const pruneEvery = time.Hour

// Recorder periodically persists the published snapshot to the journal.
//
// It samples on a fixed interval and skips any tick where the sequence
// number has not advanced, so an idle loop does not fill the history
// with identical rows. Persistence errors are logged and the recorder
// keeps running; the journal is an audit trail, not a control path.
type Recorder struct {
	repo      Repository
	store     *state.Store
	rigID     string
	interval  time.Duration
	retention time.Duration
	logger    *logging.Logger
	lastSeq   uint64
}

// NewRecorder creates a snapshot recorder.
//
// Parameters:
//   - repo: Journal repository receiving the rows
//   - store: Published-state store to sample
//   - rigID: Rig identifier stamped on every row
//   - interval: Sampling period, must be positive
//   - retention: How long snapshots are kept; zero or negative disables pruning
func NewRecorder(repo Repository, store *state.Store, rigID string, interval, retention time.Duration) *Recorder {
	return &Recorder{
		repo:      repo,
		store:     store,
		rigID:     rigID,
		interval:  interval,
		retention: retention,
	}
}

// SetLogger attaches a logger. The recorder logs nothing when unset.
func (r *Recorder) SetLogger(logger *logging.Logger) {
	r.logger = logger
}

// Run samples and prunes until the context is cancelled. It returns nil
// on cancellation and an error only for invalid configuration.
func (r *Recorder) Run(ctx context.Context) error {
	if r.interval <= 0 {
		return fmt.Errorf("snapshot interval must be positive")
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	prune := time.NewTicker(pruneEvery)
	defer prune.Stop()

	r.pruneOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.sample(ctx)
		case <-prune.C:
			r.pruneOnce(ctx)
		}
	}
}

// sample persists the current snapshot if it is newer than the last one
// recorded.
func (r *Recorder) sample(ctx context.Context) {
	snap := r.store.Load()
	if snap.Seq == r.lastSeq {
		return
	}

	if err := r.repo.RecordSnapshot(ctx, r.rigID, snap); err != nil {
		r.logError("failed to record snapshot", "error", err, "seq", snap.Seq)
		return
	}
	r.lastSeq = snap.Seq
}

// pruneOnce enforces the retention window.
func (r *Recorder) pruneOnce(ctx context.Context) {
	if r.retention <= 0 {
		return
	}

	deleted, err := r.repo.PruneSnapshots(ctx, r.retention)
	if err != nil {
		r.logError("failed to prune snapshot history", "error", err)
		return
	}
	if deleted > 0 {
		r.logInfo("pruned snapshot history", "deleted", deleted)
	}
}

func (r *Recorder) logInfo(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Info(msg, args...)
	}
}

func (r *Recorder) logError(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Error(msg, args...)
	}
}
