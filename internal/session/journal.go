package session

import (
	"context"
	"time"

	"github.com/quiethelm/stickd/internal/state"
)

// Event kinds recorded in the session journal.
const (
	EventStarted = "started"
	EventEnabled = "enabled"
	EventStopped = "stopped"
)

// Event is a single lifecycle entry in the session journal.
type Event struct {
	// ID is the auto-incremented primary key for the journal row.
	ID int64 `json:"id"`

	// RigID identifies the rig this daemon instance serves.
	RigID string `json:"rig_id"`

	// Kind is one of the Event* constants.
	Kind string `json:"kind"`

	// Detail carries optional context, such as the device name or the
	// elapsed time until the gate opened.
	Detail string `json:"detail,omitempty"`

	// CreatedAt is the timestamp of the event (UTC).
	CreatedAt time.Time `json:"created_at"`
}

// SnapshotRecord is one persisted conditioned-state snapshot.
type SnapshotRecord struct {
	// ID is the auto-incremented primary key for the history row.
	ID int64 `json:"id"`

	// RigID identifies the rig this daemon instance serves.
	RigID string `json:"rig_id"`

	// Snapshot is the full conditioned frame as it was published.
	Snapshot state.Snapshot `json:"snapshot"`

	// CreatedAt is the timestamp of the record (UTC).
	CreatedAt time.Time `json:"created_at"`
}

// Repository stores and retrieves session journal rows.
//
// Implementations must be thread-safe and use UTC timestamps.
type Repository interface {
	// RecordEvent appends a lifecycle event to the journal.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - rigID: Rig identifier (required)
	//   - kind: One of the Event* constants (required)
	//   - detail: Optional free-form context, may be empty
	//
	// Returns:
	//   - error: nil on success, otherwise the underlying persistence error
	RecordEvent(ctx context.Context, rigID, kind, detail string) error

	// GetEvents returns recent lifecycle events for the rig, newest first.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - rigID: Rig identifier (required)
	//   - limit: Maximum entries to return (implementation may clamp bounds)
	//
	// Returns:
	//   - []Event: Ordered newest-first journal entries (may be empty)
	//   - error: nil on success, otherwise the underlying query error
	GetEvents(ctx context.Context, rigID string, limit int) ([]Event, error)

	// RecordSnapshot persists one conditioned-state snapshot.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - rigID: Rig identifier (required)
	//   - snap: Snapshot to persist, stored as JSON
	//
	// Returns:
	//   - error: nil on success, otherwise the underlying persistence error
	RecordSnapshot(ctx context.Context, rigID string, snap state.Snapshot) error

	// GetRecentSnapshots returns recent snapshots for the rig, newest first.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - rigID: Rig identifier (required)
	//   - limit: Maximum entries to return (implementation may clamp bounds)
	//
	// Returns:
	//   - []SnapshotRecord: Ordered newest-first records (may be empty)
	//   - error: nil on success, otherwise the underlying query error
	GetRecentSnapshots(ctx context.Context, rigID string, limit int) ([]SnapshotRecord, error)

	// PruneSnapshots deletes snapshots older than the given duration.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - olderThan: Duration to retain (rows older than now-olderThan are deleted)
	//
	// Returns:
	//   - int64: Number of rows deleted
	//   - error: nil on success, otherwise the underlying database error
	PruneSnapshots(ctx context.Context, olderThan time.Duration) (int64, error)
}
