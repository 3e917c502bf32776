package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/quiethelm/stickd/internal/state"
)

const (
	defaultQueryLimit = 50
	maxQueryLimit     = 500
)

// SQLiteRepository implements Repository using SQLite.
//
// Snapshots are stored as JSON in the snapshot_history table; lifecycle
// events live in session_events.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite session repository.
//
// Parameters:
//   - db: Open SQLite connection used for queries
//
// Returns:
//   - *SQLiteRepository: Repository instance ready for use
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// RecordEvent appends a lifecycle event to the journal.
func (r *SQLiteRepository) RecordEvent(ctx context.Context, rigID, kind, detail string) error {
	if rigID == "" {
		return fmt.Errorf("rig id is required")
	}
	if kind == "" {
		return fmt.Errorf("event kind is required")
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO session_events (rig_id, kind, detail) VALUES (?, ?, ?)",
		rigID,
		kind,
		detail,
	)
	if err != nil {
		return fmt.Errorf("inserting session event: %w", err)
	}

	return nil
}

// GetEvents returns recent lifecycle events for the rig, newest first.
// Rows sharing a created_at second are ordered by insertion (id).
func (r *SQLiteRepository) GetEvents(ctx context.Context, rigID string, limit int) ([]Event, error) {
	if rigID == "" {
		return nil, fmt.Errorf("rig id is required")
	}
	limit = clampLimit(limit)

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, rig_id, kind, detail, created_at
		 FROM session_events
		 WHERE rig_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		rigID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying session events: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0, limit)
	for rows.Next() {
		var event Event
		var createdAt string

		if err := rows.Scan(&event.ID, &event.RigID, &event.Kind, &event.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning session event: %w", err)
		}

		timestamp, err := parseJournalTimestamp(createdAt)
		if err != nil {
			return nil, err
		}
		event.CreatedAt = timestamp

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating session events: %w", err)
	}

	return events, nil
}

// RecordSnapshot persists one conditioned-state snapshot as JSON.
//
// The snapshot sequence number is duplicated into its own column so
// queries never have to parse the payload.
func (r *SQLiteRepository) RecordSnapshot(ctx context.Context, rigID string, snap state.Snapshot) error {
	if rigID == "" {
		return fmt.Errorf("rig id is required")
	}

	snapJSON, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshalling snapshot: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO snapshot_history (rig_id, seq, snapshot) VALUES (?, ?, ?)",
		rigID,
		int64(snap.Seq),
		string(snapJSON),
	)
	if err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}

	return nil
}

// GetRecentSnapshots returns recent snapshots for the rig, newest first.
func (r *SQLiteRepository) GetRecentSnapshots(ctx context.Context, rigID string, limit int) ([]SnapshotRecord, error) {
	if rigID == "" {
		return nil, fmt.Errorf("rig id is required")
	}
	limit = clampLimit(limit)

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, rig_id, snapshot, created_at
		 FROM snapshot_history
		 WHERE rig_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		rigID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying snapshot history: %w", err)
	}
	defer rows.Close()

	records := make([]SnapshotRecord, 0, limit)
	for rows.Next() {
		var record SnapshotRecord
		var snapJSON string
		var createdAt string

		if err := rows.Scan(&record.ID, &record.RigID, &snapJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot history: %w", err)
		}

		if err := json.Unmarshal([]byte(snapJSON), &record.Snapshot); err != nil {
			return nil, fmt.Errorf("unmarshalling snapshot: %w", err)
		}

		timestamp, err := parseJournalTimestamp(createdAt)
		if err != nil {
			return nil, err
		}
		record.CreatedAt = timestamp

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshot history: %w", err)
	}

	return records, nil
}

// PruneSnapshots deletes snapshot rows older than the given duration.
// Lifecycle events are kept regardless of age.
func (r *SQLiteRepository) PruneSnapshots(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM snapshot_history WHERE created_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting snapshot history: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}

	return rowsAffected, nil
}

// clampLimit bounds a caller-supplied row limit.
func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultQueryLimit
	}
	if limit > maxQueryLimit {
		return maxQueryLimit
	}
	return limit
}

// parseJournalTimestamp parses a timestamp stored in SQLite.
func parseJournalTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("created_at is empty")
	}

	timestamp, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return timestamp, nil
	}

	fallback, fallbackErr := time.Parse("2006-01-02T15:04:05Z", value)
	if fallbackErr == nil {
		return fallback, nil
	}

	return time.Time{}, fmt.Errorf("parsing created_at: %w", err)
}
