// Package state defines the conditioned controller snapshot and the
// single-writer store that publishes it.
//
// The ingestion loop is the only writer. It publishes a complete Snapshot
// once per tick by swapping an immutable record into the Store. Any number
// of goroutines may call Load at their own cadence; each Load returns a
// whole-tick copy, so a reader can never observe half of one tick and half
// of the next. The guarantee is snapshot consistency, not freshness: a
// reader may see a value up to one tick old.
//
// # Usage
//
//	store := state.NewStore()
//
//	// writer (one goroutine)
//	store.Publish(snap)
//
//	// readers (any goroutine)
//	snap := store.Load()
//	if snap.Enabled {
//	    steer(snap.Axes[0], snap.Axes[1])
//	}
//
// Snapshot.Seq increases by exactly one per publish, which lets pollers
// detect whether anything changed since their last read.
package state
