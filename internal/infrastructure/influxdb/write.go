package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteAxisSample writes one conditioned axis value to InfluxDB.
//
// The write is non-blocking; data is batched and sent asynchronously.
// Timestamps come from the caller so samples carry the tick time they
// were published at, not the time they were drained from the batch.
//
// Parameters:
//   - rigID: Rig identifier (tag, low cardinality)
//   - axis: Axis index (tag)
//   - value: Conditioned axis value in [-1, 1]
//   - at: Tick timestamp for the sample
//
// Example:
//
//	client.WriteAxisSample("rig-001", 0, 0.42, snap.Time)
func (c *Client) WriteAxisSample(rigID string, axis int, value float64, at time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"axes",
		map[string]string{
			"rig_id": rigID,
			"axis":   strconv.Itoa(axis),
		},
		map[string]interface{}{
			"value": value,
		},
		at,
	)

	c.writeAPI.WritePoint(point)
}

// WriteAccumulatorSample writes one paired-button accumulator value.
//
// Parameters:
//   - rigID: Rig identifier
//   - index: Accumulator channel index
//   - value: Accumulator value in [-1, 1]
//   - at: Tick timestamp for the sample
func (c *Client) WriteAccumulatorSample(rigID string, index int, value float64, at time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"accumulators",
		map[string]string{
			"rig_id": rigID,
			"index":  strconv.Itoa(index),
		},
		map[string]interface{}{
			"value": value,
		},
		at,
	)

	c.writeAPI.WritePoint(point)
}

// WriteGateSample writes the initialization gate state and tick sequence.
//
// Used to correlate axis history with when the gate opened and to spot
// sequence gaps in the recorded stream.
//
// Parameters:
//   - rigID: Rig identifier
//   - enabled: Whether the gate has opened
//   - seq: Published tick sequence number
//   - at: Tick timestamp for the sample
func (c *Client) WriteGateSample(rigID string, enabled bool, seq uint64, at time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"gate",
		map[string]string{
			"rig_id": rigID,
		},
		map[string]interface{}{
			"enabled": enabled,
			"seq":     int64(seq), // #nosec G115 -- seq stays far below int64 range
		},
		at,
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("daemon_stats",
//	    map[string]string{"rig_id": "rig-001"},
//	    map[string]interface{}{"events_dropped": 3, "tick_overruns": 1})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
