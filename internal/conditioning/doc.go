// Package conditioning implements the per-tick signal chain that turns
// raw controller samples into application-ready values.
//
// Axes pass through four stages in order:
//
//  1. low-pass filter (EMA) to suppress sensor jitter
//  2. normalization from raw counts to [-1, 1]
//  3. dead zone plus squared response curve
//  4. slew limiting against the previously published value
//
// AxisPipeline composes the stages and owns the filter state for one
// axis. Paired buttons integrate separately through Accumulator. All
// types here are plain values with no goroutines or locks; the ingestion
// loop drives them from a single goroutine.
package conditioning
