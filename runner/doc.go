// Package runner drives a workflow graph to completion, to a pause point or
// to failure, streaming typed lifecycle events while it goes.
//
// A Runner is bound to one validated graph and starts runs; each Run owns a
// FIFO delivery queue, an event channel and the pause/resume state for
// external input. Deliveries targeting distinct nodes within one scheduling
// pass execute concurrently (so parallel fan-out branches issue their agent
// calls in parallel) while queue mutation and event emission stay serialized
// on the scheduling goroutine, keeping ordering deterministic.
package runner
