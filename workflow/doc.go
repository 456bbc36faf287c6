// Package workflow assembles executors and edges into an immutable, validated
// graph. Construction is explicit: callers pass the node set, the edge set
// and the designated start and output nodes to New, and all structural checks
// (edge type compatibility, fan-in arity, reachability, acyclicity) happen
// once at build time. A validated graph is reusable across many runs; only
// its stateful nodes carry per-run state, reset by the runner.
//
// Three shapes are supported: linear chains and fan-out/fan-in with optional
// post-processing. The Linear and FanOutFanIn helpers build them directly.
package workflow
