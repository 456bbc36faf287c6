// Package node provides the concrete executors a workflow graph is built
// from: the boundary adapters translating between typed domain requests /
// results and the internal envelope representation, the agent invocation
// node, the thread-safe fan-in aggregator, and the external-input (human in
// the loop) prompt node.
package node
