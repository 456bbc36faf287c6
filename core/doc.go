// Package core contains the leaf types shared by every layer of GraphMesh:
// the conversation envelope exchanged between executors, the closed payload
// sum routed through a workflow graph, the lifecycle events streamed to
// callers, and the Executor contract with its typed dispatch mechanics.
//
// Nothing in this package performs scheduling or I/O; it only defines the
// vocabulary the workflow, node, runner and task packages speak.
package core
