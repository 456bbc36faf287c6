package core

import "sort"

// Handler processes one payload delivered to an executor. Side effects are
// expressed through the ExecContext: sending payloads to the node's outbound
// edges, yielding typed outputs, or requesting external input. A returned
// error terminates the run as failed.
type Handler func(execCtx *ExecContext, p Payload) error

// Executor is a named processing node in a workflow graph. It declares the
// payload kinds it handles and the kinds it may emit; the graph builder uses
// both to verify edge compatibility before any run starts.
//
// Dispatch routes an incoming payload to the handler registered for its kind.
// Payloads with no matching handler are dropped without error so that nodes
// can ignore protocol traffic (e.g. a bare turn signal) they do not need.
// Delivery is at-most-once per run; handlers need not be replay safe.
type Executor interface {
	// ID returns the node identifier, unique within a graph.
	ID() string

	// Handles returns the payload kinds this node accepts, sorted.
	Handles() []Kind

	// Emits returns the payload kinds this node may send downstream, sorted.
	Emits() []Kind

	// Dispatch routes p to the matching handler.
	Dispatch(execCtx *ExecContext, p Payload) error
}

// Resettable is implemented by stateful executors (the fan-in aggregator,
// agent nodes buffering a conversation). Reset is invoked once at the start
// of every run, before any delivery, so a single instance can be reused
// across sequential runs without cross-run leakage.
type Resettable interface {
	Reset()
}

// BaseExecutor provides the typed routing shared by all concrete nodes.
// The handler set is fixed at construction time; concrete executors embed
// BaseExecutor and register their handlers in their constructor.
type BaseExecutor struct {
	id       string
	handlers map[Kind]Handler
	emits    []Kind
}

// NewBaseExecutor creates the routing core for a node. emits declares the
// payload kinds the node's handlers may send downstream.
func NewBaseExecutor(id string, emits ...Kind) *BaseExecutor {
	sorted := append([]Kind(nil), emits...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return &BaseExecutor{
		id:       id,
		handlers: make(map[Kind]Handler),
		emits:    sorted,
	}
}

// Handle registers the handler for a payload kind. Registering the same kind
// twice replaces the previous handler; constructors are expected to register
// each kind once.
func (b *BaseExecutor) Handle(k Kind, h Handler) {
	b.handlers[k] = h
}

// ID implements Executor.
func (b *BaseExecutor) ID() string { return b.id }

// Handles implements Executor.
func (b *BaseExecutor) Handles() []Kind {
	kinds := make([]Kind, 0, len(b.handlers))
	for k := range b.handlers {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Emits implements Executor.
func (b *BaseExecutor) Emits() []Kind {
	return append([]Kind(nil), b.emits...)
}

// Dispatch implements Executor. Unmatched payload kinds are dropped.
func (b *BaseExecutor) Dispatch(execCtx *ExecContext, p Payload) error {
	h, ok := b.handlers[p.PayloadKind()]
	if !ok {
		execCtx.LogDebug("executor.payload.dropped", "executor", b.id, "kind", p.PayloadKind().String())
		return nil
	}
	return h(execCtx, p)
}
