package core

import (
	"context"

	"github.com/hupe1980/graphmesh/logging"
)

// InputRequest is an outstanding request for externally supplied input. It
// suspends the run until a response with the matching ID arrives.
type InputRequest struct {
	ID         string `json:"id"`
	ExecutorID string `json:"executor_id"`
	Prompt     string `json:"prompt"`
}

// ExecContext is the per-delivery execution scope handed to a handler. It
// buffers the handler's side effects (outbound payloads, typed outputs,
// response announcements, an input request) so the scheduler can apply them
// under its own ordering rules after the handler returns.
//
// An ExecContext is used by exactly one handler invocation and is not safe
// for concurrent use; concurrent deliveries each receive their own instance.
type ExecContext struct {
	// Context is the ambient cancellation context of the run. Handlers
	// performing external calls must honor it.
	Context context.Context

	// RunID identifies the run this delivery belongs to.
	RunID string

	// ExecutorID is the node currently handling the payload.
	ExecutorID string

	// Origin is the ID of the executor that sent the payload, or "" for the
	// initial submission. The fan-in aggregator keys received branches on it.
	Origin string

	sends     []Payload
	outputs   []any
	responses []AgentRespondedEvent
	request   *InputRequest

	*loggerAdapter
}

// NewExecContext creates the execution scope for a single delivery.
func NewExecContext(ctx context.Context, runID, executorID, origin string, logger logging.Logger) *ExecContext {
	return &ExecContext{
		Context:       ctx,
		RunID:         runID,
		ExecutorID:    executorID,
		Origin:        origin,
		loggerAdapter: newLoggerAdapter(logger),
	}
}

// Send queues a payload for the node's outbound edges. The scheduler routes
// buffered sends in the order they were recorded.
func (ec *ExecContext) Send(p Payload) {
	ec.sends = append(ec.sends, p)
}

// Yield records a typed output value; the runner surfaces it as an
// OutputEvent.
func (ec *ExecContext) Yield(v any) {
	ec.outputs = append(ec.outputs, v)
}

// Responded announces the assistant text produced by an agent invocation;
// the runner surfaces it as an AgentRespondedEvent.
func (ec *ExecContext) Responded(text string) {
	ec.responses = append(ec.responses, AgentRespondedEvent{ExecutorID: ec.ExecutorID, Text: text})
}

// RequestInput suspends the run until an external response arrives. It
// returns the generated request ID. At most one request per delivery is
// honored; later calls within the same delivery overwrite the first.
func (ec *ExecContext) RequestInput(prompt string) string {
	id := NewID()
	ec.request = &InputRequest{ID: id, ExecutorID: ec.ExecutorID, Prompt: prompt}
	return id
}

// Sends returns the payloads buffered by the handler, in send order.
func (ec *ExecContext) Sends() []Payload { return ec.sends }

// Outputs returns the typed outputs yielded by the handler, in yield order.
func (ec *ExecContext) Outputs() []any { return ec.outputs }

// Responses returns the agent response announcements recorded by the handler.
func (ec *ExecContext) Responses() []AgentRespondedEvent { return ec.responses }

// Request returns the pending input request, or nil.
func (ec *ExecContext) Request() *InputRequest { return ec.request }
