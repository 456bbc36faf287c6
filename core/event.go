package core

import (
	"fmt"

	"github.com/google/uuid"
)

// Event is the closed sum of lifecycle notifications a run streams to its
// caller. Events are immutable after emission.
//
// The full set is:
//   - ExecutorInvokedEvent: an executor received a payload
//   - AgentRespondedEvent:  an agent node produced an assistant reply
//   - OutputEvent:          a handler yielded a typed output value
//   - InputRequestedEvent:  a handler asked for external input; the run pauses
//   - CompletedEvent:       the delivery queue drained without error
//   - FailedEvent:          a handler fault terminated the run
//   - CancelledEvent:       the caller's cancellation signal stopped the run
type Event interface{ isEvent() }

// ExecutorInvokedEvent records the delivery of a payload to an executor
// together with a best-effort summary of the input.
type ExecutorInvokedEvent struct {
	ExecutorID string `json:"executor_id"`
	Summary    string `json:"summary"`
}

func (ExecutorInvokedEvent) isEvent() {}

// AgentRespondedEvent carries the assistant text produced by an agent
// invocation node.
type AgentRespondedEvent struct {
	ExecutorID string `json:"executor_id"`
	Text       string `json:"text"`
}

func (AgentRespondedEvent) isEvent() {}

// OutputEvent carries a typed output value yielded by a handler. Callers
// type-assert Value against the result type they expect.
type OutputEvent struct {
	Value any `json:"value"`
}

func (OutputEvent) isEvent() {}

// InputRequestedEvent signals that the run is paused awaiting an external
// response matching RequestID.
type InputRequestedEvent struct {
	RequestID  string `json:"request_id"`
	ExecutorID string `json:"executor_id"`
	Prompt     string `json:"prompt"`
}

func (InputRequestedEvent) isEvent() {}

// CompletedEvent is the terminal event of a successful run.
type CompletedEvent struct{}

func (CompletedEvent) isEvent() {}

// FailedEvent is the terminal event of a run ended by a handler fault. Err is
// the handler error, surfaced verbatim.
type FailedEvent struct {
	Err error `json:"-"`
}

func (FailedEvent) isEvent() {}

// CancelledEvent is the terminal event of a run stopped by caller
// cancellation.
type CancelledEvent struct{}

func (CancelledEvent) isEvent() {}

// IsTerminal reports whether ev ends the event stream.
func IsTerminal(ev Event) bool {
	switch ev.(type) {
	case CompletedEvent, FailedEvent, CancelledEvent:
		return true
	default:
		return false
	}
}

// NewID generates a unique identifier for runs and input requests.
func NewID() string { return uuid.NewString() }

// Summarize renders a short human-readable description of a payload for
// ExecutorInvokedEvent. It never exposes full conversation content.
func Summarize(p Payload) string {
	switch v := p.(type) {
	case Submission:
		return fmt.Sprintf("submission(%T)", v.Value)
	case Envelope:
		return fmt.Sprintf("envelope(%d messages)", len(v.Conversation))
	case TurnSignal:
		return "turn-signal"
	case InputResponse:
		return fmt.Sprintf("input-response(%s)", v.RequestID)
	default:
		return p.PayloadKind().String()
	}
}
