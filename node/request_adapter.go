package node

import (
	"fmt"

	"github.com/hupe1980/graphmesh/core"
)

// ConvertFunc translates a strongly-typed domain request into the opening
// conversation of a run. ok is false when the adapter does not recognize the
// value's type.
type ConvertFunc func(v any) ([]core.Message, bool)

// RequestAdapter is the input-side boundary of a graph. It accepts either a
// typed domain request (via its ConvertFunc), a plain string, a raw Message,
// or a raw []Message conversation, and normalizes all of them into exactly
// one outbound Envelope followed by a TurnSignal. The signal is always sent
// after the content so downstream agent nodes see the complete conversation
// before being told to respond.
type RequestAdapter struct {
	*core.BaseExecutor
	convert ConvertFunc
}

// NewRequestAdapter creates the input boundary node. convert may be nil when
// only raw string / Message / []Message submissions are expected.
func NewRequestAdapter(id string, convert ConvertFunc) *RequestAdapter {
	a := &RequestAdapter{
		BaseExecutor: core.NewBaseExecutor(id, core.KindEnvelope, core.KindTurnSignal),
		convert:      convert,
	}
	a.Handle(core.KindSubmission, a.handleSubmission)
	return a
}

func (a *RequestAdapter) handleSubmission(execCtx *core.ExecContext, p core.Payload) error {
	sub := p.(core.Submission)

	var conv []core.Message
	switch v := sub.Value.(type) {
	case []core.Message:
		// Raw conversation input: forwarded as-is, order untouched.
		conv = append(conv, v...)
	case core.Message:
		// A raw single message is a one-element conversation.
		conv = []core.Message{v}
	case string:
		conv = []core.Message{core.NewUserMessage(v)}
	default:
		if a.convert != nil {
			if msgs, ok := a.convert(v); ok {
				conv = msgs
				break
			}
		}
		return fmt.Errorf("node: request adapter %s cannot convert input of type %T", a.ID(), sub.Value)
	}

	execCtx.LogDebug("node.request.accepted", "executor", a.ID(), "messages", len(conv))
	execCtx.Send(core.Envelope{Conversation: conv})
	execCtx.Send(core.TurnSignal{})

	return nil
}
