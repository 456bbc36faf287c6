package node

import "github.com/hupe1980/graphmesh/core"

// InputPrompt is the human-in-the-loop node. On submission it issues an
// external input request, pausing the run; on the matching response it opens
// a conversation carrying the supplied value and signals the next node.
type InputPrompt struct {
	*core.BaseExecutor
	prompt string
}

// NewInputPrompt creates an external-input node asking the given prompt.
func NewInputPrompt(id, prompt string) *InputPrompt {
	n := &InputPrompt{
		BaseExecutor: core.NewBaseExecutor(id, core.KindEnvelope, core.KindTurnSignal),
		prompt:       prompt,
	}
	n.Handle(core.KindSubmission, n.handleSubmission)
	n.Handle(core.KindInputResponse, n.handleResponse)
	return n
}

func (n *InputPrompt) handleSubmission(execCtx *core.ExecContext, _ core.Payload) error {
	id := execCtx.RequestInput(n.prompt)
	execCtx.LogDebug("node.input.requested", "executor", n.ID(), "request_id", id)
	return nil
}

func (n *InputPrompt) handleResponse(execCtx *core.ExecContext, p core.Payload) error {
	resp := p.(core.InputResponse)
	execCtx.Send(core.Envelope{Conversation: []core.Message{core.NewUserMessage(resp.Value)}})
	execCtx.Send(core.TurnSignal{})
	return nil
}
