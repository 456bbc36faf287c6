package node

import (
	"strings"

	"github.com/hupe1980/graphmesh/core"
)

// Result is the narrow typed output a run produces: the trimmed text of the
// final assistant reply. An empty Text is a valid result, never an omitted
// one.
type Result struct {
	Text string `json:"text"`
}

// ResultAdapter is the output-side boundary of a graph. On every envelope it
// looks for the most recent assistant message; while none exists yet (an
// input-only conversation forwarded before any agent replied) it takes no
// action, which is an expected intermediate delivery rather than a failure.
// Once an assistant message is present it yields two typed outputs: the
// Result and the full conversation for callers that want raw history.
//
// Turn signals are not registered and therefore terminal no-ops here.
type ResultAdapter struct {
	*core.BaseExecutor
}

// NewResultAdapter creates the output boundary node.
func NewResultAdapter(id string) *ResultAdapter {
	a := &ResultAdapter{
		BaseExecutor: core.NewBaseExecutor(id),
	}
	a.Handle(core.KindEnvelope, a.handleEnvelope)
	return a
}

func (a *ResultAdapter) handleEnvelope(execCtx *core.ExecContext, p core.Payload) error {
	env := p.(core.Envelope)

	last, ok := env.LastAssistant()
	if !ok {
		execCtx.LogDebug("node.result.no_assistant_message", "executor", a.ID())
		return nil
	}

	execCtx.Yield(Result{Text: strings.TrimSpace(last.Text)})

	conv := make([]core.Message, len(env.Conversation))
	copy(conv, env.Conversation)
	execCtx.Yield(conv)

	return nil
}
