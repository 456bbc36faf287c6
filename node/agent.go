package node

import (
	"fmt"
	"time"

	"github.com/hupe1980/graphmesh/core"
)

// AgentNode wraps one external agent call as an executor. It buffers the
// conversation delivered in an envelope and, on the following turn signal,
// asks its agent for a reply, appends it and re-emits the grown envelope plus
// a fresh turn signal for the next node.
//
// The node is stateful per run (the buffered conversation) and reset between
// sequential runs; deliveries to a single node are serialized by the
// scheduler, so no internal locking is needed.
type AgentNode struct {
	*core.BaseExecutor
	agent   core.Agent
	pending []core.Message
}

// NewAgentNode creates an agent invocation node. The node id doubles as the
// branch identity when the node terminates a fan-out branch.
func NewAgentNode(id string, agent core.Agent) *AgentNode {
	n := &AgentNode{
		BaseExecutor: core.NewBaseExecutor(id, core.KindEnvelope, core.KindTurnSignal),
		agent:        agent,
	}
	n.Handle(core.KindEnvelope, n.handleEnvelope)
	n.Handle(core.KindTurnSignal, n.handleTurnSignal)
	return n
}

// Agent returns the wrapped collaborator.
func (n *AgentNode) Agent() core.Agent { return n.agent }

// Reset implements core.Resettable.
func (n *AgentNode) Reset() { n.pending = nil }

func (n *AgentNode) handleEnvelope(execCtx *core.ExecContext, p core.Payload) error {
	env := p.(core.Envelope)
	n.pending = append([]core.Message(nil), env.Conversation...)
	return nil
}

func (n *AgentNode) handleTurnSignal(execCtx *core.ExecContext, _ core.Payload) error {
	if len(n.pending) == 0 {
		return fmt.Errorf("node: agent %s signaled to respond with no conversation", n.ID())
	}

	start := time.Now()
	reply, err := n.agent.Respond(execCtx.Context, n.pending)
	dur := time.Since(start)
	execCtx.LogInfo("node.agent.responded", "executor", n.ID(), "agent", n.agent.Name(), "duration_ms", dur.Milliseconds(), "error", err != nil)
	if err != nil {
		return fmt.Errorf("node: agent %s failed: %w", n.agent.Name(), err)
	}

	conv := append(append([]core.Message(nil), n.pending...), reply)
	n.pending = conv

	execCtx.Responded(reply.Text)
	execCtx.Send(core.Envelope{Conversation: conv, TurnComplete: true})
	execCtx.Send(core.TurnSignal{})

	return nil
}
