package node

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/graphmesh/core"
)

// Aggregator is the fan-in node: it collects one envelope from each of N
// parallel upstream branches and, once all N have arrived, synthesizes a
// single user-role prompt listing every branch's latest assistant reply,
// followed by a turn signal for the downstream node.
//
// Concurrency contract: count increment, accumulation and the "all arrived"
// decision happen under one mutex so concurrent branch completions cannot
// race; the synthesis step runs outside the lock on an immutable snapshot
// taken while still holding it. The lock guards exactly the counter+buffer
// pair and nothing more.
//
// Determinism: the synthesized prompt orders branches by the declared fan-in
// source order (set by the graph builder via SetBranches), not by arrival
// order.
type Aggregator struct {
	*core.BaseExecutor
	expected int

	mu       sync.Mutex
	branches []string
	received map[string]core.Envelope
	count    int
}

// NewAggregator creates a fan-in node expecting one envelope from each of
// expected branches.
func NewAggregator(id string, expected int) *Aggregator {
	a := &Aggregator{
		BaseExecutor: core.NewBaseExecutor(id, core.KindEnvelope, core.KindTurnSignal),
		expected:     expected,
		received:     make(map[string]core.Envelope),
	}
	a.Handle(core.KindEnvelope, a.handleEnvelope)
	return a
}

// Expected implements workflow.FanInTarget.
func (a *Aggregator) Expected() int { return a.expected }

// SetBranches implements workflow.FanInTarget. The graph builder calls it
// once at construction with the declared fan-in source order.
func (a *Aggregator) SetBranches(ids []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.branches = append([]string(nil), ids...)
}

// Reset implements core.Resettable. Count and accumulation are cleared at
// the start of every run so an instance never carries state between runs.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.received = make(map[string]core.Envelope)
	a.count = 0
}

// Received reports how many branch envelopes have arrived in the current run.
func (a *Aggregator) Received() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count
}

func (a *Aggregator) handleEnvelope(execCtx *core.ExecContext, p core.Payload) error {
	env := p.(core.Envelope)

	a.mu.Lock()
	if _, dup := a.received[execCtx.Origin]; dup {
		a.mu.Unlock()
		return fmt.Errorf("node: aggregator %s received a second envelope from branch %s", a.ID(), execCtx.Origin)
	}
	a.received[execCtx.Origin] = env.Clone()
	a.count++
	fire := a.count == a.expected
	var order []string
	var snapshot map[string]core.Envelope
	if fire {
		order = append([]string(nil), a.branches...)
		snapshot = make(map[string]core.Envelope, len(a.received))
		for k, v := range a.received {
			snapshot[k] = v
		}
	}
	a.mu.Unlock()

	execCtx.LogDebug("node.aggregator.received", "executor", a.ID(), "branch", execCtx.Origin, "fire", fire)

	if !fire {
		return nil
	}

	execCtx.Send(core.Envelope{Conversation: []core.Message{core.NewUserMessage(a.synthesize(order, snapshot))}})
	execCtx.Send(core.TurnSignal{})

	return nil
}

// synthesize renders the combined prompt in declared branch order. Branches
// whose envelope carries no assistant reply contribute a placeholder.
func (a *Aggregator) synthesize(order []string, received map[string]core.Envelope) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Here are %d candidate responses:\n\n", len(order))
	for i, branch := range order {
		label := fmt.Sprintf("Branch %d", i+1)
		text := "(no result)"
		if env, ok := received[branch]; ok {
			if last, found := env.LastAssistant(); found {
				if last.Author != "" {
					label = last.Author
				}
				text = last.Text
			}
		}
		fmt.Fprintf(&sb, "%d. [%s] %s\n", i+1, label, text)
	}
	sb.WriteString("\nReview the candidates and reply with the best response.")
	return sb.String()
}
