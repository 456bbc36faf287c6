package workflow

import (
	"fmt"

	"github.com/hupe1980/graphmesh/core"
)

// Linear builds a start → chain... → output pipeline. chain may be empty, in
// which case the input node feeds the output node directly.
func Linear(input core.Executor, chain []core.Executor, output core.Executor) (*Graph, error) {
	executors := make([]core.Executor, 0, len(chain)+2)
	executors = append(executors, input)
	executors = append(executors, chain...)
	executors = append(executors, output)

	var edges []Edge
	prev := input
	for _, ex := range chain {
		edges = append(edges, Single{From: prev.ID(), To: ex.ID()})
		prev = ex
	}
	edges = append(edges, Single{From: prev.ID(), To: output.ID()})

	return New(executors, edges, input.ID(), output.ID())
}

// FanOutFanIn builds a start → parallel branches → aggregator → post... →
// output graph. Each branch is a non-empty sequential sub-chain; the branch
// order passed here fixes the deterministic ordering of the aggregator's
// synthesized prompt.
func FanOutFanIn(
	input core.Executor,
	branches [][]core.Executor,
	aggregator core.Executor,
	post []core.Executor,
	output core.Executor,
) (*Graph, error) {
	if len(branches) == 0 {
		return nil, fmt.Errorf("workflow: fan-out requires at least one branch")
	}

	executors := []core.Executor{input}
	heads := make([]string, 0, len(branches))
	terminals := make([]string, 0, len(branches))

	for i, branch := range branches {
		if len(branch) == 0 {
			return nil, fmt.Errorf("workflow: branch %d is empty", i)
		}
		executors = append(executors, branch...)
		heads = append(heads, branch[0].ID())
		terminals = append(terminals, branch[len(branch)-1].ID())
	}
	executors = append(executors, aggregator)
	executors = append(executors, post...)
	executors = append(executors, output)

	edges := []Edge{FanOut{From: input.ID(), To: heads}}
	for _, branch := range branches {
		for i := 0; i+1 < len(branch); i++ {
			edges = append(edges, Single{From: branch[i].ID(), To: branch[i+1].ID()})
		}
	}
	edges = append(edges, FanIn{From: terminals, To: aggregator.ID()})

	prev := aggregator
	for _, ex := range post {
		edges = append(edges, Single{From: prev.ID(), To: ex.ID()})
		prev = ex
	}
	edges = append(edges, Single{From: prev.ID(), To: output.ID()})

	return New(executors, edges, input.ID(), output.ID())
}
