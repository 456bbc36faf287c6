// Package graphmesh provides a high-level façade over the workflow, node and
// runner packages enabling rapid construction of typed agent pipelines. Most
// applications interact with this package by:
//  1. Building one of the supported graph shapes (SinglePipeline,
//     SequentialPipeline, FanOutPipeline) from core.Agent implementations
//  2. Registering the graphs with a task.Dispatcher keyed by execution mode
//  3. Dispatching typed requests and extracting typed results
//
// All defaults are safe for local development and testing; production
// deployments typically supply provider-backed agents (model/anthropic,
// model/openai) and a structured logger.
package graphmesh

import (
	"fmt"

	"github.com/hupe1980/graphmesh/core"
	"github.com/hupe1980/graphmesh/node"
	"github.com/hupe1980/graphmesh/workflow"
)

// PipelineOptions configures the façade's graph constructors.
type PipelineOptions struct {
	// Convert translates typed domain requests into the opening
	// conversation. Raw string / Message / []Message submissions work
	// without it.
	Convert node.ConvertFunc
}

// SinglePipeline builds input → agent → output.
func SinglePipeline(agent core.Agent, optFns ...func(o *PipelineOptions)) (*workflow.Graph, error) {
	opts := applyPipelineOptions(optFns)

	input := node.NewRequestAdapter("input", opts.Convert)
	output := node.NewResultAdapter("output")

	return workflow.Linear(input, []core.Executor{node.NewAgentNode(agent.Name(), agent)}, output)
}

// SequentialPipeline builds input → agents... → output, each agent seeing the
// conversation grown by its predecessors.
func SequentialPipeline(agents []core.Agent, optFns ...func(o *PipelineOptions)) (*workflow.Graph, error) {
	if len(agents) == 0 {
		return nil, fmt.Errorf("graphmesh: sequential pipeline requires at least one agent")
	}

	opts := applyPipelineOptions(optFns)

	input := node.NewRequestAdapter("input", opts.Convert)
	output := node.NewResultAdapter("output")

	chain := make([]core.Executor, 0, len(agents))
	for _, a := range agents {
		chain = append(chain, node.NewAgentNode(a.Name(), a))
	}

	return workflow.Linear(input, chain, output)
}

// FanOutPipeline builds input → parallel branch agents → aggregator →
// selector → output. Branch order fixes the deterministic ordering of the
// aggregated candidate prompt.
func FanOutPipeline(branchAgents []core.Agent, selector core.Agent, optFns ...func(o *PipelineOptions)) (*workflow.Graph, error) {
	if len(branchAgents) == 0 {
		return nil, fmt.Errorf("graphmesh: fan-out pipeline requires at least one branch agent")
	}

	opts := applyPipelineOptions(optFns)

	input := node.NewRequestAdapter("input", opts.Convert)
	output := node.NewResultAdapter("output")

	branches := make([][]core.Executor, 0, len(branchAgents))
	for _, a := range branchAgents {
		branches = append(branches, []core.Executor{node.NewAgentNode(a.Name(), a)})
	}

	aggregator := node.NewAggregator("aggregator", len(branchAgents))
	post := []core.Executor{node.NewAgentNode(selector.Name(), selector)}

	return workflow.FanOutFanIn(input, branches, aggregator, post, output)
}

func applyPipelineOptions(optFns []func(o *PipelineOptions)) PipelineOptions {
	var opts PipelineOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}
