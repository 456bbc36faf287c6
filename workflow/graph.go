package workflow

import (
	"fmt"

	"github.com/hupe1980/graphmesh/core"
)

// FanInTarget is implemented by aggregation nodes that merge parallel
// branches. Expected reports how many branch deliveries the node waits for;
// SetBranches informs it of the declared branch order so its synthesized
// output is deterministic regardless of arrival order.
type FanInTarget interface {
	Expected() int
	SetBranches(ids []string)
}

// Graph is an immutable, validated workflow: a set of executors connected by
// single, fan-out and fan-in edges, with one designated start node and one
// designated output-producing node. Build it with New (or the Linear /
// FanOutFanIn helpers) and share it across sequential runs; the runner calls
// Reset before each run to clear per-run node state.
type Graph struct {
	nodes   map[string]core.Executor
	targets map[string][]string
	start   string
	output  string
}

// New validates and assembles a graph. It rejects duplicate or unknown node
// IDs, duplicate edges, edges whose emitted payload
// kinds the downstream node cannot handle, fan-in edges whose source count
// does not match the aggregator's expected count, unreachable fan-in sources
// or output nodes, and cycles.
func New(executors []core.Executor, edges []Edge, start, output string) (*Graph, error) {
	nodes := make(map[string]core.Executor, len(executors))
	for _, ex := range executors {
		if ex.ID() == "" {
			return nil, fmt.Errorf("workflow: executor with empty id")
		}
		if _, exists := nodes[ex.ID()]; exists {
			return nil, fmt.Errorf("workflow: duplicate executor id %q", ex.ID())
		}
		nodes[ex.ID()] = ex
	}

	startNode, ok := nodes[start]
	if !ok {
		return nil, fmt.Errorf("workflow: start node %q not found", start)
	}
	if _, ok := nodes[output]; !ok {
		return nil, fmt.Errorf("workflow: output node %q not found", output)
	}
	if !handlesKind(startNode, core.KindSubmission) {
		return nil, fmt.Errorf("workflow: start node %q does not accept submissions", start)
	}

	g := &Graph{nodes: nodes, targets: make(map[string][]string), start: start, output: output}

	for _, e := range edges {
		switch edge := e.(type) {
		case Single:
			if err := g.connect(edge.From, edge.To); err != nil {
				return nil, err
			}
		case FanOut:
			if len(edge.To) == 0 {
				return nil, fmt.Errorf("workflow: fan-out from %q has no targets", edge.From)
			}
			for _, to := range edge.To {
				if err := g.connect(edge.From, to); err != nil {
					return nil, err
				}
			}
		case FanIn:
			if len(edge.From) == 0 {
				return nil, fmt.Errorf("workflow: fan-in into %q has no sources", edge.To)
			}
			target, ok := nodes[edge.To]
			if !ok {
				return nil, fmt.Errorf("workflow: edge references unknown node %q", edge.To)
			}
			agg, ok := target.(FanInTarget)
			if !ok {
				return nil, fmt.Errorf("workflow: fan-in target %q is not an aggregation node", edge.To)
			}
			if agg.Expected() != len(edge.From) {
				return nil, fmt.Errorf("workflow: fan-in into %q has %d sources but the aggregator expects %d",
					edge.To, len(edge.From), agg.Expected())
			}
			for _, from := range edge.From {
				if err := g.connect(from, edge.To); err != nil {
					return nil, err
				}
			}
			agg.SetBranches(append([]string(nil), edge.From...))
		default:
			return nil, fmt.Errorf("workflow: unsupported edge type %T", e)
		}
	}

	reachable := g.reachableFromStart()
	for _, e := range edges {
		fanIn, ok := e.(FanIn)
		if !ok {
			continue
		}
		for _, from := range fanIn.From {
			if !reachable[from] {
				return nil, fmt.Errorf("workflow: fan-in source %q is not reachable from start node %q", from, start)
			}
		}
	}
	if !reachable[output] {
		return nil, fmt.Errorf("workflow: output node %q is not reachable from start node %q", output, start)
	}

	if cycle := g.findCycle(); cycle != "" {
		return nil, fmt.Errorf("workflow: graph contains a cycle through %q", cycle)
	}

	return g, nil
}

// connect registers one from→to link after checking node existence, the
// single-outbound-edge rule and payload kind compatibility.
func (g *Graph) connect(from, to string) error {
	src, ok := g.nodes[from]
	if !ok {
		return fmt.Errorf("workflow: edge references unknown node %q", from)
	}
	dst, ok := g.nodes[to]
	if !ok {
		return fmt.Errorf("workflow: edge references unknown node %q", to)
	}
	for _, existing := range g.targets[from] {
		if existing == to {
			return fmt.Errorf("workflow: duplicate edge %q -> %q", from, to)
		}
	}
	if !compatible(src, dst) {
		return fmt.Errorf("workflow: node %q emits no payload kind that %q handles", from, to)
	}
	g.targets[from] = append(g.targets[from], to)
	return nil
}

// compatible reports whether dst handles at least one kind src emits.
func compatible(src, dst core.Executor) bool {
	for _, k := range src.Emits() {
		if handlesKind(dst, k) {
			return true
		}
	}
	return false
}

func handlesKind(ex core.Executor, k core.Kind) bool {
	for _, h := range ex.Handles() {
		if h == k {
			return true
		}
	}
	return false
}

func (g *Graph) reachableFromStart() map[string]bool {
	seen := map[string]bool{g.start: true}
	queue := []string{g.start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.targets[cur] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return seen
}

// findCycle returns the id of a node on a cycle, or "".
func (g *Graph) findCycle() string {
	const (
		visiting = 1
		done     = 2
	)
	state := map[string]int{}
	var visit func(id string) string
	visit = func(id string) string {
		state[id] = visiting
		for _, next := range g.targets[id] {
			switch state[next] {
			case visiting:
				return next
			case done:
			default:
				if hit := visit(next); hit != "" {
					return hit
				}
			}
		}
		state[id] = done
		return ""
	}
	for id := range g.nodes {
		if state[id] == 0 {
			if hit := visit(id); hit != "" {
				return hit
			}
		}
	}
	return ""
}

// StartID returns the designated start node id.
func (g *Graph) StartID() string { return g.start }

// OutputID returns the designated output-producing node id.
func (g *Graph) OutputID() string { return g.output }

// Node returns the executor registered under id.
func (g *Graph) Node(id string) (core.Executor, bool) {
	ex, ok := g.nodes[id]
	return ex, ok
}

// Targets returns the downstream node ids payloads sent by id are routed to,
// in edge declaration order. Terminal nodes return nil.
func (g *Graph) Targets(id string) []string {
	return g.targets[id]
}

// Size returns the number of nodes in the graph.
func (g *Graph) Size() int { return len(g.nodes) }

// Reset clears per-run state on every stateful node. The runner invokes it
// once before the first delivery of each run.
func (g *Graph) Reset() {
	for _, ex := range g.nodes {
		if r, ok := ex.(core.Resettable); ok {
			r.Reset()
		}
	}
}
