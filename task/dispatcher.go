package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/graphmesh/core"
	"github.com/hupe1980/graphmesh/logging"
	"github.com/hupe1980/graphmesh/node"
	"github.com/hupe1980/graphmesh/runner"
	"github.com/hupe1980/graphmesh/workflow"
)

// Mode selects which graph variant of a task family to run.
type Mode string

const (
	// ModeSingle runs a single agent node.
	ModeSingle Mode = "single"
	// ModeSequential runs a sequential chain of agent nodes.
	ModeSequential Mode = "sequential"
	// ModeFanOut runs parallel branches merged through an aggregator.
	ModeFanOut Mode = "fanout"
)

// ErrUnsupportedMode is returned synchronously, before any run starts, when
// the task family defines no graph for the requested mode.
var ErrUnsupportedMode = errors.New("task: unsupported mode")

// DefaultFallback is the result text returned when a run completes without
// producing a typed output.
const DefaultFallback = "no result was produced"

// Options configures a Dispatcher.
type Options struct {
	// Fallback replaces DefaultFallback as the no-output result text.
	Fallback string
	// Logger receives dispatch and run logs.
	Logger logging.Logger
	// RunnerOptions are forwarded to every runner the dispatcher builds.
	RunnerOptions []func(o *runner.Options)
}

// Dispatcher binds a task family's graph variants to execution modes. For
// each request it selects the graph, submits the typed input, drains the
// event stream and extracts the result.
//
// Output policy: when a run yields more than one typed result the LAST one
// wins ("most recently produced value"); all current graph shapes yield
// exactly one. A run that completes without any typed result returns the
// configured fallback text, a deliberate degrade-gracefully policy.
type Dispatcher struct {
	graphs   map[Mode]*workflow.Graph
	fallback string
	logger   logging.Logger
	runOpts  []func(o *runner.Options)
}

// NewDispatcher creates a dispatcher over the given mode → graph table.
func NewDispatcher(graphs map[Mode]*workflow.Graph, optFns ...func(o *Options)) *Dispatcher {
	opts := Options{
		Fallback: DefaultFallback,
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Dispatcher{
		graphs:   graphs,
		fallback: opts.Fallback,
		logger:   opts.Logger,
		runOpts:  opts.RunnerOptions,
	}
}

// Modes returns the modes this dispatcher supports.
func (d *Dispatcher) Modes() []Mode {
	modes := make([]Mode, 0, len(d.graphs))
	for m := range d.graphs {
		modes = append(modes, m)
	}
	return modes
}

// Dispatch runs the graph registered for mode with the given typed input and
// returns the extracted result. Handler faults and cancellation surface as
// errors; a completed run without output returns the fallback result.
func (d *Dispatcher) Dispatch(ctx context.Context, mode Mode, input any) (node.Result, error) {
	graph, ok := d.graphs[mode]
	if !ok {
		return node.Result{}, fmt.Errorf("%w: %q", ErrUnsupportedMode, mode)
	}

	d.logger.Debug("task.dispatch", "mode", string(mode), "nodes", graph.Size())

	run := runner.New(graph, d.runOpts...).Run(ctx, input)

	var (
		result    node.Result
		gotResult bool
	)

	for ev := range run.Events() {
		switch e := ev.(type) {
		case core.OutputEvent:
			if r, ok := e.Value.(node.Result); ok {
				result = r
				gotResult = true
			}
		case core.FailedEvent:
			return node.Result{}, fmt.Errorf("task: run %s failed: %w", run.ID(), e.Err)
		case core.CancelledEvent:
			return node.Result{}, fmt.Errorf("task: run %s cancelled: %w", run.ID(), ctx.Err())
		case core.InputRequestedEvent:
			// Dispatch is a fire-and-collect surface; interactive callers
			// drive the runner directly. An unexpected pause is cancelled.
			run.Cancel()
			return node.Result{}, fmt.Errorf("task: run %s paused on input request %s; use the runner for interactive graphs", run.ID(), e.RequestID)
		}
	}

	if !gotResult {
		d.logger.Info("task.dispatch.no_output", "mode", string(mode))
		return node.Result{Text: d.fallback}, nil
	}

	return result, nil
}
