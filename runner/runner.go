package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/graphmesh/core"
	"github.com/hupe1980/graphmesh/history"
	"github.com/hupe1980/graphmesh/logging"
	"github.com/hupe1980/graphmesh/workflow"
)

var (
	// ErrRunNotPaused is returned by Resume when the run has no outstanding
	// input request.
	ErrRunNotPaused = errors.New("runner: run is not paused on an input request")

	// ErrUnknownRequestID is returned by Resume when the supplied id does not
	// match the outstanding request. Run state is left unchanged.
	ErrUnknownRequestID = errors.New("runner: unknown input request id")
)

// State is the lifecycle phase of a run.
type State int

const (
	// StateCreated is the phase before the first delivery.
	StateCreated State = iota
	// StateRunning is the active scheduling phase.
	StateRunning
	// StatePaused means the run awaits an external input response.
	StatePaused
	// StateCompleted is the terminal phase of a drained queue.
	StateCompleted
	// StateFailed is the terminal phase after a handler fault.
	StateFailed
	// StateCancelled is the terminal phase after caller cancellation.
	StateCancelled
)

// String returns a stable label for the state.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Options holds dependency and configuration overrides passed to New.
type Options struct {
	// EventBufferSize sets channel buffering for the event stream.
	EventBufferSize int
	// Logger receives structured scheduling logs.
	Logger logging.Logger
	// History, when set, records every emitted event per run.
	History history.Store
}

// Runner starts runs of one validated workflow graph. A Runner is cheap and
// reusable; sharing one graph across sequential runs is safe because every
// run resets the graph's stateful nodes before its first delivery.
type Runner struct {
	graph           *workflow.Graph
	eventBufferSize int
	logger          logging.Logger
	history         history.Store
}

// New constructs a Runner with optional overrides.
func New(graph *workflow.Graph, optFns ...func(o *Options)) *Runner {
	opts := Options{
		EventBufferSize: 100,
		Logger:          logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Runner{
		graph:           graph,
		eventBufferSize: opts.EventBufferSize,
		logger:          opts.Logger,
		history:         opts.History,
	}
}

// Run submits the typed input to the graph's start node and returns a live
// Run handle. The caller must drain Events until it is closed by a terminal
// event; an undrained stream eventually blocks scheduling once the buffer
// fills.
func (r *Runner) Run(ctx context.Context, input any) *Run {
	ctx, cancel := context.WithCancel(ctx)

	run := &Run{
		id:       core.NewID(),
		graph:    r.graph,
		events:   make(chan core.Event, r.eventBufferSize),
		resumeCh: make(chan core.InputResponse, 1),
		logger:   r.logger,
		history:  r.history,
		cancel:   cancel,
		state:    StateCreated,
	}

	go run.loop(ctx, input)

	return run
}

// delivery is one queued (target, payload) pair awaiting dispatch.
type delivery struct {
	target  string
	origin  string
	payload core.Payload
}

// sendRec is a payload buffered by a handler, remembered with its sender so
// the scheduler can route it along the sender's outbound edges.
type sendRec struct {
	from    string
	payload core.Payload
}

// batchResult aggregates the effects of one scheduling pass.
type batchResult struct {
	events  []core.Event
	sends   []sendRec
	request *core.InputRequest
	err     error
}

// Run is a single execution of a graph: Created → Running → {Completed |
// Paused | Failed | Cancelled}, with Paused re-entering Running on Resume.
type Run struct {
	id       string
	graph    *workflow.Graph
	events   chan core.Event
	resumeCh chan core.InputResponse
	logger   logging.Logger
	history  history.Store
	cancel   context.CancelFunc

	mu      sync.Mutex
	state   State
	pending *core.InputRequest
}

// ID returns the run identifier.
func (run *Run) ID() string { return run.id }

// Events returns the run's event stream. It is closed after the terminal
// event.
func (run *Run) Events() <-chan core.Event { return run.events }

// State returns the current lifecycle phase.
func (run *Run) State() State {
	run.mu.Lock()
	defer run.mu.Unlock()
	return run.state
}

// Cancel raises the run's cancellation signal. Scheduling stops and a
// CancelledEvent terminates the stream.
func (run *Run) Cancel() { run.cancel() }

// Resume supplies the external response for the outstanding input request.
// It rejects calls when the run is not paused, and ids that do not match the
// outstanding request, without mutating run state.
func (run *Run) Resume(requestID, value string) error {
	run.mu.Lock()
	defer run.mu.Unlock()

	if run.state != StatePaused || run.pending == nil {
		return ErrRunNotPaused
	}
	if run.pending.ID != requestID {
		return fmt.Errorf("%w: %s", ErrUnknownRequestID, requestID)
	}

	run.pending = nil
	run.resumeCh <- core.InputResponse{RequestID: requestID, Value: value}

	return nil
}

func (run *Run) setState(s State) {
	run.mu.Lock()
	run.state = s
	run.mu.Unlock()
}

// loop is the scheduling goroutine: it drains the FIFO queue in passes,
// routes buffered sends along graph edges, pauses on input requests and
// terminates on completion, fault or cancellation.
func (run *Run) loop(ctx context.Context, input any) {
	defer close(run.events)
	defer run.cancel()

	start := time.Now()
	deliveries := 0

	run.graph.Reset()
	run.setState(StateRunning)

	queue := []delivery{{target: run.graph.StartID(), payload: core.Submission{Value: input}}}

	for {
		if ctx.Err() != nil {
			run.finishCancelled()
			return
		}

		if len(queue) == 0 {
			run.emit(ctx, core.CompletedEvent{})
			run.setState(StateCompleted)
			run.logger.Info("runner.run.completed", "run_id", run.id, "deliveries", deliveries, "duration_ms", time.Since(start).Milliseconds())
			return
		}

		batch := queue
		queue = nil
		deliveries += len(batch)

		res := run.deliverBatch(ctx, batch)

		for _, ev := range res.events {
			if !run.emit(ctx, ev) {
				run.finishCancelled()
				return
			}
		}

		if res.err != nil {
			run.emit(ctx, core.FailedEvent{Err: res.err})
			run.setState(StateFailed)
			run.logger.Error("runner.run.failed", "run_id", run.id, "error", res.err.Error())
			return
		}

		for _, s := range res.sends {
			targets := run.graph.Targets(s.from)
			if len(targets) == 0 {
				run.logger.Debug("runner.send.dropped", "run_id", run.id, "from", s.from, "kind", s.payload.PayloadKind().String())
				continue
			}
			for _, to := range targets {
				queue = append(queue, delivery{target: to, origin: s.from, payload: s.payload})
			}
		}

		if res.request != nil {
			run.mu.Lock()
			run.pending = res.request
			run.state = StatePaused
			run.mu.Unlock()

			if !run.emit(ctx, core.InputRequestedEvent{RequestID: res.request.ID, ExecutorID: res.request.ExecutorID, Prompt: res.request.Prompt}) {
				run.finishCancelled()
				return
			}

			run.logger.Info("runner.run.paused", "run_id", run.id, "request_id", res.request.ID)

			select {
			case <-ctx.Done():
				run.finishCancelled()
				return
			case resp := <-run.resumeCh:
				run.setState(StateRunning)
				queue = append(queue, delivery{target: res.request.ExecutorID, payload: resp})
			}
		}
	}
}

// deliverBatch executes one scheduling pass. Deliveries are grouped by
// target; a single group runs inline, multiple groups (independent fan-out
// branches) run concurrently, one goroutine per target, while each target's
// own sequence stays ordered. Results merge in first-appearance order so the
// outcome is deterministic regardless of goroutine interleaving.
func (run *Run) deliverBatch(ctx context.Context, batch []delivery) batchResult {
	var order []string
	groups := make(map[string][]delivery)
	for _, d := range batch {
		if _, seen := groups[d.target]; !seen {
			order = append(order, d.target)
		}
		groups[d.target] = append(groups[d.target], d)
	}

	if len(order) == 1 {
		return run.deliverGroup(ctx, groups[order[0]])
	}

	results := make([]batchResult, len(order))
	var wg sync.WaitGroup
	for i, id := range order {
		wg.Add(1)
		go func(i int, ds []delivery) {
			defer wg.Done()
			results[i] = run.deliverGroup(ctx, ds)
		}(i, groups[id])
	}
	wg.Wait()

	var merged batchResult
	for _, res := range results {
		merged.events = append(merged.events, res.events...)
		merged.sends = append(merged.sends, res.sends...)
		if merged.request == nil {
			merged.request = res.request
		}
		if merged.err == nil {
			merged.err = res.err
		}
	}
	return merged
}

// deliverGroup dispatches one target's deliveries in queue order.
func (run *Run) deliverGroup(ctx context.Context, ds []delivery) batchResult {
	var res batchResult

	for _, d := range ds {
		target, ok := run.graph.Node(d.target)
		if !ok {
			res.err = fmt.Errorf("runner: delivery to unknown executor %s", d.target)
			return res
		}

		res.events = append(res.events, core.ExecutorInvokedEvent{ExecutorID: d.target, Summary: core.Summarize(d.payload)})

		execCtx := core.NewExecContext(ctx, run.id, d.target, d.origin, run.logger)
		if err := target.Dispatch(execCtx, d.payload); err != nil {
			res.err = fmt.Errorf("executor %s: %w", d.target, err)
			return res
		}

		for _, resp := range execCtx.Responses() {
			res.events = append(res.events, resp)
		}
		for _, out := range execCtx.Outputs() {
			res.events = append(res.events, core.OutputEvent{Value: out})
		}
		for _, p := range execCtx.Sends() {
			res.sends = append(res.sends, sendRec{from: d.target, payload: p})
		}
		if req := execCtx.Request(); req != nil && res.request == nil {
			res.request = req
		}
	}

	return res
}

// finishCancelled marks the run cancelled and emits the terminal event
// without blocking; the context is already done so a full buffer means the
// caller stopped listening.
func (run *Run) finishCancelled() {
	run.setState(StateCancelled)
	select {
	case run.events <- core.CancelledEvent{}:
	default:
	}
	run.logger.Info("runner.run.cancelled", "run_id", run.id)
}

// emit records ev in the run history (when configured) and forwards it to
// the event stream. It returns false when the run context is cancelled.
func (run *Run) emit(ctx context.Context, ev core.Event) bool {
	if run.history != nil {
		if err := run.history.Append(run.id, ev); err != nil {
			run.logger.Warn("runner.history.append_failed", "run_id", run.id, "error", err.Error())
		}
	}

	select {
	case <-ctx.Done():
		return false
	case run.events <- ev:
		return true
	}
}
