package runner_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/graphmesh/core"
	"github.com/hupe1980/graphmesh/history"
	"github.com/hupe1980/graphmesh/internal/testutil"
	"github.com/hupe1980/graphmesh/model"
	"github.com/hupe1980/graphmesh/node"
	"github.com/hupe1980/graphmesh/runner"
	"github.com/hupe1980/graphmesh/workflow"
)

const eventTimeout = 5 * time.Second

func singleAgentGraph(t *testing.T, agent core.Agent) *workflow.Graph {
	t.Helper()
	g, err := workflow.Linear(
		node.NewRequestAdapter("input", nil),
		[]core.Executor{node.NewAgentNode(agent.Name(), agent)},
		node.NewResultAdapter("output"),
	)
	require.NoError(t, err)
	return g
}

// waitFor drains the stream until an event of type E arrives, returning it and
// the events read so far.
func waitFor[E core.Event](t *testing.T, events <-chan core.Event) E {
	t.Helper()
	deadline := time.After(eventTimeout)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatalf("event stream closed before the expected event arrived")
			}
			if want, match := ev.(E); match {
				return want
			}
		case <-deadline:
			var zero E
			t.Fatalf("timeout waiting for %T", zero)
			return zero
		}
	}
}

func TestRun_SingleAgent(t *testing.T) {
	agent := model.NewMockAgent("writer")
	agent.AddResponse("write a limerick", "There once was a graph in a queue")

	run := runner.New(singleAgentGraph(t, agent)).Run(context.Background(), "write a limerick")

	events := testutil.Collect(t, run.Events(), eventTimeout)

	require.NotEmpty(t, events)
	first, ok := events[0].(core.ExecutorInvokedEvent)
	require.True(t, ok)
	assert.Equal(t, "input", first.ExecutorID)

	responded := false
	for _, ev := range events {
		if r, ok := ev.(core.AgentRespondedEvent); ok {
			responded = true
			assert.Equal(t, "writer", r.ExecutorID)
			assert.Equal(t, "There once was a graph in a queue", r.Text)
		}
	}
	assert.True(t, responded)

	outputs := testutil.Outputs(events)
	require.NotEmpty(t, outputs)
	assert.Equal(t, node.Result{Text: "There once was a graph in a queue"}, outputs[0])

	assert.IsType(t, core.CompletedEvent{}, testutil.Terminal(t, events))
	assert.Equal(t, runner.StateCompleted, run.State())
}

func TestRun_SequentialChain(t *testing.T) {
	writer := model.NewMockAgent("writer")
	writer.AddResponse("topic", "rough draft")
	critic := model.NewMockAgent("critic")
	critic.AddResponse("topic", "the draft needs a stronger opening")
	editor := model.NewMockAgent("editor")
	editor.AddResponse("topic", "polished draft")

	g, err := workflow.Linear(
		node.NewRequestAdapter("input", nil),
		[]core.Executor{
			node.NewAgentNode("writer", writer),
			node.NewAgentNode("critic", critic),
			node.NewAgentNode("editor", editor),
		},
		node.NewResultAdapter("output"),
	)
	require.NoError(t, err)

	run := runner.New(g).Run(context.Background(), "topic")
	events := testutil.Collect(t, run.Events(), eventTimeout)

	// All three agents respond, in chain order.
	var replies []string
	for _, ev := range events {
		if r, ok := ev.(core.AgentRespondedEvent); ok {
			replies = append(replies, r.Text)
		}
	}
	assert.Equal(t, []string{"rough draft", "the draft needs a stronger opening", "polished draft"}, replies)

	// The final result is the editor's reply only, not a concatenation.
	outputs := testutil.Outputs(events)
	require.NotEmpty(t, outputs)
	assert.Equal(t, node.Result{Text: "polished draft"}, outputs[0])

	// The second output is the full conversation: user, writer, critic, editor.
	conv, ok := outputs[1].([]core.Message)
	require.True(t, ok)
	require.Len(t, conv, 4)
	assert.Equal(t, "writer", conv[1].Author)
	assert.Equal(t, "critic", conv[2].Author)
	assert.Equal(t, "editor", conv[3].Author)
}

func fanOutGraph(t *testing.T, selectorReply string) *workflow.Graph {
	t.Helper()

	branches := make([][]core.Executor, 0, 3)
	for _, spec := range []struct{ id, reply string }{
		{"writer-1", "draft one"},
		{"writer-2", "draft two"},
		{"writer-3", "draft three"},
	} {
		agent := model.NewMockAgent(spec.id)
		agent.AddResponse("topic", spec.reply)
		branches = append(branches, []core.Executor{node.NewAgentNode(spec.id, agent)})
	}

	selector := model.NewStaticAgent("selector", selectorReply)

	g, err := workflow.FanOutFanIn(
		node.NewRequestAdapter("input", nil),
		branches,
		node.NewAggregator("aggregator", 3),
		[]core.Executor{node.NewAgentNode("selector", selector)},
		node.NewResultAdapter("output"),
	)
	require.NoError(t, err)
	return g
}

func TestRun_FanOutFanIn(t *testing.T) {
	run := runner.New(fanOutGraph(t, "draft two wins")).Run(context.Background(), "topic")
	events := testutil.Collect(t, run.Events(), eventTimeout)

	outputs := testutil.Outputs(events)
	require.NotEmpty(t, outputs)
	assert.Equal(t, node.Result{Text: "draft two wins"}, outputs[0])

	// The selector saw a synthesized prompt listing every branch reply in the
	// declared branch order, regardless of which branch finished first.
	conv, ok := outputs[1].([]core.Message)
	require.True(t, ok)
	prompt := conv[0].Text
	i1 := strings.Index(prompt, "[writer-1] draft one")
	i2 := strings.Index(prompt, "[writer-2] draft two")
	i3 := strings.Index(prompt, "[writer-3] draft three")
	require.True(t, i1 >= 0 && i2 >= 0 && i3 >= 0, "all branch replies must appear: %q", prompt)
	assert.Less(t, i1, i2)
	assert.Less(t, i2, i3)

	assert.IsType(t, core.CompletedEvent{}, testutil.Terminal(t, events))
}

func TestRunner_SequentialRunsAreIsolated(t *testing.T) {
	r := runner.New(fanOutGraph(t, "same winner"))

	for i := 0; i < 3; i++ {
		run := r.Run(context.Background(), "topic")
		events := testutil.Collect(t, run.Events(), eventTimeout)

		outputs := testutil.Outputs(events)
		require.NotEmpty(t, outputs, "run %d produced no output", i)
		assert.Equal(t, node.Result{Text: "same winner"}, outputs[0])
		assert.IsType(t, core.CompletedEvent{}, testutil.Terminal(t, events))
	}
}

func pausingGraph(t *testing.T, agent core.Agent) *workflow.Graph {
	t.Helper()
	g, err := workflow.Linear(
		node.NewInputPrompt("ask", "Which city?"),
		[]core.Executor{node.NewAgentNode(agent.Name(), agent)},
		node.NewResultAdapter("output"),
	)
	require.NoError(t, err)
	return g
}

func TestRun_PauseAndResume(t *testing.T) {
	agent := model.NewMockAgent("guide")
	agent.AddResponse("Berlin", "Visit the Museumsinsel.")

	run := runner.New(pausingGraph(t, agent)).Run(context.Background(), "start")

	req := waitFor[core.InputRequestedEvent](t, run.Events())
	assert.Equal(t, "ask", req.ExecutorID)
	assert.Equal(t, "Which city?", req.Prompt)
	assert.Equal(t, runner.StatePaused, run.State())

	// A wrong id is rejected and leaves the run paused.
	err := run.Resume("bogus", "Berlin")
	require.ErrorIs(t, err, runner.ErrUnknownRequestID)
	assert.Equal(t, runner.StatePaused, run.State())

	require.NoError(t, run.Resume(req.RequestID, "Berlin"))

	events := testutil.Collect(t, run.Events(), eventTimeout)
	outputs := testutil.Outputs(events)
	require.NotEmpty(t, outputs)
	assert.Equal(t, node.Result{Text: "Visit the Museumsinsel."}, outputs[0])
	assert.Equal(t, runner.StateCompleted, run.State())

	// The request was consumed; a second resume has nothing to match.
	assert.ErrorIs(t, run.Resume(req.RequestID, "again"), runner.ErrRunNotPaused)
}

func TestRun_ResumeWithoutPause(t *testing.T) {
	agent := model.NewMockAgent("writer")
	run := runner.New(singleAgentGraph(t, agent)).Run(context.Background(), "hello")

	testutil.Collect(t, run.Events(), eventTimeout)

	assert.ErrorIs(t, run.Resume("any", "value"), runner.ErrRunNotPaused)
}

func TestRun_CancelWhilePaused(t *testing.T) {
	agent := model.NewMockAgent("guide")
	run := runner.New(pausingGraph(t, agent)).Run(context.Background(), "start")

	waitFor[core.InputRequestedEvent](t, run.Events())
	run.Cancel()

	events := testutil.Collect(t, run.Events(), eventTimeout)
	if len(events) > 0 {
		assert.IsType(t, core.CancelledEvent{}, testutil.Terminal(t, events))
	}
	assert.Equal(t, runner.StateCancelled, run.State())
}

type faultyAgent struct{ err error }

func (f faultyAgent) Name() string { return "faulty" }

func (f faultyAgent) Respond(ctx context.Context, conversation []core.Message) (core.Message, error) {
	return core.Message{}, f.err
}

func TestRun_HandlerFaultFailsRun(t *testing.T) {
	boom := errors.New("provider unavailable")
	run := runner.New(singleAgentGraph(t, faultyAgent{err: boom})).Run(context.Background(), "hello")

	events := testutil.Collect(t, run.Events(), eventTimeout)

	terminal := testutil.Terminal(t, events)
	failed, ok := terminal.(core.FailedEvent)
	require.True(t, ok, "expected a failed terminal event, got %T", terminal)
	assert.ErrorIs(t, failed.Err, boom)
	assert.Contains(t, failed.Err.Error(), "executor faulty")
	assert.Equal(t, runner.StateFailed, run.State())
}

func TestRun_ParentContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	agent := model.NewMockAgent("writer")
	run := runner.New(singleAgentGraph(t, agent)).Run(ctx, "hello")

	testutil.Collect(t, run.Events(), eventTimeout)
	assert.Equal(t, runner.StateCancelled, run.State())
}

func TestRun_RecordsHistory(t *testing.T) {
	store := history.NewInMemoryStore()
	agent := model.NewMockAgent("writer")

	r := runner.New(singleAgentGraph(t, agent), func(o *runner.Options) {
		o.History = store
	})

	run := r.Run(context.Background(), "hello")
	events := testutil.Collect(t, run.Events(), eventTimeout)

	trace, err := store.Get(run.ID())
	require.NoError(t, err)
	assert.Equal(t, events, trace)
	assert.IsType(t, core.CompletedEvent{}, trace[len(trace)-1])
}
