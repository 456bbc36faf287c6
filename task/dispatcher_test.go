package task_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/graphmesh"
	"github.com/hupe1980/graphmesh/core"
	"github.com/hupe1980/graphmesh/model"
	"github.com/hupe1980/graphmesh/node"
	"github.com/hupe1980/graphmesh/task"
	"github.com/hupe1980/graphmesh/workflow"
)

func newTestDispatcher(t *testing.T) *task.Dispatcher {
	t.Helper()

	writer := model.NewMockAgent("writer")
	writer.AddResponse("topic", "single reply")

	single, err := graphmesh.SinglePipeline(writer)
	require.NoError(t, err)

	drafter := model.NewMockAgent("drafter")
	drafter.AddResponse("topic", "draft")
	editor := model.NewMockAgent("editor")
	editor.AddResponse("topic", "final reply")

	sequential, err := graphmesh.SequentialPipeline([]core.Agent{drafter, editor})
	require.NoError(t, err)

	fanout, err := graphmesh.FanOutPipeline(
		[]core.Agent{
			model.NewStaticAgent("writer-1", "candidate one"),
			model.NewStaticAgent("writer-2", "candidate two"),
		},
		model.NewStaticAgent("selector", "candidate two wins"),
	)
	require.NoError(t, err)

	return task.NewDispatcher(map[task.Mode]*workflow.Graph{
		task.ModeSingle:     single,
		task.ModeSequential: sequential,
		task.ModeFanOut:     fanout,
	})
}

func TestDispatcher_SingleMode(t *testing.T) {
	d := newTestDispatcher(t)

	result, err := d.Dispatch(context.Background(), task.ModeSingle, "topic")
	require.NoError(t, err)
	assert.Equal(t, node.Result{Text: "single reply"}, result)
}

func TestDispatcher_SequentialMode(t *testing.T) {
	d := newTestDispatcher(t)

	result, err := d.Dispatch(context.Background(), task.ModeSequential, "topic")
	require.NoError(t, err)
	assert.Equal(t, node.Result{Text: "final reply"}, result)
}

func TestDispatcher_FanOutMode(t *testing.T) {
	d := newTestDispatcher(t)

	result, err := d.Dispatch(context.Background(), task.ModeFanOut, "topic")
	require.NoError(t, err)
	assert.Equal(t, node.Result{Text: "candidate two wins"}, result)
}

func TestDispatcher_UnsupportedMode(t *testing.T) {
	d := newTestDispatcher(t)

	_, err := d.Dispatch(context.Background(), task.Mode("streaming"), "topic")
	require.ErrorIs(t, err, task.ErrUnsupportedMode)
}

func TestDispatcher_Modes(t *testing.T) {
	d := newTestDispatcher(t)
	assert.ElementsMatch(t, []task.Mode{task.ModeSingle, task.ModeSequential, task.ModeFanOut}, d.Modes())
}

func TestDispatcher_FallbackWhenRunYieldsNothing(t *testing.T) {
	// Input feeds the result adapter directly; without an assistant reply the
	// run completes with no typed output.
	g, err := workflow.Linear(
		node.NewRequestAdapter("input", nil),
		nil,
		node.NewResultAdapter("output"),
	)
	require.NoError(t, err)

	d := task.NewDispatcher(map[task.Mode]*workflow.Graph{task.ModeSingle: g})

	result, err := d.Dispatch(context.Background(), task.ModeSingle, "topic")
	require.NoError(t, err)
	assert.Equal(t, node.Result{Text: task.DefaultFallback}, result)
}

func TestDispatcher_CustomFallback(t *testing.T) {
	g, err := workflow.Linear(
		node.NewRequestAdapter("input", nil),
		nil,
		node.NewResultAdapter("output"),
	)
	require.NoError(t, err)

	d := task.NewDispatcher(
		map[task.Mode]*workflow.Graph{task.ModeSingle: g},
		func(o *task.Options) { o.Fallback = "try again later" },
	)

	result, err := d.Dispatch(context.Background(), task.ModeSingle, "topic")
	require.NoError(t, err)
	assert.Equal(t, "try again later", result.Text)
}

func TestDispatcher_FailedRunSurfacesError(t *testing.T) {
	writer := model.NewMockAgent("writer")
	single, err := graphmesh.SinglePipeline(writer)
	require.NoError(t, err)

	d := task.NewDispatcher(map[task.Mode]*workflow.Graph{task.ModeSingle: single})

	// An unconvertible input faults the request adapter.
	_, err = d.Dispatch(context.Background(), task.ModeSingle, 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed")
}

func TestDispatcher_PausingGraphIsRejected(t *testing.T) {
	agent := model.NewMockAgent("guide")
	g, err := workflow.Linear(
		node.NewInputPrompt("ask", "Which city?"),
		[]core.Executor{node.NewAgentNode("guide", agent)},
		node.NewResultAdapter("output"),
	)
	require.NoError(t, err)

	d := task.NewDispatcher(map[task.Mode]*workflow.Graph{task.ModeSingle: g})

	_, err = d.Dispatch(context.Background(), task.ModeSingle, "start")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paused on input request")
}
