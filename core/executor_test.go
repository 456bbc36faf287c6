package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExecContext() *ExecContext {
	return NewExecContext(context.Background(), "run", "exec", "", nil)
}

func TestBaseExecutor_DispatchRoutesByKind(t *testing.T) {
	ex := NewBaseExecutor("ex", KindEnvelope)

	var got Payload
	ex.Handle(KindEnvelope, func(execCtx *ExecContext, p Payload) error {
		got = p
		return nil
	})

	env := Envelope{Conversation: []Message{NewUserMessage("hi")}}
	require.NoError(t, ex.Dispatch(newTestExecContext(), env))
	require.NotNil(t, got)
	assert.Equal(t, KindEnvelope, got.PayloadKind())
}

func TestBaseExecutor_DropsUnhandledKind(t *testing.T) {
	ex := NewBaseExecutor("ex")
	ex.Handle(KindEnvelope, func(execCtx *ExecContext, p Payload) error {
		t.Fatal("handler should not run")
		return nil
	})

	// A turn signal has no handler here; the dispatch is a no-op.
	assert.NoError(t, ex.Dispatch(newTestExecContext(), TurnSignal{}))
}

func TestBaseExecutor_HandlerErrorPropagates(t *testing.T) {
	ex := NewBaseExecutor("ex")
	boom := errors.New("boom")
	ex.Handle(KindTurnSignal, func(execCtx *ExecContext, p Payload) error {
		return boom
	})

	assert.ErrorIs(t, ex.Dispatch(newTestExecContext(), TurnSignal{}), boom)
}

func TestBaseExecutor_HandlesSorted(t *testing.T) {
	ex := NewBaseExecutor("ex")
	ex.Handle(KindInputResponse, func(*ExecContext, Payload) error { return nil })
	ex.Handle(KindSubmission, func(*ExecContext, Payload) error { return nil })

	assert.Equal(t, []Kind{KindSubmission, KindInputResponse}, ex.Handles())
}

func TestExecContext_BuffersSideEffects(t *testing.T) {
	execCtx := newTestExecContext()

	execCtx.Send(TurnSignal{})
	execCtx.Yield(42)
	execCtx.Responded("hello")
	id := execCtx.RequestInput("name?")

	require.Len(t, execCtx.Sends(), 1)
	require.Len(t, execCtx.Outputs(), 1)
	assert.Equal(t, 42, execCtx.Outputs()[0])
	require.Len(t, execCtx.Responses(), 1)
	assert.Equal(t, "hello", execCtx.Responses()[0].Text)
	require.NotNil(t, execCtx.Request())
	assert.Equal(t, id, execCtx.Request().ID)
	assert.Equal(t, "name?", execCtx.Request().Prompt)
}

func TestEnvelope_AppendDoesNotMutateReceiver(t *testing.T) {
	base := Envelope{Conversation: []Message{NewUserMessage("a")}}
	grown := base.Append(NewAssistantMessage("agent", "b"))

	assert.Len(t, base.Conversation, 1)
	require.Len(t, grown.Conversation, 2)
	assert.Equal(t, RoleAssistant, grown.Conversation[1].Role)
}

func TestEnvelope_LastAssistant(t *testing.T) {
	env := Envelope{Conversation: []Message{
		NewUserMessage("q"),
		NewAssistantMessage("a1", "first"),
		NewUserMessage("follow-up"),
		NewAssistantMessage("a2", "second"),
	}}

	last, ok := env.LastAssistant()
	require.True(t, ok)
	assert.Equal(t, "second", last.Text)
	assert.Equal(t, "a2", last.Author)

	_, ok = Envelope{Conversation: []Message{NewUserMessage("q")}}.LastAssistant()
	assert.False(t, ok)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "envelope(2 messages)", Summarize(Envelope{Conversation: []Message{{}, {}}}))
	assert.Equal(t, "turn-signal", Summarize(TurnSignal{}))
	assert.Equal(t, "submission(string)", Summarize(Submission{Value: "topic"}))
}
