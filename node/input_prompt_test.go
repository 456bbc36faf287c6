package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/graphmesh/core"
)

func TestInputPrompt_SubmissionRaisesInputRequest(t *testing.T) {
	n := NewInputPrompt("ask", "Which city?")
	execCtx := newExecContext("ask", "")

	require.NoError(t, n.Dispatch(execCtx, core.Submission{Value: "start"}))

	req := execCtx.Request()
	require.NotNil(t, req)
	assert.Equal(t, "Which city?", req.Prompt)
	assert.Equal(t, "ask", req.ExecutorID)
	assert.NotEmpty(t, req.ID)
	assert.Empty(t, execCtx.Sends())
}

func TestInputPrompt_ResponseOpensConversation(t *testing.T) {
	n := NewInputPrompt("ask", "Which city?")
	execCtx := newExecContext("ask", "")

	resp := core.InputResponse{RequestID: "req-1", Value: "Berlin"}
	require.NoError(t, n.Dispatch(execCtx, resp))

	sends := execCtx.Sends()
	require.Len(t, sends, 2)

	env := sends[0].(core.Envelope)
	require.Len(t, env.Conversation, 1)
	assert.Equal(t, core.RoleUser, env.Conversation[0].Role)
	assert.Equal(t, "Berlin", env.Conversation[0].Text)

	_, ok := sends[1].(core.TurnSignal)
	assert.True(t, ok)
}
