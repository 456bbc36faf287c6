package model

import (
	"context"
	"fmt"

	"github.com/hupe1980/graphmesh/core"
)

// MockAgent is a lightweight in-memory core.Agent useful for tests and
// examples. Replies are looked up by the conversation's latest user text;
// unmatched inputs get a deterministic default reply.
type MockAgent struct {
	name      string
	responses map[string]string
}

// NewMockAgent constructs a MockAgent with the given name.
func NewMockAgent(name string) *MockAgent {
	return &MockAgent{name: name, responses: make(map[string]string)}
}

// AddResponse registers a canned reply for an input prompt.
func (m *MockAgent) AddResponse(prompt, reply string) { m.responses[prompt] = reply }

// Name implements core.Agent.
func (m *MockAgent) Name() string { return m.name }

// Respond implements core.Agent.
func (m *MockAgent) Respond(ctx context.Context, conversation []core.Message) (core.Message, error) {
	if err := ctx.Err(); err != nil {
		return core.Message{}, err
	}
	if len(conversation) == 0 {
		return core.Message{}, fmt.Errorf("model: empty conversation")
	}

	input := core.Envelope{Conversation: conversation}.LastUserText()
	reply := m.responses[input]
	if reply == "" {
		reply = fmt.Sprintf("Mock response to: %s", input)
	}

	return core.NewAssistantMessage(m.name, reply), nil
}

// StaticAgent always answers with the same fixed reply, regardless of input.
type StaticAgent struct {
	name  string
	reply string
}

// NewStaticAgent constructs an agent with one fixed reply.
func NewStaticAgent(name, reply string) *StaticAgent {
	return &StaticAgent{name: name, reply: reply}
}

// Name implements core.Agent.
func (s *StaticAgent) Name() string { return s.name }

// Respond implements core.Agent.
func (s *StaticAgent) Respond(ctx context.Context, conversation []core.Message) (core.Message, error) {
	if err := ctx.Err(); err != nil {
		return core.Message{}, err
	}
	if len(conversation) == 0 {
		return core.Message{}, fmt.Errorf("model: empty conversation")
	}
	return core.NewAssistantMessage(s.name, s.reply), nil
}
