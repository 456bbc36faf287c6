// Package openai provides a core.Agent backed by the OpenAI Chat Completions
// API. It adapts the engine's role-tagged conversation into the SDK's
// message format and returns the completion as one assistant message.
package openai

import (
	"context"
	"fmt"

	"github.com/hupe1980/graphmesh/core"
	"github.com/openai/openai-go"
)

// Options configure the OpenAI agent. Fields mirror a subset of Chat
// Completion parameters intentionally kept minimal; extend via functional
// options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	Instructions        string
}

// Agent wraps the OpenAI Chat Completions API behind the core.Agent interface.
type Agent struct {
	name   string
	client *openai.Client
	opts   Options
}

// New creates a new OpenAI agent using the official client.
func New(name string, optFns ...func(o *Options)) *Agent {
	client := openai.NewClient()
	return NewFromClient(name, &client, optFns...)
}

// NewFromClient creates a new OpenAI agent from an existing client.
func NewFromClient(name string, client *openai.Client, optFns ...func(o *Options)) *Agent {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Agent{name: name, client: client, opts: opts}
}

// Name implements core.Agent.
func (a *Agent) Name() string { return a.name }

// Respond implements core.Agent.
func (a *Agent) Respond(ctx context.Context, conversation []core.Message) (core.Message, error) {
	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(conversation, a.opts.Instructions),
		Model:               a.opts.Model,
		Temperature:         openai.Float(a.opts.Temperature),
		MaxCompletionTokens: openai.Int(a.opts.MaxCompletionTokens),
	}

	completion, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return core.Message{}, fmt.Errorf("openai api error: %w", err)
	}
	if len(completion.Choices) == 0 {
		return core.Message{}, fmt.Errorf("openai: completion returned no choices")
	}

	return core.NewAssistantMessage(a.name, completion.Choices[0].Message.Content), nil
}

// buildMessages converts the conversation into OpenAI chat messages,
// prepending standing instructions as a system message when configured.
func buildMessages(conversation []core.Message, instructions string) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion

	if instructions != "" {
		messages = append(messages, openai.SystemMessage(instructions))
	}

	for _, m := range conversation {
		if m.Text == "" {
			continue
		}
		switch m.Role {
		case core.RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Text))
		case core.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Text))
		default:
			messages = append(messages, openai.UserMessage(m.Text))
		}
	}

	return messages
}
