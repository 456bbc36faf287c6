// Package anthropic provides a core.Agent backed by the Anthropic Claude
// Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/hupe1980/graphmesh/core"
)

// Options configures the Anthropic agent (model id, temperature, max tokens,
// API key, optional standing instructions).
type Options struct {
	Model        anthropic.Model
	Temperature  float64
	MaxTokens    int64
	APIKey       string
	Instructions string
}

// Agent wraps the Anthropic Messages API behind the core.Agent interface.
// Calls are non-streaming; the full assistant reply is returned as one
// message authored by the agent's name.
type Agent struct {
	name   string
	client *anthropic.Client
	opts   Options
}

// New creates a new Anthropic agent using the official client.
func New(name string, optFns ...func(o *Options)) *Agent {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Agent{name: name, client: &client, opts: opts}
}

// NewFromClient creates a new Anthropic agent from an existing client.
func NewFromClient(name string, client *anthropic.Client, optFns ...func(o *Options)) *Agent {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Agent{name: name, client: client, opts: opts}
}

// Name implements core.Agent.
func (a *Agent) Name() string { return a.name }

// Respond implements core.Agent. System-role messages become system blocks;
// user and assistant messages map onto the Messages API conversation.
func (a *Agent) Respond(ctx context.Context, conversation []core.Message) (core.Message, error) {
	params := anthropic.MessageNewParams{
		Model:       a.opts.Model,
		Messages:    buildMessages(conversation),
		MaxTokens:   a.opts.MaxTokens,
		Temperature: anthropic.Float(a.opts.Temperature),
	}

	system := systemBlocks(conversation, a.opts.Instructions)
	if len(system) > 0 {
		params.System = system
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return core.Message{}, fmt.Errorf("anthropic api error: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}

	return core.NewAssistantMessage(a.name, sb.String()), nil
}

// buildMessages converts the conversation to Anthropic message params,
// skipping system entries which are passed separately.
func buildMessages(conversation []core.Message) []anthropic.MessageParam {
	var messages []anthropic.MessageParam

	for _, m := range conversation {
		if m.Text == "" {
			continue
		}
		switch m.Role {
		case core.RoleSystem:
			continue
		case core.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Text)))
		default:
			// Unknown roles are treated as user input.
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Text)))
		}
	}

	return messages
}

// systemBlocks collects standing instructions plus system-role messages.
func systemBlocks(conversation []core.Message, instructions string) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam

	if instructions != "" {
		blocks = append(blocks, anthropic.TextBlockParam{Text: instructions})
	}
	for _, m := range conversation {
		if m.Role == core.RoleSystem && m.Text != "" {
			blocks = append(blocks, anthropic.TextBlockParam{Text: m.Text})
		}
	}

	return blocks
}
