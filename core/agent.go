package core

import "context"

// Agent is the external collaborator behind an agent invocation node: given
// a complete conversation it produces one assistant reply. Implementations
// wrap a language model provider (see the model packages) or a deterministic
// stand-in for tests. Calls may fail and must honor ctx cancellation; the
// engine treats a failure as a handler fault ending the run.
type Agent interface {
	// Name returns the agent identifier used as the Author of its replies.
	Name() string

	// Respond produces an assistant message for the given conversation.
	Respond(ctx context.Context, conversation []Message) (Message, error)
}
