// Package model provides implementations of the core.Agent collaborator:
// deterministic in-memory agents for tests and examples, and provider-backed
// agents in the anthropic and openai subpackages.
package model
