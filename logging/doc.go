// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer GraphMeshLogger with contextual
// helpers (component, run) and domain specific helpers for agent calls and
// run execution.
package logging
