// Package cmd provides a transport-agnostic command core: a command is something
// with a name, description, and Run(ctx, invocation). How it is registered and
// dispatched (Discord slash, Telegram text command, CLI) is defined by adapters.
package cmd

import "context"

// Invocation carries what any adapter can supply: arguments, who asked and where,
// and how to answer. Data holds the adapter's own context (e.g. the Discord event).
type Invocation struct {
	Args    []string
	GroupID int64
	UserID  string
	Admin   bool
	Reply   func(text string) error
	Data    any
}

// Respond answers through Reply when the adapter provided one.
func (inv *Invocation) Respond(text string) error {
	if inv.Reply == nil {
		return nil
	}
	return inv.Reply(text)
}

// Command is the universal contract: identity plus execution. Permissions,
// subcommand layout, and transport-specific registration stay in adapters.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}

// Usage is optionally implemented by commands that take arguments.
type Usage interface {
	Usage() string
}
