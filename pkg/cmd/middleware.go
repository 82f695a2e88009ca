package cmd

import "context"

// Middleware decorates a command with cross-cutting behaviour such as logging or access
// checks.
type Middleware func(Command) Command

// Apply wraps c with each middleware in turn. The last one ends up outermost and runs
// first.
func Apply(c Command, mws ...Middleware) Command {
	for _, mw := range mws {
		c = mw(c)
	}
	return c
}

// Unwrappable is implemented by decorated commands so adapters can reach the command
// underneath, e.g. to check for Usage.
type Unwrappable interface {
	Command
	Unwrap() Command
}

type wrapped struct {
	Command
	run func(ctx context.Context, inv *Invocation) error
}

func (w *wrapped) Run(ctx context.Context, inv *Invocation) error { return w.run(ctx, inv) }

func (w *wrapped) Unwrap() Command { return w.Command }

// Wrap returns c with its Run replaced by run. Name and Description still come from c.
func Wrap(c Command, run func(ctx context.Context, inv *Invocation) error) Command {
	return &wrapped{Command: c, run: run}
}

// Root strips every layer of wrapping from c.
func Root(c Command) Command {
	for {
		u, ok := c.(Unwrappable)
		if !ok {
			return c
		}
		c = u.Unwrap()
	}
}
