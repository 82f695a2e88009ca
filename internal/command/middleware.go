package command

import (
	"context"
	"errors"

	"github.com/keshon/server-mimic/pkg/cmd"
	"github.com/rs/zerolog/log"
)

// ErrForbidden is returned when a non-admin runs an admin-only command.
var ErrForbidden = errors.New("you need administrator rights to run this command")

// WithAdminOnly rejects invocations whose adapter did not mark the caller as admin.
func WithAdminOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			if !inv.Admin {
				return ErrForbidden
			}
			return c.Run(ctx, inv)
		})
	}
}

// WithCommandLogger logs every invocation and its result.
func WithCommandLogger() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			err := c.Run(ctx, inv)
			ev := log.Info()
			if err != nil {
				ev = log.Warn().Err(err)
			}
			ev.Str("component", "command").
				Str("command", c.Name()).
				Int64("group", inv.GroupID).
				Str("user", inv.UserID).
				Msg("command executed")
			return err
		})
	}
}

// Register installs the mimic command set on reg.
func Register(reg *cmd.Registry, settings BlacklistEditor, store StatsSource) {
	reg.Register(cmd.Apply(&BlacklistAddCommand{Settings: settings}, WithAdminOnly(), WithCommandLogger()))
	reg.Register(cmd.Apply(&StatsCommand{Store: store}, WithCommandLogger()))
}
