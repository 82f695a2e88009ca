package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/keshon/server-mimic/pkg/cmd"
)

// BlacklistEditor is the configuration surface the command mutates. *config.Settings
// satisfies it.
type BlacklistEditor interface {
	AddBlacklist(pattern string) error
}

// BlacklistAddCommand appends a regex to the blacklist at runtime.
type BlacklistAddCommand struct {
	Settings BlacklistEditor
}

func (c *BlacklistAddCommand) Name() string        { return "blacklist-add" }
func (c *BlacklistAddCommand) Description() string { return "Never remember messages matching a regex" }
func (c *BlacklistAddCommand) Usage() string       { return "blacklist-add <regex>" }

func (c *BlacklistAddCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	pattern := strings.TrimSpace(strings.Join(inv.Args, " "))
	if pattern == "" {
		return fmt.Errorf("usage: %s", c.Usage())
	}
	if err := c.Settings.AddBlacklist(pattern); err != nil {
		return err
	}
	return inv.Respond(fmt.Sprintf("Added `%s` to the blacklist.", pattern))
}
