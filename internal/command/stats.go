package command

import (
	"context"
	"fmt"

	"github.com/keshon/server-mimic/internal/mind"
	"github.com/keshon/server-mimic/pkg/cmd"
)

// StatsSource is the read-only view of memory the stats command needs.
type StatsSource interface {
	Stats() mind.Stats
	Len(groupID int64) int
}

// StatsCommand reports memory size overall and for the calling group.
type StatsCommand struct {
	Store StatsSource
}

func (c *StatsCommand) Name() string        { return "stats" }
func (c *StatsCommand) Description() string { return "Show how much the bot remembers" }

func (c *StatsCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	st := c.Store.Stats()
	msg := fmt.Sprintf("Remembering %d messages across %d groups.", st.Entries, st.Groups)
	if inv.GroupID != 0 {
		msg += fmt.Sprintf("\nThis group: %d messages.", c.Store.Len(inv.GroupID))
	}
	return inv.Respond(msg)
}
