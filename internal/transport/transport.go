// Package transport defines the boundary between the mimic core and chat networks.
package transport

import (
	"context"

	"github.com/keshon/server-mimic/internal/mind"
)

// Ingester consumes inbound group messages. *mind.Runner satisfies it.
type Ingester interface {
	Ingest(ctx context.Context, m mind.Message) mind.Outcome
}

// Bot is a chat network connection that can both receive and send.
type Bot interface {
	mind.Sender
	// Run connects, feeds every inbound group message to in and blocks until ctx is done.
	Run(ctx context.Context, in Ingester) error
	// IsRateLimited reports whether err means the network asked us to slow down.
	IsRateLimited(err error) bool
}
