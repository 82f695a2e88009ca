package transport

import (
	"context"
	"fmt"

	"github.com/keshon/server-mimic/internal/mind"
	"github.com/keshon/server-mimic/pkg/throttle"
)

// Paced wraps a sender with an adaptive rate limit. It waits for its turn before every
// send and slows down when the network reports overload; it never retries.
type Paced struct {
	next          mind.Sender
	lim           *throttle.AdaptiveLimiter
	isRateLimited func(error) bool
}

// NewPaced returns a paced sender. isRateLimited may be nil.
func NewPaced(next mind.Sender, lim *throttle.AdaptiveLimiter, isRateLimited func(error) bool) *Paced {
	if isRateLimited == nil {
		isRateLimited = func(error) bool { return false }
	}
	return &Paced{next: next, lim: lim, isRateLimited: isRateLimited}
}

// DefaultLimiter is tuned for chat APIs: a few messages per second, backing off hard.
func DefaultLimiter() *throttle.AdaptiveLimiter {
	return throttle.NewAdaptiveLimiter(2, 0.2, 5, 0.5, 0.5)
}

// Send waits for the limiter and forwards to the wrapped sender.
func (p *Paced) Send(ctx context.Context, groupID int64, text string) error {
	if err := p.lim.Wait(ctx); err != nil {
		return fmt.Errorf("wait for send slot: %w", err)
	}
	err := p.next.Send(ctx, groupID, text)
	if err == nil {
		p.lim.Success()
		return nil
	}
	if p.isRateLimited(err) {
		p.lim.RateLimited()
	}
	return err
}
