package transport

import (
	"context"
	"errors"
	"testing"

	"github.com/keshon/server-mimic/pkg/throttle"
	"github.com/stretchr/testify/assert"
)

var errTooMany = errors.New("429")

type stubSender struct {
	err   error
	calls int
}

func (s *stubSender) Send(ctx context.Context, groupID int64, text string) error {
	s.calls++
	return s.err
}

func TestPacedForwardsAndNeverRetries(t *testing.T) {
	next := &stubSender{err: errTooMany}
	lim := throttle.NewAdaptiveLimiter(100, 1, 100, 1, 0.5)
	p := NewPaced(next, lim, func(err error) bool { return errors.Is(err, errTooMany) })

	err := p.Send(context.Background(), 1, "hi")
	assert.ErrorIs(t, err, errTooMany)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, 50.0, lim.CurrentLimit(), "rate-limit errors slow the pace")
}

func TestPacedOtherErrorsKeepPace(t *testing.T) {
	next := &stubSender{err: errors.New("channel not found")}
	lim := throttle.NewAdaptiveLimiter(100, 1, 100, 1, 0.5)
	p := NewPaced(next, lim, nil)

	assert.Error(t, p.Send(context.Background(), 1, "hi"))
	assert.Equal(t, 100.0, lim.CurrentLimit())
}

func TestPacedCancelledWait(t *testing.T) {
	next := &stubSender{}
	p := NewPaced(next, DefaultLimiter(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, p.Send(ctx, 1, "hi"))
	assert.Equal(t, 0, next.calls)
}
