package jobmgr

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartAsyncRejectsDuplicate(t *testing.T) {
	m := NewManager(context.Background(), nil)
	defer m.Shutdown()

	block := func(ctx context.Context) error { <-ctx.Done(); return ctx.Err() }
	require.NoError(t, m.StartAsync("purge", block))
	assert.Error(t, m.StartAsync("purge", block))
	assert.Equal(t, []string{"purge"}, m.List())
}

func TestGoNamesAreUnique(t *testing.T) {
	m := NewManager(context.Background(), nil)
	defer m.Shutdown()

	block := func(ctx context.Context) error { <-ctx.Done(); return nil }
	a := m.Go("reply", block)
	b := m.Go("reply", block)
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "reply-"))
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, "Running jobs: "+strings.Join(m.List(), ", "), m.Status())
}

func TestStop(t *testing.T) {
	m := NewManager(context.Background(), nil)
	defer m.Shutdown()

	stopped := make(chan struct{})
	name := m.Go("reply", func(ctx context.Context) error {
		<-ctx.Done()
		close(stopped)
		return nil
	})

	require.NoError(t, m.Stop(name))
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("job was not cancelled")
	}
	assert.Error(t, m.Stop(name))
}

func TestShutdownCancelsAndRefuses(t *testing.T) {
	m := NewManager(context.Background(), nil)
	for i := 0; i < 3; i++ {
		m.Go("reply", func(ctx context.Context) error { <-ctx.Done(); return ctx.Err() })
	}

	m.Shutdown()
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, "No jobs are running.", m.Status())
	assert.Equal(t, "", m.Go("reply", func(context.Context) error { return nil }))
}

func TestReporter(t *testing.T) {
	var (
		mu     sync.Mutex
		events []string
	)
	m := NewManager(context.Background(), func(s string) {
		mu.Lock()
		events = append(events, s)
		mu.Unlock()
	})

	require.NoError(t, m.StartAsync("ok", func(context.Context) error { return nil }))
	require.NoError(t, m.StartAsync("bad", func(context.Context) error { return errors.New("boom") }))
	m.Shutdown()

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, events, "running:ok")
	assert.Contains(t, events, "done:ok")
	assert.Contains(t, events, "error:bad:boom")
}
