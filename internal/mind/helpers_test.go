package mind

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/keshon/server-mimic/internal/config"
	"github.com/stretchr/testify/require"
)

func newTestRules(t *testing.T, mutate func(*config.Tuning)) (*config.Settings, *Rulebook) {
	t.Helper()
	tun := config.DefaultTuning()
	if mutate != nil {
		mutate(&tun)
	}
	settings, err := config.NewSettings(tun)
	require.NoError(t, err)
	book, err := NewRulebook(settings)
	require.NoError(t, err)
	return settings, book
}

func newTestStore(t *testing.T, mutate func(*config.Tuning)) *Store {
	t.Helper()
	_, book := newTestRules(t, mutate)
	return NewStore(book)
}

type sent struct {
	group int64
	text  string
}

// fakeSender records sends and fails for the groups listed in fail.
type fakeSender struct {
	mu   sync.Mutex
	out  []sent
	fail map[int64]bool
	ch   chan sent
}

func newFakeSender() *fakeSender {
	return &fakeSender{fail: map[int64]bool{}, ch: make(chan sent, 64)}
}

func (f *fakeSender) Send(ctx context.Context, groupID int64, text string) error {
	if f.fail[groupID] {
		return errors.New("channel not found")
	}
	f.mu.Lock()
	f.out = append(f.out, sent{group: groupID, text: text})
	f.mu.Unlock()
	f.ch <- sent{group: groupID, text: text}
	return nil
}

func (f *fakeSender) sends() []sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sent(nil), f.out...)
}
