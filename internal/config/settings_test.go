package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadSettingsWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "tuning.yaml")

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultTuning(), *s.Current())
	assert.FileExists(t, path)
}

func TestLoadSettingsFillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("threshold: 4\nreply_delay_min: 1s\nreply_delay_max: 2s\n"), 0o644))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	cur := s.Current()
	assert.Equal(t, 4, cur.Threshold)
	assert.Equal(t, time.Second, cur.ReplyDelayMin)
	assert.Equal(t, 3000, cur.Limit)
}

func TestLoadSettingsRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("probability: 3\n"), 0o644))

	_, err := LoadSettings(path)
	assert.Error(t, err)
}

func TestAddBlacklistPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	s, err := LoadSettings(path)
	require.NoError(t, err)
	before := s.Current()

	require.NoError(t, s.AddBlacklist(`^!\w+`))
	assert.Contains(t, s.Current().BlackList, `^!\w+`)
	assert.NotContains(t, before.BlackList, `^!\w+`, "published snapshots are immutable")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk Tuning
	require.NoError(t, yaml.Unmarshal(data, &onDisk))
	assert.Contains(t, onDisk.BlackList, `^!\w+`)

	reloaded, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, s.Current().BlackList, reloaded.Current().BlackList)
}

func TestAddBlacklistDuplicateIsNoop(t *testing.T) {
	s, err := NewSettings(DefaultTuning())
	require.NoError(t, err)
	cur := s.Current()

	require.NoError(t, s.AddBlacklist(DefaultBlackList[0]))
	assert.Same(t, cur, s.Current())
}

func TestAddBlacklistInvalid(t *testing.T) {
	s, err := NewSettings(DefaultTuning())
	require.NoError(t, err)

	assert.Error(t, s.AddBlacklist("(unclosed"))
	assert.Error(t, s.AddBlacklist(""))
	assert.Equal(t, DefaultBlackList, s.Current().BlackList)
}

func TestAddBlacklistRejectsPatternBrokenByAnchoring(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	s, err := LoadSettings(path)
	require.NoError(t, err)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	// Compiles on its own, but the comment swallows the closing anchor.
	assert.Error(t, s.AddBlacklist("(?x)spam # no ads"))
	assert.Equal(t, DefaultBlackList, s.Current().BlackList)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	reloaded, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultBlackList, reloaded.Current().BlackList)
}

func TestReloadKeepsPreviousOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	s, err := LoadSettings(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("limit: 0\n"), 0o644))
	assert.Error(t, s.Reload())
	assert.Equal(t, 3000, s.Current().Limit)

	require.NoError(t, os.WriteFile(path, []byte("limit: 7\n"), 0o644))
	require.NoError(t, s.Reload())
	assert.Equal(t, 7, s.Current().Limit)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	s, err := LoadSettings(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()

	// The watcher needs a moment to register before the write.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("threshold: 2\n"), 0o644))

	assert.Eventually(t, func() bool { return s.Current().Threshold == 2 }, 3*time.Second, 20*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
