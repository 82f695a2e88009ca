package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/keshon/server-mimic/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Transport:     config.TransportDiscord,
		DiscordToken:  "token",
		StorageDriver: config.StorageJSON,
		StoragePath:   filepath.Join(dir, "memory.json"),
		TuningPath:    filepath.Join(dir, "tuning.yaml"),
		AutoSave:      time.Second,
	}
}

func TestRunReportsStartupFailures(t *testing.T) {
	cfg := testConfig(t)
	cfg.StorageDriver = "bolt"
	assert.Error(t, run(context.Background(), cfg), "unknown storage driver")

	cfg = testConfig(t)
	require.NoError(t, os.WriteFile(cfg.TuningPath, []byte("limit: 0\n"), 0o644))
	assert.Error(t, run(context.Background(), cfg), "invalid tuning")

	cfg = testConfig(t)
	require.NoError(t, os.WriteFile(cfg.StoragePath, []byte("not json"), 0o644))
	assert.Error(t, run(context.Background(), cfg), "corrupt memory file")
}
