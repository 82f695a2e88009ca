package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironment(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("TRANSPORT", " Telegram ")
	t.Setenv("TELEGRAM_TOKEN", "tg")
	t.Setenv("STORAGE_DRIVER", "SQLITE")
	t.Setenv("STORAGE_PATH", "mem.db")
	t.Setenv("AUTOSAVE_INTERVAL", "1m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, TransportTelegram, cfg.Transport)
	assert.Equal(t, StorageSQLite, cfg.StorageDriver)
	assert.Equal(t, "mem.db", cfg.StoragePath)
	assert.Equal(t, time.Minute, cfg.AutoSave)
	assert.Equal(t, "data/tuning.yaml", cfg.TuningPath)
	assert.NoError(t, cfg.Validate())
}

func TestValidateConfig(t *testing.T) {
	base := Config{
		Transport:     TransportDiscord,
		DiscordToken:  "x",
		StorageDriver: StorageJSON,
		StoragePath:   "data/memory.json",
		AutoSave:      time.Second,
	}
	require.NoError(t, base.Validate())

	tests := map[string]func(*Config){
		"missing discord token":  func(c *Config) { c.DiscordToken = "" },
		"missing telegram token": func(c *Config) { c.Transport = TransportTelegram },
		"unknown transport":      func(c *Config) { c.Transport = "irc" },
		"unknown driver":         func(c *Config) { c.StorageDriver = "bolt" },
		"empty path":             func(c *Config) { c.StoragePath = "" },
		"zero autosave":          func(c *Config) { c.AutoSave = 0 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

// chdirForTest changes the working directory for the duration of the test
// and restores it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
