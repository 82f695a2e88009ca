package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/keshon/server-mimic/internal/logging"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Settings publishes the current Tuning. Readers get an immutable snapshot through Current;
// writers (reload, blacklist additions) replace it atomically so no reader ever sees a
// half-applied change.
type Settings struct {
	path string
	cur  atomic.Pointer[Tuning]
	mu   sync.Mutex // serialises writers
}

// NewSettings returns in-memory settings that are never persisted.
func NewSettings(t Tuning) (*Settings, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	s := &Settings{}
	c := t.Clone()
	s.cur.Store(&c)
	return s, nil
}

// LoadSettings reads tuning from a YAML file, writing the defaults there first if the file
// does not exist yet.
func LoadSettings(path string) (*Settings, error) {
	s := &Settings{path: path}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		def := DefaultTuning()
		if err := writeTuning(path, def); err != nil {
			return nil, fmt.Errorf("write default tuning: %w", err)
		}
		log.Info().Str("component", "config").Msgf("created default tuning file %s", path)
	} else if err != nil {
		return nil, fmt.Errorf("stat tuning file: %w", err)
	}

	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Current returns the active tuning. Callers must not modify it.
func (s *Settings) Current() *Tuning {
	return s.cur.Load()
}

// Path returns the backing file, or "" for in-memory settings.
func (s *Settings) Path() string {
	return s.path
}

// Reload re-reads the backing file. On error the previous tuning stays active.
func (s *Settings) Reload() error {
	if s.path == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := readTuning(s.path)
	if err != nil {
		return err
	}
	s.cur.Store(&t)
	return nil
}

// AddBlacklist appends a pattern to the blacklist and persists it. Adding a pattern that is
// already present is a no-op.
func (s *Settings) AddBlacklist(pattern string) error {
	if err := ValidatePattern(pattern); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cur.Load().Clone()
	if slices.Contains(next.BlackList, pattern) {
		return nil
	}
	next.BlackList = append(next.BlackList, pattern)

	if s.path != "" {
		if err := writeTuning(s.path, next); err != nil {
			return fmt.Errorf("persist tuning: %w", err)
		}
	}
	s.cur.Store(&next)
	return nil
}

// Watch reloads the tuning whenever the backing file is written, until ctx is done.
func (s *Settings) Watch(ctx context.Context) error {
	if s.path == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors replace files by rename, so watch the directory rather than the file.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}

	logger := logging.For("config")
	target := filepath.Clean(s.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			if err := s.Reload(); err != nil {
				logger.Warn().Err(err).Msg("tuning reload failed, keeping previous values")
				continue
			}
			logger.Info().Msg("tuning reloaded")
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("tuning watcher error")
		}
	}
}

func readTuning(path string) (Tuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, fmt.Errorf("read tuning: %w", err)
	}

	t := DefaultTuning()
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tuning{}, fmt.Errorf("parse tuning %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return Tuning{}, fmt.Errorf("tuning %s: %w", path, err)
	}
	return t, nil
}

func writeTuning(path string, t Tuning) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(t)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
