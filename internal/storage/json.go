package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/keshon/server-mimic/internal/logging"
	"github.com/rs/zerolog"
)

// JSONConfig holds configuration options for the JSON file backend.
type JSONConfig struct {
	FilePath    string
	BackupCount int // number of backup files to keep, 0 disables backups
}

// DefaultJSONConfig returns a default configuration.
func DefaultJSONConfig(filePath string) *JSONConfig {
	return &JSONConfig{
		FilePath:    filePath,
		BackupCount: 3,
	}
}

// JSON stores memory as a single indented JSON document keyed by group id.
type JSON struct {
	file         string
	config       *JSONConfig
	mu           sync.Mutex
	lastChecksum string
	closed       bool
	log          zerolog.Logger
}

var _ Backend = (*JSON)(nil)

// NewJSON creates the backend, writing an empty document if the file does not exist.
func NewJSON(config *JSONConfig) (*JSON, error) {
	if config == nil {
		return nil, errors.New("config cannot be nil")
	}
	if config.FilePath == "" {
		return nil, errors.New("file path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	s := &JSON{
		file:   config.FilePath,
		config: config,
		log:    logging.For("storage").With().Str("driver", DriverJSON).Logger(),
	}

	if _, err := os.Stat(config.FilePath); errors.Is(err, os.ErrNotExist) {
		if err := s.writeFileAtomic([]byte("{}")); err != nil {
			return nil, fmt.Errorf("failed to create empty JSON file: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to check file existence: %w", err)
	}
	return s, nil
}

// Load reads and validates the document.
func (s *JSON) Load(ctx context.Context) (Histories, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	h := Histories{}
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}
	for gid, g := range h {
		if g == nil {
			h[gid] = map[string]int{}
		}
	}

	s.lastChecksum = checksum(data)
	return h, nil
}

// Save writes h atomically. Identical content is not rewritten.
func (s *JSON) Save(ctx context.Context, h Histories) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("storage is closed")
	}

	// encoding/json sorts map keys, so equal memories produce equal bytes.
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	sum := checksum(data)
	if sum == s.lastChecksum {
		return nil
	}

	if s.config.BackupCount > 0 {
		if err := s.createBackup(); err != nil {
			s.log.Warn().Err(err).Msg("failed to create backup")
		}
	}

	if err := s.writeFileAtomic(data); err != nil {
		return err
	}
	if err := s.verifyFile(sum); err != nil {
		return fmt.Errorf("file verification failed: %w", err)
	}

	s.lastChecksum = sum
	return nil
}

// Close marks the backend closed. Saves after Close fail.
func (s *JSON) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// writeFileAtomic writes to a temporary file, syncs it and renames it over the target.
func (s *JSON) writeFileAtomic(data []byte) error {
	tmpFile := s.file + ".tmp"

	f, err := os.OpenFile(tmpFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpFile)
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpFile)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpFile, s.file); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func (s *JSON) verifyFile(expected string) error {
	data, err := os.ReadFile(s.file)
	if err != nil {
		return fmt.Errorf("failed to read file for verification: %w", err)
	}
	if checksum(data) != expected {
		return errors.New("file checksum mismatch")
	}
	return nil
}

// createBackup copies the current file aside and prunes old copies.
func (s *JSON) createBackup() error {
	src, err := os.Open(s.file)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer src.Close()

	backupFile := fmt.Sprintf("%s.backup.%s", s.file, time.Now().Format("20060102_150405.000000000"))
	dst, err := os.Create(backupFile)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}

	s.cleanupOldBackups()
	return nil
}

// cleanupOldBackups removes the oldest backups beyond the configured count.
func (s *JSON) cleanupOldBackups() {
	matches, err := filepath.Glob(s.file + ".backup.*")
	if err != nil || len(matches) <= s.config.BackupCount {
		return
	}

	// Backup names embed a sortable timestamp.
	sort.Strings(matches)
	for _, path := range matches[:len(matches)-s.config.BackupCount] {
		if err := os.Remove(path); err != nil {
			s.log.Warn().Err(err).Str("path", path).Msg("failed to remove old backup")
		}
	}
}

func checksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
