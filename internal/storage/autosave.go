package storage

import (
	"context"
	"time"

	"github.com/keshon/server-mimic/internal/logging"
	"github.com/rs/zerolog"
)

// Source is the memory being persisted. *mind.Store satisfies it.
type Source interface {
	// Version changes on every mutation.
	Version() uint64
	// Export returns a deep copy of the memory.
	Export() map[int64]map[string]int
}

// AutoSaver periodically writes the memory when it has changed.
type AutoSaver struct {
	src      Source
	backend  Backend
	interval time.Duration
	saved    uint64
	log      zerolog.Logger
}

// NewAutoSaver returns a saver. The memory as loaded counts as saved.
func NewAutoSaver(src Source, backend Backend, interval time.Duration) *AutoSaver {
	return &AutoSaver{
		src:      src,
		backend:  backend,
		interval: interval,
		saved:    src.Version(),
		log:      logging.For("storage"),
	}
}

// Run saves on every tick until ctx is done, then saves once more.
func (a *AutoSaver) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// The root context is already cancelled; the final save must still run.
			final, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := a.Flush(final); err != nil {
				a.log.Error().Err(err).Msg("final save failed")
				return err
			}
			a.log.Info().Msg("memory saved on shutdown")
			return nil
		case <-ticker.C:
			if err := a.Flush(ctx); err != nil {
				a.log.Error().Err(err).Msg("auto-save error")
			}
		}
	}
}

// Flush saves now if the memory changed since the last save.
func (a *AutoSaver) Flush(ctx context.Context) error {
	v := a.src.Version()
	if v == a.saved {
		return nil
	}
	if err := a.backend.Save(ctx, a.src.Export()); err != nil {
		return err
	}
	a.saved = v
	a.log.Debug().Uint64("version", v).Msg("memory saved")
	return nil
}
