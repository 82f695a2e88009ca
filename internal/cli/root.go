// Package cli implements mimic-cli, an offline tool for inspecting and maintaining the
// persisted group memory. The bot should be stopped while it writes.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/keshon/server-mimic/internal/config"
	"github.com/keshon/server-mimic/internal/mind"
	"github.com/keshon/server-mimic/internal/storage"
	"github.com/spf13/cobra"
)

type options struct {
	driver      string
	storagePath string
	tuningPath  string
	format      string
}

// NewRootCmd builds the command tree. Flag defaults come from the same environment the
// bot reads.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	defaults := &config.Config{
		StorageDriver: storage.DriverJSON,
		StoragePath:   "data/memory.json",
		TuningPath:    "data/tuning.yaml",
	}
	if cfg, err := config.Load(); err == nil {
		defaults = cfg
	}

	root := &cobra.Command{
		Use:           "mimic-cli",
		Short:         "Inspect and maintain mimic group memory",
		Long:          "Offline maintenance for the memory the mimic bot learns from group chats.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.driver, "driver", defaults.StorageDriver, "Storage driver: json or sqlite")
	root.PersistentFlags().StringVarP(&opts.storagePath, "storage", "s", defaults.StoragePath, "Memory file path")
	root.PersistentFlags().StringVarP(&opts.tuningPath, "tuning", "t", defaults.TuningPath, "Tuning YAML path")
	root.PersistentFlags().StringVarP(&opts.format, "format", "f", "text", "Output format: json or text")

	root.AddCommand(
		newStatsCmd(opts),
		newDumpCmd(opts),
		newDecayCmd(opts),
		newBlacklistCmd(opts),
		newReplyCmd(opts),
	)
	return root
}

// workspace is everything a subcommand may need, opened from the flags.
type workspace struct {
	book    *mind.Rulebook
	store   *mind.Store
	backend storage.Backend
}

func loadSettings(o *options) (*config.Settings, error) {
	settings, err := config.LoadSettings(o.tuningPath)
	if err != nil {
		return nil, fmt.Errorf("load tuning: %w", err)
	}
	return settings, nil
}

func (o *options) open(cmd *cobra.Command) (*workspace, error) {
	settings, err := loadSettings(o)
	if err != nil {
		return nil, err
	}
	book, err := mind.NewRulebook(settings)
	if err != nil {
		return nil, fmt.Errorf("compile rules: %w", err)
	}
	backend, err := storage.Open(o.driver, o.storagePath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	h, err := backend.Load(cmd.Context())
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("load memory: %w", err)
	}

	store := mind.NewStore(book)
	store.Import(h)
	return &workspace{book: book, store: store, backend: backend}, nil
}

func (w *workspace) save(cmd *cobra.Command) error {
	if err := w.backend.Save(cmd.Context(), w.store.Export()); err != nil {
		return fmt.Errorf("save memory: %w", err)
	}
	return nil
}

func (w *workspace) Close() error {
	return w.backend.Close()
}

// runner returns a runner that can only decide, never send.
func (w *workspace) runner() *mind.Runner {
	return mind.NewRunner(w.store, w.book, mind.NewSampler(time.Now().UnixNano()), nil, nil)
}

func (o *options) print(out io.Writer, v any, text func(io.Writer)) error {
	switch o.format {
	case "json":
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(b))
		return err
	case "text":
		text(out)
		return nil
	default:
		return fmt.Errorf("unknown format %q", o.format)
	}
}
