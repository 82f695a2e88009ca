// cmd/mimic/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/keshon/server-mimic/internal/command"
	"github.com/keshon/server-mimic/internal/config"
	"github.com/keshon/server-mimic/internal/discord"
	"github.com/keshon/server-mimic/internal/logging"
	"github.com/keshon/server-mimic/internal/metrics"
	"github.com/keshon/server-mimic/internal/mind"
	"github.com/keshon/server-mimic/internal/storage"
	"github.com/keshon/server-mimic/internal/telegram"
	"github.com/keshon/server-mimic/internal/transport"
	v "github.com/keshon/server-mimic/internal/version"
	"github.com/keshon/server-mimic/pkg/cmd"
	"github.com/keshon/server-mimic/pkg/jobmgr"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.New()
	logging.Setup(cfg.LogLevel, cfg.LogFile)
	log.Info().Str("version", v.Version).Str("transport", cfg.Transport).Msgf("starting %s bot", v.AppName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, cfg)
	stop()
	if err != nil {
		log.Fatal().Err(err).Msg("bot stopped with error")
	}
	log.Info().Msgf("%s bot exited cleanly", v.AppName)
}

// run wires the bot and blocks until ctx is done or a component fails. Deferred cleanup
// (pending jobs, storage) completes before it returns.
func run(ctx context.Context, cfg *config.Config) error {
	settings, err := config.LoadSettings(cfg.TuningPath)
	if err != nil {
		return fmt.Errorf("load tuning: %w", err)
	}

	backend, err := storage.Open(cfg.StorageDriver, cfg.StoragePath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer backend.Close()

	book, err := mind.NewRulebook(settings)
	if err != nil {
		return fmt.Errorf("compile rules: %w", err)
	}
	store := mind.NewStore(book)
	histories, err := backend.Load(ctx)
	if err != nil {
		return fmt.Errorf("load memory: %w", err)
	}
	store.Import(histories)
	stats := store.Stats()
	log.Info().Int("groups", stats.Groups).Int("entries", stats.Entries).Msg("memory loaded")

	registry := cmd.NewRegistry()
	command.Register(registry, settings, store)

	var bot transport.Bot
	switch cfg.Transport {
	case config.TransportTelegram:
		bot = telegram.NewBot(cfg.TelegramToken, cfg.DeveloperID, registry)
	default:
		bot = discord.NewBot(cfg.DiscordToken, cfg.DeveloperID, registry)
	}
	sender := transport.NewPaced(bot, transport.DefaultLimiter(), bot.IsRateLimited)

	jobs := jobmgr.NewManager(ctx, func(status string) {
		log.Trace().Str("component", "jobs").Msg(status)
	})
	defer jobs.Shutdown()

	runner := mind.NewRunner(store, book, mind.NewSampler(time.Now().UnixNano()), sender, jobs)
	sched, err := mind.NewScheduler(runner)
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	saver := storage.NewAutoSaver(store, backend, cfg.AutoSave)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bot.Run(gctx, runner) })
	g.Go(func() error { return sched.Run(gctx) })
	g.Go(func() error { return saver.Run(gctx) })
	g.Go(func() error { return settings.Watch(gctx) })
	if cfg.MetricsAddr != "" {
		g.Go(func() error { return metrics.Serve(gctx, cfg.MetricsAddr) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
