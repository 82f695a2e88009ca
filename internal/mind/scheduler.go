package mind

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/keshon/server-mimic/internal/logging"
	"github.com/keshon/server-mimic/internal/metrics"
	"github.com/keshon/server-mimic/pkg/util"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	weeklySpec  = "@every 168h"
	monthlySpec = "@every 720h"

	// sweepWorkers bounds concurrent sends during a spontaneous sweep.
	sweepWorkers = 4
)

// Scheduler runs the maintenance loops: spontaneous messages at random intervals and the
// weekly and monthly decay sweeps.
type Scheduler struct {
	runner *Runner
	cron   *cron.Cron
	log    zerolog.Logger
}

// NewScheduler registers the decay sweeps. Nothing runs until Run is called.
func NewScheduler(runner *Runner) (*Scheduler, error) {
	s := &Scheduler{
		runner: runner,
		cron:   cron.New(),
		log:    logging.For("scheduler"),
	}
	if _, err := s.cron.AddFunc(weeklySpec, func() { s.SweepWeekly() }); err != nil {
		return nil, fmt.Errorf("schedule weekly decay: %w", err)
	}
	if _, err := s.cron.AddFunc(monthlySpec, func() { s.SweepMonthly() }); err != nil {
		return nil, fmt.Errorf("schedule monthly decay: %w", err)
	}
	return s, nil
}

// Run starts the decay schedule and the spontaneous-message loop and blocks until ctx is
// done. A decay sweep in progress is allowed to finish before Run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	defer func() {
		<-s.cron.Stop().Done()
	}()

	for {
		rules := s.runner.Rules()
		wait := s.runner.sampler.Duration(
			time.Duration(rules.RandomFrom)*time.Hour,
			time.Duration(rules.RandomTo)*time.Hour,
		)
		s.log.Info().Dur("in", wait).Msg("next spontaneous message")

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}

		sent := s.SpeakOnce(ctx)
		s.log.Info().Int("groups", sent).Msg("spontaneous messages sent")
	}
}

// SpeakOnce sends one weighted-random memory to every group that remembers something and
// returns how many sends succeeded. A failure in one group does not stop the others.
func (s *Scheduler) SpeakOnce(ctx context.Context) int {
	store := s.runner.Store()

	type pick struct {
		group int64
		text  string
	}
	var picks []pick
	for _, id := range store.Groups() {
		if msg, ok := s.runner.sampler.Pick(store.Snapshot(id)); ok {
			picks = append(picks, pick{group: id, text: msg})
		}
	}

	var sent atomic.Int64
	err := util.ForEach(ctx, picks, sweepWorkers, func(ctx context.Context, p pick) error {
		if err := s.runner.Deliver(ctx, p.group, p.text); err != nil {
			return err
		}
		sent.Add(1)
		return nil
	})
	if err != nil {
		s.log.Debug().Err(err).Msg("spontaneous sweep had failures")
	}
	return int(sent.Load())
}

// SweepWeekly forgets every memory at or below the weekly importance cutoff.
func (s *Scheduler) SweepWeekly() int {
	return s.sweep("weekly", s.runner.Rules().ImportanceWeekly)
}

// SweepMonthly forgets every memory at or below the monthly importance cutoff.
func (s *Scheduler) SweepMonthly() int {
	return s.sweep("monthly", s.runner.Rules().ImportanceMonthly)
}

func (s *Scheduler) sweep(kind string, cutoff int) int {
	removed := s.runner.Store().DecayAll(cutoff)
	metrics.EntriesDecayed.WithLabelValues(kind).Add(float64(removed))
	s.log.Info().Str("sweep", kind).Int("cutoff", cutoff).Int("removed", removed).Msg("decay sweep")
	return removed
}
