package mind

import (
	"context"
	"time"

	"github.com/keshon/server-mimic/internal/logging"
	"github.com/keshon/server-mimic/internal/metrics"
	"github.com/keshon/server-mimic/pkg/jobmgr"
	"github.com/rs/zerolog"
)

// Sender delivers text to a group. Implementations may block; failures are logged by the
// caller and never retried.
type Sender interface {
	Send(ctx context.Context, groupID int64, text string) error
}

// Runner reacts to inbound messages: it records them, rolls the reply gate, picks a reply
// and sends it after a human-like delay.
type Runner struct {
	store   *Store
	book    *Rulebook
	sampler *Sampler
	sender  Sender
	jobs    *jobmgr.Manager
	log     zerolog.Logger
}

// NewRunner wires the reply pipeline. Delayed replies run as jobs on jobs, so shutting the
// manager down abandons any that are still waiting.
func NewRunner(store *Store, book *Rulebook, sampler *Sampler, sender Sender, jobs *jobmgr.Manager) *Runner {
	return &Runner{
		store:   store,
		book:    book,
		sampler: sampler,
		sender:  sender,
		jobs:    jobs,
		log:     logging.For("mind"),
	}
}

// Store returns the memory the runner records into.
func (r *Runner) Store() *Store { return r.store }

// Rules returns the rules currently in effect.
func (r *Runner) Rules() *Rules { return r.book.Current() }

// Ingest handles one inbound message and reports how far it got.
func (r *Runner) Ingest(ctx context.Context, m Message) Outcome {
	if m.FromBot {
		metrics.MessagesIgnored.WithLabelValues("bot").Inc()
		return OutcomeIgnored
	}

	rules := r.book.Current()
	text := stripControl(m.Text)
	if reason := filterReason(text, rules); reason != "" {
		metrics.MessagesIgnored.WithLabelValues(reason).Inc()
		return OutcomeIgnored
	}

	if !r.store.Record(m.GroupID, text) {
		metrics.MessagesIgnored.WithLabelValues("blacklisted").Inc()
		return OutcomeIgnored
	}

	if r.sampler.Float64() >= rules.Probability {
		return OutcomeRecorded
	}

	d, ok := r.Decide(m.GroupID, text)
	if !ok {
		return OutcomeRecorded
	}

	delay := r.sampler.Duration(rules.ReplyDelayMin, rules.ReplyDelayMax)
	if !r.schedule(m.GroupID, d, delay) {
		return OutcomeRecorded
	}

	metrics.Replies.WithLabelValues(string(d.Kind)).Inc()
	r.log.Info().Int64("group", m.GroupID).Str("kind", string(d.Kind)).Dur("delay", delay).Msg("reply scheduled")
	return OutcomeScheduled
}

// schedule sends d after delay as a detached job. It reports false when the job manager
// no longer accepts work.
func (r *Runner) schedule(groupID int64, d Decision, delay time.Duration) bool {
	metrics.PendingSends.Inc()
	name := r.jobs.Go("reply", func(ctx context.Context) error {
		defer metrics.PendingSends.Dec()

		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
		return r.Deliver(ctx, groupID, d.Text)
	})
	if name == "" {
		metrics.PendingSends.Dec()
		return false
	}
	return true
}

// Deliver sends text right away. A failed send is logged and returned, never retried.
func (r *Runner) Deliver(ctx context.Context, groupID int64, text string) error {
	if err := r.sender.Send(ctx, groupID, text); err != nil {
		metrics.Sends.WithLabelValues("failed").Inc()
		r.log.Warn().Err(err).Int64("group", groupID).Msg("send failed")
		return err
	}
	metrics.Sends.WithLabelValues("ok").Inc()
	r.log.Debug().Int64("group", groupID).Str("text", truncateForLog(text, 80)).Msg("sent")
	return nil
}
