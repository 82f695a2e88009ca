// Package jobmgr runs detached background jobs under one root context, with cancellation,
// status callbacks, and in-memory tracking of running jobs.
//
// Typical usage:
//
//	jm := jobmgr.NewManager(ctx, func(msg string) {
//	    log.Println("JOB:", msg)
//	})
//
//	name := jm.Go("reply", func(ctx context.Context) error {
//	    // wait, then do work until ctx is cancelled
//	    return nil
//	})
//
//	// later...
//	_ = jm.Stop(name)
//	jm.Shutdown()
//
// The package is intentionally minimal: no retry logic, no workers, no persistence.
// Jobs run in separate goroutines and are automatically removed on completion.
package jobmgr

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// Job represents a running unit of work.
// Jobs are added and removed by Manager automatically.
type Job struct {
	Name   string
	Cancel context.CancelFunc
}

// StatusReporter receives lifecycle events for jobs.
// Example messages:
//
//	running:reply-17
//	error:reply-17:channel not found
//	done:reply-17
type StatusReporter func(string)

// Manager orchestrates starting, stopping and tracking jobs.
// It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	jobs     map[string]*Job
	seq      atomic.Uint64
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	closed   bool
	Reporter StatusReporter
}

// NewManager creates a Manager whose jobs are cancelled when parent is done or
// Shutdown is called. The reporter callback may be nil.
func NewManager(parent context.Context, reporter StatusReporter) *Manager {
	ctx, cancel := context.WithCancel(parent)
	return &Manager{
		jobs:     make(map[string]*Job),
		ctx:      ctx,
		cancel:   cancel,
		Reporter: reporter,
	}
}

// StartAsync runs a named job in a separate goroutine and returns immediately.
// If a job with the same name is already running, or the manager is shut down,
// an error is returned.
func (m *Manager) StartAsync(name string, runner func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("job manager is shut down")
	}
	if _, exists := m.jobs[name]; exists {
		return fmt.Errorf("job '%s' is already running", name)
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.jobs[name] = &Job{Name: name, Cancel: cancel}
	m.wg.Add(1)

	go func() {
		defer m.wg.Done()
		defer cancel()

		m.report("running:" + name)
		if err := runner(ctx); err != nil {
			m.report("error:" + name + ":" + err.Error())
		} else {
			m.report("done:" + name)
		}

		m.mu.Lock()
		delete(m.jobs, name)
		m.mu.Unlock()
	}()

	return nil
}

// Go starts a job under a unique name built from prefix and returns that name.
// It returns "" if the manager is shut down.
func (m *Manager) Go(prefix string, runner func(ctx context.Context) error) string {
	name := fmt.Sprintf("%s-%d", prefix, m.seq.Add(1))
	if err := m.StartAsync(name, runner); err != nil {
		return ""
	}
	return name
}

// Stop cancels a running job by name.
// If the job is not running, an error is returned.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[name]
	if !ok {
		return fmt.Errorf("job '%s' not running", name)
	}

	job.Cancel()
	delete(m.jobs, name)
	return nil
}

// Shutdown cancels every running job, refuses new ones and waits for the running
// goroutines to return.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
}

// Len returns the number of running jobs.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

// List returns the sorted names of active jobs.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Status returns a human-readable summary of active jobs.
// Example:
//
//	"Running jobs: reply-3, reply-4"
//
// If none are running: "No jobs are running."
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return fmt.Sprintf("Running jobs: %s", strings.Join(active, ", "))
}

// report delivers lifecycle messages to the reporter if present.
func (m *Manager) report(s string) {
	if m.Reporter != nil {
		m.Reporter(s)
	}
}
