// Package dispatch runs plotting jobs on the single output device, one at a
// time: hand the file to the sender, connect once, press start, then wait
// out the estimated run time.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ByLCY/quill/automation"
	"github.com/ByLCY/quill/queue"
)

var (
	ErrSend    = errors.New("send failed")
	ErrConnect = errors.New("connect failed")
	ErrRun     = errors.New("run failed")
)

// Sender hands a program file to the sender application.
type Sender interface {
	Send(ctx context.Context, path string) error
}

// Automation finds and presses controls of the sender application.
type Automation interface {
	Locate(ctx context.Context, template string) (automation.Region, bool, error)
	Click(ctx context.Context, r automation.Region) error
}

// Options tunes the scheduler.
type Options struct {
	Poll            time.Duration
	ConnectTemplate string
	StartTemplate   string
	// LaunchSettle is waited after the sender was started.
	LaunchSettle time.Duration
	// ConnectSettle is waited after the connect control was pressed.
	ConnectSettle time.Duration
	// Sleep blocks for the given duration. Defaults to time.Sleep.
	Sleep    func(time.Duration)
	Observer func(Transition)
	Logger   *slog.Logger
}

// DefaultOptions returns the timings of the reference setup.
func DefaultOptions() Options {
	return Options{
		Poll:            100 * time.Millisecond,
		ConnectTemplate: "connect_button.png",
		StartTemplate:   "start_button.png",
		LaunchSettle:    60 * time.Second,
		ConnectSettle:   10 * time.Second,
	}
}

// Scheduler owns the device. Only one job is ever past Idle.
type Scheduler struct {
	sender Sender
	auto   Automation
	jobs   *queue.Queue[Job]
	opts   Options
	logger *slog.Logger

	mu        sync.Mutex
	state     State
	connected bool
	current   *Job
	stats     Stats
}

// New creates a scheduler reading jobs from the given queue.
func New(sender Sender, auto Automation, jobs *queue.Queue[Job], opts Options) *Scheduler {
	if opts.Poll <= 0 {
		opts.Poll = 100 * time.Millisecond
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		sender: sender,
		auto:   auto,
		jobs:   jobs,
		opts:   opts,
		logger: logger,
	}
}

// Submit queues a job. It reports false once the job queue is closed.
func (s *Scheduler) Submit(job Job) bool {
	return s.jobs.Push(job)
}

// Run processes jobs until the queue is closed and drained, or ctx is
// cancelled. Cancellation is only observed between jobs.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		job, ok := s.jobs.TryPop()
		if !ok {
			if s.jobs.Drained() {
				return nil
			}
			timer := time.NewTimer(s.opts.Poll)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
			continue
		}
		if err := s.process(ctx, job); err != nil {
			s.logger.Error("job failed", "job", job.ID, "path", job.Path, "error", err)
		}
	}
}

func (s *Scheduler) process(ctx context.Context, job Job) error {
	s.mu.Lock()
	s.current = &job
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.current = nil
		s.mu.Unlock()
		s.transition(job, Idle, nil)
	}()

	s.transition(job, Sending, nil)
	if err := s.sender.Send(ctx, job.Path); err != nil {
		return s.fail(job, fmt.Errorf("%w: %w", ErrSend, err))
	}
	s.opts.Sleep(s.opts.LaunchSettle)

	if !s.Connected() {
		s.transition(job, Connecting, nil)
		if err := s.connect(ctx); err != nil {
			return s.fail(job, fmt.Errorf("%w: %w", ErrConnect, err))
		}
	}

	s.transition(job, Running, nil)
	if err := s.start(ctx); err != nil {
		s.setConnected(false)
		return s.fail(job, fmt.Errorf("%w: %w", ErrRun, err))
	}

	s.transition(job, Waiting, nil)
	s.logger.Info("plotting", "job", job.ID, "estimate", job.Estimate)
	s.opts.Sleep(job.Estimate)

	s.mu.Lock()
	s.stats.Completed++
	s.mu.Unlock()
	s.transition(job, Complete, nil)
	return nil
}

// connect presses the connect control if the sender shows one. A missing
// control means the sender is already connected.
func (s *Scheduler) connect(ctx context.Context) error {
	region, found, err := s.auto.Locate(ctx, s.opts.ConnectTemplate)
	if err != nil {
		return err
	}
	if found {
		if err := s.auto.Click(ctx, region); err != nil {
			return err
		}
		s.opts.Sleep(s.opts.ConnectSettle)
	} else {
		s.logger.Info("connect control not found, assuming connected")
	}
	s.setConnected(true)
	return nil
}

func (s *Scheduler) start(ctx context.Context) error {
	region, found, err := s.auto.Locate(ctx, s.opts.StartTemplate)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("control %s not on screen", s.opts.StartTemplate)
	}
	return s.auto.Click(ctx, region)
}

func (s *Scheduler) fail(job Job, err error) error {
	s.mu.Lock()
	s.stats.Failed++
	s.mu.Unlock()
	s.transition(job, Failed, err)
	return err
}

func (s *Scheduler) transition(job Job, to State, err error) {
	s.mu.Lock()
	from := s.state
	s.state = to
	s.mu.Unlock()
	s.logger.Debug("job state", "job", job.ID, "from", from, "to", to)
	if s.opts.Observer != nil {
		s.opts.Observer(Transition{Job: job, From: from, To: to, Err: err})
	}
}

func (s *Scheduler) setConnected(v bool) {
	s.mu.Lock()
	s.connected = v
	s.mu.Unlock()
}

// State returns the phase of the active job, Idle when none.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Connected reports whether the sender is believed to be connected.
func (s *Scheduler) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Current returns the active job, if any.
func (s *Scheduler) Current() (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Job{}, false
	}
	return *s.current, true
}

// Stats returns finished job counts and the queue length.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	st := s.stats
	s.mu.Unlock()
	st.Pending = s.jobs.Len()
	return st
}
