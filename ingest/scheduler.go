package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule checks the page every 10 minutes
const DefaultSchedule = "*/10 * * * *"

var errInvalidRunner = errors.New("invalid runner")

// Runner is a single schedulable job
type Runner interface {
	Run(context.Context) (*Result, error)
}

// Scheduler runs the pipeline on a cron schedule.
// Runs never overlap: a tick that fires while a run is in flight is skipped
type Scheduler struct {
	logger *slog.Logger
	runner Runner

	schedule   cron.Schedule
	spec       string
	runOnStart bool
}

// NewScheduler creates a new scheduler for the given standard cron spec
func NewScheduler(runner Runner, spec string, opts ...SchedulerOption) (*Scheduler, error) {
	if runner == nil {
		return nil, errInvalidRunner
	}

	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("unable to parse schedule %q: %w", spec, err)
	}

	s := &Scheduler{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		runner:   runner,
		schedule: schedule,
		spec:     spec,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Start starts the scheduler loop [BLOCKING]
func (s *Scheduler) Start(ctx context.Context) error {
	l := cronLogger{logger: s.logger}

	c := cron.New(
		cron.WithLogger(l),
		cron.WithChain(
			cron.Recover(l),
			cron.SkipIfStillRunning(l),
		),
	)

	c.Schedule(s.schedule, cron.FuncJob(func() {
		s.runOnce(ctx)
	}))

	if s.runOnStart {
		s.runOnce(ctx)
	}

	c.Start()

	s.logger.Info(
		"scheduler started",
		"schedule", s.spec,
	)

	<-ctx.Done()

	// Wait for the in-flight run, if any
	<-c.Stop().Done()

	s.logger.Info("scheduler shut down")

	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	res, err := s.runner.Run(ctx)
	if err != nil {
		// The failure is logged by the runner, the next tick retries
		return
	}

	s.logger.Info(
		"scheduled run completed",
		"month", res.Month,
		"new_record", res.WasNew,
		"written", res.Written,
	)
}

// cronLogger adapts slog to the cron logger
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "err", err)...)
}
