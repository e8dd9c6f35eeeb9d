package ingest

import (
	"log/slog"

	"github.com/sig-0/fxwatch/metrics"
)

type Option func(p *Pipeline)

// WithLogger specifies the logger for the pipeline
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithMetrics specifies the metrics the pipeline reports to
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

type SchedulerOption func(s *Scheduler)

// WithSchedulerLogger specifies the logger for the scheduler
func WithSchedulerLogger(l *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = l
	}
}

// WithRunOnStart runs the job once, as soon as the scheduler starts
func WithRunOnStart(runOnStart bool) SchedulerOption {
	return func(s *Scheduler) {
		s.runOnStart = runOnStart
	}
}
