package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/rs/xid"

	"github.com/sig-0/fxwatch/metrics"
	"github.com/sig-0/fxwatch/series"
	"github.com/sig-0/fxwatch/storage"
	"github.com/sig-0/fxwatch/storage/types"
	"github.com/sig-0/fxwatch/summary"
)

var errInvalidProvider = errors.New("invalid provider")

// Result is the outcome of a single pipeline run
type Result struct {
	Record  types.QuoteRecord
	Month   types.Month
	WasNew  bool // the record was not yet part of the series
	Written bool // the series encodings were rewritten
}

// Pipeline runs a single fetch, merge and persist cycle
type Pipeline struct {
	storage  storage.Storage
	provider Provider
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// New creates a new Pipeline instance
func New(provider Provider, storage storage.Storage, opts ...Option) (*Pipeline, error) {
	if provider == nil || provider.Name() == "" {
		return nil, errInvalidProvider
	}

	p := &Pipeline{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		storage:  storage,
		provider: provider,
	}

	// Apply the options
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Run fetches the current quotation and merges it into its month series.
// Nothing is written unless the provider yields a validated record.
// The series is rewritten when the record is new, or when an encoding is missing
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	logger := p.logger.With("run_id", xid.New().String())

	res, err := p.run(ctx, logger)
	if err != nil {
		p.metrics.ObserveRun(metrics.OutcomeFailed)

		logger.Error(
			"pipeline run failed",
			"provider", p.provider.Name(),
			"err", err,
		)

		return nil, err
	}

	if res.Written {
		p.metrics.ObserveRun(metrics.OutcomeWritten)
	} else {
		p.metrics.ObserveRun(metrics.OutcomeUnchanged)
	}

	return res, nil
}

func (p *Pipeline) run(ctx context.Context, logger *slog.Logger) (*Result, error) {
	obs, err := p.provider.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch quotation: %w", err)
	}

	rec := obs.Record

	month, err := rec.Month()
	if err != nil {
		return nil, fmt.Errorf("unable to derive record month: %w", err)
	}

	logger.Info(
		"fetched quotation",
		"provider", p.provider.Name(),
		"publish_time", rec.PublishTime,
		"middle", rec.Middle,
	)

	// Every validated capture is logged, even when the series does not change
	if err := p.storage.AppendCapture(ctx, month, types.NewCaptureEntry(rec)); err != nil {
		return nil, fmt.Errorf("unable to append capture: %w", err)
	}

	p.metrics.ObserveCapture()

	if middle, err := summary.ParseNumeric(rec.Middle); err == nil {
		p.metrics.ObserveMiddle(middle.InexactFloat64())
	}

	existing, err := p.storage.LoadSeries(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("unable to load series: %w", err)
	}

	merged, wasNew := series.Merge(existing, rec)

	complete, err := p.storage.SeriesComplete(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("unable to check series files: %w", err)
	}

	res := &Result{
		Record: rec,
		Month:  month,
		WasNew: wasNew,
	}

	if !wasNew && complete {
		logger.Info(
			"no new publish, series unchanged",
			"month", month,
			"records", len(existing),
		)

		return res, nil
	}

	if err := p.storage.SaveSeries(ctx, month, merged); err != nil {
		return nil, fmt.Errorf("unable to save series: %w", err)
	}

	if wasNew {
		p.metrics.ObserveMerge()
	}

	res.Written = true

	logger.Info(
		"saved series",
		"month", month,
		"records", len(merged),
		"new_record", wasNew,
	)

	return res, nil
}
