package env

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"time"

	"github.com/sig-0/fxwatch/ingest"
	"github.com/sig-0/fxwatch/metrics"
	"github.com/sig-0/fxwatch/provider/boc"
	"github.com/sig-0/fxwatch/storage/file"
)

var errInvalidDataDir = errors.New("invalid data directory")

// PipelineConfig is the fetch and persistence configuration
type PipelineConfig struct {
	DataDir   string
	URL       string
	UserAgent string

	Attempts int
	Delay    time.Duration
	Timeout  time.Duration
}

// RegisterFlags registers the pipeline flags
func (c *PipelineConfig) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(
		&c.DataDir,
		"data-dir",
		file.DefaultDataDir,
		"the directory holding the monthly series files",
	)

	fs.StringVar(
		&c.URL,
		"url",
		boc.DefaultURL,
		"the quotation page URL",
	)

	fs.StringVar(
		&c.UserAgent,
		"user-agent",
		boc.DefaultUserAgent,
		"the client identity sent with every page request",
	)

	fs.IntVar(
		&c.Attempts,
		"attempts",
		boc.DefaultAttempts,
		"the total number of page fetch attempts",
	)

	fs.DurationVar(
		&c.Delay,
		"retry-delay",
		boc.DefaultDelay,
		"the fixed delay between page fetch attempts",
	)

	fs.DurationVar(
		&c.Timeout,
		"timeout",
		boc.DefaultTimeout,
		"the per-attempt page request timeout",
	)
}

// Build wires the file storage, the BOC provider and the pipeline
func (c *PipelineConfig) Build(logger *slog.Logger, m *metrics.Metrics) (*ingest.Pipeline, *file.Storage, error) {
	if c.DataDir == "" {
		return nil, nil, errInvalidDataDir
	}

	fetcher := boc.NewFetcher(
		c.URL,
		boc.WithFetchLogger(logger),
		boc.WithAttempts(c.Attempts),
		boc.WithDelay(c.Delay),
		boc.WithTimeout(c.Timeout),
		boc.WithUserAgent(c.UserAgent),
	)

	var (
		store    = file.NewStorage(c.DataDir)
		provider = boc.NewProvider(fetcher, boc.WithLogger(logger))
	)

	pipeline, err := ingest.New(
		provider,
		store,
		ingest.WithLogger(logger),
		ingest.WithMetrics(m),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create pipeline: %w", err)
	}

	return pipeline, store, nil
}
