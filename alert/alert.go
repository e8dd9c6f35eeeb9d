// Package alert evaluates the persisted series against the configured thresholds,
// and raises a notification when one is crossed
package alert

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sig-0/fxwatch/metrics"
	"github.com/sig-0/fxwatch/series"
	"github.com/sig-0/fxwatch/storage"
	"github.com/sig-0/fxwatch/storage/types"
)

// LabelFXAlert is carried by every alert notification
const LabelFXAlert = "fx-alert"

// Skip reasons
const (
	SkipDisabled     = "notifier not configured"
	SkipNoData       = "no series stored"
	SkipInsufficient = "not enough published points"
	SkipNonNumeric   = "middle rate not numeric"
	SkipZeroPrevious = "previous middle rate is zero"
	SkipZeroRate     = "middle rate is zero"
)

// Notification is a single alert message
type Notification struct {
	Title  string
	Body   string
	Labels []string
}

// Delivery describes where a notification landed
type Delivery struct {
	URL       string
	Number    int
	Commented bool // an existing open thread was commented on
}

// Notifier delivers alert notifications
type Notifier interface {
	Notify(context.Context, *Notification) (*Delivery, error)
}

// Result is the outcome of a single check
type Result struct {
	Delivery  *Delivery
	Value     decimal.Decimal // the computed figure (percent change, or impact in millions)
	Skipped   string          // the reason the check did not evaluate, if any
	Triggered bool
}

// Check is a single threshold check
type Check interface {
	Name() string
	Run(context.Context) (*Result, error)
}

type options struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(o *options)

// WithLogger specifies the logger for the check
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics specifies the metrics the check reports to
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func newOptions(opts ...Option) options {
	o := options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// latestSeries loads the series of the most recent stored month, ordered by publish time
func latestSeries(ctx context.Context, s storage.Storage) (types.Month, []types.QuoteRecord, error) {
	months, err := s.ListMonths(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("unable to list months: %w", err)
	}

	if len(months) == 0 {
		return "", nil, nil
	}

	month := months[len(months)-1]

	records, err := s.LoadSeries(ctx, month)
	if err != nil {
		return "", nil, fmt.Errorf("unable to load series %s: %w", month, err)
	}

	return month, series.Sort(records), nil
}

// finish reports the check outcome to the metrics
func finish(o options, check string, res *Result, err error) (*Result, error) {
	switch {
	case err != nil:
		o.metrics.ObserveAlert(check, metrics.AlertFailed)
	case res.Skipped != "":
		o.metrics.ObserveAlert(check, metrics.AlertSkipped)
	case res.Triggered:
		o.metrics.ObserveAlert(check, metrics.AlertTriggered)
	default:
		o.metrics.ObserveAlert(check, metrics.AlertQuiet)
	}

	return res, err
}

func skipped(reason string) *Result {
	return &Result{Skipped: reason}
}

func utcStamp(t time.Time) string {
	return t.UTC().Format(types.TimestampLayout) + " UTC"
}
