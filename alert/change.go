package alert

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sig-0/fxwatch/storage"
	"github.com/sig-0/fxwatch/summary"
)

const (
	// ChangeTitle is the title of the percent change alert thread
	ChangeTitle = "BOC USD/CNY Alert"

	// DefaultChangeThreshold is the default absolute percent change that triggers an alert
	DefaultChangeThreshold = 0.15

	changeCheckName = "change"
)

var hundred = decimal.NewFromInt(100)

// ChangeCheck alerts on the percent change between the last two published middle rates
type ChangeCheck struct {
	storage   storage.Storage
	notifier  Notifier
	threshold decimal.Decimal
	opts      options
}

// NewChangeCheck creates a new percent change check.
// A nil notifier disables the check
func NewChangeCheck(
	storage storage.Storage,
	notifier Notifier,
	thresholdPct decimal.Decimal,
	opts ...Option,
) *ChangeCheck {
	return &ChangeCheck{
		storage:   storage,
		notifier:  notifier,
		threshold: thresholdPct,
		opts:      newOptions(opts...),
	}
}

func (c *ChangeCheck) Name() string {
	return changeCheckName
}

// PercentChange returns (curr - prev) / prev * 100.
// The flag is false when prev is zero
func PercentChange(curr, prev decimal.Decimal) (decimal.Decimal, bool) {
	if prev.IsZero() {
		return decimal.Zero, false
	}

	return curr.Sub(prev).Div(prev).Mul(hundred), true
}

func (c *ChangeCheck) Run(ctx context.Context) (*Result, error) {
	res, err := c.run(ctx)

	return finish(c.opts, changeCheckName, res, err)
}

func (c *ChangeCheck) run(ctx context.Context) (*Result, error) {
	logger := c.opts.logger

	if c.notifier == nil {
		logger.Info("no notifier configured, skipping change alert")

		return skipped(SkipDisabled), nil
	}

	month, records, err := latestSeries(ctx, c.storage)
	if err != nil {
		return nil, err
	}

	if month == "" {
		logger.Info("no series stored yet")

		return skipped(SkipNoData), nil
	}

	if len(records) < 2 {
		logger.Info(
			"not enough published points for alert check",
			"month", month,
			"records", len(records),
		)

		return skipped(SkipInsufficient), nil
	}

	var (
		last = records[len(records)-1]
		prev = records[len(records)-2]
	)

	lastMid, errLast := summary.ParseNumeric(last.Middle)
	prevMid, errPrev := summary.ParseNumeric(prev.Middle)

	if errLast != nil || errPrev != nil {
		logger.Info(
			"middle rate not numeric, skipping alert",
			"last", last.Middle,
			"prev", prev.Middle,
		)

		return skipped(SkipNonNumeric), nil
	}

	change, ok := PercentChange(lastMid, prevMid)
	if !ok {
		return skipped(SkipZeroPrevious), nil
	}

	res := &Result{Value: change}

	if change.Abs().LessThan(c.threshold) {
		logger.Info(
			"no alert, change below threshold",
			"change_pct", change.StringFixed(4),
			"threshold_pct", c.threshold.String(),
		)

		return res, nil
	}

	var body strings.Builder

	fmt.Fprintf(&body, "**Threshold:** %s%%\n\n", c.threshold.String())
	fmt.Fprintf(&body, "**Change:** %s%%\n\n", change.StringFixed(4))
	fmt.Fprintf(&body, "**Prev Publish:** %s | Middle: %s\n", prev.PublishTime, prevMid.String())
	fmt.Fprintf(&body, "**Last Publish:** %s | Middle: %s\n\n", last.PublishTime, lastMid.String())
	fmt.Fprintf(&body, "**Month:** `%s`\n", month)
	fmt.Fprintf(&body, "**Time:** %s\n", utcStamp(c.opts.now()))

	delivery, err := c.notifier.Notify(ctx, &Notification{
		Title:  ChangeTitle,
		Body:   body.String(),
		Labels: []string{LabelFXAlert, "boc"},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to deliver change alert: %w", err)
	}

	logger.Info(
		"change alert delivered",
		"change_pct", change.StringFixed(4),
		"url", delivery.URL,
		"commented", delivery.Commented,
	)

	res.Triggered = true
	res.Delivery = delivery

	return res, nil
}
