package alert

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sig-0/fxwatch/storage"
	"github.com/sig-0/fxwatch/summary"
)

const (
	// ImpactTitle is the title of the impact alert thread
	ImpactTitle = "BOC USD Impact Alert"

	DefaultUSDExposure = 1_500_000_000
	DefaultBaseRate    = 714.6
	DefaultThresholdM  = 10

	impactCheckName = "impact"
)

var million = decimal.NewFromInt(1_000_000)

// ImpactConfig is the exposure configuration of the impact check
type ImpactConfig struct {
	Exposure   decimal.Decimal // USD amount held
	BaseRate   decimal.Decimal // CNY per 100 USD the exposure was booked at
	ThresholdM decimal.Decimal // absolute impact, in millions of USD, that triggers an alert
}

// DefaultImpactConfig returns the default exposure configuration
func DefaultImpactConfig() ImpactConfig {
	return ImpactConfig{
		Exposure:   decimal.NewFromInt(DefaultUSDExposure),
		BaseRate:   decimal.NewFromFloat(DefaultBaseRate),
		ThresholdM: decimal.NewFromInt(DefaultThresholdM),
	}
}

// Impact is the revaluation of the exposure at a middle rate
type Impact struct {
	BaseCNY decimal.Decimal // exposure * baseRate / 100
	USDNow  decimal.Decimal // baseCNY / (mid / 100)
	USD     decimal.Decimal // USDNow - exposure
}

// Millions returns the impact in millions of USD
func (i Impact) Millions() decimal.Decimal {
	return i.USD.Div(million)
}

// ComputeImpact revalues the exposure at the given middle rate.
// The flag is false when the rate is zero
func (c ImpactConfig) ComputeImpact(mid decimal.Decimal) (Impact, bool) {
	if mid.IsZero() {
		return Impact{}, false
	}

	var (
		baseCNY = c.Exposure.Mul(c.BaseRate).Div(hundred)
		usdNow  = baseCNY.Div(mid.Div(hundred))
	)

	return Impact{
		BaseCNY: baseCNY,
		USDNow:  usdNow,
		USD:     usdNow.Sub(c.Exposure),
	}, true
}

// ImpactCheck alerts when revaluing the exposure at the latest middle rate
// moves it by at least the threshold
type ImpactCheck struct {
	storage  storage.Storage
	notifier Notifier
	cfg      ImpactConfig
	opts     options
}

// NewImpactCheck creates a new impact check.
// A nil notifier disables the check
func NewImpactCheck(
	storage storage.Storage,
	notifier Notifier,
	cfg ImpactConfig,
	opts ...Option,
) *ImpactCheck {
	return &ImpactCheck{
		storage:  storage,
		notifier: notifier,
		cfg:      cfg,
		opts:     newOptions(opts...),
	}
}

func (c *ImpactCheck) Name() string {
	return impactCheckName
}

func (c *ImpactCheck) Run(ctx context.Context) (*Result, error) {
	res, err := c.run(ctx)

	return finish(c.opts, impactCheckName, res, err)
}

func (c *ImpactCheck) run(ctx context.Context) (*Result, error) {
	logger := c.opts.logger

	if c.notifier == nil {
		logger.Info("no notifier configured, skipping impact alert")

		return skipped(SkipDisabled), nil
	}

	month, records, err := latestSeries(ctx, c.storage)
	if err != nil {
		return nil, err
	}

	if month == "" || len(records) == 0 {
		logger.Info("no series stored yet")

		return skipped(SkipNoData), nil
	}

	last := records[len(records)-1]

	mid, err := summary.ParseNumeric(last.Middle)
	if err != nil {
		logger.Info(
			"middle rate not numeric, skipping alert",
			"last", last.Middle,
		)

		return skipped(SkipNonNumeric), nil
	}

	impact, ok := c.cfg.ComputeImpact(mid)
	if !ok {
		logger.Info("middle rate is zero, skipping alert")

		return skipped(SkipZeroRate), nil
	}

	impactM := impact.Millions()
	res := &Result{Value: impactM}

	if impactM.Abs().LessThan(c.cfg.ThresholdM) {
		logger.Info(
			"no alert, impact below threshold",
			"impact_m", impactM.StringFixed(2),
			"threshold_m", c.cfg.ThresholdM.String(),
		)

		return res, nil
	}

	var (
		p    = message.NewPrinter(language.English)
		body strings.Builder
	)

	p.Fprintf(&body, "**USD Exposure:** %.0f\n", c.cfg.Exposure.InexactFloat64())
	fmt.Fprintf(&body, "**Base Rate (RMB/100USD):** %s\n", c.cfg.BaseRate.String())
	fmt.Fprintf(&body, "**Latest Middle:** %s\n", mid.String())
	fmt.Fprintf(&body, "**Latest Publish:** %s\n\n", last.PublishTime)
	p.Fprintf(&body, "**USD Now:** %.0f\n", impact.USDNow.InexactFloat64())
	p.Fprintf(&body, "**USD Impact:** %.0f  (%s%sM)\n\n", impact.USD.InexactFloat64(), sign(impactM), impactM.Abs().StringFixed(2))
	fmt.Fprintf(&body, "**Threshold:** %sM\n", c.cfg.ThresholdM.String())
	fmt.Fprintf(&body, "**Month:** `%s`\n", month)
	fmt.Fprintf(&body, "**Time:** %s\n", utcStamp(c.opts.now()))

	delivery, err := c.notifier.Notify(ctx, &Notification{
		Title:  ImpactTitle,
		Body:   body.String(),
		Labels: []string{LabelFXAlert},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to deliver impact alert: %w", err)
	}

	logger.Info(
		"impact alert delivered",
		"impact_m", impactM.StringFixed(2),
		"url", delivery.URL,
		"commented", delivery.Commented,
	)

	res.Triggered = true
	res.Delivery = delivery

	return res, nil
}

func sign(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-"
	}

	return "+"
}
