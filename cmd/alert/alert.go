package alert

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"sync"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/shopspring/decimal"

	"github.com/sig-0/fxwatch/alert"
	"github.com/sig-0/fxwatch/cmd/env"
	"github.com/sig-0/fxwatch/notify/github"
	"github.com/sig-0/fxwatch/storage/file"
)

// alertCfg wraps the alert configuration.
// The flags map to the un-prefixed environment variables (ALERT_THRESHOLD_PCT, GITHUB_TOKEN, ...)
type alertCfg struct {
	dataDir  string
	logLevel string

	thresholdPct decimal.Decimal
	impact       alert.ImpactConfig

	githubToken      string
	githubRepository string
	githubAPIURL     string
}

// NewAlertCmd creates the alert command
func NewAlertCmd() *ffcli.Command {
	cfg := &alertCfg{
		thresholdPct: decimal.NewFromFloat(alert.DefaultChangeThreshold),
		impact:       alert.DefaultImpactConfig(),
	}

	fs := flag.NewFlagSet("alert", flag.ExitOnError)
	cfg.registerFlags(fs)

	cmd := &ffcli.Command{
		Name:       "alert",
		ShortUsage: "alert <subcommand> [flags]",
		ShortHelp:  "Checks the latest series against the alert thresholds",
		LongHelp: "Checks the latest month series against the alert thresholds, and raises a GitHub issue " +
			"when one is crossed. Without GITHUB_TOKEN and GITHUB_REPOSITORY the checks are skipped. " +
			"The data directory is read from DATA_DIR, then from FXWATCH_DATA_DIR as set for run and serve",
		FlagSet: fs,
		Exec: func(_ context.Context, _ []string) error {
			return flag.ErrHelp
		},
		Options: []ff.Option{
			ff.WithEnvVars(),
		},
	}

	cmd.Subcommands = []*ffcli.Command{
		cfg.newCheckCmd(
			"change",
			"Alerts on the percent change between the last two published middle rates",
			func(c *alertCfg, deps checkDeps) []alert.Check {
				return []alert.Check{c.changeCheck(deps)}
			},
		),
		cfg.newCheckCmd(
			"impact",
			"Alerts on the USD impact of the latest middle rate on the configured exposure",
			func(c *alertCfg, deps checkDeps) []alert.Check {
				return []alert.Check{c.impactCheck(deps)}
			},
		),
		cfg.newCheckCmd(
			"all",
			"Runs every alert check",
			func(c *alertCfg, deps checkDeps) []alert.Check {
				return []alert.Check{c.changeCheck(deps), c.impactCheck(deps)}
			},
		),
	}

	return cmd
}

func (c *alertCfg) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(
		&c.dataDir,
		"data-dir",
		env.PrefixedOr("DATA_DIR", file.DefaultDataDir),
		"the directory holding the monthly series files",
	)

	env.RegisterLogLevel(fs, &c.logLevel)

	fs.Var(
		decimalValue{&c.thresholdPct},
		"alert-threshold-pct",
		"the absolute percent change between the last two publishes that triggers an alert",
	)

	fs.Var(
		decimalValue{&c.impact.Exposure},
		"usd-exposure",
		"the USD exposure to revalue",
	)

	fs.Var(
		decimalValue{&c.impact.BaseRate},
		"base-rate",
		"the CNY per 100 USD rate the exposure was booked at",
	)

	fs.Var(
		decimalValue{&c.impact.ThresholdM},
		"threshold-m",
		"the absolute USD impact, in millions, that triggers an alert",
	)

	fs.StringVar(
		&c.githubToken,
		"github-token",
		"",
		"the GitHub token used to open alert issues",
	)

	fs.StringVar(
		&c.githubRepository,
		"github-repository",
		"",
		"the owner/name repository alert issues are opened in",
	)

	fs.StringVar(
		&c.githubAPIURL,
		"github-api-url",
		github.DefaultAPIURL,
		"the GitHub API URL",
	)
}

type checkDeps struct {
	logger   *slog.Logger
	store    *file.Storage
	notifier alert.Notifier
}

type checksFn func(c *alertCfg, deps checkDeps) []alert.Check

func (c *alertCfg) newCheckCmd(name, help string, checks checksFn) *ffcli.Command {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	c.registerFlags(fs)

	return &ffcli.Command{
		Name:       name,
		ShortUsage: "alert " + name + " [flags]",
		ShortHelp:  help,
		FlagSet:    fs,
		Exec: func(ctx context.Context, _ []string) error {
			return c.exec(ctx, checks)
		},
		Options: []ff.Option{
			ff.WithEnvVars(),
		},
	}
}

func (c *alertCfg) exec(ctx context.Context, checksFn checksFn) error {
	logger := env.NewLogger(c.logLevel)

	notifier, err := c.notifier(logger)
	if err != nil {
		return err
	}

	checks := checksFn(c, checkDeps{
		logger:   logger,
		store:    file.NewStorage(c.dataDir),
		notifier: notifier,
	})

	// The checks are independent, a failing one does not cancel the other
	var (
		wg   sync.WaitGroup
		errs = make([]error, len(checks))
	)

	for i, check := range checks {
		wg.Add(1)

		go func() {
			defer wg.Done()

			res, err := check.Run(ctx)
			if err != nil {
				errs[i] = fmt.Errorf("%s check failed: %w", check.Name(), err)

				return
			}

			logger.Info(
				"alert check completed",
				"check", check.Name(),
				"triggered", res.Triggered,
				"skipped", res.Skipped,
				"value", res.Value.StringFixed(4),
			)
		}()
	}

	wg.Wait()

	return errors.Join(errs...)
}

// notifier returns the GitHub notifier, or nil when the credentials are absent
func (c *alertCfg) notifier(logger *slog.Logger) (alert.Notifier, error) {
	if c.githubToken == "" || c.githubRepository == "" {
		logger.Info("no GitHub token or repository, alerts are disabled")

		return nil, nil
	}

	client, err := github.New(
		c.githubToken,
		c.githubRepository,
		github.WithLogger(logger),
		github.WithBaseURL(c.githubAPIURL),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create GitHub notifier: %w", err)
	}

	return client, nil
}

func (c *alertCfg) changeCheck(deps checkDeps) alert.Check {
	return alert.NewChangeCheck(
		deps.store,
		deps.notifier,
		c.thresholdPct,
		alert.WithLogger(deps.logger.With("check", "change")),
	)
}

func (c *alertCfg) impactCheck(deps checkDeps) alert.Check {
	return alert.NewImpactCheck(
		deps.store,
		deps.notifier,
		c.impact,
		alert.WithLogger(deps.logger.With("check", "impact")),
	)
}

// decimalValue is a flag.Value over a decimal
type decimalValue struct {
	d *decimal.Decimal
}

func (v decimalValue) String() string {
	if v.d == nil {
		return ""
	}

	return v.d.String()
}

func (v decimalValue) Set(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid decimal %q: %w", s, err)
	}

	*v.d = d

	return nil
}
