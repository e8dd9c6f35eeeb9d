package alert

import (
	"context"
	"errors"
	"flag"
	"sync/atomic"
	"testing"

	"github.com/peterbourgon/ff/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/fxwatch/alert"
	"github.com/sig-0/fxwatch/cmd/env"
	"github.com/sig-0/fxwatch/storage/file"
	"github.com/sig-0/fxwatch/storage/types"
)

func TestDecimalValue(t *testing.T) {
	t.Parallel()

	var d decimal.Decimal

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Var(decimalValue{&d}, "value", "")

	require.NoError(t, fs.Parse([]string{"-value", "0.25"}))
	assert.Equal(t, "0.25", d.String())

	assert.Error(t, fs.Parse([]string{"-value", "a quarter"}))
}

func TestAlertCfg_Flags(t *testing.T) {
	t.Parallel()

	cfg := &alertCfg{
		thresholdPct: decimal.NewFromFloat(alert.DefaultChangeThreshold),
		impact:       alert.DefaultImpactConfig(),
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.registerFlags(fs)

	require.NoError(t, fs.Parse([]string{
		"-alert-threshold-pct", "0.10",
		"-usd-exposure", "2000000000",
		"-github-repository", "acme/fx",
	}))

	assert.Equal(t, "0.1", cfg.thresholdPct.String())
	assert.Equal(t, "2000000000", cfg.impact.Exposure.String())
	assert.Equal(t, "714.6", cfg.impact.BaseRate.String())
	assert.Equal(t, "10", cfg.impact.ThresholdM.String())
	assert.Equal(t, "acme/fx", cfg.githubRepository)
}

func TestAlertCfg_DataDir(t *testing.T) {
	t.Setenv(env.Prefix+"DATA_DIR", "/srv/fx")

	t.Run("prefixed fallback", func(t *testing.T) {
		var cfg alertCfg

		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		cfg.registerFlags(fs)

		require.NoError(t, fs.Parse(nil))
		assert.Equal(t, "/srv/fx", cfg.dataDir)
	})

	t.Run("un-prefixed variable wins", func(t *testing.T) {
		t.Setenv("DATA_DIR", "/var/lib/fx")

		var cfg alertCfg

		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		cfg.registerFlags(fs)

		require.NoError(t, ff.Parse(fs, nil, ff.WithEnvVars()))
		assert.Equal(t, "/var/lib/fx", cfg.dataDir)
	})
}

func TestAlertCfg_Exec(t *testing.T) {
	t.Parallel()

	t.Run("disabled without credentials", func(t *testing.T) {
		t.Parallel()

		var (
			ctx = context.Background()
			dir = t.TempDir()
		)

		// A series that would trigger both checks
		require.NoError(t, file.NewStorage(dir).SaveSeries(ctx, "2026-01", []types.QuoteRecord{
			{Date: "2026-01-02", PublishTime: "2026-01-02 09:30:00", Currency: "USD", Middle: "700"},
			{Date: "2026-01-02", PublishTime: "2026-01-02 16:58:08", Currency: "USD", Middle: "680"},
		}))

		cfg := &alertCfg{
			dataDir:      dir,
			logLevel:     "error",
			thresholdPct: decimal.NewFromFloat(alert.DefaultChangeThreshold),
			impact:       alert.DefaultImpactConfig(),
		}

		var results []*alert.Result

		err := cfg.exec(ctx, func(c *alertCfg, deps checkDeps) []alert.Check {
			assert.Nil(t, deps.notifier)

			checks := []alert.Check{c.changeCheck(deps), c.impactCheck(deps)}
			for _, check := range checks {
				res, err := check.Run(ctx)
				require.NoError(t, err)

				results = append(results, res)
			}

			return nil
		})
		require.NoError(t, err)

		require.Len(t, results, 2)

		for _, res := range results {
			assert.Equal(t, alert.SkipDisabled, res.Skipped)
		}
	})

	t.Run("failing check does not stop the others", func(t *testing.T) {
		t.Parallel()

		var (
			errStorage = errors.New("storage down")
			ran        atomic.Int32
		)

		cfg := &alertCfg{
			dataDir:  t.TempDir(),
			logLevel: "error",
		}

		err := cfg.exec(context.Background(), func(_ *alertCfg, _ checkDeps) []alert.Check {
			return []alert.Check{
				&stubCheck{name: "change", err: errStorage, ran: &ran},
				&stubCheck{name: "impact", ran: &ran},
			}
		})

		require.ErrorIs(t, err, errStorage)
		assert.Contains(t, err.Error(), "change check failed")
		assert.NotContains(t, err.Error(), "impact")
		assert.EqualValues(t, 2, ran.Load())
	})

	t.Run("invalid repository", func(t *testing.T) {
		t.Parallel()

		cfg := &alertCfg{
			dataDir:          t.TempDir(),
			logLevel:         "error",
			githubToken:      "token",
			githubRepository: "acme",
		}

		err := cfg.exec(context.Background(), func(_ *alertCfg, _ checkDeps) []alert.Check {
			return nil
		})

		assert.Error(t, err)
	})
}

type stubCheck struct {
	name string
	err  error
	ran  *atomic.Int32
}

func (c *stubCheck) Name() string {
	return c.name
}

func (c *stubCheck) Run(_ context.Context) (*alert.Result, error) {
	c.ran.Add(1)

	if c.err != nil {
		return nil, c.err
	}

	return &alert.Result{}, nil
}
