package alert

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/fxwatch/storage/types"
)

func TestImpactConfig_ComputeImpact(t *testing.T) {
	t.Parallel()

	cfg := DefaultImpactConfig()

	t.Run("rate unchanged", func(t *testing.T) {
		t.Parallel()

		impact, ok := cfg.ComputeImpact(decimal.RequireFromString("714.6"))
		require.True(t, ok)

		assert.True(t, impact.USD.Round(6).IsZero())
		assert.Equal(t, "10719000000", impact.BaseCNY.String())
	})

	t.Run("rate down", func(t *testing.T) {
		t.Parallel()

		impact, ok := cfg.ComputeImpact(decimal.RequireFromString("701.5"))
		require.True(t, ok)

		// 10719000000 / 7.015 - 1500000000
		assert.Equal(t, "28.01", impact.Millions().StringFixed(2))
	})

	t.Run("rate up", func(t *testing.T) {
		t.Parallel()

		impact, ok := cfg.ComputeImpact(decimal.RequireFromString("730"))
		require.True(t, ok)

		assert.True(t, impact.USD.IsNegative())
	})

	t.Run("zero rate", func(t *testing.T) {
		t.Parallel()

		_, ok := cfg.ComputeImpact(decimal.Zero)
		assert.False(t, ok)
	})
}

func TestImpactCheck_Run(t *testing.T) {
	t.Parallel()

	t.Run("threshold crossed", func(t *testing.T) {
		t.Parallel()

		var (
			sent []*Notification
			s    = seededStorage(
				t,
				testRecord("2026-01-02 09:30:00", "714.6"),
				testRecord("2026-01-02 16:58:08", "701.5"),
			)
		)

		res, err := NewImpactCheck(s, recordingNotifier(&sent), DefaultImpactConfig()).Run(context.Background())
		require.NoError(t, err)

		assert.True(t, res.Triggered)
		assert.Equal(t, "28.01", res.Value.StringFixed(2))

		require.Len(t, sent, 1)
		assert.Equal(t, ImpactTitle, sent[0].Title)
		assert.Equal(t, []string{LabelFXAlert}, sent[0].Labels)
		assert.Contains(t, sent[0].Body, "**USD Exposure:** 1,500,000,000")
		assert.Contains(t, sent[0].Body, "(+28.01M)")
		assert.Contains(t, sent[0].Body, "**Latest Middle:** 701.5")
	})

	t.Run("below threshold", func(t *testing.T) {
		t.Parallel()

		var (
			sent []*Notification
			s    = seededStorage(t, testRecord("2026-01-02 16:58:08", "710"))
		)

		res, err := NewImpactCheck(s, recordingNotifier(&sent), DefaultImpactConfig()).Run(context.Background())
		require.NoError(t, err)

		// 10719000000 / 7.1 - 1500000000 = 9.72M
		assert.False(t, res.Triggered)
		assert.Equal(t, "9.72", res.Value.StringFixed(2))
		assert.Empty(t, sent)
	})

	t.Run("custom threshold", func(t *testing.T) {
		t.Parallel()

		var (
			sent []*Notification
			s    = seededStorage(t, testRecord("2026-01-02 16:58:08", "710"))
			cfg  = DefaultImpactConfig()
		)

		cfg.ThresholdM = decimal.NewFromInt(5)

		res, err := NewImpactCheck(s, recordingNotifier(&sent), cfg).Run(context.Background())
		require.NoError(t, err)

		assert.True(t, res.Triggered)
		assert.Len(t, sent, 1)
	})

	t.Run("skipped", func(t *testing.T) {
		t.Parallel()

		testTable := []struct {
			name     string
			records  []types.QuoteRecord
			expected string
		}{
			{
				"no data",
				nil,
				SkipNoData,
			},
			{
				"non-numeric middle",
				[]types.QuoteRecord{testRecord("2026-01-02 16:58:08", "N/A")},
				SkipNonNumeric,
			},
			{
				"zero middle",
				[]types.QuoteRecord{testRecord("2026-01-02 16:58:08", "0.00")},
				SkipZeroRate,
			},
		}

		for _, testCase := range testTable {
			t.Run(testCase.name, func(t *testing.T) {
				t.Parallel()

				var sent []*Notification

				res, err := NewImpactCheck(
					seededStorage(t, testCase.records...),
					recordingNotifier(&sent),
					DefaultImpactConfig(),
				).Run(context.Background())
				require.NoError(t, err)

				assert.Equal(t, testCase.expected, res.Skipped)
				assert.Empty(t, sent)
			})
		}
	})

	t.Run("disabled without notifier", func(t *testing.T) {
		t.Parallel()

		res, err := NewImpactCheck(seededStorage(t), nil, DefaultImpactConfig()).Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, SkipDisabled, res.Skipped)
	})
}
