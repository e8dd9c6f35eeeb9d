package alert

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/fxwatch/metrics"
	"github.com/sig-0/fxwatch/provider/currencies"
	"github.com/sig-0/fxwatch/storage/memory"
	"github.com/sig-0/fxwatch/storage/mock"
	"github.com/sig-0/fxwatch/storage/types"
)

func testRecord(publishTime, middle string) types.QuoteRecord {
	return types.QuoteRecord{
		Date:        publishTime[:10],
		PublishTime: publishTime,
		Currency:    currencies.USD,
		Middle:      middle,
	}
}

// seededStorage stores the records under their months
func seededStorage(t *testing.T, records ...types.QuoteRecord) *memory.Storage {
	t.Helper()

	s := memory.NewStorage()
	grouped := make(map[types.Month][]types.QuoteRecord)

	for _, r := range records {
		m, err := r.Month()
		require.NoError(t, err)

		grouped[m] = append(grouped[m], r)
	}

	for m, rs := range grouped {
		require.NoError(t, s.SaveSeries(context.Background(), m, rs))
	}

	return s
}

func TestPercentChange(t *testing.T) {
	t.Parallel()

	change, ok := PercentChange(decimal.RequireFromString("701.5"), decimal.RequireFromString("700"))
	require.True(t, ok)

	assert.Equal(t, "0.2143", change.StringFixed(4))

	_, ok = PercentChange(decimal.RequireFromString("701.5"), decimal.Zero)
	assert.False(t, ok)
}

func TestChangeCheck_Run(t *testing.T) {
	t.Parallel()

	t.Run("threshold crossed", func(t *testing.T) {
		t.Parallel()

		var (
			sent []*Notification
			s    = seededStorage(
				t,
				// stored out of order, the check sorts
				testRecord("2026-01-02 16:58:08", "701.5"),
				testRecord("2026-01-02 09:30:00", "700"),
			)
		)

		c := NewChangeCheck(s, recordingNotifier(&sent), decimal.NewFromFloat(0.15), WithMetrics(metrics.New()))

		res, err := c.Run(context.Background())
		require.NoError(t, err)

		assert.True(t, res.Triggered)
		assert.Empty(t, res.Skipped)
		assert.Equal(t, "0.2143", res.Value.StringFixed(4))
		require.NotNil(t, res.Delivery)

		require.Len(t, sent, 1)
		assert.Equal(t, ChangeTitle, sent[0].Title)
		assert.Equal(t, []string{LabelFXAlert, "boc"}, sent[0].Labels)
		assert.Contains(t, sent[0].Body, "**Change:** 0.2143%")
		assert.Contains(t, sent[0].Body, "**Last Publish:** 2026-01-02 16:58:08 | Middle: 701.5")
		assert.Contains(t, sent[0].Body, "**Prev Publish:** 2026-01-02 09:30:00 | Middle: 700")
	})

	t.Run("below threshold", func(t *testing.T) {
		t.Parallel()

		var (
			sent []*Notification
			s    = seededStorage(
				t,
				testRecord("2026-01-02 09:30:00", "700"),
				testRecord("2026-01-02 16:58:08", "701.5"),
			)
		)

		c := NewChangeCheck(s, recordingNotifier(&sent), decimal.NewFromFloat(0.25))

		res, err := c.Run(context.Background())
		require.NoError(t, err)

		assert.False(t, res.Triggered)
		assert.Empty(t, res.Skipped)
		assert.Equal(t, "0.2143", res.Value.StringFixed(4))
		assert.Empty(t, sent)
	})

	t.Run("negative change", func(t *testing.T) {
		t.Parallel()

		var (
			sent []*Notification
			s    = seededStorage(
				t,
				testRecord("2026-01-02 09:30:00", "701.5"),
				testRecord("2026-01-02 16:58:08", "700"),
			)
		)

		c := NewChangeCheck(s, recordingNotifier(&sent), decimal.NewFromFloat(0.15))

		res, err := c.Run(context.Background())
		require.NoError(t, err)

		assert.True(t, res.Triggered)
		assert.True(t, res.Value.IsNegative())
		assert.Len(t, sent, 1)
	})

	t.Run("only the latest month is read", func(t *testing.T) {
		t.Parallel()

		var (
			sent []*Notification
			s    = seededStorage(
				t,
				testRecord("2026-01-31 09:30:00", "690"),
				testRecord("2026-01-31 16:58:08", "700"),
				testRecord("2026-02-02 09:30:00", "701.5"),
			)
		)

		c := NewChangeCheck(s, recordingNotifier(&sent), decimal.NewFromFloat(0.15))

		res, err := c.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, SkipInsufficient, res.Skipped)
		assert.Empty(t, sent)
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
				"single record",
				[]types.QuoteRecord{testRecord("2026-01-02 09:30:00", "700")},
				SkipInsufficient,
			},
			{
				"previous is zero",
				[]types.QuoteRecord{
					testRecord("2026-01-02 09:30:00", "0"),
					testRecord("2026-01-02 16:58:08", "701.5"),
				},
				SkipZeroPrevious,
			},
			{
				"non-numeric middle",
				[]types.QuoteRecord{
					testRecord("2026-01-02 09:30:00", "700"),
					testRecord("2026-01-02 16:58:08", ""),
				},
				SkipNonNumeric,
			},
		}

		for _, testCase := range testTable {
			t.Run(testCase.name, func(t *testing.T) {
				t.Parallel()

				var sent []*Notification

				c := NewChangeCheck(
					seededStorage(t, testCase.records...),
					recordingNotifier(&sent),
					decimal.NewFromFloat(0.15),
				)

				res, err := c.Run(context.Background())
				require.NoError(t, err)

				assert.Equal(t, testCase.expected, res.Skipped)
				assert.False(t, res.Triggered)
				assert.Empty(t, sent)
			})
		}
	})

	t.Run("disabled without notifier", func(t *testing.T) {
		t.Parallel()

		var listed bool

		s := &mock.Storage{
			ListMonthsFn: func(_ context.Context) ([]types.Month, error) {
				listed = true

				return nil, nil
			},
		}

		res, err := NewChangeCheck(s, nil, decimal.NewFromFloat(0.15)).Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, SkipDisabled, res.Skipped)
		assert.False(t, listed)
	})

	t.Run("delivery failure", func(t *testing.T) {
		t.Parallel()

		var (
			deliveryErr = errors.New("bad credentials")
			s           = seededStorage(
				t,
				testRecord("2026-01-02 09:30:00", "700"),
				testRecord("2026-01-02 16:58:08", "701.5"),
			)
			n = &mockNotifier{
				notifyFn: func(_ context.Context, _ *Notification) (*Delivery, error) {
					return nil, deliveryErr
				},
			}
		)

		_, err := NewChangeCheck(s, n, decimal.NewFromFloat(0.15)).Run(context.Background())

		assert.ErrorIs(t, err, deliveryErr)
	})
}
