package series

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/fxwatch/provider/currencies"
	"github.com/sig-0/fxwatch/storage/types"
)

func record(publishTime, middle string) types.QuoteRecord {
	return types.QuoteRecord{
		Date:           publishTime[:10],
		PublishTime:    publishTime,
		PublishTimeRaw: publishTime,
		Currency:       currencies.USD,
		Middle:         middle,
	}
}

func TestMerge(t *testing.T) {
	t.Parallel()

	t.Run("empty series", func(t *testing.T) {
		t.Parallel()

		merged, wasNew := Merge(nil, record("2026-01-02 09:30:00", "700.1"))

		assert.True(t, wasNew)
		require.Len(t, merged, 1)
		assert.Equal(t, "700.1", merged[0].Middle)
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()

		rec := record("2026-01-02 09:30:00", "700.1")

		first, wasNew := Merge(nil, rec)
		require.True(t, wasNew)

		second, wasNew := Merge(first, rec)

		assert.False(t, wasNew)
		assert.Len(t, second, 1)
		assert.Equal(t, first, second)
	})

	t.Run("same publish time, new capture", func(t *testing.T) {
		t.Parallel()

		rec := record("2026-01-02 09:30:00", "700.1")
		existing := []types.QuoteRecord{rec}

		again := rec
		again.CapturedAtUTC = "2026-01-02 10:00:00"

		merged, wasNew := Merge(existing, again)

		assert.False(t, wasNew)
		assert.Empty(t, merged[0].CapturedAtUTC)
	})

	t.Run("out of order insert is sorted", func(t *testing.T) {
		t.Parallel()

		existing := []types.QuoteRecord{
			record("2026-01-02 09:30:00", "1"),
			record("2026-01-02 16:58:08", "3"),
		}

		merged, wasNew := Merge(existing, record("2026-01-02 10:00:00", "2"))
		require.True(t, wasNew)

		require.Len(t, merged, 3)
		assert.Equal(t, "1", merged[0].Middle)
		assert.Equal(t, "2", merged[1].Middle)
		assert.Equal(t, "3", merged[2].Middle)

		// The caller's slice is untouched
		assert.Len(t, existing, 2)
		assert.Equal(t, "3", existing[1].Middle)
	})
}

func TestMerge_OrderingInvariant(t *testing.T) {
	t.Parallel()

	var (
		series []types.QuoteRecord
		times  = []string{
			"2026-01-05 10:00:00",
			"2026-01-01 09:00:00",
			"2026-01-03 16:00:00",
			"2026-01-01 09:00:00",
			"2026-01-02 12:30:00",
			"2026-01-05 09:59:59",
			"2026-01-03 16:00:00",
		}
	)

	for i, ts := range times {
		series, _ = Merge(series, record(ts, fmt.Sprintf("%d", i)))

		require.True(t, IsSorted(series))
	}

	assert.Len(t, series, 5)
}

func TestSort(t *testing.T) {
	t.Parallel()

	sorted := Sort([]types.QuoteRecord{
		record("2026-01-03 00:00:00", "c"),
		record("2026-01-01 00:00:00", "a"),
		record("2026-01-02 00:00:00", "b"),
	})

	require.Len(t, sorted, 3)
	assert.True(t, IsSorted(sorted))
	assert.Equal(t, "a", sorted[0].Middle)
	assert.Equal(t, "c", sorted[2].Middle)

	assert.Empty(t, Sort(nil))
}

func TestLatest(t *testing.T) {
	t.Parallel()

	_, ok := Latest(nil)
	assert.False(t, ok)

	last, ok := Latest([]types.QuoteRecord{
		record("2026-01-01 00:00:00", "a"),
		record("2026-01-02 00:00:00", "b"),
	})

	require.True(t, ok)
	assert.Equal(t, "b", last.Middle)
}
