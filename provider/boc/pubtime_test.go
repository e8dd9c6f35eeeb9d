package boc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePublishTime(t *testing.T) {
	t.Parallel()

	testTable := []struct {
		name      string
		raw       string
		date      string
		timestamp string
	}{
		{
			"slash separated",
			"2026/01/02 16:58:08",
			"2026-01-02",
			"2026-01-02 16:58:08",
		},
		{
			"hyphen separated",
			"2026-01-02 16:58:08",
			"2026-01-02",
			"2026-01-02 16:58:08",
		},
		{
			"no seconds",
			"2026/01/02 16:58",
			"2026-01-02",
			"2026-01-02 16:58:00",
		},
		{
			"non-breaking space and padding",
			"  2026/01/02  16:58:08 \n",
			"2026-01-02",
			"2026-01-02 16:58:08",
		},
		{
			"single digit month and day",
			"2026/1/2 16:58:08",
			"2026-01-02",
			"2026-01-02 16:58:08",
		},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			date, ts, err := NormalizePublishTime(testCase.raw)
			require.NoError(t, err)

			assert.Equal(t, testCase.date, date)
			assert.Equal(t, testCase.timestamp, ts)
		})
	}
}

func TestNormalizePublishTime_Invalid(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "   ", "02.01.2026 16:58", "yesterday", "2026/13/02 10:00:00"} {
		t.Run(raw, func(t *testing.T) {
			t.Parallel()

			_, _, err := NormalizePublishTime(raw)

			var formatErr *FormatError

			require.ErrorAs(t, err, &formatErr)
			assert.Equal(t, raw, formatErr.Input)
		})
	}
}
