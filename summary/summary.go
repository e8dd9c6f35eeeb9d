// Package summary derives the per-day views of a period series.
// Every function is a pure function of the series
package summary

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sig-0/fxwatch/series"
	"github.com/sig-0/fxwatch/storage/types"
)

// Precision is the number of decimals of rendered aggregates
const Precision = 4

// NonNumericFieldError is returned for a rate value that does not parse as a number.
// It is never fatal: the value is excluded from the aggregate
type NonNumericFieldError struct {
	Value string
}

func (e *NonNumericFieldError) Error() string {
	return fmt.Sprintf("non-numeric field value %q", e.Value)
}

// ParseNumeric parses a rate string
func ParseNumeric(s string) (decimal.Decimal, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return decimal.Zero, &NonNumericFieldError{Value: s}
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, &NonNumericFieldError{Value: s}
	}

	return d, nil
}

// FieldStats is the aggregate of a single numeric field
type FieldStats struct {
	Avg   decimal.Decimal
	Min   decimal.Decimal
	Max   decimal.Decimal
	Count int
}

// Empty reports whether no numeric value contributed to the aggregate
func (s FieldStats) Empty() bool {
	return s.Count == 0
}

func (s FieldStats) AvgString() string {
	return format(s, s.Avg)
}

func (s FieldStats) MinString() string {
	return format(s, s.Min)
}

func (s FieldStats) MaxString() string {
	return format(s, s.Max)
}

func format(s FieldStats, d decimal.Decimal) string {
	if s.Empty() {
		return ""
	}

	return d.StringFixed(Precision)
}

// Aggregate computes count, average, min and max over the numeric values.
// Non-numeric values are skipped
func Aggregate(values []string) FieldStats {
	var (
		stats FieldStats
		sum   decimal.Decimal
	)

	for _, raw := range values {
		v, err := ParseNumeric(raw)
		if err != nil {
			continue
		}

		if stats.Count == 0 || v.LessThan(stats.Min) {
			stats.Min = v
		}

		if stats.Count == 0 || v.GreaterThan(stats.Max) {
			stats.Max = v
		}

		sum = sum.Add(v)
		stats.Count++
	}

	if stats.Count > 0 {
		stats.Avg = sum.Div(decimal.NewFromInt(int64(stats.Count)))
	}

	return stats
}

// DailyStats is the aggregate of a single day
type DailyStats struct {
	Date        string
	Buying      FieldStats
	CashBuying  FieldStats
	Selling     FieldStats
	CashSelling FieldStats
	Middle      FieldStats
	Publishes   int
}

// Row renders the stats in DailyHeader order
func (d DailyStats) Row() []string {
	return []string{
		d.Date,
		strconv.Itoa(d.Publishes),
		d.Buying.AvgString(),
		d.CashBuying.AvgString(),
		d.Selling.AvgString(),
		d.CashSelling.AvgString(),
		d.Middle.AvgString(),
		d.Middle.MinString(),
		d.Middle.MaxString(),
	}
}

var DailyHeader = []string{
	"date",
	"publishes",
	"avgBuying",
	"avgCashBuying",
	"avgSelling",
	"avgCashSelling",
	"avgMiddle",
	"minMiddle",
	"maxMiddle",
}

// FirstOfDay is the earliest published record of a day
type FirstOfDay struct {
	Date   string
	Record types.QuoteRecord
}

// Row renders the snapshot in FirstPublishedHeader order
func (f FirstOfDay) Row() []string {
	return []string{
		f.Date,
		f.Record.PublishTime,
		f.Record.Buying,
		f.Record.CashBuying,
		f.Record.Selling,
		f.Record.CashSelling,
		f.Record.Middle,
		f.Record.PublishTimeRaw,
	}
}

var FirstPublishedHeader = []string{
	"date",
	"firstPublishTime",
	"buying",
	"cashBuying",
	"selling",
	"cashSelling",
	"middle",
	"publishTimeRaw",
}

// byDate groups the records by date, each group ordered by publish time
func byDate(records []types.QuoteRecord) ([]string, map[string][]types.QuoteRecord) {
	groups := make(map[string][]types.QuoteRecord)

	for _, r := range records {
		groups[r.Date] = append(groups[r.Date], r)
	}

	dates := make([]string, 0, len(groups))

	for d, rs := range groups {
		dates = append(dates, d)
		groups[d] = series.Sort(rs)
	}

	sort.Strings(dates)

	return dates, groups
}

// Daily computes the per-day statistics, ordered by date
func Daily(records []types.QuoteRecord) []DailyStats {
	dates, groups := byDate(records)

	out := make([]DailyStats, 0, len(dates))

	for _, d := range dates {
		rs := groups[d]

		field := func(get func(types.QuoteRecord) string) FieldStats {
			values := make([]string, 0, len(rs))
			for _, r := range rs {
				values = append(values, get(r))
			}

			return Aggregate(values)
		}

		out = append(out, DailyStats{
			Date:        d,
			Publishes:   len(rs),
			Buying:      field(func(r types.QuoteRecord) string { return r.Buying }),
			CashBuying:  field(func(r types.QuoteRecord) string { return r.CashBuying }),
			Selling:     field(func(r types.QuoteRecord) string { return r.Selling }),
			CashSelling: field(func(r types.QuoteRecord) string { return r.CashSelling }),
			Middle:      field(func(r types.QuoteRecord) string { return r.Middle }),
		})
	}

	return out
}

// FirstPublished returns the earliest published record of every day, ordered by date
func FirstPublished(records []types.QuoteRecord) []FirstOfDay {
	dates, groups := byDate(records)

	out := make([]FirstOfDay, 0, len(dates))

	for _, d := range dates {
		out = append(out, FirstOfDay{
			Date:   d,
			Record: groups[d][0],
		})
	}

	return out
}
