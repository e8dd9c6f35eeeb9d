//nolint:tagliatelle // field names match the published monthly files
package types

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DateLayout is the canonical calendar-day layout
	DateLayout = "2006-01-02"

	// TimestampLayout is the canonical publish / capture time layout.
	// It sorts lexically in chronological order
	TimestampLayout = "2006-01-02 15:04:05"

	monthLayout = "2006-01"
)

var ErrInvalidMonth = errors.New("invalid month (must be YYYY-MM)")

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyCNY Currency = "CNY"
)

func (c Currency) String() string {
	return string(c)
}

// Month is the period key of a series (YYYY-MM)
type Month string

// ParseMonth validates the given period key
func ParseMonth(s string) (Month, error) {
	if _, err := time.Parse(monthLayout, s); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}

	return Month(s), nil
}

// MonthOf returns the period key for the given canonical date (YYYY-MM-DD)
func MonthOf(date string) (Month, error) {
	if len(date) < len(monthLayout) {
		return "", fmt.Errorf("%w: date %q", ErrInvalidMonth, date)
	}

	return ParseMonth(date[:len(monthLayout)])
}

func (m Month) Valid() bool {
	_, err := ParseMonth(string(m))

	return err == nil
}

// Year returns the YYYY part of the period key
func (m Month) Year() string {
	if len(m) < 4 {
		return ""
	}

	return string(m[:4])
}

func (m Month) String() string {
	return string(m)
}

// QuoteRecord is a single observation of the target currency at a publish instant.
// Rate fields are kept verbatim from the source page
type QuoteRecord struct {
	Date           string   `json:"date"`
	PublishTime    string   `json:"publishTime"`
	PublishTimeRaw string   `json:"publishTimeRaw"`
	Currency       Currency `json:"currency"`
	Buying         string   `json:"buying"`
	CashBuying     string   `json:"cashBuying"`
	Selling        string   `json:"selling"`
	CashSelling    string   `json:"cashSelling"`
	Middle         string   `json:"middle"`
	Source         string   `json:"source"`
	CapturedAtUTC  string   `json:"capturedAtUtc"`
	HTMLSha256     string   `json:"htmlSha256,omitempty"`
}

// Key returns the natural key of the record (currency + publish time)
func (r QuoteRecord) Key() string {
	return r.Currency.String() + "|" + r.PublishTime
}

// Less orders records by publish time
func (r QuoteRecord) Less(b QuoteRecord) bool {
	return r.PublishTime < b.PublishTime
}

// Month returns the period key the record belongs to
func (r QuoteRecord) Month() (Month, error) {
	return MonthOf(r.Date)
}

// CaptureEntry is a single capture log line. Capture entries are never deduplicated
type CaptureEntry struct {
	CapturedAtUTC  string `json:"capturedAtUtc"`
	PublishTime    string `json:"publishTime"`
	PublishTimeRaw string `json:"publishTimeRaw"`
	Buying         string `json:"buying"`
	CashBuying     string `json:"cashBuying"`
	Selling        string `json:"selling"`
	CashSelling    string `json:"cashSelling"`
	Middle         string `json:"middle"`
	HTMLSha256     string `json:"htmlSha256"`
	Source         string `json:"source"`
}

// NewCaptureEntry builds the capture log entry for a validated record
func NewCaptureEntry(r QuoteRecord) *CaptureEntry {
	return &CaptureEntry{
		CapturedAtUTC:  r.CapturedAtUTC,
		PublishTime:    r.PublishTime,
		PublishTimeRaw: r.PublishTimeRaw,
		Buying:         r.Buying,
		CashBuying:     r.CashBuying,
		Selling:        r.Selling,
		CashSelling:    r.CashSelling,
		Middle:         r.Middle,
		HTMLSha256:     r.HTMLSha256,
		Source:         r.Source,
	}
}

// Observation is a provider fetch result
type Observation struct {
	Record      QuoteRecord
	ContentHash string
	FetchedAt   time.Time
}
