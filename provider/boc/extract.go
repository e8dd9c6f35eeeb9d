package boc

import (
	"strings"

	"github.com/sig-0/fxwatch/storage/types"
)

// Positional columns of a quotation row
const (
	colCurrency = iota
	colBuying
	colCashBuying
	colSelling
	colCashSelling
	colMiddle
	colPublishTime
)

// Row is the extracted quotation row, verbatim cell texts
type Row struct {
	Currency       string
	Buying         string
	CashBuying     string
	Selling        string
	CashSelling    string
	Middle         string
	PublishTimeRaw string
}

// Matcher decides whether a row (by its first cell) is the target currency row
type Matcher interface {
	// Name returns the matcher name, for logging
	Name() string

	// Match reports whether the first cell identifies the target row
	Match(firstCell string) bool
}

type exactMatcher struct {
	code string
}

// ExactMatcher matches rows whose first cell equals the code, ignoring case
func ExactMatcher(code types.Currency) Matcher {
	return &exactMatcher{
		code: strings.ToUpper(code.String()),
	}
}

func (m *exactMatcher) Name() string {
	return "exact"
}

func (m *exactMatcher) Match(firstCell string) bool {
	return strings.ToUpper(normalizeSpaces(firstCell)) == m.code
}

type containsMatcher struct {
	code    string
	needles []string
}

// ContainsMatcher matches rows whose first cell contains the code or one of the aliases.
// A match is only accepted if the upper-cased cell still contains the code,
// so an alias alone never selects a row
func ContainsMatcher(code types.Currency, aliases ...string) Matcher {
	upper := strings.ToUpper(code.String())

	needles := make([]string, 0, len(aliases)+1)
	needles = append(needles, upper)

	for _, alias := range aliases {
		if a := strings.ToUpper(strings.TrimSpace(alias)); a != "" {
			needles = append(needles, a)
		}
	}

	return &containsMatcher{
		code:    upper,
		needles: needles,
	}
}

func (m *containsMatcher) Name() string {
	return "contains"
}

func (m *containsMatcher) Match(firstCell string) bool {
	cell := strings.ToUpper(normalizeSpaces(firstCell))

	var hit bool

	for _, needle := range m.needles {
		if strings.Contains(cell, needle) {
			hit = true

			break
		}
	}

	return hit && strings.Contains(cell, m.code)
}

// Extractor locates the target currency row using an ordered list of matchers
type Extractor struct {
	currency types.Currency
	matchers []Matcher
}

// NewExtractor creates an extractor for the given currency.
// If no matchers are given, the exact and contains matchers are used (in that order)
func NewExtractor(currency types.Currency, aliases []string, matchers ...Matcher) *Extractor {
	if len(matchers) == 0 {
		matchers = []Matcher{
			ExactMatcher(currency),
			ContainsMatcher(currency, aliases...),
		}
	}

	return &Extractor{
		currency: currency,
		matchers: matchers,
	}
}

// Extract finds the target row in the given tables.
// Every matcher scans all tables before the next matcher is tried
func (e *Extractor) Extract(tables []Table) (*Row, string, error) {
	for _, m := range e.matchers {
		for _, t := range tables {
			for _, cells := range t {
				if len(cells) == 0 || !m.Match(cells[colCurrency]) {
					continue
				}

				return rowFromCells(cells), m.Name(), nil
			}
		}
	}

	return nil, "", &RowNotFoundError{Currency: e.currency}
}

// rowFromCells maps the positional cells to named fields.
// Missing rate columns stay empty, a missing publish time falls back to the last cell
func rowFromCells(cells []string) *Row {
	at := func(i int) string {
		if i < len(cells) {
			return cells[i]
		}

		return ""
	}

	pubTime := at(colPublishTime)
	if len(cells) <= colPublishTime {
		pubTime = cells[len(cells)-1]
	}

	return &Row{
		Currency:       at(colCurrency),
		Buying:         at(colBuying),
		CashBuying:     at(colCashBuying),
		Selling:        at(colSelling),
		CashSelling:    at(colCashSelling),
		Middle:         at(colMiddle),
		PublishTimeRaw: pubTime,
	}
}
