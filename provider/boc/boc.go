package boc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"github.com/sig-0/fxwatch/provider/currencies"
	"github.com/sig-0/fxwatch/storage/types"
)

// DefaultURL is the English Bank of China quotation page
const DefaultURL = "https://www.bankofchina.com/sourcedb/whpj/enindex_1619.html"

// Provider is the Bank of China quotation page scraping provider
type Provider struct {
	logger    *slog.Logger
	fetcher   *Fetcher
	extractor *Extractor
	currency  types.Currency
}

type Option func(p *Provider)

// WithLogger specifies the logger for the provider
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = l
	}
}

// WithExtractor overrides the default row extractor
func WithExtractor(e *Extractor) Option {
	return func(p *Provider) {
		p.extractor = e
	}
}

// NewProvider creates a new instance of the BOC quotation provider for USD
func NewProvider(fetcher *Fetcher, opts ...Option) *Provider {
	p := &Provider{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		fetcher:  fetcher,
		currency: currencies.USD,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.extractor == nil {
		p.extractor = NewExtractor(p.currency, currencies.Aliases[p.currency])
	}

	return p
}

func (p *Provider) Name() string {
	return "BOC " + p.currency.String()
}

// Fetch retrieves the page and builds the quote record for the target currency.
// No record is produced unless every step succeeds
func (p *Provider) Fetch(ctx context.Context) (*types.Observation, error) {
	page, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	record, err := p.Parse(page)
	if err != nil {
		return nil, err
	}

	return &types.Observation{
		Record:      *record,
		ContentHash: page.SHA256,
		FetchedAt:   page.FetchedAt,
	}, nil
}

// Parse builds the quote record from an already retrieved page
func (p *Provider) Parse(page *Page) (*types.QuoteRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return nil, fmt.Errorf("unable to construct query doc: %w", err)
	}

	row, matcher, err := p.extractor.Extract(TablesFromDocument(doc))
	if err != nil {
		return nil, err
	}

	p.logger.Debug(
		"located quotation row",
		"currency", p.currency,
		"matcher", matcher,
		"first_cell", row.Currency,
	)

	date, publishTime, err := NormalizePublishTime(row.PublishTimeRaw)
	if err != nil {
		return nil, err
	}

	return &types.QuoteRecord{
		Date:           date,
		PublishTime:    publishTime,
		PublishTimeRaw: row.PublishTimeRaw,
		Currency:       p.currency,
		Buying:         row.Buying,
		CashBuying:     row.CashBuying,
		Selling:        row.Selling,
		CashSelling:    row.CashSelling,
		Middle:         row.Middle,
		Source:         p.fetcher.URL(),
		CapturedAtUTC:  page.FetchedAt.UTC().Format(types.TimestampLayout),
		HTMLSha256:     page.SHA256,
	}, nil
}
