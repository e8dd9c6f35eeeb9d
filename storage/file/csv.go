package file

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/sig-0/fxwatch/storage/types"
)

var errInvalidHeader = errors.New("invalid CSV header")

// SeriesHeader is the fixed column order of the flat table
var SeriesHeader = []string{
	"date",
	"publishTime",
	"publishTimeRaw",
	"currency",
	"buying",
	"cashBuying",
	"selling",
	"cashSelling",
	"middle",
	"source",
	"capturedAtUtc",
}

// CaptureHeader is the fixed column order of the capture log
var CaptureHeader = []string{
	"capturedAtUtc",
	"publishTime",
	"publishTimeRaw",
	"buying",
	"cashBuying",
	"selling",
	"cashSelling",
	"middle",
	"htmlSha256",
	"source",
}

// CSVEncoder renders the series as a flat table
type CSVEncoder struct{}

func (CSVEncoder) Extension() string { return "csv" }

func (CSVEncoder) Encode(records []types.QuoteRecord) ([]byte, error) {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)

	if err := w.Write(SeriesHeader); err != nil {
		return nil, err
	}

	for _, r := range records {
		if err := w.Write([]string{
			r.Date,
			r.PublishTime,
			r.PublishTimeRaw,
			r.Currency.String(),
			r.Buying,
			r.CashBuying,
			r.Selling,
			r.CashSelling,
			r.Middle,
			r.Source,
			r.CapturedAtUTC,
		}); err != nil {
			return nil, err
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("unable to encode CSV series: %w", err)
	}

	return buf.Bytes(), nil
}

// ReadCSV parses a flat table written by CSVEncoder
func ReadCSV(r io.Reader) ([]types.QuoteRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(SeriesHeader)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}

		return nil, fmt.Errorf("unable to read CSV header: %w", err)
	}

	for i, col := range SeriesHeader {
		if header[i] != col {
			return nil, fmt.Errorf("%w: column %d is %q, expected %q", errInvalidHeader, i, header[i], col)
		}
	}

	var records []types.QuoteRecord

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("unable to read CSV row: %w", err)
		}

		records = append(records, types.QuoteRecord{
			Date:           row[0],
			PublishTime:    row[1],
			PublishTimeRaw: row[2],
			Currency:       types.Currency(row[3]),
			Buying:         row[4],
			CashBuying:     row[5],
			Selling:        row[6],
			CashSelling:    row[7],
			Middle:         row[8],
			Source:         row[9],
			CapturedAtUTC:  row[10],
		})
	}

	return records, nil
}

func captureRow(e *types.CaptureEntry) []string {
	return []string{
		e.CapturedAtUTC,
		e.PublishTime,
		e.PublishTimeRaw,
		e.Buying,
		e.CashBuying,
		e.Selling,
		e.CashSelling,
		e.Middle,
		e.HTMLSha256,
		e.Source,
	}
}
