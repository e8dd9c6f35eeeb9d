package file

import (
	"fmt"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/sig-0/fxwatch/storage/types"
	"github.com/sig-0/fxwatch/summary"
)

const (
	SheetValues  = "All Published Values"
	SheetSummary = "Daily Summary"

	firstPublishedTitle = "Day First Published Values"

	maxColumnWidth = 40
)

// ValuesHeader is the column order of the raw values sheet
var ValuesHeader = []string{
	"date",
	"publishTime",
	"buying",
	"cashBuying",
	"selling",
	"cashSelling",
	"middle",
	"publishTimeRaw",
	"capturedAtUtc",
	"source",
}

// XLSXEncoder renders the series as a workbook with a raw values sheet
// and a daily summary sheet, rebuilt from the full series
type XLSXEncoder struct{}

func (XLSXEncoder) Extension() string { return "xlsx" }

func (XLSXEncoder) Encode(records []types.QuoteRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetValues); err != nil {
		return nil, fmt.Errorf("unable to rename sheet: %w", err)
	}

	values := make([][]string, 0, len(records)+1)
	values = append(values, ValuesHeader)

	for _, r := range records {
		values = append(values, []string{
			r.Date,
			r.PublishTime,
			r.Buying,
			r.CashBuying,
			r.Selling,
			r.CashSelling,
			r.Middle,
			r.PublishTimeRaw,
			r.CapturedAtUTC,
			r.Source,
		})
	}

	if err := writeSheet(f, SheetValues, values); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(SheetSummary); err != nil {
		return nil, fmt.Errorf("unable to create summary sheet: %w", err)
	}

	if err := writeSheet(f, SheetSummary, summaryRows(records)); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("unable to encode workbook: %w", err)
	}

	return buf.Bytes(), nil
}

// summaryRows lays out the daily statistics, a blank row,
// then the titled first-published table
func summaryRows(records []types.QuoteRecord) [][]string {
	var (
		daily = summary.Daily(records)
		first = summary.FirstPublished(records)
	)

	rows := make([][]string, 0, len(daily)+len(first)+4)
	rows = append(rows, summary.DailyHeader)

	for _, d := range daily {
		rows = append(rows, d.Row())
	}

	rows = append(rows, nil, []string{firstPublishedTitle}, summary.FirstPublishedHeader)

	for _, d := range first {
		rows = append(rows, d.Row())
	}

	return rows
}

// writeSheet writes the rows starting at A1 and sizes the columns to their content
func writeSheet(f *excelize.File, sheet string, rows [][]string) error {
	widths := make(map[int]int)

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}

		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}

		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v

			if n := utf8.RuneCountInString(v); n > widths[j] {
				widths[j] = n
			}
		}

		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("unable to write %s row %d: %w", sheet, i+1, err)
		}
	}

	for col, width := range widths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}

		if err := f.SetColWidth(sheet, name, name, float64(min(width+2, maxColumnWidth))); err != nil {
			return fmt.Errorf("unable to size %s column %s: %w", sheet, name, err)
		}
	}

	return nil
}
