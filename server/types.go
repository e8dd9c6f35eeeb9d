package server

import (
	"github.com/sig-0/fxwatch/storage/types"
	"github.com/sig-0/fxwatch/summary"
)

type MonthsResponse struct {
	Results []types.Month `json:"results"`
}

type SeriesResponse struct {
	Month   types.Month         `json:"month"`
	Results []types.QuoteRecord `json:"results"`
}

type LatestResponse struct {
	Month  types.Month       `json:"month"`
	Record types.QuoteRecord `json:"record"`
}

// DailyRow is a single day of the daily statistics table
type DailyRow struct {
	Date           string `json:"date"`
	Publishes      int    `json:"publishes"`
	AvgBuying      string `json:"avgBuying"`
	AvgCashBuying  string `json:"avgCashBuying"`
	AvgSelling     string `json:"avgSelling"`
	AvgCashSelling string `json:"avgCashSelling"`
	AvgMiddle      string `json:"avgMiddle"`
	MinMiddle      string `json:"minMiddle"`
	MaxMiddle      string `json:"maxMiddle"`
}

func newDailyRow(d summary.DailyStats) DailyRow {
	return DailyRow{
		Date:           d.Date,
		Publishes:      d.Publishes,
		AvgBuying:      d.Buying.AvgString(),
		AvgCashBuying:  d.CashBuying.AvgString(),
		AvgSelling:     d.Selling.AvgString(),
		AvgCashSelling: d.CashSelling.AvgString(),
		AvgMiddle:      d.Middle.AvgString(),
		MinMiddle:      d.Middle.MinString(),
		MaxMiddle:      d.Middle.MaxString(),
	}
}

type DailyResponse struct {
	Month          types.Month         `json:"month"`
	Daily          []DailyRow          `json:"daily"`
	FirstPublished []types.QuoteRecord `json:"firstPublished"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
