package storage

import (
	"context"

	"github.com/sig-0/fxwatch/storage/types"
)

// Storage is an abstraction over the persisted period series
type Storage interface {
	// LoadSeries loads the stored series for the month.
	// An empty series is returned if nothing is stored yet
	LoadSeries(context.Context, types.Month) ([]types.QuoteRecord, error)

	// SaveSeries rewrites every series encoding for the month in full
	SaveSeries(context.Context, types.Month, []types.QuoteRecord) error

	// SeriesComplete reports whether every series encoding for the month exists
	SeriesComplete(context.Context, types.Month) (bool, error)

	// AppendCapture appends the entry to the month's capture log
	AppendCapture(context.Context, types.Month, *types.CaptureEntry) error

	// ListMonths lists the months with a stored series, ascending
	ListMonths(context.Context) ([]types.Month, error)
}
