package mock

import (
	"context"

	"github.com/sig-0/fxwatch/storage/types"
)

type (
	LoadSeriesDelegate     func(context.Context, types.Month) ([]types.QuoteRecord, error)
	SaveSeriesDelegate     func(context.Context, types.Month, []types.QuoteRecord) error
	SeriesCompleteDelegate func(context.Context, types.Month) (bool, error)
	AppendCaptureDelegate  func(context.Context, types.Month, *types.CaptureEntry) error
	ListMonthsDelegate     func(context.Context) ([]types.Month, error)
)

type Storage struct {
	LoadSeriesFn     LoadSeriesDelegate
	SaveSeriesFn     SaveSeriesDelegate
	SeriesCompleteFn SeriesCompleteDelegate
	AppendCaptureFn  AppendCaptureDelegate
	ListMonthsFn     ListMonthsDelegate
}

func (m *Storage) LoadSeries(ctx context.Context, month types.Month) ([]types.QuoteRecord, error) {
	if m.LoadSeriesFn != nil {
		return m.LoadSeriesFn(ctx, month)
	}

	return nil, nil
}

func (m *Storage) SaveSeries(ctx context.Context, month types.Month, records []types.QuoteRecord) error {
	if m.SaveSeriesFn != nil {
		return m.SaveSeriesFn(ctx, month, records)
	}

	return nil
}

func (m *Storage) SeriesComplete(ctx context.Context, month types.Month) (bool, error) {
	if m.SeriesCompleteFn != nil {
		return m.SeriesCompleteFn(ctx, month)
	}

	return false, nil
}

func (m *Storage) AppendCapture(ctx context.Context, month types.Month, entry *types.CaptureEntry) error {
	if m.AppendCaptureFn != nil {
		return m.AppendCaptureFn(ctx, month, entry)
	}

	return nil
}

func (m *Storage) ListMonths(ctx context.Context) ([]types.Month, error) {
	if m.ListMonthsFn != nil {
		return m.ListMonthsFn(ctx)
	}

	return nil, nil
}
