package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sig-0/fxwatch/series"
	"github.com/sig-0/fxwatch/storage/types"
	"github.com/sig-0/fxwatch/summary"
)

var (
	errUnableToFetchMonths = errors.New("unable to fetch months")
	errUnableToFetchSeries = errors.New("unable to fetch series")

	errSeriesNotFound = errors.New("series not found")
	errNoRecords      = errors.New("no records stored")
)

func (s *Server) Months(w http.ResponseWriter, r *http.Request) {
	months, err := s.storage.ListMonths(r.Context())
	if err != nil {
		s.logger.Debug(
			"unable to fetch months",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchMonths,
		)

		return
	}

	if months == nil {
		months = []types.Month{}
	}

	writeJSON(w, http.StatusOK, &MonthsResponse{
		Results: months,
	})
}

func (s *Server) Series(w http.ResponseWriter, r *http.Request) {
	month, records, ok := s.loadSeries(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, &SeriesResponse{
		Month:   month,
		Results: records,
	})
}

func (s *Server) Daily(w http.ResponseWriter, r *http.Request) {
	month, records, ok := s.loadSeries(w, r)
	if !ok {
		return
	}

	var (
		daily = summary.Daily(records)
		first = summary.FirstPublished(records)

		resp = &DailyResponse{
			Month:          month,
			Daily:          make([]DailyRow, 0, len(daily)),
			FirstPublished: make([]types.QuoteRecord, 0, len(first)),
		}
	)

	for _, d := range daily {
		resp.Daily = append(resp.Daily, newDailyRow(d))
	}

	for _, f := range first {
		resp.FirstPublished = append(resp.FirstPublished, f.Record)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) Latest(w http.ResponseWriter, r *http.Request) {
	months, err := s.storage.ListMonths(r.Context())
	if err != nil {
		s.logger.Debug(
			"unable to fetch months",
			"err", err,
		)

		writeError(w, http.StatusInternalServerError, errUnableToFetchMonths)

		return
	}

	// Walk back from the most recent month, skipping empty series
	for i := len(months) - 1; i >= 0; i-- {
		records, err := s.storage.LoadSeries(r.Context(), months[i])
		if err != nil {
			s.logger.Debug(
				"unable to fetch series",
				"month", months[i],
				"err", err,
			)

			writeError(w, http.StatusInternalServerError, errUnableToFetchSeries)

			return
		}

		latest, ok := series.Latest(series.Sort(records))
		if !ok {
			continue
		}

		writeJSON(w, http.StatusOK, &LatestResponse{
			Month:  months[i],
			Record: latest,
		})

		return
	}

	writeError(w, http.StatusNotFound, errNoRecords)
}

// loadSeries resolves the month route param and loads its series.
// On failure, the error response is already written
func (s *Server) loadSeries(w http.ResponseWriter, r *http.Request) (types.Month, []types.QuoteRecord, bool) {
	month, err := types.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return "", nil, false
	}

	complete, err := s.storage.SeriesComplete(r.Context(), month)
	if err != nil {
		s.logger.Debug(
			"unable to check series",
			"month", month,
			"err", err,
		)

		writeError(w, http.StatusInternalServerError, errUnableToFetchSeries)

		return "", nil, false
	}

	if !complete {
		writeError(w, http.StatusNotFound, errSeriesNotFound)

		return "", nil, false
	}

	records, err := s.storage.LoadSeries(r.Context(), month)
	if err != nil {
		s.logger.Debug(
			"unable to fetch series",
			"month", month,
			"err", err,
		)

		writeError(w, http.StatusInternalServerError, errUnableToFetchSeries)

		return "", nil, false
	}

	return month, series.Sort(records), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // Fine to ignore
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := &ErrorResponse{
		Error: err.Error(),
	}

	writeJSON(w, status, resp)
}
