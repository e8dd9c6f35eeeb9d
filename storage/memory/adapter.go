package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/sig-0/fxwatch/storage/types"
)

// Storage keeps the period series in memory.
// It records every write, so callers can observe the persistence decisions
type Storage struct {
	series   map[types.Month][]types.QuoteRecord
	captures map[types.Month][]types.CaptureEntry
	writes   map[types.Month]int

	mu sync.RWMutex
}

func NewStorage() *Storage {
	return &Storage{
		series:   make(map[types.Month][]types.QuoteRecord),
		captures: make(map[types.Month][]types.CaptureEntry),
		writes:   make(map[types.Month]int),
	}
}

func (s *Storage) LoadSeries(_ context.Context, month types.Month) ([]types.QuoteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.series[month]

	out := make([]types.QuoteRecord, len(stored))
	copy(out, stored)

	return out, nil
}

func (s *Storage) SaveSeries(_ context.Context, month types.Month, records []types.QuoteRecord) error {
	elems := make([]types.QuoteRecord, len(records))
	copy(elems, records)

	s.mu.Lock()
	s.series[month] = elems
	s.writes[month]++
	s.mu.Unlock()

	return nil
}

func (s *Storage) SeriesComplete(_ context.Context, month types.Month) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.series[month]

	return ok, nil
}

func (s *Storage) AppendCapture(_ context.Context, month types.Month, entry *types.CaptureEntry) error {
	s.mu.Lock()
	s.captures[month] = append(s.captures[month], *entry)
	s.mu.Unlock()

	return nil
}

func (s *Storage) ListMonths(_ context.Context) ([]types.Month, error) {
	s.mu.RLock()

	out := make([]types.Month, 0, len(s.series))

	for m := range s.series {
		out = append(out, m)
	}

	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i] < out[j]
	})

	return out, nil
}

// Captures returns the capture log of the month
func (s *Storage) Captures(month types.Month) []types.CaptureEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.CaptureEntry, len(s.captures[month]))
	copy(out, s.captures[month])

	return out
}

// Writes returns how many times the month's series was written
func (s *Storage) Writes(month types.Month) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.writes[month]
}
