// Package series holds the merge rules of a period series:
// records are unique by (currency, publish time) and kept in publish time order
package series

import (
	"github.com/sig-0/iq"

	"github.com/sig-0/fxwatch/storage/types"
)

// Merge adds the record to the series, if its natural key is not already present.
// The input slice is never modified. The returned flag reports whether the record was new
func Merge(existing []types.QuoteRecord, rec types.QuoteRecord) ([]types.QuoteRecord, bool) {
	key := rec.Key()

	for _, r := range existing {
		if r.Key() == key {
			return existing, false
		}
	}

	merged := make([]types.QuoteRecord, 0, len(existing)+1)
	merged = append(merged, existing...)
	merged = append(merged, rec)

	return Sort(merged), true
}

// Sort returns the records ordered by publish time (ascending)
func Sort(records []types.QuoteRecord) []types.QuoteRecord {
	q := iq.NewQueue[types.QuoteRecord]()

	for _, r := range records {
		q.Push(r)
	}

	sorted := make([]types.QuoteRecord, 0, len(records))

	for q.Len() > 0 {
		sorted = append(sorted, *q.PopFront())
	}

	return sorted
}

// IsSorted reports whether every adjacent pair is in publish time order
func IsSorted(records []types.QuoteRecord) bool {
	for i := 1; i < len(records); i++ {
		if records[i].Less(records[i-1]) {
			return false
		}
	}

	return true
}

// Latest returns the last record of a sorted series
func Latest(records []types.QuoteRecord) (types.QuoteRecord, bool) {
	if len(records) == 0 {
		return types.QuoteRecord{}, false
	}

	return records[len(records)-1], true
}
