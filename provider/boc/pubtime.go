package boc

import (
	"strings"
	"time"

	"github.com/sig-0/fxwatch/storage/types"
)

// publishTimeLayouts are tried in order, first match wins
var publishTimeLayouts = []string{
	"2006/01/02 15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04",
	"2006-01-02 15:04",
	"2006/1/2 15:04:05",
	"2006-1-2 15:04:05",
}

// NormalizePublishTime parses the raw publish time cell into
// the canonical date and timestamp
func NormalizePublishTime(raw string) (string, string, error) {
	s := normalizeSpaces(raw)
	if s == "" {
		return "", "", &FormatError{Input: raw}
	}

	for _, layout := range publishTimeLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}

		return t.Format(types.DateLayout), t.Format(types.TimestampLayout), nil
	}

	return "", "", &FormatError{Input: raw}
}

// normalizeSpaces swaps non-breaking spaces and collapses whitespace runs
func normalizeSpaces(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")

	return strings.Join(strings.Fields(s), " ")
}
