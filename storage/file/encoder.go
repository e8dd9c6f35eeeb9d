package file

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/sig-0/fxwatch/storage/types"
)

// Encoder renders a full period series into one output format
type Encoder interface {
	// Extension returns the file extension, without the dot
	Extension() string

	// Encode renders the series
	Encode(records []types.QuoteRecord) ([]byte, error)
}

// DefaultEncoders returns the series encodings, in write order
func DefaultEncoders() []Encoder {
	return []Encoder{
		JSONEncoder{},
		CSVEncoder{},
		XLSXEncoder{},
	}
}

// JSONEncoder renders the series as an indented JSON array
type JSONEncoder struct{}

func (JSONEncoder) Extension() string { return "json" }

func (JSONEncoder) Encode(records []types.QuoteRecord) ([]byte, error) {
	if records == nil {
		records = []types.QuoteRecord{}
	}

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("unable to encode JSON series: %w", err)
	}

	return buf.Bytes(), nil
}

// decodeJSON parses a JSON series file
func decodeJSON(data []byte) ([]types.QuoteRecord, error) {
	var records []types.QuoteRecord

	if len(bytes.TrimSpace(data)) == 0 {
		return records, nil
	}

	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unable to decode JSON series: %w", err)
	}

	return records, nil
}
