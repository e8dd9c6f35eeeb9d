package file

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sig-0/fxwatch/series"
	"github.com/sig-0/fxwatch/storage/types"
)

const (
	DefaultDataDir = "data"

	captureSuffix = ".captures.csv"

	dirPerm  = 0o755
	filePerm = 0o644
)

// Storage persists the period series as files:
//
//	<dir>/<YYYY>/<YYYY-MM>.json
//	<dir>/<YYYY>/<YYYY-MM>.csv
//	<dir>/<YYYY>/<YYYY-MM>.xlsx
//	<dir>/<YYYY>/<YYYY-MM>.captures.csv
//
// The JSON file is the source of truth when loading a series
type Storage struct {
	dir      string
	encoders []Encoder
}

// NewStorage creates a file storage rooted at the given directory
func NewStorage(dir string) *Storage {
	return &Storage{
		dir:      dir,
		encoders: DefaultEncoders(),
	}
}

// Dir returns the data directory
func (s *Storage) Dir() string {
	return s.dir
}

// Path returns the path of the month's file with the given extension
func (s *Storage) Path(month types.Month, ext string) string {
	return filepath.Join(s.dir, month.Year(), month.String()+"."+ext)
}

// CapturePath returns the path of the month's capture log
func (s *Storage) CapturePath(month types.Month) string {
	return filepath.Join(s.dir, month.Year(), month.String()+captureSuffix)
}

func (s *Storage) LoadSeries(_ context.Context, month types.Month) ([]types.QuoteRecord, error) {
	data, err := os.ReadFile(s.Path(month, JSONEncoder{}.Extension()))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []types.QuoteRecord{}, nil
		}

		return nil, fmt.Errorf("unable to read series %s: %w", month, err)
	}

	records, err := decodeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("series %s: %w", month, err)
	}

	return series.Sort(records), nil
}

// SaveSeries encodes every format first, and only then replaces the files.
// A failed encoding leaves the existing files untouched
func (s *Storage) SaveSeries(_ context.Context, month types.Month, records []types.QuoteRecord) error {
	encoded := make(map[string][]byte, len(s.encoders))

	for _, enc := range s.encoders {
		data, err := enc.Encode(records)
		if err != nil {
			return fmt.Errorf("unable to encode %s series %s: %w", enc.Extension(), month, err)
		}

		encoded[enc.Extension()] = data
	}

	if err := os.MkdirAll(filepath.Join(s.dir, month.Year()), dirPerm); err != nil {
		return fmt.Errorf("unable to create series directory: %w", err)
	}

	for _, enc := range s.encoders {
		path := s.Path(month, enc.Extension())

		if err := writeFileAtomic(path, encoded[enc.Extension()]); err != nil {
			return fmt.Errorf("unable to write %s: %w", path, err)
		}
	}

	return nil
}

func (s *Storage) SeriesComplete(_ context.Context, month types.Month) (bool, error) {
	for _, enc := range s.encoders {
		_, err := os.Stat(s.Path(month, enc.Extension()))
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}

		if err != nil {
			return false, fmt.Errorf("unable to stat series file: %w", err)
		}
	}

	return true, nil
}

func (s *Storage) AppendCapture(_ context.Context, month types.Month, entry *types.CaptureEntry) error {
	if err := os.MkdirAll(filepath.Join(s.dir, month.Year()), dirPerm); err != nil {
		return fmt.Errorf("unable to create series directory: %w", err)
	}

	path := s.CapturePath(month)

	_, err := os.Stat(path)
	isNew := errors.Is(err, os.ErrNotExist)

	var buf bytes.Buffer

	w := csv.NewWriter(&buf)

	if isNew {
		if err := w.Write(CaptureHeader); err != nil {
			return err
		}
	}

	if err := w.Write(captureRow(entry)); err != nil {
		return err
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return fmt.Errorf("unable to encode capture entry: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("unable to open capture log: %w", err)
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()

		return fmt.Errorf("unable to append capture log: %w", err)
	}

	return f.Close()
}

func (s *Storage) ListMonths(_ context.Context) ([]types.Month, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*", "*.json"))
	if err != nil {
		return nil, fmt.Errorf("unable to list series: %w", err)
	}

	out := make([]types.Month, 0, len(matches))

	for _, m := range matches {
		month, err := types.ParseMonth(strings.TrimSuffix(filepath.Base(m), ".json"))
		if err != nil {
			continue // unrelated file
		}

		out = append(out, month)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i] < out[j]
	})

	return out, nil
}

// writeFileAtomic replaces the file through a temporary sibling and a rename
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return err
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)

		return err
	}

	if err := os.Chmod(tmpName, filePerm); err != nil {
		_ = os.Remove(tmpName)

		return err
	}

	return os.Rename(tmpName, path)
}
