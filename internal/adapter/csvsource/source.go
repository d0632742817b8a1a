// Package csvsource reads the air-quality grid from a CSV file.
package csvsource

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/aqi-hexmap/internal/domain"
)

// ErrMissingColumn is returned when a required column is absent from the header.
var ErrMissingColumn = errors.New("missing required column")

// errNoYear marks a row that can never match a year filter.
var errNoYear = errors.New("row has no usable year")

const utf8BOM = "\ufeff"

// Source reads rows from a CSV file on disk.
type Source struct {
	path   string
	logger *slog.Logger
}

// New creates a Source for the file at path.
func New(path string, logger *slog.Logger) *Source {
	return &Source{path: path, logger: logger}
}

// Path returns the file the source reads from.
func (s *Source) Path() string {
	return s.path
}

// Version identifies the current contents of the file by modification time
// and size. A changed version means cached rows are stale.
func (s *Source) Version(_ context.Context) (string, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return "", &domain.LoadError{Path: s.path, Err: err}
	}
	return fmt.Sprintf("%d-%d", info.ModTime().UnixNano(), info.Size()), nil
}

// ReadRows parses every row of the file. Any failure is reported as a
// *domain.LoadError.
func (s *Source) ReadRows(ctx context.Context) ([]domain.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, &domain.LoadError{Path: s.path, Err: err}
	}
	defer f.Close()

	skipped := 0
	rows, err := parseRows(bufio.NewReader(f), func(line int, err error) {
		skipped++
		s.logger.Debug("row skipped", "path", s.path, "line", line, "error", err)
	})
	if err != nil {
		return nil, &domain.LoadError{Path: s.path, Err: err}
	}

	s.logger.Debug("dataset parsed", "path", s.path, "rows", len(rows), "skipped", skipped)
	return rows, nil
}

// ParseRows decodes CSV data with a header row. Columns are matched by name;
// unknown columns are ignored. Empty or non-numeric metric cells become
// missing values. Bounding-box cells may be empty but must otherwise parse.
// Rows whose Year is missing or not an integer are skipped, since no year
// filter can select them.
func ParseRows(r io.Reader) ([]domain.Row, error) {
	return parseRows(r, nil)
}

// parseRows is ParseRows with a callback for every skipped row.
func parseRows(r io.Reader, onSkip func(line int, err error)) ([]domain.Row, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: %w", ErrMissingColumn)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, col := range domain.RequiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var rows []domain.Row
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row, err := parseRecord(record, index)
		if errors.Is(err, errNoYear) {
			if onSkip != nil {
				onSkip(line, err)
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRecord(record []string, index map[string]int) (domain.Row, error) {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var row domain.Row
	bounds := []struct {
		name string
		dst  *float64
	}{
		{domain.ColumnLeft, &row.Left},
		{domain.ColumnRight, &row.Right},
		{domain.ColumnTop, &row.Top},
		{domain.ColumnBottom, &row.Bottom},
	}
	for _, b := range bounds {
		v, err := parseCoordinate(field(b.name))
		if err != nil {
			return domain.Row{}, fmt.Errorf("column %s: %w", b.name, err)
		}
		*b.dst = v
	}

	year, err := parseYear(field(domain.ColumnYear))
	if err != nil {
		return domain.Row{}, fmt.Errorf("column %s: %w: %w", domain.ColumnYear, errNoYear, err)
	}
	row.Year = year

	row.Metrics = domain.MissingMetrics()
	for _, name := range domain.MetricColumns {
		*row.Metrics.Field(name) = parseMetric(field(name))
	}
	return row, nil
}

func isMissingToken(s string) bool {
	switch strings.ToLower(s) {
	case "", "nan", "na", "n/a", "null", "none":
		return true
	}
	return false
}

func parseCoordinate(s string) (float64, error) {
	if isMissingToken(s) {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid coordinate %q", s)
	}
	return v, nil
}

func parseYear(s string) (int, error) {
	if isMissingToken(s) {
		return 0, errors.New("year is required")
	}
	if y, err := strconv.Atoi(s); err == nil {
		return y, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	return int(f), nil
}

func parseMetric(s string) domain.Value {
	if isMissingToken(s) {
		return domain.Missing()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return domain.Missing()
	}
	return domain.Value(v)
}
