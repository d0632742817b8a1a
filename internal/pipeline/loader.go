package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/golang/groupcache/lru"

	"github.com/couchcryptid/aqi-hexmap/internal/domain"
	"github.com/couchcryptid/aqi-hexmap/internal/observability"
)

// RowSource supplies the raw dataset rows and a version token that changes
// whenever the underlying data does.
type RowSource interface {
	Version(ctx context.Context) (string, error)
	ReadRows(ctx context.Context) ([]domain.Row, error)
}

// CellPublisher receives freshly built hex cells for a year.
type CellPublisher interface {
	PublishCells(ctx context.Context, year int, cells []domain.HexCell) error
}

// Loader turns dataset rows into per-year hex cells and caches the result.
// The row table is kept alongside the source version it was read at; a
// version change drops the rows and every cached year.
type Loader struct {
	source    RowSource
	publisher CellPublisher
	hexSize   float64
	cacheSize int
	logger    *slog.Logger
	metrics   *observability.Metrics

	mu      sync.Mutex
	version string
	rows    []domain.Row
	loaded  bool
	cells   *lru.Cache // year -> []domain.HexCell
}

// NewLoader creates a Loader. Pass a nil publisher to disable export.
func NewLoader(source RowSource, publisher CellPublisher, hexSize float64, cacheSize int, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{
		source:    source,
		publisher: publisher,
		hexSize:   hexSize,
		cacheSize: cacheSize,
		logger:    logger,
		metrics:   metrics,
		cells:     lru.New(cacheSize),
	}
}

// LoadHexCells returns the hex cells for every row of the given year, in
// file order. A year with no rows yields an empty, non-nil slice. The
// returned slice is shared with the cache and must not be modified.
func (l *Loader) LoadHexCells(ctx context.Context, year int) ([]domain.HexCell, error) {
	cells, fresh, err := l.cellsForYear(ctx, year)
	if err != nil {
		return nil, err
	}

	if fresh && l.publisher != nil && len(cells) > 0 {
		if err := l.publisher.PublishCells(ctx, year, cells); err != nil {
			l.logger.Warn("export hex cells failed", "year", year, "cells", len(cells), "error", err)
		}
	}
	return cells, nil
}

// Years returns the distinct years present in the dataset, ascending.
func (l *Loader) Years(ctx context.Context) ([]int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.refresh(ctx); err != nil {
		return nil, err
	}

	years := make([]int, 0)
	for _, r := range l.rows {
		if !slices.Contains(years, r.Year) {
			years = append(years, r.Year)
		}
	}
	slices.Sort(years)
	return years, nil
}

// Loaded reports whether the dataset has been read successfully at least once.
func (l *Loader) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

func (l *Loader) cellsForYear(ctx context.Context, year int) ([]domain.HexCell, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.refresh(ctx); err != nil {
		return nil, false, err
	}

	if v, ok := l.cells.Get(year); ok {
		l.metrics.LayerCache.WithLabelValues("hit").Inc()
		return v.([]domain.HexCell), false, nil
	}
	l.metrics.LayerCache.WithLabelValues("miss").Inc()

	cells := domain.CellsForYear(l.rows, year, l.hexSize)
	l.cells.Add(year, cells)
	l.logger.Debug("hex cells built", "year", year, "cells", len(cells))
	return cells, true, nil
}

// refresh re-reads the rows when the source version has changed.
// Callers must hold l.mu.
func (l *Loader) refresh(ctx context.Context) error {
	version, err := l.source.Version(ctx)
	if err != nil {
		l.metrics.LoadErrors.Inc()
		return fmt.Errorf("check dataset version: %w", err)
	}
	if l.loaded && version == l.version {
		return nil
	}

	rows, err := l.source.ReadRows(ctx)
	if err != nil {
		l.metrics.LoadErrors.Inc()
		return fmt.Errorf("read dataset: %w", err)
	}
	l.metrics.DatasetLoads.Inc()
	l.metrics.RowsLoaded.Set(float64(len(rows)))

	if l.loaded {
		l.logger.Info("dataset changed, cache invalidated", "previous_version", l.version, "version", version)
	} else {
		l.logger.Info("dataset loaded", "rows", len(rows), "version", version)
	}

	l.version = version
	l.rows = rows
	l.loaded = true
	l.cells = lru.New(l.cacheSize)
	return nil
}
