package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/couchcryptid/aqi-hexmap/internal/domain"
	"github.com/couchcryptid/aqi-hexmap/internal/observability"
)

// CellLoader supplies per-year hex cells and the years present in the dataset.
type CellLoader interface {
	LoadHexCells(ctx context.Context, year int) ([]domain.HexCell, error)
	Years(ctx context.Context) ([]int, error)
}

// Transformer converts one year's hex cells into a renderable layer.
type Transformer interface {
	Transform(ctx context.Context, year int, cells []domain.HexCell) (domain.Layer, error)
}

// Pipeline composes loading and layer building for the HTTP surface.
type Pipeline struct {
	loader      CellLoader
	transformer Transformer
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
}

// New creates a Pipeline with the given stages and observability.
func New(l CellLoader, t Transformer, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		loader:      l,
		transformer: t,
		logger:      logger,
		metrics:     metrics,
	}
}

// CheckReadiness returns nil once the dataset has been read successfully,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("dataset has not been loaded yet")
	}
	return nil
}

// Warm loads the dataset and builds the cells for each year so the first
// requests hit the cache. It marks the pipeline ready on success.
func (p *Pipeline) Warm(ctx context.Context, years []int) error {
	for _, year := range years {
		cells, err := p.loader.LoadHexCells(ctx, year)
		if err != nil {
			return fmt.Errorf("warm year %d: %w", year, err)
		}
		p.logger.Info("year warmed", "year", year, "cells", len(cells))
	}
	p.markReady()
	return nil
}

// Layer builds the map layer for a year.
func (p *Pipeline) Layer(ctx context.Context, year int) (domain.Layer, error) {
	cells, err := p.loader.LoadHexCells(ctx, year)
	if err != nil {
		p.logger.Error("load hex cells failed", "year", year, "error", err)
		return domain.Layer{}, err
	}
	p.markReady()

	layer, err := p.transformer.Transform(ctx, year, cells)
	if err != nil {
		return domain.Layer{}, fmt.Errorf("build layer %d: %w", year, err)
	}
	return layer, nil
}

// GeoJSON returns the cells for a year as a feature collection.
func (p *Pipeline) GeoJSON(ctx context.Context, year int) (*geojson.FeatureCollection, error) {
	cells, err := p.loader.LoadHexCells(ctx, year)
	if err != nil {
		p.logger.Error("load hex cells failed", "year", year, "error", err)
		return nil, err
	}
	p.markReady()
	return domain.FeatureCollection(cells), nil
}

// Years returns the years present in the dataset.
func (p *Pipeline) Years(ctx context.Context) ([]int, error) {
	years, err := p.loader.Years(ctx)
	if err != nil {
		return nil, err
	}
	p.markReady()
	return years, nil
}

func (p *Pipeline) markReady() {
	if !p.ready.Swap(true) {
		p.metrics.ServiceReady.Set(1)
	}
}
