package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/aqi-hexmap/internal/domain"
	"github.com/couchcryptid/aqi-hexmap/internal/observability"
)

// LayerTransformer implements Transformer using the domain layer builder
// with optional viewport labelling.
type LayerTransformer struct {
	geocoder domain.Geocoder
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewTransformer creates a LayerTransformer. Pass a nil geocoder to disable
// place labels.
func NewTransformer(geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics) *LayerTransformer {
	return &LayerTransformer{
		geocoder: geocoder,
		logger:   logger,
		metrics:  metrics,
	}
}

// Transform colours and flattens the cells of one year and centres the
// camera on them. A year without cells, or whose cells all lack geometry,
// becomes an empty layer.
func (t *LayerTransformer) Transform(ctx context.Context, year int, cells []domain.HexCell) (domain.Layer, error) {
	if len(cells) == 0 {
		return domain.EmptyLayer(year), nil
	}

	start := time.Now()
	rendered, viewport, err := domain.BuildRenderLayer(cells)
	if errors.Is(err, domain.ErrEmptyInput) {
		// Every cell lacks geometry: nothing to draw, but not a failure.
		t.metrics.CellsDropped.Add(float64(len(cells)))
		t.logger.Debug("no cells with geometry", "year", year, "dropped", len(cells))
		layer := domain.EmptyLayer(year)
		layer.Dropped = len(cells)
		return layer, nil
	}
	if err != nil {
		return domain.Layer{}, err
	}
	t.metrics.LayerBuildDuration.Observe(time.Since(start).Seconds())

	dropped := len(cells) - len(rendered)
	t.metrics.CellsRendered.Observe(float64(len(rendered)))
	if dropped > 0 {
		t.metrics.CellsDropped.Add(float64(dropped))
		t.logger.Debug("cells without geometry dropped", "year", year, "dropped", dropped)
	}

	return domain.Layer{
		Year:        year,
		Cells:       rendered,
		Dropped:     dropped,
		Viewport:    viewport,
		APIRange:    domain.NewColorScale(cells).Range(),
		PlaceName:   domain.LabelViewport(ctx, viewport, t.geocoder, t.logger),
		GeneratedAt: domain.Now().UTC(),
	}, nil
}
