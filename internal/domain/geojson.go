package domain

import (
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// FeatureCollection exports cells as GeoJSON polygons. Each feature carries the
// cell metrics, its fill colour and year; cells without geometry are skipped.
// The collection bbox spans every exported hexagon.
func FeatureCollection(cells []HexCell) *geojson.FeatureCollection {
	scale := NewColorScale(cells)
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(cells))}

	var bounds *geom.Bounds
	for i, cell := range cells {
		if _, ok := exteriorRing(cell.Polygon); !ok {
			continue
		}
		props := cell.Metrics.Properties()
		props["Year"] = cell.Year
		props["color"] = scale.Color(cell.Metrics.API)

		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         fmt.Sprintf("%d-%d", cell.Year, i),
			Geometry:   cell.Polygon,
			Properties: props,
		})

		if bounds == nil {
			bounds = geom.NewBounds(geom.XY)
		}
		bounds.Extend(cell.Polygon)
	}
	fc.BBox = bounds
	return fc
}
