package domain

import (
	"math"
	"time"

	"github.com/twpayne/go-geom"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Fixed colour channels; only red varies with API.
const (
	greenChannel = 100
	blueChannel  = 170
	alphaChannel = 90
)

// Fixed camera parameters.
const (
	DefaultZoom  = 5
	DefaultPitch = 0
)

// Color is an RGBA fill colour.
type Color [4]uint8

// NoDataColor is used for cells without a finite API reading.
var NoDataColor = Color{0, 0, 0, 0}

// Viewport holds the map camera parameters.
type Viewport struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      float64 `json:"zoom"`
	Pitch     float64 `json:"pitch"`
}

// DefaultViewport is used when there is nothing to centre on.
var DefaultViewport = Viewport{Zoom: DefaultZoom, Pitch: DefaultPitch}

// RenderCell is a HexCell reduced to an open vertex list and a fill colour.
type RenderCell struct {
	Polygon [][2]float64 `json:"polygon"`
	Color   Color        `json:"color"`
	Metrics
}

// APIRange is the observed API range of a rendered cell set.
type APIRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Layer is a fully built map layer for one year.
type Layer struct {
	Year        int          `json:"year"`
	NoData      bool         `json:"no_data"`
	Cells       []RenderCell `json:"cells"`
	Dropped     int          `json:"dropped"`
	Viewport    Viewport     `json:"viewport"`
	APIRange    *APIRange    `json:"api_range,omitempty"`
	PlaceName   string       `json:"place_name,omitempty"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// EmptyLayer is the layer returned for a year without cells.
func EmptyLayer(year int) Layer {
	return Layer{
		Year:        year,
		NoData:      true,
		Cells:       []RenderCell{},
		Viewport:    DefaultViewport,
		GeneratedAt: clock.Now().UTC(),
	}
}

// ColorScale maps API readings onto the red channel. The zero value has no
// range and maps everything to NoDataColor.
type ColorScale struct {
	Min   float64
	Max   float64
	Valid bool
}

// NewColorScale computes the API range over cells with a finite API.
func NewColorScale(cells []HexCell) ColorScale {
	apis := make([]float64, 0, len(cells))
	for _, c := range cells {
		if c.Metrics.API.Valid() {
			apis = append(apis, float64(c.Metrics.API))
		}
	}
	if len(apis) == 0 {
		return ColorScale{}
	}
	return ColorScale{Min: floats.Min(apis), Max: floats.Max(apis), Valid: true}
}

// Range returns the scale as an APIRange, or nil when the scale is empty.
func (s ColorScale) Range() *APIRange {
	if !s.Valid {
		return nil
	}
	return &APIRange{Min: s.Min, Max: s.Max}
}

// Color returns the fill colour for an API reading. A degenerate range
// (Max == Min) yields red 0. Readings outside the range are clamped.
func (s ColorScale) Color(api Value) Color {
	if !api.Valid() || !s.Valid {
		return NoDataColor
	}
	var red uint8
	if span := s.Max - s.Min; span > 0 {
		v := math.Floor(255 * (float64(api) - s.Min) / span)
		red = uint8(math.Max(0, math.Min(255, v)))
	}
	return Color{red, greenChannel, blueChannel, alphaChannel}
}

// FlattenRing returns the exterior ring without its closing vertex. It reports
// false when the polygon has no usable ring.
func FlattenRing(p *geom.Polygon) ([][2]float64, bool) {
	coords, ok := exteriorRing(p)
	if !ok || len(coords) < 2 {
		return nil, false
	}
	open := coords[:len(coords)-1]
	out := make([][2]float64, len(open))
	for i, c := range open {
		out[i] = [2]float64{c.X(), c.Y()}
	}
	return out, true
}

// CloseRing turns an open vertex list back into a closed polygon.
func CloseRing(vertices [][2]float64) *geom.Polygon {
	ring := make([]geom.Coord, 0, len(vertices)+1)
	for _, v := range vertices {
		ring = append(ring, geom.Coord{v[0], v[1]})
	}
	if len(vertices) > 0 {
		ring = append(ring, geom.Coord{vertices[0][0], vertices[0][1]})
	}
	return geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{ring})
}

// NewViewport centres the camera on the mean of the cell centres. Cells with a
// non-finite centre are ignored; ErrEmptyInput is returned if none remain.
func NewViewport(cells []HexCell) (Viewport, error) {
	lats := make([]float64, 0, len(cells))
	lons := make([]float64, 0, len(cells))
	for _, c := range cells {
		lat, lon := c.CenterLat(), c.CenterLon()
		if !isFinite(lat) || !isFinite(lon) {
			continue
		}
		lats = append(lats, lat)
		lons = append(lons, lon)
	}
	if len(lats) == 0 {
		return Viewport{}, ErrEmptyInput
	}
	return Viewport{
		Latitude:  stat.Mean(lats, nil),
		Longitude: stat.Mean(lons, nil),
		Zoom:      DefaultZoom,
		Pitch:     DefaultPitch,
	}, nil
}

// BuildRenderLayer colours and flattens cells and computes the viewport.
// Cells without geometry are dropped; output order follows input order.
func BuildRenderLayer(cells []HexCell) ([]RenderCell, Viewport, error) {
	viewport, err := NewViewport(cells)
	if err != nil {
		return nil, Viewport{}, err
	}

	scale := NewColorScale(cells)
	out := make([]RenderCell, 0, len(cells))
	for _, cell := range cells {
		vertices, ok := FlattenRing(cell.Polygon)
		if !ok {
			continue
		}
		out = append(out, RenderCell{
			Polygon: vertices,
			Color:   scale.Color(cell.Metrics.API),
			Metrics: cell.Metrics,
		})
	}
	return out, viewport, nil
}
