package domain

import (
	"encoding/json"
	"fmt"

	"github.com/twpayne/go-geom"
)

// HexCell is a hexagon centred on a row's bounding-box midpoint, carrying the
// row's metrics. Polygon is nil when the row has no usable bounding box.
type HexCell struct {
	Year    int
	Center  *geom.Point
	Polygon *geom.Polygon
	Metrics Metrics
}

// NewHexCell builds the hexagon for a single row.
func NewHexCell(row Row, size float64) HexCell {
	lon, lat := row.CenterLon(), row.CenterLat()
	cell := HexCell{
		Year:    row.Year,
		Center:  geom.NewPoint(geom.XY).MustSetCoords(geom.Coord{lon, lat}),
		Metrics: row.Metrics,
	}
	if isFinite(lon) && isFinite(lat) {
		cell.Polygon = GenerateHexagon(cell.Center, size)
	}
	return cell
}

// CellsForYear maps every row of the given year to a HexCell, preserving row
// order. Rows are transformed independently of each other.
func CellsForYear(rows []Row, year int, size float64) []HexCell {
	n := 0
	for _, row := range rows {
		if row.Year == year {
			n++
		}
	}
	cells := make([]HexCell, 0, n)
	for _, row := range rows {
		if row.Year != year {
			continue
		}
		cells = append(cells, NewHexCell(row, size))
	}
	return cells
}

// CenterLon is the longitude of the cell centre.
func (c HexCell) CenterLon() float64 {
	if c.Center == nil {
		return float64(Missing())
	}
	return c.Center.X()
}

// CenterLat is the latitude of the cell centre.
func (c HexCell) CenterLat() float64 {
	if c.Center == nil {
		return float64(Missing())
	}
	return c.Center.Y()
}

// hexCellJSON is the wire form of a HexCell.
type hexCellJSON struct {
	Year    int         `json:"year"`
	Center  [2]Value    `json:"center"`
	Polygon [][]float64 `json:"polygon,omitempty"`
	Metrics
}

func (c HexCell) MarshalJSON() ([]byte, error) {
	out := hexCellJSON{
		Year:    c.Year,
		Center:  [2]Value{Value(c.CenterLon()), Value(c.CenterLat())},
		Metrics: c.Metrics,
	}
	if ring, ok := exteriorRing(c.Polygon); ok {
		out.Polygon = make([][]float64, len(ring))
		for i, coord := range ring {
			out.Polygon[i] = []float64{coord.X(), coord.Y()}
		}
	}
	return json.Marshal(out)
}

func (c *HexCell) UnmarshalJSON(data []byte) error {
	var in hexCellJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("decode hex cell: %w", err)
	}
	c.Year = in.Year
	c.Metrics = in.Metrics
	c.Center = geom.NewPoint(geom.XY).MustSetCoords(geom.Coord{float64(in.Center[0]), float64(in.Center[1])})
	c.Polygon = nil
	if len(in.Polygon) > 0 {
		ring := make([]geom.Coord, len(in.Polygon))
		for i, pair := range in.Polygon {
			if len(pair) != 2 {
				return fmt.Errorf("decode hex cell: vertex %d has %d coordinates", i, len(pair))
			}
			ring[i] = geom.Coord{pair[0], pair[1]}
		}
		c.Polygon = geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{ring})
	}
	return nil
}

// exteriorRing returns the coordinates of the polygon's first ring.
func exteriorRing(p *geom.Polygon) ([]geom.Coord, bool) {
	if p == nil || p.NumLinearRings() == 0 {
		return nil, false
	}
	coords := p.LinearRing(0).Coords()
	if len(coords) == 0 {
		return nil, false
	}
	return coords, true
}
