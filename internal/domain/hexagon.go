package domain

import (
	"math"

	"github.com/twpayne/go-geom"
)

// HexSize is the default hexagon circumradius in degrees.
const HexSize = 0.06

// hexagonSamples is the number of ring vertices: six corners plus the closing
// vertex at angle 2π.
const hexagonSamples = 7

// GenerateHexagon returns a regular hexagon of circumradius size around center.
//
// The exterior ring has seven vertices sampled at i·2π/6 for i = 0..6. The
// seventh sample lands on angle 0 again and is stored as an exact copy of the
// first vertex, so the ring is closed bit for bit. size must be positive and
// center finite.
func GenerateHexagon(center *geom.Point, size float64) *geom.Polygon {
	cx, cy := center.X(), center.Y()
	ring := make([]geom.Coord, hexagonSamples)
	for i := 0; i < hexagonSamples-1; i++ {
		angle := float64(i) * 2 * math.Pi / (hexagonSamples - 1)
		ring[i] = geom.Coord{cx + size*math.Cos(angle), cy + size*math.Sin(angle)}
	}
	ring[hexagonSamples-1] = geom.Coord{ring[0][0], ring[0][1]}
	return geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{ring})
}
