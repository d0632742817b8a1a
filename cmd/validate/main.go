// Command validate checks that an air-quality CSV can be served: the header
// and values parse, every requested year has rows, hexagons are well formed,
// colours follow the API range, and the viewport lands on the map.
//
// Usage:
//
//	go run ./cmd/validate -data data/FinalSuperset_joined_Nminmax.csv
//	go run ./cmd/validate -data data/mock/aqi_grid_mock.csv -years 2017,2018
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/couchcryptid/aqi-hexmap/internal/adapter/csvsource"
	"github.com/couchcryptid/aqi-hexmap/internal/domain"
)

// distanceTolerance bounds the vertex-to-centre error allowed for a hexagon.
const distanceTolerance = 1e-9

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// yearReport holds what the phases learned about one year.
type yearReport struct {
	year     int
	cells    []domain.HexCell
	rendered []domain.RenderCell
	viewport domain.Viewport
	buildErr error
}

func main() {
	dataPath := flag.String("data", "", "path to the air-quality CSV")
	yearsFlag := flag.String("years", "", "comma-separated years to check (default: all years in the file)")
	hexSize := flag.Float64("hex-size", domain.HexSize, "hexagon circumradius in degrees")
	flag.Parse()

	if *dataPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	years, err := parseYears(*yearsFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	os.Exit(run(os.Stdout, *dataPath, years, *hexSize))
}

func parseYears(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var years []int
	for _, part := range strings.Split(s, ",") {
		y, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid year %q", part)
		}
		years = append(years, y)
	}
	return years, nil
}

func run(out io.Writer, dataPath string, years []int, hexSize float64) int {
	fmt.Fprintln(out, "=== Air Quality Dataset Validation ===")
	fmt.Fprintln(out)

	src := csvsource.New(dataPath, slog.New(slog.NewTextHandler(io.Discard, nil)))
	rows, err := src.ReadRows(context.Background())
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}

	present := distinctYears(rows)
	if len(years) == 0 {
		years = present
	}

	reports := make([]*yearReport, 0, len(years))
	for _, y := range years {
		r := &yearReport{year: y, cells: domain.CellsForYear(rows, y, hexSize)}
		if len(r.cells) > 0 {
			r.rendered, r.viewport, r.buildErr = domain.BuildRenderLayer(r.cells)
		}
		reports = append(reports, r)
	}

	phases := []*phase{
		validateCounts(reports),
		validateGeometry(reports, hexSize),
		validateColors(reports),
		validateViewport(reports),
	}

	fmt.Fprintln(out)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Rows: %d total, years present: %v\n", len(rows), present)
	for _, r := range reports {
		fmt.Fprintf(out, "  %d: %d cells, %d rendered, %d without geometry\n",
			r.year, len(r.cells), len(r.rendered), len(r.cells)-len(r.rendered))
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

func distinctYears(rows []domain.Row) []int {
	var years []int
	for _, r := range rows {
		if !slices.Contains(years, r.Year) {
			years = append(years, r.Year)
		}
	}
	slices.Sort(years)
	return years
}

// ── Phase 1: Row Counts ──

func validateCounts(reports []*yearReport) *phase {
	p := &phase{name: "Phase 1: Row Counts"}
	for _, r := range reports {
		if len(r.cells) == 0 {
			p.errorf("%d: no rows", r.year)
			continue
		}
		// A year whose cells all lack geometry is a no-data layer, not a failure.
		if r.buildErr != nil && !errors.Is(r.buildErr, domain.ErrEmptyInput) {
			p.errorf("%d: %v", r.year, r.buildErr)
		}
	}
	return p
}

// ── Phase 2: Hexagon Geometry ──
// Every polygon is a closed seven-vertex ring whose vertices lie hexSize from
// the cell centre.

func validateGeometry(reports []*yearReport, hexSize float64) *phase {
	p := &phase{name: "Phase 2: Hexagon Geometry"}
	for _, r := range reports {
		for i, cell := range r.cells {
			if cell.Polygon == nil {
				continue
			}
			if cell.Polygon.NumLinearRings() != 1 {
				p.errorf("%d cell %d: %d rings", r.year, i, cell.Polygon.NumLinearRings())
				continue
			}
			coords := cell.Polygon.LinearRing(0).Coords()
			if len(coords) != 7 {
				p.errorf("%d cell %d: %d vertices, want 7", r.year, i, len(coords))
				continue
			}
			if !coords[0].Equal(cell.Polygon.Layout(), coords[6]) {
				p.errorf("%d cell %d: ring is not closed", r.year, i)
			}
			cx, cy := cell.CenterLon(), cell.CenterLat()
			for j, c := range coords[:6] {
				d := math.Hypot(c.X()-cx, c.Y()-cy)
				if math.Abs(d-hexSize) > distanceTolerance {
					p.errorf("%d cell %d vertex %d: distance %.12f from centre, want %.12f", r.year, i, j, d, hexSize)
				}
			}
		}
	}
	return p
}

// ── Phase 3: Colour Scale ──
// Green, blue, and alpha are fixed; red spans 0..255 across the API range.

func validateColors(reports []*yearReport) *phase {
	p := &phase{name: "Phase 3: Colour Scale"}
	for _, r := range reports {
		if len(r.rendered) == 0 {
			continue
		}
		var apis []float64
		for i, c := range r.rendered {
			if !c.API.Valid() {
				if c.Color != domain.NoDataColor {
					p.errorf("%d cell %d: missing API rendered as %v", r.year, i, c.Color)
				}
				continue
			}
			apis = append(apis, float64(c.API))
			if c.Color[1] != 100 || c.Color[2] != 170 || c.Color[3] != 90 {
				p.errorf("%d cell %d: colour %v has unexpected fixed channels", r.year, i, c.Color)
			}
		}
		if len(apis) == 0 {
			continue
		}

		lo, hi := floats.Min(apis), floats.Max(apis)
		for i, c := range r.rendered {
			if !c.API.Valid() {
				continue
			}
			api := float64(c.API)
			switch {
			case hi == lo && c.Color[0] != 0:
				p.errorf("%d cell %d: degenerate range should give red 0, got %d", r.year, i, c.Color[0])
			case hi > lo && api == lo && c.Color[0] != 0:
				p.errorf("%d cell %d: minimum API should give red 0, got %d", r.year, i, c.Color[0])
			case hi > lo && api == hi && c.Color[0] != 255:
				p.errorf("%d cell %d: maximum API should give red 255, got %d", r.year, i, c.Color[0])
			}
		}
	}
	return p
}

// ── Phase 4: Viewport ──

func validateViewport(reports []*yearReport) *phase {
	p := &phase{name: "Phase 4: Viewport"}
	for _, r := range reports {
		if len(r.cells) == 0 || r.buildErr != nil {
			continue
		}
		v := r.viewport
		if math.IsNaN(v.Latitude) || v.Latitude < -90 || v.Latitude > 90 {
			p.errorf("%d: latitude %v out of range", r.year, v.Latitude)
		}
		if math.IsNaN(v.Longitude) || v.Longitude < -180 || v.Longitude > 180 {
			p.errorf("%d: longitude %v out of range", r.year, v.Longitude)
		}
		if v.Zoom != domain.DefaultZoom || v.Pitch != domain.DefaultPitch {
			p.errorf("%d: camera zoom %v pitch %v, want %d and %d", r.year, v.Zoom, v.Pitch, domain.DefaultZoom, domain.DefaultPitch)
		}
	}
	return p
}
