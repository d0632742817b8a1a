// Command genmock writes a deterministic synthetic air-quality grid in the
// same CSV layout the service reads: an unnamed index column, the bounding
// box of each grid cell, the year, and the environmental metrics. A share of
// metric cells is left empty to exercise missing-value handling.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/mock/aqi_grid_generated.csv \
//	  -years 2017,2018,2019 -cols 12 -rows 8 -seed 42
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/aqi-hexmap/internal/domain"
)

type gridLayout struct {
	years       []int
	cols, rows  int
	originLon   float64
	originLat   float64
	cellSize    float64
	missingRate float64
	seed        uint64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output CSV path (- for stdout)")
	years := flag.String("years", "2017,2018,2019", "comma-separated years to generate")
	cols := flag.Int("cols", 12, "grid columns")
	rows := flag.Int("rows", 8, "grid rows")
	originLon := flag.Float64("origin-lon", -97.90, "west edge of the grid")
	originLat := flag.Float64("origin-lat", 30.40, "north edge of the grid")
	cellSize := flag.Float64("cell", 0.06, "grid cell width and height in degrees")
	missing := flag.Float64("missing", 0.05, "fraction of metric cells left empty")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	layout := gridLayout{
		cols:        *cols,
		rows:        *rows,
		originLon:   *originLon,
		originLat:   *originLat,
		cellSize:    *cellSize,
		missingRate: *missing,
		seed:        *seed,
	}
	for _, part := range strings.Split(*years, ",") {
		y, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return fmt.Errorf("invalid year %q: %w", part, err)
		}
		layout.years = append(layout.years, y)
	}
	if layout.cols <= 0 || layout.rows <= 0 || layout.cellSize <= 0 {
		return fmt.Errorf("cols, rows, and cell must be positive")
	}

	var w io.Writer = os.Stdout
	if *out != "-" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	apis, err := writeGrid(w, layout)
	if err != nil {
		return err
	}
	if *out != "-" {
		log.Printf("wrote %s", *out)
	}
	printStats(layout.years, apis)
	return nil
}

func header() []string {
	return append([]string{"", domain.ColumnLeft, domain.ColumnRight, domain.ColumnTop, domain.ColumnBottom, domain.ColumnYear}, domain.MetricColumns...)
}

// writeGrid writes the CSV and returns the generated API readings per year.
func writeGrid(w io.Writer, layout gridLayout) (map[int][]float64, error) {
	rng := rand.New(rand.NewPCG(layout.seed, layout.seed^0x9e3779b97f4a7c15))
	cw := csv.NewWriter(w)
	if err := cw.Write(header()); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	apis := make(map[int][]float64, len(layout.years))
	index := 0
	for yi, year := range layout.years {
		for r := 0; r < layout.rows; r++ {
			for c := 0; c < layout.cols; c++ {
				left := layout.originLon + float64(c)*layout.cellSize
				top := layout.originLat - float64(r)*layout.cellSize
				m := sampleMetrics(rng, r, c, yi)

				record := []string{
					strconv.Itoa(index),
					formatFloat(left, 4),
					formatFloat(left+layout.cellSize, 4),
					formatFloat(top, 4),
					formatFloat(top-layout.cellSize, 4),
					strconv.Itoa(year),
				}
				for i, name := range domain.MetricColumns {
					if rng.Float64() < layout.missingRate {
						record = append(record, "")
						continue
					}
					if name == domain.ColumnAPI {
						apis[year] = append(apis[year], m[i])
					}
					record = append(record, formatFloat(m[i], 2))
				}
				if err := cw.Write(record); err != nil {
					return nil, fmt.Errorf("write row %d: %w", index, err)
				}
				index++
			}
		}
	}
	cw.Flush()
	return apis, cw.Error()
}

// sampleMetrics returns values in MetricColumns order. Pollution rises toward
// the grid centre and drifts upward year over year.
func sampleMetrics(rng *rand.Rand, r, c, yearIndex int) []float64 {
	hotspot := math.Exp(-(math.Pow(float64(r)-3, 2) + math.Pow(float64(c)-5, 2)) / 18)
	return []float64{
		40 + 60*hotspot + 4*float64(yearIndex) + rng.NormFloat64()*3, // API
		27 + 2*hotspot + rng.NormFloat64()*0.5,                       // Temp
		60 - 8*hotspot + rng.NormFloat64()*2,                         // Humidity
		math.Max(0, rng.NormFloat64()*0.2+0.1),                       // Precip
		2 + rng.Float64()*3,                                          // Wind
		math.Max(0, 0.5-0.4*hotspot+rng.NormFloat64()*0.05),          // Vegetation
		0.3 + 0.6*hotspot + rng.Float64()*0.1,                        // Traffic
		0.2 + 0.5*hotspot + rng.Float64()*0.1,                        // Building
		130 + float64(r)*3 + rng.Float64()*10,                        // Altitude
		math.Round(500 + 9000*hotspot + rng.Float64()*300),           // Population
	}
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func printStats(years []int, apis map[int][]float64) {
	for _, year := range years {
		values := apis[year]
		if len(values) == 0 {
			log.Printf("%d: no API readings", year)
			continue
		}
		log.Printf("%d: %d API readings, min %.2f, mean %.2f, max %.2f",
			year, len(values), floats.Min(values), stat.Mean(values, nil), floats.Max(values))
	}
}
