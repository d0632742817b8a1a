package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/aqi-hexmap/internal/domain"
)

var mockPath = filepath.Join("..", "..", "data", "mock", "aqi_grid_mock.csv")

func TestRun_MockDataPasses(t *testing.T) {
	var out bytes.Buffer

	code := run(&out, mockPath, nil, domain.HexSize)

	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "All validations passed.")
	assert.Contains(t, out.String(), "2018: 13 cells, 12 rendered, 1 without geometry")
}

func TestRun_MissingYearFails(t *testing.T) {
	var out bytes.Buffer

	code := run(&out, mockPath, []int{2016, 2018}, domain.HexSize)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "2016: no rows")
}

func TestRun_MissingFile(t *testing.T) {
	var out bytes.Buffer

	code := run(&out, filepath.Join(t.TempDir(), "absent.csv"), nil, domain.HexSize)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "FATAL")
}

func TestRun_MissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("left,right,top,bottom,Year\n0,2,2,0,2018\n"), 0o600))
	var out bytes.Buffer

	code := run(&out, path, nil, domain.HexSize)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "missing required column")
}

func TestRun_YearWithoutGeometryPasses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.csv")
	csv := "left,right,top,bottom,Year,API\n0,2,2,0,2018,50\n,,,,2020,60\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o600))
	var out bytes.Buffer

	code := run(&out, path, nil, domain.HexSize)

	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "2020: 1 cells, 0 rendered, 1 without geometry")
}

func TestValidateColors_FlagsWrongRed(t *testing.T) {
	m := domain.MissingMetrics()
	m.API = 10
	low := domain.RenderCell{Color: domain.Color{12, 100, 170, 90}, Metrics: m}
	m.API = 20
	high := domain.RenderCell{Color: domain.Color{255, 100, 170, 90}, Metrics: m}

	p := validateColors([]*yearReport{{year: 2018, rendered: []domain.RenderCell{low, high}}})

	require.False(t, p.passed())
	assert.Contains(t, p.errors[0], "minimum API should give red 0")
}

func TestParseYears(t *testing.T) {
	years, err := parseYears("2017, 2019")
	require.NoError(t, err)
	assert.Equal(t, []int{2017, 2019}, years)

	years, err = parseYears("")
	require.NoError(t, err)
	assert.Nil(t, years)

	_, err = parseYears("2017,x")
	assert.Error(t, err)
}
