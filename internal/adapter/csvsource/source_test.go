package csvsource

import (
	"context"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/aqi-hexmap/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSource_ReadRows(t *testing.T) {
	src := New(filepath.Join("testdata", "grid.csv"), discardLogger())

	rows, err := src.ReadRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 5)

	first := rows[0]
	assert.Equal(t, -97.80, first.Left)
	assert.Equal(t, -97.74, first.Right)
	assert.Equal(t, 30.30, first.Top)
	assert.Equal(t, 30.24, first.Bottom)
	assert.Equal(t, 2017, first.Year)
	assert.Equal(t, domain.Value(42), first.API)
	assert.Equal(t, domain.Value(28.1), first.Temp)
	assert.Equal(t, domain.Value(1200), first.Population)

	// Empty metric cells are missing.
	assert.False(t, rows[1].API.Valid())
	assert.False(t, rows[1].Precip.Valid())
	assert.False(t, rows[2].Temp.Valid())

	// Empty bounding boxes are missing, not errors.
	assert.True(t, math.IsNaN(rows[3].Left))
	assert.True(t, math.IsNaN(rows[3].Bottom))
	assert.Equal(t, domain.Value(61), rows[3].API)

	// Integral float years are accepted.
	assert.Equal(t, 2019, rows[4].Year)
}

func TestSource_ReadRows_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.csv")
	src := New(path, discardLogger())

	_, err := src.ReadRows(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLoad)
	assert.ErrorIs(t, err, os.ErrNotExist)
	var loadErr *domain.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, path, loadErr.Path)
}

func TestSource_ReadRows_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("left,right,top\n1,2,3\n"), 0o600))

	_, err := New(path, discardLogger()).ReadRows(context.Background())

	assert.ErrorIs(t, err, domain.ErrLoad)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestSource_ReadRows_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(filepath.Join("testdata", "grid.csv"), discardLogger()).ReadRows(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestSource_Version(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.csv")
	require.NoError(t, os.WriteFile(path, []byte("left,right,top,bottom,Year,API\n"), 0o600))
	src := New(path, discardLogger())

	v1, err := src.Version(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, v1)

	again, err := src.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, v1, again)

	require.NoError(t, os.WriteFile(path, []byte("left,right,top,bottom,Year,API\n0,2,2,0,2018,50\n"), 0o600))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	v2, err := src.Version(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, v1, v2)
}

func TestSource_Version_MissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent.csv"), discardLogger()).Version(context.Background())

	assert.ErrorIs(t, err, domain.ErrLoad)
}

func TestParseRows_BOM(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "bom.csv"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := ParseRows(f)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 0.0, rows[0].Left)
	assert.Equal(t, domain.Value(50), rows[0].API)
	// Optional metric columns absent from the header are missing.
	assert.False(t, rows[0].Wind.Valid())
}

func TestParseRows_HeaderOnly(t *testing.T) {
	rows, err := ParseRows(strings.NewReader("left,right,top,bottom,Year,API\n"))

	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseRows_Errors(t *testing.T) {
	const header = "left,right,top,bottom,Year,API\n"
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"empty file", "", "missing required column"},
		{"missing API", "left,right,top,bottom,Year\n", "API"},
		{"bad coordinate", header + "x,2,2,0,2018,50\n", "column left"},
		{"unbalanced quote", header + "0,2,2,0,\"2018,50\n", "line 2"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseRows(strings.NewReader(tc.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestParseRows_SkipsRowsWithoutYear(t *testing.T) {
	input := "left,right,top,bottom,Year,API\n" +
		"0,2,2,0,2018,50\n" +
		"0,2,2,0,,60\n" +
		"0,2,2,0,2018.5,70\n" +
		"0,2,2,0,soon,80\n" +
		"4,6,2,0,2018.0,90\n"

	var skipped []int
	rows, err := parseRows(strings.NewReader(input), func(line int, err error) {
		assert.ErrorIs(t, err, errNoYear)
		skipped = append(skipped, line)
	})

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.Value(50), rows[0].API)
	assert.Equal(t, domain.Value(90), rows[1].API)
	assert.Equal(t, []int{3, 4, 5}, skipped)
}

func TestSource_ReadRows_BadYearDoesNotFailLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.csv")
	require.NoError(t, os.WriteFile(path, []byte("left,right,top,bottom,Year,API\n0,2,2,0,2017,50\n0,2,2,0,,60\n"), 0o600))

	rows, err := New(path, discardLogger()).ReadRows(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2017, rows[0].Year)
}

func TestParseRows_UnparseableMetricIsMissing(t *testing.T) {
	rows, err := ParseRows(strings.NewReader("left,right,top,bottom,Year,API,Wind\n0,2,2,0,2018,high,n/a\n"))

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].API.Valid())
	assert.False(t, rows[0].Wind.Valid())
}

func TestParseRows_ShortRecord(t *testing.T) {
	rows, err := ParseRows(strings.NewReader("left,right,top,bottom,Year,API,Temp\n0,2,2,0,2018\n"))

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].API.Valid())
	assert.False(t, rows[0].Temp.Valid())
}
