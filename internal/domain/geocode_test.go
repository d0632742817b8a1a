package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- mock geocoder ---

type mockGeocoder struct {
	result GeocodingResult
	err    error
	calls  int
	lat    float64
	lon    float64
}

func (m *mockGeocoder) ReverseGeocode(_ context.Context, lat, lon float64) (GeocodingResult, error) {
	m.calls++
	m.lat, m.lon = lat, lon
	return m.result, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- tests ---

func TestLabelViewport_NilGeocoder(t *testing.T) {
	label := LabelViewport(context.Background(), Viewport{Latitude: 1, Longitude: 3}, nil, discardLogger())
	assert.Empty(t, label)
}

func TestLabelViewport_UsesViewportCentre(t *testing.T) {
	geo := &mockGeocoder{result: GeocodingResult{
		FormattedAddress: "Kuala Lumpur, Malaysia",
		PlaceName:        "Kuala Lumpur",
	}}

	label := LabelViewport(context.Background(), Viewport{Latitude: 3.14, Longitude: 101.69}, geo, discardLogger())

	assert.Equal(t, "Kuala Lumpur, Malaysia", label)
	assert.Equal(t, 1, geo.calls)
	assert.Equal(t, 3.14, geo.lat)
	assert.Equal(t, 101.69, geo.lon)
}

func TestLabelViewport_PlaceAndRegion(t *testing.T) {
	geo := &mockGeocoder{result: GeocodingResult{
		FormattedAddress: "Petaling Jaya, Selangor, Malaysia",
		PlaceName:        "Petaling Jaya",
		Region:           "Selangor",
	}}

	label := LabelViewport(context.Background(), Viewport{Latitude: 3.1, Longitude: 101.6}, geo, discardLogger())

	assert.Equal(t, "Petaling Jaya, Selangor", label)
}

func TestLabelViewport_RegionOnly(t *testing.T) {
	geo := &mockGeocoder{result: GeocodingResult{
		FormattedAddress: "Selangor, Malaysia",
		PlaceName:        "Selangor",
		Region:           "Selangor",
	}}

	label := LabelViewport(context.Background(), Viewport{}, geo, discardLogger())

	assert.Equal(t, "Selangor, Malaysia", label)
}

func TestLabelViewport_FallsBackToPlaceName(t *testing.T) {
	geo := &mockGeocoder{result: GeocodingResult{PlaceName: "Selangor"}}

	label := LabelViewport(context.Background(), Viewport{}, geo, discardLogger())

	assert.Equal(t, "Selangor", label)
}

func TestLabelViewport_ErrorDegrades(t *testing.T) {
	geo := &mockGeocoder{err: errors.New("API timeout")}

	label := LabelViewport(context.Background(), Viewport{Latitude: 1, Longitude: 3}, geo, discardLogger())

	assert.Empty(t, label)
	assert.Equal(t, 1, geo.calls)
}

func TestLabelViewport_EmptyResult(t *testing.T) {
	geo := &mockGeocoder{}

	label := LabelViewport(context.Background(), Viewport{Latitude: 1, Longitude: 3}, geo, discardLogger())

	assert.Empty(t, label)
}
