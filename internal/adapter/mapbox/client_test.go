package mapbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/aqi-hexmap/internal/observability"
)

const (
	testToken = "test-token"
	austinLat = 30.2672
	austinLon = -97.7431
)

// austinFeature is a trimmed reverse-geocode reply for central Austin.
const austinFeature = `{"features":[{
	"id":"place.123",
	"center":[-97.7431,30.2672],
	"place_name":"Austin, Texas, United States",
	"text":"Austin",
	"relevance":0.98,
	"context":[{"id":"district.9","text":"Travis County"},{"id":"region.42","text":"Texas"}]
}]}`

func testClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(testToken, 5*time.Second, logger, observability.NewMetricsForTesting(), WithBaseURL(srv.URL))
}

func replyJSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestClient_ReverseGeocode_Success(t *testing.T) {
	var gotPath, gotToken, gotTypes string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.URL.Query().Get("access_token")
		gotTypes = r.URL.Query().Get("types")
		replyJSON(austinFeature)(w, r)
	})

	result, err := c.ReverseGeocode(context.Background(), austinLat, austinLon)
	require.NoError(t, err)

	assert.Equal(t, "/-97.743100,30.267200.json", gotPath)
	assert.Equal(t, testToken, gotToken)
	assert.Equal(t, placeTypes, gotTypes)

	assert.Equal(t, austinLat, result.Lat)
	assert.Equal(t, austinLon, result.Lon)
	assert.Equal(t, "Austin, Texas, United States", result.FormattedAddress)
	assert.Equal(t, "Austin", result.PlaceName)
	assert.Equal(t, "Texas", result.Region)
	assert.Equal(t, 0.98, result.Confidence)
	assert.InDelta(t, 1, counterValue(t, c.metrics.GeocodeRequests.WithLabelValues("success")), 0)
}

func TestClient_ReverseGeocode_RegionFeature(t *testing.T) {
	c := testClient(t, replyJSON(`{"features":[{"id":"region.7","center":[101.5,3.1],"place_name":"Selangor, Malaysia","text":"Selangor"}]}`))

	result, err := c.ReverseGeocode(context.Background(), 3.1, 101.5)
	require.NoError(t, err)

	assert.Equal(t, "Selangor", result.Region)
	assert.Equal(t, "Selangor", result.PlaceName)
}

func TestClient_ReverseGeocode_NoResults(t *testing.T) {
	c := testClient(t, replyJSON(`{"features":[]}`))

	result, err := c.ReverseGeocode(context.Background(), 0, -160)
	require.NoError(t, err)

	assert.Empty(t, result.FormattedAddress)
	assert.Zero(t, result.Lat)
	assert.InDelta(t, 1, counterValue(t, c.metrics.GeocodeRequests.WithLabelValues("empty")), 0)
}

func TestClient_ReverseGeocode_APIError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Not Authorized - Invalid Token"}`)
	})

	_, err := c.ReverseGeocode(context.Background(), austinLat, austinLon)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Not Authorized - Invalid Token", apiErr.Message)
	assert.Contains(t, err.Error(), "401")
	assert.InDelta(t, 1, counterValue(t, c.metrics.GeocodeRequests.WithLabelValues("error")), 0)
}

func TestClient_ReverseGeocode_PlainTextError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	_, err := c.ReverseGeocode(context.Background(), austinLat, austinLon)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "upstream down", apiErr.Message)
}

func TestClient_ReverseGeocode_MalformedBody(t *testing.T) {
	c := testClient(t, replyJSON(`{"features":`))

	_, err := c.ReverseGeocode(context.Background(), austinLat, austinLon)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_ReverseGeocode_Timeout(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})
	WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond})(c)

	_, err := c.ReverseGeocode(context.Background(), austinLat, austinLon)
	require.Error(t, err)
}

func TestClient_ReverseGeocode_ContextCancelled(t *testing.T) {
	c := testClient(t, replyJSON(austinFeature))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ReverseGeocode(ctx, austinLat, austinLon)
	require.ErrorIs(t, err, context.Canceled)
}
