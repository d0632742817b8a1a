package domain

import (
	"context"
	"log/slog"
)

// LabelViewport names the place at the centre of the viewport as
// "Place, Region" when both are known, falling back to the provider's full
// address and then the bare place name. If geocoder is nil or the lookup
// fails, an empty label is returned (graceful degradation).
func LabelViewport(ctx context.Context, v Viewport, geocoder Geocoder, logger *slog.Logger) string {
	if geocoder == nil {
		return ""
	}

	result, err := geocoder.ReverseGeocode(ctx, v.Latitude, v.Longitude)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"lat", v.Latitude,
			"lon", v.Longitude,
			"error", err,
		)
		return ""
	}
	if result.PlaceName != "" && result.Region != "" && result.PlaceName != result.Region {
		return result.PlaceName + ", " + result.Region
	}
	if result.FormattedAddress != "" {
		return result.FormattedAddress
	}
	return result.PlaceName
}
