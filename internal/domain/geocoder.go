package domain

import (
	"context"
	"log/slog"
)

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // 0.0–1.0 provider confidence score, when reported
}

// Geocoder resolves coordinates to place details.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (GeocodingResult, error)
}

// LookupPlaceName returns a best-effort display name for point. A nil geocoder,
// a provider failure or an empty answer all yield nil; failures are logged.
func LookupPlaceName(ctx context.Context, geocoder Geocoder, point GeoPoint, logger *slog.Logger) *string {
	if geocoder == nil {
		return nil
	}
	result, err := geocoder.ReverseGeocode(ctx, point.Lat, point.Lng)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"lat", point.Lat,
			"lng", point.Lng,
			"error", err,
		)
		return nil
	}
	name := result.FormattedAddress
	if name == "" {
		name = result.PlaceName
	}
	if name == "" {
		return nil
	}
	return &name
}
