package app

import (
	"io"
	"log/slog"
	"testing"

	"github.com/couchcryptid/weather-outlook-service/internal/adapter/geocache"
	"github.com/couchcryptid/weather-outlook-service/internal/config"
	"github.com/couchcryptid/weather-outlook-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewGeocoder(t *testing.T) {
	metrics := observability.NewMetricsForTesting()

	g := NewGeocoder(&config.Config{Geocoder: config.GeocoderNone}, metrics, discardLogger())
	assert.Nil(t, g, "disabled geocoder must be a nil interface")

	g = NewGeocoder(&config.Config{Geocoder: config.GeocoderNominatim, GeocodeCacheSize: 10}, metrics, discardLogger())
	require.NotNil(t, g)
	assert.IsType(t, &geocache.CachedGeocoder{}, g)

	g = NewGeocoder(&config.Config{Geocoder: config.GeocoderMapbox, MapboxToken: "tok", GeocodeCacheSize: 10}, metrics, discardLogger())
	assert.IsType(t, &geocache.CachedGeocoder{}, g)
}

func TestNewService(t *testing.T) {
	cfg := &config.Config{
		OpenMeteoBaseURL:       "http://127.0.0.1:1",
		NASAPowerBaseURL:       "http://127.0.0.1:1",
		ClimatologyYears:       10,
		ClimatologyConcurrency: 2,
		ClimatologyLeapDay:     config.LeapDayClamp,
		Geocoder:               config.GeocoderNone,
	}
	svc := NewService(cfg, Deps{}, observability.NewMetricsForTesting(), discardLogger())
	assert.NotNil(t, svc)
}
