// Package app wires configuration into the engine and its adapters. Both the
// service binary and the export CLI build their engine here.
package app

import (
	"log/slog"

	"github.com/couchcryptid/weather-outlook-service/internal/adapter/geocache"
	"github.com/couchcryptid/weather-outlook-service/internal/adapter/mapbox"
	"github.com/couchcryptid/weather-outlook-service/internal/adapter/nasapower"
	"github.com/couchcryptid/weather-outlook-service/internal/adapter/nominatim"
	"github.com/couchcryptid/weather-outlook-service/internal/adapter/openmeteo"
	"github.com/couchcryptid/weather-outlook-service/internal/config"
	"github.com/couchcryptid/weather-outlook-service/internal/domain"
	"github.com/couchcryptid/weather-outlook-service/internal/engine"
	"github.com/couchcryptid/weather-outlook-service/internal/observability"
)

// Deps carries the collaborators that differ between binaries. Store and
// Publisher may be nil.
type Deps struct {
	Store     domain.SettingsStore
	Publisher engine.Publisher
}

// NewService builds the engine service for cfg.
func NewService(cfg *config.Config, deps Deps, metrics *observability.Metrics, logger *slog.Logger) *engine.Service {
	hourly := openmeteo.NewClient(cfg.OpenMeteoBaseURL, cfg.ProviderTimeout, cfg.ProviderMaxRetries, metrics, logger)
	daily := nasapower.NewClient(cfg.NASAPowerBaseURL, cfg.ProviderTimeout, cfg.ProviderMaxRetries, metrics, logger)

	collector := engine.NewCollector(hourly, engine.CollectorOptions{
		Years:       cfg.ClimatologyYears,
		Concurrency: cfg.ClimatologyConcurrency,
		LeapDay:     engine.LeapDayPolicy(cfg.ClimatologyLeapDay),
	}, logger)
	resolver := engine.NewResolver(hourly, collector, metrics, logger)
	ranges := engine.NewRangeBuilder(daily, metrics, logger)

	return engine.NewService(resolver, ranges, deps.Store, engine.ServiceOptions{
		Geocoder:  NewGeocoder(cfg, metrics, logger),
		Publisher: deps.Publisher,
	}, metrics, logger)
}

// NewGeocoder returns the configured reverse geocoder behind an LRU cache, or
// nil when geocoding is disabled.
func NewGeocoder(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) domain.Geocoder {
	var inner domain.Geocoder
	switch cfg.Geocoder {
	case config.GeocoderMapbox:
		inner = mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
	case config.GeocoderNominatim:
		inner = nominatim.NewClient(cfg.NominatimBaseURL, cfg.NominatimUserAgent, cfg.ProviderTimeout, metrics, logger)
	default:
		logger.Info("reverse geocoding disabled")
		return nil
	}

	logger.Info("reverse geocoding enabled", "provider", cfg.Geocoder, "cache_size", cfg.GeocodeCacheSize)
	return geocache.New(inner, cfg.GeocodeCacheSize, metrics)
}
