package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Geocoder backends.
const (
	GeocoderNominatim = "nominatim"
	GeocoderMapbox    = "mapbox"
	GeocoderNone      = "none"
)

// Leap-day policies for climatology lookback.
const (
	LeapDayClamp = "clamp"
	LeapDaySkip  = "skip"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Weather providers.
	OpenMeteoBaseURL   string
	NASAPowerBaseURL   string
	ProviderTimeout    time.Duration
	ProviderMaxRetries int

	// Climatology lookback.
	ClimatologyYears       int
	ClimatologyConcurrency int
	ClimatologyLeapDay     string

	// Reverse geocoding.
	Geocoder           string
	NominatimBaseURL   string
	NominatimUserAgent string
	MapboxToken        string
	MapboxTimeout      time.Duration
	GeocodeCacheSize   int

	// Marker settings persistence.
	SettingsDBDriver string
	SettingsDBDSN    string

	// Export publishing; disabled when KafkaBrokers is empty.
	KafkaBrokers     []string
	KafkaExportTopic string

	ExportFallbackURL string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	providerTimeout, err := parsePositiveDuration("PROVIDER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parsePositiveDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	maxRetries, err := parseIntInRange("PROVIDER_MAX_RETRIES", 2, 0, 10)
	if err != nil {
		return nil, err
	}
	years, err := parseIntInRange("CLIMATOLOGY_YEARS", 10, 1, 50)
	if err != nil {
		return nil, err
	}
	concurrency, err := parseIntInRange("CLIMATOLOGY_CONCURRENCY", 4, 1, 50)
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	defaultGeocoder := GeocoderNominatim
	if mapboxToken != "" {
		defaultGeocoder = GeocoderMapbox
	}

	var brokers []string
	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		OpenMeteoBaseURL:   sharedcfg.EnvOrDefault("OPEN_METEO_BASE_URL", "https://archive-api.open-meteo.com/v1/archive"),
		NASAPowerBaseURL:   sharedcfg.EnvOrDefault("NASA_POWER_BASE_URL", "https://power.larc.nasa.gov/api/temporal/daily/point"),
		ProviderTimeout:    providerTimeout,
		ProviderMaxRetries: maxRetries,

		ClimatologyYears:       years,
		ClimatologyConcurrency: min(concurrency, years),
		ClimatologyLeapDay:     strings.ToLower(sharedcfg.EnvOrDefault("CLIMATOLOGY_LEAP_DAY", LeapDayClamp)),

		Geocoder:           strings.ToLower(sharedcfg.EnvOrDefault("GEOCODER", defaultGeocoder)),
		NominatimBaseURL:   sharedcfg.EnvOrDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org/reverse"),
		NominatimUserAgent: sharedcfg.EnvOrDefault("NOMINATIM_USER_AGENT", "weather-outlook-service"),
		MapboxToken:        mapboxToken,
		MapboxTimeout:      mapboxTimeout,
		GeocodeCacheSize:   parseCacheSize(),

		SettingsDBDriver: sharedcfg.EnvOrDefault("SETTINGS_DB_DRIVER", "sqlite3"),
		SettingsDBDSN:    sharedcfg.EnvOrDefault("SETTINGS_DB_DSN", "outlook.db"),

		KafkaBrokers:     brokers,
		KafkaExportTopic: sharedcfg.EnvOrDefault("KAFKA_EXPORT_TOPIC", "weather-exports"),

		ExportFallbackURL: sharedcfg.EnvOrDefault("EXPORT_FALLBACK_URL", "/weather"),
	}

	switch cfg.ClimatologyLeapDay {
	case LeapDayClamp, LeapDaySkip:
	default:
		return nil, fmt.Errorf("invalid CLIMATOLOGY_LEAP_DAY %q: want clamp or skip", cfg.ClimatologyLeapDay)
	}

	switch cfg.Geocoder {
	case GeocoderNominatim, GeocoderNone:
	case GeocoderMapbox:
		if cfg.MapboxToken == "" {
			return nil, errors.New("GEOCODER is mapbox but MAPBOX_TOKEN is not set")
		}
	default:
		return nil, fmt.Errorf("invalid GEOCODER %q: want nominatim, mapbox or none", cfg.Geocoder)
	}

	switch cfg.SettingsDBDriver {
	case "sqlite3", "postgres":
	default:
		return nil, fmt.Errorf("invalid SETTINGS_DB_DRIVER %q: want sqlite3 or postgres", cfg.SettingsDBDriver)
	}
	if cfg.SettingsDBDSN == "" {
		return nil, errors.New("SETTINGS_DB_DSN is required")
	}

	return cfg, nil
}

// PublishExports reports whether export documents should be sent to Kafka.
func (c *Config) PublishExports() bool {
	return len(c.KafkaBrokers) > 0
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseIntInRange(key string, def, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be an integer between %d and %d", key, lo, hi)
	}
	return n, nil
}

func parseCacheSize() int {
	if s := os.Getenv("GEOCODE_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
