// Package openmeteo implements domain.HourlySource over the Open-Meteo
// historical archive API.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/weather-outlook-service/internal/adapter/resilience"
	"github.com/couchcryptid/weather-outlook-service/internal/domain"
	"github.com/couchcryptid/weather-outlook-service/internal/observability"
)

const (
	providerName = "open_meteo"

	hourlyVariables = "temperature_2m,relative_humidity_2m,precipitation,wind_speed_10m,apparent_temperature,snowfall,weathercode"

	// timeLayout is the archive's hourly timestamp format when timezone=UTC.
	timeLayout = "2006-01-02T15:04"
)

// Client fetches one day of hourly observations per call.
type Client struct {
	baseURL string
	caller  *resilience.Caller
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewClient creates an archive client with retries and a circuit breaker.
func NewClient(baseURL string, timeout time.Duration, maxRetries int, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		caller: resilience.NewCaller(providerName, &http.Client{Timeout: timeout}, resilience.Backoff{
			MaxRetries:      maxRetries,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		}),
		metrics: metrics,
		logger:  logger,
	}
}

// RequestURL returns the archive URL for one UTC day at point.
func (c *Client) RequestURL(point domain.GeoPoint, day domain.Date) string {
	params := url.Values{
		"latitude":        {strconv.FormatFloat(point.Lat, 'f', -1, 64)},
		"longitude":       {strconv.FormatFloat(point.Lng, 'f', -1, 64)},
		"hourly":          {hourlyVariables},
		"start_date":      {day.String()},
		"end_date":        {day.String()},
		"timezone":        {"UTC"},
		"wind_speed_unit": {"ms"},
	}
	return c.baseURL + "?" + params.Encode()
}

// HourlyPoint returns the hourly series for day at point.
func (c *Client) HourlyPoint(ctx context.Context, point domain.GeoPoint, day domain.Date) (domain.HourlySeries, error) {
	fullURL := c.RequestURL(point, day)

	start := time.Now()
	series, err := c.fetch(ctx, fullURL)
	c.metrics.ProviderDuration.WithLabelValues(providerName).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.ProviderRequests.WithLabelValues(providerName, "error").Inc()
		return domain.HourlySeries{}, fmt.Errorf("%w: open-meteo %s: %w", domain.ErrProviderUnavailable, day, err)
	}
	c.metrics.ProviderRequests.WithLabelValues(providerName, "success").Inc()

	c.logger.Debug("open-meteo archive fetched",
		"lat", point.Lat,
		"lng", point.Lng,
		"date", day.String(),
		"rows", len(series.Times),
	)
	return series, nil
}

func (c *Client) fetch(ctx context.Context, fullURL string) (domain.HourlySeries, error) {
	resp, err := c.caller.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	})
	if err != nil {
		return domain.HourlySeries{}, err
	}
	defer resp.Body.Close()

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.HourlySeries{}, fmt.Errorf("decode response: %w", err)
	}
	if payload.Hourly == nil || len(payload.Hourly.Time) == 0 {
		return domain.HourlySeries{}, fmt.Errorf("response has no hourly data")
	}

	h := payload.Hourly
	times := make([]time.Time, 0, len(h.Time))
	for _, raw := range h.Time {
		ts, err := parseTime(raw)
		if err != nil {
			return domain.HourlySeries{}, err
		}
		times = append(times, ts)
	}

	return domain.HourlySeries{
		Times:               times,
		Temperature:         h.Temperature,
		Humidity:            h.Humidity,
		Precipitation:       h.Precipitation,
		WindSpeed:           h.WindSpeed,
		ApparentTemperature: h.ApparentTemperature,
		Snowfall:            h.Snowfall,
		WeatherCode:         h.WeatherCode,
		SourceURL:           fullURL,
	}, nil
}

func parseTime(raw string) (time.Time, error) {
	if ts, err := time.ParseInLocation(timeLayout, raw, time.UTC); err == nil {
		return ts, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse hourly timestamp %q: %w", raw, err)
	}
	return ts.UTC(), nil
}

// Open-Meteo API response types.

type response struct {
	Hourly *hourly `json:"hourly"`
}

type hourly struct {
	Time                []string   `json:"time"`
	Temperature         []*float64 `json:"temperature_2m"`
	Humidity            []*float64 `json:"relative_humidity_2m"`
	Precipitation       []*float64 `json:"precipitation"`
	WindSpeed           []*float64 `json:"wind_speed_10m"`
	ApparentTemperature []*float64 `json:"apparent_temperature"`
	Snowfall            []*float64 `json:"snowfall"`
	WeatherCode         []*int     `json:"weathercode"`
}
