// Package nasapower implements domain.RangeSource over the NASA POWER daily
// point API.
package nasapower

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
	providerName = "nasa_power"

	paramTemperature    = "T2M"
	paramHumidity       = "RH2M"
	paramPrecipitation  = "PRECTOTCORR"
	paramWindSpeed      = "WS10M"
	paramSolarRadiation = "ALLSKY_SFC_SW_DWN"
)

var parameters = paramTemperature + "," + paramHumidity + "," + paramPrecipitation + "," + paramWindSpeed + "," + paramSolarRadiation

// Client fetches daily aggregates for a date range in one call.
type Client struct {
	baseURL string
	caller  *resilience.Caller
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewClient creates a POWER client with retries and a circuit breaker.
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

// RequestURL returns the daily point URL for start..end inclusive.
func (c *Client) RequestURL(point domain.GeoPoint, start, end domain.Date) string {
	params := url.Values{
		"parameters": {parameters},
		"community":  {"AG"},
		"latitude":   {strconv.FormatFloat(point.Lat, 'f', -1, 64)},
		"longitude":  {strconv.FormatFloat(point.Lng, 'f', -1, 64)},
		"start":      {start.Compact()},
		"end":        {end.Compact()},
		"format":     {"JSON"},
	}
	return c.baseURL + "?" + params.Encode()
}

// DailyRange returns raw daily values keyed by YYYYMMDD. Sentinels are left
// in place for the caller to normalize.
func (c *Client) DailyRange(ctx context.Context, point domain.GeoPoint, start, end domain.Date) (domain.DailySeries, error) {
	fullURL := c.RequestURL(point, start, end)

	begin := time.Now()
	series, err := c.fetch(ctx, fullURL)
	c.metrics.ProviderDuration.WithLabelValues(providerName).Observe(time.Since(begin).Seconds())
	if err != nil {
		c.metrics.ProviderRequests.WithLabelValues(providerName, "error").Inc()
		return domain.DailySeries{}, fmt.Errorf("%w: nasa power %s..%s: %w", domain.ErrProviderUnavailable, start, end, err)
	}
	c.metrics.ProviderRequests.WithLabelValues(providerName, "success").Inc()

	c.logger.Debug("nasa power range fetched",
		"lat", point.Lat,
		"lng", point.Lng,
		"start", start.String(),
		"end", end.String(),
		"days", len(series.Days),
	)
	return series, nil
}

func (c *Client) fetch(ctx context.Context, fullURL string) (domain.DailySeries, error) {
	resp, err := c.caller.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	})
	if err != nil {
		return domain.DailySeries{}, err
	}
	defer resp.Body.Close()

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.DailySeries{}, fmt.Errorf("decode response: %w", err)
	}
	if payload.Properties == nil || payload.Properties.Parameter == nil {
		return domain.DailySeries{}, fmt.Errorf("response has no parameter block")
	}

	p := payload.Properties.Parameter
	days := make(map[string]domain.DailyValues)
	merge := func(values map[string]*float64, set func(*domain.DailyValues, *float64)) {
		for key, v := range values {
			day := days[key]
			set(&day, v)
			days[key] = day
		}
	}
	merge(p[paramTemperature], func(d *domain.DailyValues, v *float64) { d.Temperature = v })
	merge(p[paramHumidity], func(d *domain.DailyValues, v *float64) { d.Humidity = v })
	merge(p[paramPrecipitation], func(d *domain.DailyValues, v *float64) { d.Precipitation = v })
	merge(p[paramWindSpeed], func(d *domain.DailyValues, v *float64) { d.WindSpeed = v })
	merge(p[paramSolarRadiation], func(d *domain.DailyValues, v *float64) { d.SolarRadiation = v })

	return domain.DailySeries{Days: days, SourceURL: fullURL}, nil
}

// POWER API response types.

type response struct {
	Properties *properties `json:"properties"`
}

type properties struct {
	Parameter map[string]map[string]*float64 `json:"parameter"`
}
