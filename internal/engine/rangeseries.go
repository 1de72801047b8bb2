package engine

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/couchcryptid/weather-outlook-service/internal/domain"
	"github.com/couchcryptid/weather-outlook-service/internal/observability"
)

const (
	compactLayout = "20060102"
	displayLayout = "01/02/2006"
)

// RangeBuilder produces the ordered daily series used for charting.
type RangeBuilder struct {
	source  domain.RangeSource
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewRangeBuilder creates a RangeBuilder over source.
func NewRangeBuilder(source domain.RangeSource, metrics *observability.Metrics, logger *slog.Logger) *RangeBuilder {
	return &RangeBuilder{source: source, metrics: metrics, logger: logger}
}

// Build returns one point per day the provider reported between start and
// end inclusive, oldest first. An unset bound, a reversed range or a provider
// failure all yield an empty, non-nil series.
func (b *RangeBuilder) Build(ctx context.Context, point domain.GeoPoint, start, end domain.Date) []domain.RangeSeriesPoint {
	series := []domain.RangeSeriesPoint{}
	if start.IsZero() || end.IsZero() {
		return series
	}
	if start.After(end) {
		b.logger.Warn("range start after end", "start", start.String(), "end", end.String())
		return series
	}

	daily, err := b.source.DailyRange(ctx, point, start, end)
	if err != nil {
		b.logger.Warn("range lookup returned no data",
			"lat", point.Lat,
			"lng", point.Lng,
			"start", start.String(),
			"end", end.String(),
			"error", err,
		)
		return series
	}

	keys := make([]string, 0, len(daily.Days))
	for key := range daily.Days {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		day, err := time.Parse(compactLayout, key)
		if err != nil {
			b.logger.Warn("skipping malformed range date key", "key", key)
			continue
		}
		v := daily.Days[key]
		temperature := domain.NormalizeSentinel(v.Temperature)
		humidity := domain.NormalizeSentinel(v.Humidity)
		series = append(series, domain.RangeSeriesPoint{
			Date:           day.Format(displayLayout),
			Temperature:    temperature,
			Humidity:       humidity,
			Precipitation:  domain.NormalizeSentinel(v.Precipitation),
			WindSpeed:      domain.NormalizeSentinel(v.WindSpeed),
			SolarRadiation: domain.NormalizeSentinel(v.SolarRadiation),
			HeatIndex:      domain.HeatIndex(temperature, humidity),
		})
	}

	b.metrics.RangeSeriesDays.Observe(float64(len(series)))
	return series
}
