package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-outlook-service/internal/domain"
	"github.com/couchcryptid/weather-outlook-service/internal/observability"
)

// IsFuture reports whether day's midnight UTC lies strictly after now.
// Today is never future.
func IsFuture(day domain.Date, now time.Time) bool {
	return day.Time().After(now)
}

// Resolver classifies a query as past or future and dispatches to the exact
// lookup or the climatology path. The two branches are exclusive.
type Resolver struct {
	source    domain.HourlySource
	collector *Collector
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewResolver creates a Resolver. source serves exact lookups; collector
// serves climatology.
func NewResolver(source domain.HourlySource, collector *Collector, metrics *observability.Metrics, logger *slog.Logger) *Resolver {
	return &Resolver{
		source:    source,
		collector: collector,
		metrics:   metrics,
		logger:    logger,
	}
}

// Resolve answers q. Missing provider data yields an Outcome with no result
// and a nil error; only invalid input and context cancellation are errors.
func (r *Resolver) Resolve(ctx context.Context, q domain.Query) (domain.Outcome, error) {
	if err := q.Validate(); err != nil {
		return domain.Outcome{}, err
	}

	now := domain.Now()
	if IsFuture(q.Date, now) {
		return r.climatology(ctx, q, now.Year())
	}
	return r.exact(ctx, q)
}

func (r *Resolver) exact(ctx context.Context, q domain.Query) (domain.Outcome, error) {
	out := domain.Outcome{IsFuture: false}

	series, err := r.source.HourlyPoint(ctx, q.Point, q.Date)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Outcome{}, ctxErr
		}
		r.noData(q, err)
		return out, nil
	}

	sample, observedAt, ok := series.SampleAt(q.Hour)
	if !ok {
		r.noData(q, domain.ErrMissingHour)
		return out, nil
	}

	out.Exact = &domain.ExactWeatherRecord{
		Type:          domain.ResultHistorical,
		WeatherSample: sample,
		Weather:       domain.ConditionLabel(sample.WeatherCode),
		ObservedAt:    observedAt,
		SourceURL:     series.SourceURL,
	}
	r.metrics.QueryResults.WithLabelValues(domain.ResultHistorical, "ok").Inc()
	return out, nil
}

func (r *Resolver) noData(q domain.Query, err error) {
	r.logger.Warn("exact lookup returned no data",
		"lat", q.Point.Lat,
		"lng", q.Point.Lng,
		"date", q.Date.String(),
		"hour", q.Hour,
		"error", err,
	)
	r.metrics.QueryResults.WithLabelValues(domain.ResultHistorical, "no_data").Inc()
}

func (r *Resolver) climatology(ctx context.Context, q domain.Query, currentYear int) (domain.Outcome, error) {
	target := Target{Month: q.Date.Month(), Day: q.Date.Day(), Hour: q.Hour}
	collected := r.collector.Collect(ctx, q.Point, target, currentYear)
	if err := ctx.Err(); err != nil {
		return domain.Outcome{}, err
	}

	summary := Aggregate(collected.Samples, collected.YearsQueried)
	summary.SourceURLs = collected.SourceURLs
	summary.SourceNote = fmt.Sprintf(
		"Estimated from %d of %d prior years at %s %d %02d:00 UTC (Open-Meteo historical archive)",
		collected.YearsQueried, r.collector.Years(), target.Month, target.Day, target.Hour,
	)

	outcome := "ok"
	if summary.TotalSamples == 0 {
		outcome = "no_data"
	}
	r.metrics.QueryResults.WithLabelValues(domain.ResultClimatology, outcome).Inc()
	r.metrics.ClimatologySamples.Observe(float64(summary.TotalSamples))

	r.logger.Debug("climatology resolved",
		"lat", q.Point.Lat,
		"lng", q.Point.Lng,
		"date", q.Date.String(),
		"hour", q.Hour,
		"years_queried", collected.YearsQueried,
	)
	return domain.Outcome{IsFuture: true, Climatology: &summary}, nil
}
