package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-outlook-service/internal/domain"
	"golang.org/x/sync/errgroup"
)

// LeapDayPolicy decides how a Feb 29 target maps onto non-leap years.
type LeapDayPolicy string

const (
	// LeapDayClamp samples Feb 28 in non-leap years.
	LeapDayClamp LeapDayPolicy = "clamp"
	// LeapDaySkip leaves non-leap years out of the window entirely.
	LeapDaySkip LeapDayPolicy = "skip"
)

// DefaultYears is the climatology lookback window.
const DefaultYears = 10

// Target is the calendar slot sampled in every prior year.
type Target struct {
	Month time.Month
	Day   int
	Hour  int
}

// CollectResult holds one sample per successfully queried year, newest first.
type CollectResult struct {
	Samples      []domain.WeatherSample
	YearsQueried int
	SourceURLs   []string
}

// CollectorOptions configures a Collector.
type CollectorOptions struct {
	Years       int
	Concurrency int
	LeapDay     LeapDayPolicy
}

// Collector gathers historical samples for one calendar slot across a window
// of prior years.
type Collector struct {
	source      domain.HourlySource
	years       int
	concurrency int
	leapDay     LeapDayPolicy
	logger      *slog.Logger
}

// NewCollector creates a Collector. Zero options fall back to a ten-year
// window, sequential fetches and the clamp policy.
func NewCollector(source domain.HourlySource, opts CollectorOptions, logger *slog.Logger) *Collector {
	if opts.Years <= 0 {
		opts.Years = DefaultYears
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.LeapDay == "" {
		opts.LeapDay = LeapDayClamp
	}
	return &Collector{
		source:      source,
		years:       opts.Years,
		concurrency: opts.Concurrency,
		leapDay:     opts.LeapDay,
		logger:      logger,
	}
}

// Years returns the configured window size.
func (c *Collector) Years() int { return c.years }

// Collect queries years currentYear-1 down to currentYear-W. Every issued
// fetch completes before Collect returns. A failed fetch or a missing hour
// drops that year and is logged; it never aborts the others.
func (c *Collector) Collect(ctx context.Context, point domain.GeoPoint, target Target, currentYear int) CollectResult {
	days := c.historicalDates(target, currentYear)

	type slot struct {
		sample domain.WeatherSample
		url    string
		ok     bool
	}
	slots := make([]slot, len(days))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, day := range days {
		g.Go(func() error {
			sample, url, ok := c.sampleYear(ctx, point, day, target.Hour)
			slots[i] = slot{sample: sample, url: url, ok: ok}
			return nil
		})
	}
	_ = g.Wait()

	res := CollectResult{
		Samples:    make([]domain.WeatherSample, 0, len(days)),
		SourceURLs: make([]string, 0, len(days)),
	}
	for _, s := range slots {
		if !s.ok {
			continue
		}
		res.Samples = append(res.Samples, s.sample)
		res.SourceURLs = append(res.SourceURLs, s.url)
	}
	res.YearsQueried = len(res.Samples)
	return res
}

func (c *Collector) sampleYear(ctx context.Context, point domain.GeoPoint, day domain.Date, hour int) (domain.WeatherSample, string, bool) {
	series, err := c.source.HourlyPoint(ctx, point, day)
	if err != nil {
		c.logger.Warn("climatology year unavailable",
			"lat", point.Lat,
			"lng", point.Lng,
			"year", day.Year(),
			"date", day.String(),
			"hour", hour,
			"error", err,
		)
		return domain.WeatherSample{}, "", false
	}

	sample, _, ok := series.SampleAt(hour)
	if !ok {
		c.logger.Warn("climatology year unavailable",
			"lat", point.Lat,
			"lng", point.Lng,
			"year", day.Year(),
			"date", day.String(),
			"hour", hour,
			"error", domain.ErrMissingHour,
		)
		return domain.WeatherSample{}, "", false
	}
	return sample, series.SourceURL, true
}

// historicalDates lists the dates to sample, newest year first.
func (c *Collector) historicalDates(target Target, currentYear int) []domain.Date {
	dates := make([]domain.Date, 0, c.years)
	leapTarget := domain.IsLeapDay(target.Month, target.Day)

	for year := currentYear - 1; year >= currentYear-c.years; year-- {
		day := target.Day
		if leapTarget && !domain.IsLeapYear(year) {
			if c.leapDay == LeapDaySkip {
				continue
			}
			day = 28
		}
		dates = append(dates, domain.NewDate(year, target.Month, day))
	}
	return dates
}
