package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/couchcryptid/weather-outlook-service/internal/domain"
	"github.com/couchcryptid/weather-outlook-service/internal/engine"
	"github.com/couchcryptid/weather-outlook-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freezeClock(t *testing.T, at time.Time) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(at))
	t.Cleanup(func() { domain.SetClock(nil) })
}

func newResolver(src domain.HourlySource, years int) *engine.Resolver {
	c := engine.NewCollector(src, engine.CollectorOptions{Years: years, Concurrency: 4}, discardLogger())
	return engine.NewResolver(src, c, observability.NewMetricsForTesting(), discardLogger())
}

func TestIsFuture(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		day  domain.Date
		want bool
	}{
		{"tomorrow", domain.NewDate(2025, time.June, 2), true},
		{"today", domain.NewDate(2025, time.June, 1), false},
		{"last year", domain.NewDate(2024, time.June, 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.IsFuture(tt.day, now))
		})
	}
}

func TestIsFuture_LateInTheDay(t *testing.T) {
	now := time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC)
	assert.False(t, engine.IsFuture(domain.NewDate(2025, time.June, 1), now))
	assert.True(t, engine.IsFuture(domain.NewDate(2025, time.June, 2), now))
}

func TestResolver_PastDateReturnsExactRecord(t *testing.T) {
	freezeClock(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	src := &fakeHourly{sample: yearlySample}

	out, err := newResolver(src, 10).Resolve(context.Background(), domain.Query{
		Point: testPoint, Date: domain.NewDate(2024, time.June, 1), Hour: 12,
	})
	require.NoError(t, err)

	assert.False(t, out.IsFuture)
	assert.Nil(t, out.Climatology)
	require.NotNil(t, out.Exact)
	assert.Equal(t, domain.ResultHistorical, out.Exact.Type)
	assert.Equal(t, 24.0, *out.Exact.Temperature)
	assert.Equal(t, "Clear sky", out.Exact.Weather)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), out.Exact.ObservedAt)
	assert.Equal(t, "https://archive.test/2024-06-01", out.Exact.SourceURL)
	assert.Len(t, src.requestedDates(), 1)
}

func TestResolver_TodayIsExact(t *testing.T) {
	freezeClock(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	out, err := newResolver(&fakeHourly{sample: yearlySample}, 10).Resolve(context.Background(), domain.Query{
		Point: testPoint, Date: domain.NewDate(2025, time.June, 1), Hour: 0,
	})
	require.NoError(t, err)
	assert.False(t, out.IsFuture)
	assert.NotNil(t, out.Exact)
}

func TestResolver_FutureDateReturnsClimatology(t *testing.T) {
	freezeClock(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	src := &fakeHourly{sample: yearlySample, failYears: map[int]bool{2023: true, 2019: true, 2016: true}}

	out, err := newResolver(src, 10).Resolve(context.Background(), domain.Query{
		Point: testPoint, Date: domain.NewDate(2025, time.June, 2), Hour: 12,
	})
	require.NoError(t, err)

	assert.True(t, out.IsFuture)
	assert.Nil(t, out.Exact)
	require.NotNil(t, out.Climatology)
	s := out.Climatology
	assert.Equal(t, 7, s.YearsQueried)
	assert.Equal(t, 7, s.Temperature.SampleCount)
	assert.Equal(t, 7, s.Humidity.SampleCount)
	assert.Len(t, s.SourceURLs, 7)
	assert.Contains(t, s.SourceNote, "7 of 10")

	for _, d := range src.requestedDates() {
		assert.Equal(t, time.June, d.Month())
		assert.Equal(t, 2, d.Day())
		assert.Less(t, d.Year(), 2025)
	}
}

func TestResolver_ProviderFailureYieldsNoResult(t *testing.T) {
	freezeClock(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	src := &fakeHourly{sample: yearlySample, failYears: map[int]bool{2024: true}}

	out, err := newResolver(src, 10).Resolve(context.Background(), domain.Query{
		Point: testPoint, Date: domain.NewDate(2024, time.January, 5), Hour: 8,
	})
	require.NoError(t, err)
	assert.Nil(t, out.Result())
	assert.False(t, out.IsFuture)
}

func TestResolver_MissingHourYieldsNoResult(t *testing.T) {
	freezeClock(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	src := &fakeHourly{sample: yearlySample, noHour: map[int]bool{2024: true}}

	out, err := newResolver(src, 10).Resolve(context.Background(), domain.Query{
		Point: testPoint, Date: domain.NewDate(2024, time.January, 5), Hour: 18,
	})
	require.NoError(t, err)
	assert.Nil(t, out.Result())
}

func TestResolver_InvalidQuery(t *testing.T) {
	r := newResolver(&fakeHourly{sample: yearlySample}, 10)

	_, err := r.Resolve(context.Background(), domain.Query{Point: testPoint, Date: domain.NewDate(2024, time.June, 1), Hour: 24})
	require.ErrorIs(t, err, domain.ErrInvalidQuery)

	_, err = r.Resolve(context.Background(), domain.Query{Point: testPoint, Hour: 3})
	require.ErrorIs(t, err, domain.ErrInvalidQuery)
}

func TestResolver_CancelledContextIsAnError(t *testing.T) {
	freezeClock(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newResolver(&fakeHourly{sample: yearlySample}, 10)

	_, err := r.Resolve(ctx, domain.Query{Point: testPoint, Date: domain.NewDate(2026, time.June, 1), Hour: 12})
	require.ErrorIs(t, err, context.Canceled)

	_, err = r.Resolve(ctx, domain.Query{Point: testPoint, Date: domain.NewDate(2024, time.June, 1), Hour: 12})
	require.ErrorIs(t, err, context.Canceled)
}

func TestResolver_OneYearAheadEndToEnd(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	freezeClock(t, now)
	src := &fakeHourly{sample: yearlySample, failYears: map[int]bool{2021: true}}

	out, err := newResolver(src, 10).Resolve(context.Background(), domain.Query{
		Point: domain.GeoPoint{Lat: 40.0, Lng: -74.0},
		Date:  domain.DateOf(now.AddDate(1, 0, 0)),
		Hour:  12,
	})
	require.NoError(t, err)
	require.NotNil(t, out.Climatology)

	s := out.Climatology
	assert.GreaterOrEqual(t, s.Temperature.SampleCount, 0)
	assert.LessOrEqual(t, s.Temperature.SampleCount, 10)
	for _, p := range []*float64{s.Precipitation.OccurrenceProbability, s.Snowfall.OccurrenceProbability} {
		require.NotNil(t, p)
		assert.GreaterOrEqual(t, *p, 0.0)
		assert.LessOrEqual(t, *p, 1.0)
	}
}
