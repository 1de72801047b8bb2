package engine_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/weather-outlook-service/internal/domain"
)

var errProviderDown = errors.New("provider down")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

// fakeHourly serves a synthetic day per request. Years listed in failYears
// return an error; years in noHour return a series without the target hours.
type fakeHourly struct {
	mu        sync.Mutex
	requested []domain.Date
	failYears map[int]bool
	noHour    map[int]bool
	sample    func(day domain.Date) domain.WeatherSample
}

func (f *fakeHourly) HourlyPoint(ctx context.Context, _ domain.GeoPoint, day domain.Date) (domain.HourlySeries, error) {
	f.mu.Lock()
	f.requested = append(f.requested, day)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return domain.HourlySeries{}, err
	}
	if f.failYears[day.Year()] {
		return domain.HourlySeries{}, fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, errProviderDown)
	}

	hours := 24
	if f.noHour[day.Year()] {
		hours = 6
	}
	s := f.sample(day)
	series := domain.HourlySeries{SourceURL: "https://archive.test/" + day.String()}
	for h := 0; h < hours; h++ {
		series.Times = append(series.Times, day.Time().Add(time.Duration(h)*time.Hour))
		series.Temperature = append(series.Temperature, s.Temperature)
		series.Humidity = append(series.Humidity, s.Humidity)
		series.Precipitation = append(series.Precipitation, s.Precipitation)
		series.WindSpeed = append(series.WindSpeed, s.WindSpeed)
		series.ApparentTemperature = append(series.ApparentTemperature, s.ApparentTemperature)
		series.Snowfall = append(series.Snowfall, s.Snowfall)
		series.WeatherCode = append(series.WeatherCode, s.WeatherCode)
	}
	return series, nil
}

func (f *fakeHourly) requestedDates() []domain.Date {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Date, len(f.requested))
	copy(out, f.requested)
	return out
}

// yearlySample derives distinct values from the year so ordering is visible.
func yearlySample(day domain.Date) domain.WeatherSample {
	y := float64(day.Year() - 2000)
	return domain.WeatherSample{
		Temperature:         ptr(y),
		Humidity:            ptr(50 + y),
		Precipitation:       ptr(float64(day.Year() % 2)),
		WindSpeed:           ptr(3.0),
		ApparentTemperature: ptr(y - 1),
		Snowfall:            ptr(0.0),
		WeatherCode:         ptr(day.Year() % 2 * 3),
	}
}

type fakeRange struct {
	calls  int
	series domain.DailySeries
	err    error
}

func (f *fakeRange) DailyRange(_ context.Context, _ domain.GeoPoint, _, _ domain.Date) (domain.DailySeries, error) {
	f.calls++
	return f.series, f.err
}

type memoryStore struct {
	mu       sync.Mutex
	settings []domain.MarkerSettings
	saves    int
	loadErr  error
	saveErr  error

	// beforeLoad runs ahead of every Load, outside the store lock.
	beforeLoad func()
}

func (m *memoryStore) Load(_ context.Context) ([]domain.MarkerSettings, error) {
	if m.beforeLoad != nil {
		m.beforeLoad()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make([]domain.MarkerSettings, len(m.settings))
	copy(out, m.settings)
	return out, nil
}

func (m *memoryStore) Save(_ context.Context, settings []domain.MarkerSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.settings = append([]domain.MarkerSettings(nil), settings...)
	m.saves++
	return nil
}

type stubGeocoder struct {
	result domain.GeocodingResult
	err    error
}

func (s stubGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (domain.GeocodingResult, error) {
	return s.result, s.err
}

type recordingPublisher struct {
	mu   sync.Mutex
	docs []domain.ExportDocument
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, doc domain.ExportDocument) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.docs = append(p.docs, doc)
	return p.err
}
