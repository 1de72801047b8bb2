package engine_test

import (
	"testing"

	"github.com/couchcryptid/weather-outlook-service/internal/domain"
	"github.com/couchcryptid/weather-outlook-service/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_VariablesCountedIndependently(t *testing.T) {
	samples := []domain.WeatherSample{
		{Temperature: ptr(10.0), Humidity: ptr(40.0), WeatherCode: ptr(0)},
		{Temperature: ptr(20.0), Humidity: nil, WeatherCode: ptr(0)},
		{Temperature: ptr(30.0), Humidity: ptr(60.0), WeatherCode: ptr(3)},
		{Temperature: nil, Humidity: ptr(80.0)},
	}

	s := engine.Aggregate(samples, 4)

	assert.Equal(t, domain.ResultClimatology, s.Type)
	assert.Equal(t, 3, s.Temperature.SampleCount)
	assert.Equal(t, 3, s.Humidity.SampleCount)
	assert.Equal(t, 0, s.WindSpeed.SampleCount)
	assert.Equal(t, 4, s.YearsQueried)

	require.NotNil(t, s.Temperature.Mean)
	assert.InDelta(t, 20.0, *s.Temperature.Mean, 1e-9)
	assert.InDelta(t, 8.16496580927726, *s.Temperature.StdDev, 1e-9)
	assert.InDelta(t, 15.0, *s.Temperature.Quartile25, 1e-9)
	assert.InDelta(t, 25.0, *s.Temperature.Quartile75, 1e-9)
	assert.Equal(t, 10.0, *s.Temperature.Min)
	assert.Equal(t, 30.0, *s.Temperature.Max)

	assert.Nil(t, s.WindSpeed.Mean)
	assert.Nil(t, s.WindSpeed.StdDev)
	assert.Nil(t, s.WindSpeed.Quartile25)
}

func TestAggregate_TotalSamplesPrefersWeatherCodes(t *testing.T) {
	samples := []domain.WeatherSample{
		{Temperature: ptr(1.0), WeatherCode: ptr(61)},
		{Temperature: ptr(2.0), WeatherCode: ptr(61)},
		{Temperature: ptr(3.0), WeatherCode: ptr(2)},
		{Temperature: ptr(4.0)},
	}

	s := engine.Aggregate(samples, 4)

	assert.Equal(t, 3, s.TotalSamples)
	assert.Equal(t, 3, s.Weather.SampleCount)
	assert.Equal(t, map[string]int{"Rain: Slight": 2, "Partly cloudy": 1}, s.Weather.Counts)
	assert.InDelta(t, 2.0/3.0, s.Weather.Probabilities["Rain: Slight"], 1e-9)
	assert.InDelta(t, 1.0/3.0, s.Weather.Probabilities["Partly cloudy"], 1e-9)
}

func TestAggregate_TotalSamplesFallsBackToLargestVariable(t *testing.T) {
	samples := []domain.WeatherSample{
		{Temperature: ptr(1.0), Humidity: ptr(1.0)},
		{Temperature: ptr(2.0)},
		{Temperature: ptr(3.0)},
	}

	s := engine.Aggregate(samples, 3)

	assert.Equal(t, 3, s.TotalSamples)
	assert.Empty(t, s.Weather.Probabilities)
	assert.NotNil(t, s.Weather.Probabilities, "empty map, not null")
}

func TestAggregate_OccurrenceProbability(t *testing.T) {
	samples := []domain.WeatherSample{
		{Precipitation: ptr(0.0), WeatherCode: ptr(0)},
		{Precipitation: ptr(1.2), WeatherCode: ptr(61)},
		{Precipitation: ptr(0.4), WeatherCode: ptr(61)},
		{Precipitation: ptr(0.0), WeatherCode: ptr(0)},
	}

	s := engine.Aggregate(samples, 4)

	require.NotNil(t, s.Precipitation.OccurrenceProbability)
	assert.InDelta(t, 0.5, *s.Precipitation.OccurrenceProbability, 1e-9)

	// Snowfall has no values: denominator falls back to totalSamples.
	require.NotNil(t, s.Snowfall.OccurrenceProbability)
	assert.Equal(t, 0.0, *s.Snowfall.OccurrenceProbability)
	assert.Equal(t, 0, s.Snowfall.SampleCount)
}

func TestAggregate_NoInformationYieldsNilProbability(t *testing.T) {
	s := engine.Aggregate(nil, 0)

	assert.Equal(t, 0, s.TotalSamples)
	assert.Nil(t, s.Precipitation.OccurrenceProbability)
	assert.Nil(t, s.Snowfall.OccurrenceProbability)
	assert.Nil(t, s.Temperature.Mean)
	assert.Equal(t, 0, s.Weather.SampleCount)
}

func TestAggregate_UnknownCodeKeyedByNumber(t *testing.T) {
	s := engine.Aggregate([]domain.WeatherSample{{WeatherCode: ptr(42)}}, 1)
	assert.Equal(t, map[string]int{"42": 1}, s.Weather.Counts)
}

func TestAggregate_KeepsRawSamples(t *testing.T) {
	samples := []domain.WeatherSample{
		{Temperature: ptr(10.0), Precipitation: ptr(0.0), WeatherCode: ptr(61)},
		{Temperature: nil, Precipitation: ptr(1.2)},
		{Temperature: ptr(30.0), WeatherCode: ptr(0)},
	}

	s := engine.Aggregate(samples, 3)

	assert.Equal(t, []float64{10, 30}, s.Samples.Temperature)
	assert.Equal(t, []float64{0, 1.2}, s.Samples.Precipitation)
	assert.Equal(t, []int{61, 0}, s.Samples.WeatherCodes)
	assert.Len(t, s.Samples.Temperature, s.Temperature.SampleCount)
	assert.NotNil(t, s.Samples.Snowfall)
	assert.Empty(t, s.Samples.Snowfall)
}
