package engine

import (
	"github.com/couchcryptid/weather-outlook-service/internal/domain"
)

// Aggregate reduces collected samples to a climatology summary. Each variable
// is summarized over its own non-null values, so one variable's gaps never
// shrink another's sample count.
func Aggregate(samples []domain.WeatherSample, yearsQueried int) domain.ClimatologySummary {
	temperature, humidity, wind := []float64{}, []float64{}, []float64{}
	apparent, precipitation, snowfall := []float64{}, []float64{}, []float64{}
	codes := []int{}
	var labels []string
	for _, s := range samples {
		temperature = appendValue(temperature, s.Temperature)
		humidity = appendValue(humidity, s.Humidity)
		wind = appendValue(wind, s.WindSpeed)
		apparent = appendValue(apparent, s.ApparentTemperature)
		precipitation = appendValue(precipitation, s.Precipitation)
		snowfall = appendValue(snowfall, s.Snowfall)
		if s.WeatherCode != nil {
			codes = append(codes, *s.WeatherCode)
			labels = append(labels, domain.ConditionKey(*s.WeatherCode))
		}
	}

	total := len(labels)
	if total == 0 {
		total = max(len(temperature), len(humidity), len(wind), len(apparent), len(precipitation), len(snowfall))
	}

	return domain.ClimatologySummary{
		Type:                domain.ResultClimatology,
		Temperature:         summarize(temperature),
		Humidity:            summarize(humidity),
		WindSpeed:           summarize(wind),
		ApparentTemperature: summarize(apparent),
		Precipitation:       occurrence(precipitation, total),
		Snowfall:            occurrence(snowfall, total),
		Weather: domain.ConditionStats{
			Probabilities: domain.CategoricalProbabilities(labels),
			Counts:        domain.CategoricalCounts(labels),
			SampleCount:   len(labels),
		},
		Samples: domain.ClimatologySamples{
			Temperature:         temperature,
			Humidity:            humidity,
			Precipitation:       precipitation,
			WindSpeed:           wind,
			ApparentTemperature: apparent,
			Snowfall:            snowfall,
			WeatherCodes:        codes,
		},
		TotalSamples: total,
		YearsQueried: yearsQueried,
		SourceURLs:   []string{},
	}
}

func appendValue(values []float64, v *float64) []float64 {
	if v == nil {
		return values
	}
	return append(values, *v)
}

func summarize(values []float64) domain.VariableStats {
	return domain.VariableStats{
		Mean:        domain.Mean(values),
		StdDev:      domain.StdDev(values),
		Quartile25:  domain.Percentile(values, 0.25),
		Quartile75:  domain.Percentile(values, 0.75),
		Min:         domain.Min(values),
		Max:         domain.Max(values),
		SampleCount: len(values),
	}
}

// occurrence adds the fraction of strictly positive values. With no values the
// denominator falls back to totalSamples; with no information at all the
// probability is nil rather than a misleading zero.
func occurrence(values []float64, totalSamples int) domain.OccurrenceStats {
	stats := domain.OccurrenceStats{VariableStats: summarize(values)}

	denominator := len(values)
	if denominator == 0 {
		denominator = totalSamples
	}
	if denominator == 0 {
		return stats
	}

	positive := 0
	for _, v := range values {
		if v > 0 {
			positive++
		}
	}
	p := float64(positive) / float64(denominator)
	stats.OccurrenceProbability = &p
	return stats
}
