package domain

import "time"

// MissingValue is the provider sentinel for "no measurement".
const MissingValue = -999.0

// NormalizeSentinel returns nil for nil or the exact sentinel value and a copy
// of the value otherwise.
func NormalizeSentinel(v *float64) *float64 {
	if v == nil || *v == MissingValue {
		return nil
	}
	out := *v
	return &out
}

func normalizeCode(v *int) *int {
	if v == nil || *v == int(MissingValue) {
		return nil
	}
	out := *v
	return &out
}

// HourlySeries is one provider day of parallel hourly arrays. Arrays may be
// shorter than Times; missing positions read as nil.
type HourlySeries struct {
	Times               []time.Time
	Temperature         []*float64
	Humidity            []*float64
	Precipitation       []*float64
	WindSpeed           []*float64
	ApparentTemperature []*float64
	Snowfall            []*float64
	WeatherCode         []*int
	SourceURL           string
}

// SampleAt returns the sentinel-normalized sample for the first row whose UTC
// hour equals hour, and the row's timestamp.
func (s HourlySeries) SampleAt(hour int) (WeatherSample, time.Time, bool) {
	for i, ts := range s.Times {
		if ts.UTC().Hour() != hour {
			continue
		}
		return WeatherSample{
			Temperature:         NormalizeSentinel(floatAt(s.Temperature, i)),
			Humidity:            NormalizeSentinel(floatAt(s.Humidity, i)),
			Precipitation:       NormalizeSentinel(floatAt(s.Precipitation, i)),
			WindSpeed:           NormalizeSentinel(floatAt(s.WindSpeed, i)),
			ApparentTemperature: NormalizeSentinel(floatAt(s.ApparentTemperature, i)),
			Snowfall:            NormalizeSentinel(floatAt(s.Snowfall, i)),
			WeatherCode:         normalizeCode(intAt(s.WeatherCode, i)),
		}, ts.UTC(), true
	}
	return WeatherSample{}, time.Time{}, false
}

func floatAt(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func intAt(values []*int, i int) *int {
	if i < len(values) {
		return values[i]
	}
	return nil
}

// DailyValues is one day of the range endpoint's variables, still raw.
type DailyValues struct {
	Temperature    *float64
	Humidity       *float64
	Precipitation  *float64
	WindSpeed      *float64
	SolarRadiation *float64
}

// DailySeries maps 8-digit YYYYMMDD keys to that day's raw values.
type DailySeries struct {
	Days      map[string]DailyValues
	SourceURL string
}
