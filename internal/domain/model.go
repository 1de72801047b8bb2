package domain

import (
	"fmt"
	"time"
)

// Result type discriminators carried in the "type" field of a result record.
const (
	ResultHistorical  = "historical"
	ResultClimatology = "climatology"
)

// GeoPoint is a WGS-84 coordinate. Identity is exact equality of both fields.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Equal reports exact coordinate identity (no epsilon).
func (p GeoPoint) Equal(other GeoPoint) bool {
	return p.Lat == other.Lat && p.Lng == other.Lng
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("%g_%g", p.Lat, p.Lng)
}

// MarkerSettings is the persisted per-marker query snapshot. It never carries
// fetched weather data.
type MarkerSettings struct {
	Point        GeoPoint `json:"point"`
	RangeStart   Date     `json:"rangeStart"`
	RangeEnd     Date     `json:"rangeEnd"`
	SpecificDate Date     `json:"specificDate"`
	SpecificHour *int     `json:"specificHour"`
}

// BlankSettings returns a settings record for point with every query field unset.
func BlankSettings(point GeoPoint) MarkerSettings {
	return MarkerSettings{Point: point}
}

// HasRange reports whether both range bounds are set.
func (s MarkerSettings) HasRange() bool {
	return !s.RangeStart.IsZero() && !s.RangeEnd.IsZero()
}

// HasSpecific reports whether a specific date and hour are both set.
func (s MarkerSettings) HasSpecific() bool {
	return !s.SpecificDate.IsZero() && s.SpecificHour != nil
}

// Query identifies a single point-in-time weather question.
type Query struct {
	Point GeoPoint
	Date  Date
	Hour  int
}

// Validate checks the query is answerable.
func (q Query) Validate() error {
	if q.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidQuery)
	}
	if q.Hour < 0 || q.Hour > 23 {
		return fmt.Errorf("%w: hour %d outside 0..23", ErrInvalidQuery, q.Hour)
	}
	if q.Point.Lat < -90 || q.Point.Lat > 90 || q.Point.Lng < -180 || q.Point.Lng > 180 {
		return fmt.Errorf("%w: coordinate %s out of range", ErrInvalidQuery, q.Point)
	}
	return nil
}

// WeatherSample is one observation. Any field may be nil ("no data").
type WeatherSample struct {
	Temperature         *float64 `json:"t2m"`
	Humidity            *float64 `json:"rh2m"`
	Precipitation       *float64 `json:"prectot"`
	WindSpeed           *float64 `json:"ws10m"`
	ApparentTemperature *float64 `json:"apparentTemperature"`
	Snowfall            *float64 `json:"snowfall"`
	WeatherCode         *int     `json:"weatherCode"`
}

// Result is either an ExactWeatherRecord or a ClimatologySummary.
type Result interface {
	ResultType() string
}

// ExactWeatherRecord is a measured observation for a past or present date.
type ExactWeatherRecord struct {
	Type string `json:"type"`
	WeatherSample
	Weather    string    `json:"weather"`
	ObservedAt time.Time `json:"observedAt"`
	SourceURL  string    `json:"sourceUrl"`
}

func (r *ExactWeatherRecord) ResultType() string { return ResultHistorical }

// VariableStats summarizes one continuous variable across sampled years.
// Every statistic is nil when SampleCount is zero.
type VariableStats struct {
	Mean        *float64 `json:"mean"`
	StdDev      *float64 `json:"stdDev"`
	Quartile25  *float64 `json:"quartile25"`
	Quartile75  *float64 `json:"quartile75"`
	Min         *float64 `json:"min"`
	Max         *float64 `json:"max"`
	SampleCount int      `json:"sampleCount"`
}

// OccurrenceStats adds the fraction of sampled years with a strictly positive
// value. OccurrenceProbability is nil only when there is no information at all.
type OccurrenceStats struct {
	VariableStats
	OccurrenceProbability *float64 `json:"occurrenceProbability"`
}

// ConditionStats is the empirical distribution of weather-condition labels.
type ConditionStats struct {
	Probabilities map[string]float64 `json:"probabilities"`
	Counts        map[string]int     `json:"counts"`
	SampleCount   int                `json:"sampleCount"`
}

// ClimatologySamples keeps the raw per-year values behind a summary, in
// collection order, so exported statistics can be audited.
type ClimatologySamples struct {
	Temperature         []float64 `json:"t2m"`
	Humidity            []float64 `json:"rh2m"`
	Precipitation       []float64 `json:"prectot"`
	WindSpeed           []float64 `json:"ws10m"`
	ApparentTemperature []float64 `json:"apparentTemperature"`
	Snowfall            []float64 `json:"snowfall"`
	WeatherCodes        []int     `json:"weatherCodes"`
}

// ClimatologySummary is the probabilistic estimate for a future date.
type ClimatologySummary struct {
	Type                string             `json:"type"`
	Temperature         VariableStats      `json:"t2m"`
	Humidity            VariableStats      `json:"rh2m"`
	WindSpeed           VariableStats      `json:"ws10m"`
	ApparentTemperature VariableStats      `json:"apparentTemperature"`
	Precipitation       OccurrenceStats    `json:"prectot"`
	Snowfall            OccurrenceStats    `json:"snowfall"`
	Weather             ConditionStats     `json:"weather"`
	Samples             ClimatologySamples `json:"samples"`
	TotalSamples        int                `json:"totalSamples"`
	YearsQueried        int                `json:"yearsQueried"`
	SourceURLs          []string           `json:"sourceUrls"`
	SourceNote          string             `json:"sourceNote"`
}

func (s *ClimatologySummary) ResultType() string { return ResultClimatology }

// Outcome is the Temporal Resolver's answer. Exactly one branch is populated
// on success; both are nil when the historical lookup produced no data.
type Outcome struct {
	IsFuture    bool
	Exact       *ExactWeatherRecord
	Climatology *ClimatologySummary
}

// Result returns the populated branch, or a nil interface when there is none.
func (o Outcome) Result() Result {
	switch {
	case o.Climatology != nil:
		return o.Climatology
	case o.Exact != nil:
		return o.Exact
	default:
		return nil
	}
}

// RangeSeriesPoint is one calendar day of the charting series.
type RangeSeriesPoint struct {
	Date           string   `json:"date"`
	Temperature    *float64 `json:"t2m"`
	Humidity       *float64 `json:"rh2m"`
	Precipitation  *float64 `json:"prectot"`
	WindSpeed      *float64 `json:"ws10m"`
	SolarRadiation *float64 `json:"solarRadiation"`
	HeatIndex      *float64 `json:"heatIndex"`
}

// ExportRequest echoes the query that produced an export.
type ExportRequest struct {
	Point    GeoPoint `json:"point"`
	Date     Date     `json:"date"`
	Hour     int      `json:"hour"`
	IsFuture bool     `json:"isFuture"`
}

// ExportMetadata documents units and provenance.
type ExportMetadata struct {
	Units      map[string]string `json:"units"`
	SourceURLs []string          `json:"sourceUrls"`
}

// ExportDocument is the full record handed to the export serializer.
type ExportDocument struct {
	GeneratedAt time.Time      `json:"generatedAt"`
	Request     ExportRequest  `json:"request"`
	PlaceName   *string        `json:"placeName"`
	Result      Result         `json:"result"`
	Metadata    ExportMetadata `json:"metadata"`
}

// MarkerReport is the refreshed view of one marker: its settings plus freshly
// fetched data. Reports are never persisted.
type MarkerReport struct {
	Settings  MarkerSettings     `json:"settings"`
	PlaceName *string            `json:"placeName"`
	Range     []RangeSeriesPoint `json:"range"`
	IsFuture  bool               `json:"isFuture"`
	Specific  Result             `json:"specific"`
}

// Units lists the measurement unit of every exported variable.
func Units() map[string]string {
	return map[string]string{
		"t2m":                 "°C",
		"rh2m":                "%",
		"prectot":             "mm",
		"ws10m":               "m/s",
		"apparentTemperature": "°C",
		"snowfall":            "mm (water equivalent)",
		"weatherCode":         "WMO weather interpretation code",
		"solarRadiation":      "kW-hr/m^2/day",
		"heatIndex":           "°C",
	}
}
