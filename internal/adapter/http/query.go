package http

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/couchcryptid/weather-outlook-service/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// pointQuery holds the coordinate query parameters.
type pointQuery struct {
	Lat string `validate:"required,latitude"`
	Lng string `validate:"required,longitude"`
}

func (p pointQuery) toPoint() domain.GeoPoint {
	lat, _ := strconv.ParseFloat(p.Lat, 64)
	lng, _ := strconv.ParseFloat(p.Lng, 64)
	return domain.GeoPoint{Lat: lat, Lng: lng}
}

// weatherQuery identifies one point-in-time question.
type weatherQuery struct {
	pointQuery
	Date string `validate:"required,datetime=2006-01-02"`
	Hour string `validate:"required,number"`
}

func parseWeatherQuery(values url.Values) (domain.Query, error) {
	q := weatherQuery{
		pointQuery: pointQuery{Lat: values.Get("lat"), Lng: values.Get("lng")},
		Date:       values.Get("date"),
		Hour:       values.Get("hour"),
	}
	if err := validate.Struct(q); err != nil {
		return domain.Query{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}

	date, err := domain.ParseDate(q.Date)
	if err != nil {
		return domain.Query{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	hour, err := strconv.Atoi(q.Hour)
	if err != nil {
		return domain.Query{}, fmt.Errorf("%w: hour: %w", domain.ErrInvalidQuery, err)
	}

	query := domain.Query{Point: q.toPoint(), Date: date, Hour: hour}
	if err := query.Validate(); err != nil {
		return domain.Query{}, err
	}
	return query, nil
}

// rangeQuery bounds a daily series. Either bound may be omitted, which
// yields an empty series.
type rangeQuery struct {
	pointQuery
	Start string `validate:"omitempty,datetime=2006-01-02"`
	End   string `validate:"omitempty,datetime=2006-01-02"`
}

func parseRangeQuery(values url.Values) (domain.GeoPoint, domain.Date, domain.Date, error) {
	q := rangeQuery{
		pointQuery: pointQuery{Lat: values.Get("lat"), Lng: values.Get("lng")},
		Start:      values.Get("start"),
		End:        values.Get("end"),
	}
	if err := validate.Struct(q); err != nil {
		return domain.GeoPoint{}, domain.Date{}, domain.Date{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}

	start, err := domain.ParseDate(q.Start)
	if err != nil {
		return domain.GeoPoint{}, domain.Date{}, domain.Date{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	end, err := domain.ParseDate(q.End)
	if err != nil {
		return domain.GeoPoint{}, domain.Date{}, domain.Date{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	return q.toPoint(), start, end, nil
}

// exportFormat returns the requested format, defaulting to JSON.
func exportFormat(values url.Values) (string, error) {
	format := values.Get("format")
	if format == "" {
		return "json", nil
	}
	if err := validate.Var(format, "oneof=json csv"); err != nil {
		return "", fmt.Errorf("%w: format must be json or csv", domain.ErrInvalidQuery)
	}
	return format, nil
}
