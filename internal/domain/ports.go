package domain

import "context"

// HourlySource returns one calendar day of hourly observations for a point.
type HourlySource interface {
	HourlyPoint(ctx context.Context, point GeoPoint, day Date) (HourlySeries, error)
}

// RangeSource returns one entry per calendar day between start and end inclusive.
type RangeSource interface {
	DailyRange(ctx context.Context, point GeoPoint, start, end Date) (DailySeries, error)
}

// SettingsStore persists the minimal per-marker settings snapshot.
type SettingsStore interface {
	Load(ctx context.Context) ([]MarkerSettings, error)
	Save(ctx context.Context, settings []MarkerSettings) error
}
