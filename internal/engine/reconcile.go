package engine

import "github.com/couchcryptid/weather-outlook-service/internal/domain"

// Reconcile merges the current marker points with persisted settings. The
// result follows points order: a point with matching persisted settings
// (exact coordinate equality) keeps its query fields, any other point gets a
// blank record, and settings for points no longer present are dropped.
func Reconcile(points []domain.GeoPoint, persisted []domain.MarkerSettings) []domain.MarkerSettings {
	out := make([]domain.MarkerSettings, 0, len(points))
	for _, p := range points {
		settings := domain.BlankSettings(p)
		if i := indexOf(persisted, p); i >= 0 {
			settings = persisted[i]
			settings.Point = p
		}
		out = append(out, settings)
	}
	return out
}

func indexOf(settings []domain.MarkerSettings, p domain.GeoPoint) int {
	for i, s := range settings {
		if s.Point.Equal(p) {
			return i
		}
	}
	return -1
}
