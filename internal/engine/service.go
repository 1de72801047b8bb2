package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/couchcryptid/weather-outlook-service/internal/domain"
	"github.com/couchcryptid/weather-outlook-service/internal/observability"
	"golang.org/x/sync/errgroup"
)

// ErrUnknownMarker is returned when settings name a point with no marker.
var ErrUnknownMarker = errors.New("no marker at point")

// Publisher receives every generated export document.
type Publisher interface {
	Publish(ctx context.Context, doc domain.ExportDocument) error
}

// Service orchestrates queries, exports and marker persistence.
type Service struct {
	resolver    *Resolver
	ranges      *RangeBuilder
	store       domain.SettingsStore
	geocoder    domain.Geocoder
	publisher   Publisher
	metrics     *observability.Metrics
	logger      *slog.Logger
	concurrency int

	// markersMu serializes load-modify-save cycles on the settings store.
	markersMu sync.Mutex
}

// ServiceOptions holds the optional collaborators of a Service. A nil
// Geocoder disables place names; a nil Publisher disables publishing.
type ServiceOptions struct {
	Geocoder    domain.Geocoder
	Publisher   Publisher
	Concurrency int // concurrent markers during QueryMarkers
}

// NewService wires a Service.
func NewService(resolver *Resolver, ranges *RangeBuilder, store domain.SettingsStore, opts ServiceOptions, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &Service{
		resolver:    resolver,
		ranges:      ranges,
		store:       store,
		geocoder:    opts.Geocoder,
		publisher:   opts.Publisher,
		metrics:     metrics,
		logger:      logger,
		concurrency: opts.Concurrency,
	}
}

// Resolve answers a single point-in-time query.
func (s *Service) Resolve(ctx context.Context, q domain.Query) (domain.Outcome, error) {
	return s.resolver.Resolve(ctx, q)
}

// Range builds the daily series for point between start and end.
func (s *Service) Range(ctx context.Context, point domain.GeoPoint, start, end domain.Date) []domain.RangeSeriesPoint {
	return s.ranges.Build(ctx, point, start, end)
}

// PlaceName returns a best-effort place name for point.
func (s *Service) PlaceName(ctx context.Context, point domain.GeoPoint) *string {
	return domain.LookupPlaceName(ctx, s.geocoder, point, s.logger)
}

// Export resolves q and assembles the export document. A configured
// Publisher receives the document; publish failures are logged only.
func (s *Service) Export(ctx context.Context, q domain.Query) (domain.ExportDocument, error) {
	outcome, err := s.resolver.Resolve(ctx, q)
	if err != nil {
		return domain.ExportDocument{}, err
	}

	doc := domain.ExportDocument{
		GeneratedAt: domain.Now(),
		Request: domain.ExportRequest{
			Point:    q.Point,
			Date:     q.Date,
			Hour:     q.Hour,
			IsFuture: outcome.IsFuture,
		},
		PlaceName: s.PlaceName(ctx, q.Point),
		Result:    outcome.Result(),
		Metadata: domain.ExportMetadata{
			Units:      domain.Units(),
			SourceURLs: sourceURLs(outcome),
		},
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, doc); err != nil {
			s.metrics.ExportsPublished.WithLabelValues("error").Inc()
			s.logger.Warn("export publish failed", "error", err, "point", q.Point.String())
		} else {
			s.metrics.ExportsPublished.WithLabelValues("success").Inc()
		}
	}
	return doc, nil
}

func sourceURLs(o domain.Outcome) []string {
	switch {
	case o.Climatology != nil:
		return o.Climatology.SourceURLs
	case o.Exact != nil && o.Exact.SourceURL != "":
		return []string{o.Exact.SourceURL}
	default:
		return []string{}
	}
}

// Markers returns the persisted marker settings.
func (s *Service) Markers(ctx context.Context) ([]domain.MarkerSettings, error) {
	settings, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load markers: %w", err)
	}
	return settings, nil
}

// SyncMarkers reconciles the persisted settings with the current marker
// points, saves the result and returns it.
func (s *Service) SyncMarkers(ctx context.Context, points []domain.GeoPoint) ([]domain.MarkerSettings, error) {
	s.markersMu.Lock()
	defer s.markersMu.Unlock()

	persisted, err := s.Markers(ctx)
	if err != nil {
		return nil, err
	}

	reconciled := Reconcile(points, persisted)
	if err := s.store.Save(ctx, reconciled); err != nil {
		return nil, fmt.Errorf("save markers: %w", err)
	}

	s.metrics.MarkerSyncs.Inc()
	s.logger.Info("markers synced",
		"markers", len(reconciled),
		"dropped", len(persisted)-countCarried(reconciled, persisted),
	)
	return reconciled, nil
}

func countCarried(reconciled, persisted []domain.MarkerSettings) int {
	n := 0
	for _, p := range persisted {
		if indexOf(reconciled, p.Point) >= 0 {
			n++
		}
	}
	return n
}

// UpdateSettings replaces the settings of the marker at updated.Point and
// saves the snapshot.
func (s *Service) UpdateSettings(ctx context.Context, updated domain.MarkerSettings) ([]domain.MarkerSettings, error) {
	if err := validateSettings(updated); err != nil {
		return nil, err
	}

	s.markersMu.Lock()
	defer s.markersMu.Unlock()

	settings, err := s.Markers(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(settings, updated.Point)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMarker, updated.Point)
	}
	settings[i] = updated

	if err := s.store.Save(ctx, settings); err != nil {
		return nil, fmt.Errorf("save markers: %w", err)
	}
	return settings, nil
}

func validateSettings(ms domain.MarkerSettings) error {
	if ms.SpecificHour != nil && (*ms.SpecificHour < 0 || *ms.SpecificHour > 23) {
		return fmt.Errorf("%w: hour %d outside 0..23", domain.ErrInvalidQuery, *ms.SpecificHour)
	}
	if ms.HasRange() && ms.RangeStart.After(ms.RangeEnd) {
		return fmt.Errorf("%w: range start %s after end %s", domain.ErrInvalidQuery, ms.RangeStart, ms.RangeEnd)
	}
	return nil
}

// QueryMarkers refreshes every persisted marker concurrently. Each report
// carries fresh range and specific-date data; one marker's failure leaves
// only that marker's fields empty.
func (s *Service) QueryMarkers(ctx context.Context) ([]domain.MarkerReport, error) {
	settings, err := s.Markers(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]domain.MarkerReport, len(settings))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, ms := range settings {
		g.Go(func() error {
			reports[i] = s.report(ctx, ms)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return reports, nil
}

func (s *Service) report(ctx context.Context, ms domain.MarkerSettings) domain.MarkerReport {
	r := domain.MarkerReport{
		Settings:  ms,
		PlaceName: s.PlaceName(ctx, ms.Point),
		Range:     s.ranges.Build(ctx, ms.Point, ms.RangeStart, ms.RangeEnd),
	}
	if !ms.HasSpecific() {
		return r
	}

	outcome, err := s.resolver.Resolve(ctx, domain.Query{Point: ms.Point, Date: ms.SpecificDate, Hour: *ms.SpecificHour})
	if err != nil {
		s.logger.Warn("marker query failed", "point", ms.Point.String(), "error", err)
		return r
	}
	r.IsFuture = outcome.IsFuture
	r.Specific = outcome.Result()
	return r
}
