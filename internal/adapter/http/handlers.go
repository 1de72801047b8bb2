package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/couchcryptid/weather-outlook-service/internal/domain"
	"github.com/couchcryptid/weather-outlook-service/internal/engine"
	"github.com/couchcryptid/weather-outlook-service/internal/export"
	"github.com/couchcryptid/weather-outlook-service/internal/observability"
)

// WeatherService is the engine surface the API depends on.
type WeatherService interface {
	Resolve(ctx context.Context, q domain.Query) (domain.Outcome, error)
	Range(ctx context.Context, point domain.GeoPoint, start, end domain.Date) []domain.RangeSeriesPoint
	Export(ctx context.Context, q domain.Query) (domain.ExportDocument, error)
	Markers(ctx context.Context) ([]domain.MarkerSettings, error)
	SyncMarkers(ctx context.Context, points []domain.GeoPoint) ([]domain.MarkerSettings, error)
	UpdateSettings(ctx context.Context, settings domain.MarkerSettings) ([]domain.MarkerSettings, error)
	QueryMarkers(ctx context.Context) ([]domain.MarkerReport, error)
}

const maxBodyBytes = 1 << 20

type handlers struct {
	svc         WeatherService
	metrics     *observability.Metrics
	logger      *slog.Logger
	fallbackURL string
}

type weatherResponse struct {
	Query    queryEcho     `json:"query"`
	IsFuture bool          `json:"isFuture"`
	Result   domain.Result `json:"result"`
}

type queryEcho struct {
	Point domain.GeoPoint `json:"point"`
	Date  domain.Date     `json:"date"`
	Hour  int             `json:"hour"`
}

func (h *handlers) weather(w http.ResponseWriter, r *http.Request) {
	q, err := parseWeatherQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	outcome, err := h.svc.Resolve(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, weatherResponse{
		Query:    queryEcho{Point: q.Point, Date: q.Date, Hour: q.Hour},
		IsFuture: outcome.IsFuture,
		Result:   outcome.Result(),
	})
}

type rangeResponse struct {
	Point  domain.GeoPoint           `json:"point"`
	Start  domain.Date               `json:"start"`
	End    domain.Date               `json:"end"`
	Series []domain.RangeSeriesPoint `json:"series"`
}

func (h *handlers) weatherRange(w http.ResponseWriter, r *http.Request) {
	point, start, end, err := parseRangeQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, rangeResponse{
		Point:  point,
		Start:  start,
		End:    end,
		Series: h.svc.Range(r.Context(), point, start, end),
	})
}

// export streams one file download. Invalid requests redirect to the
// fallback view instead of producing a malformed file.
func (h *handlers) export(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	q, err := parseWeatherQuery(values)
	if err == nil {
		var format string
		if format, err = exportFormat(values); err == nil {
			h.writeExport(w, r, q, format)
			return
		}
	}

	h.logger.Warn("invalid export request, redirecting", "error", err, "query", r.URL.RawQuery)
	http.Redirect(w, r, h.fallbackURL, http.StatusSeeOther)
}

func (h *handlers) writeExport(w http.ResponseWriter, r *http.Request, q domain.Query, format string) {
	doc, err := h.svc.Export(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	filename := export.Filename(doc, format)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if format == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		err = export.WriteCSV(w, doc)
	} else {
		w.Header().Set("Content-Type", "application/json")
		err = export.WriteJSON(w, doc)
	}
	if err != nil {
		h.logger.Error("write export failed", "error", err, "filename", filename)
		return
	}
	h.metrics.ExportsGenerated.WithLabelValues(format).Inc()
}

func (h *handlers) markers(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.Markers(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"markers": nonNil(settings)})
}

type syncRequest struct {
	Points []domain.GeoPoint `json:"points"`
}

func (h *handlers) syncMarkers(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	for _, p := range req.Points {
		if err := validate.Var(p.Lat, "latitude"); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("%w: latitude %g", domain.ErrInvalidQuery, p.Lat))
			return
		}
		if err := validate.Var(p.Lng, "longitude"); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("%w: longitude %g", domain.ErrInvalidQuery, p.Lng))
			return
		}
	}

	settings, err := h.svc.SyncMarkers(r.Context(), req.Points)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"markers": nonNil(settings)})
}

func (h *handlers) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req domain.MarkerSettings
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	settings, err := h.svc.UpdateSettings(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"markers": nonNil(settings)})
}

func (h *handlers) queryMarkers(w http.ResponseWriter, r *http.Request) {
	reports, err := h.svc.QueryMarkers(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if reports == nil {
		reports = []domain.MarkerReport{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"markers": reports})
}

// fail maps engine errors onto status codes.
func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, engine.ErrUnknownMarker):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.logger.Info("request abandoned", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: request body: %w", domain.ErrInvalidQuery, err)
	}
	return nil
}

func nonNil(settings []domain.MarkerSettings) []domain.MarkerSettings {
	if settings == nil {
		return []domain.MarkerSettings{}
	}
	return settings
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
