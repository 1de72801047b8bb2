// Package sqlstore persists marker settings in SQLite or PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/weather-outlook-service/internal/domain"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

const schema = `CREATE TABLE IF NOT EXISTS marker_settings (
	seq           INTEGER PRIMARY KEY,
	lat           DOUBLE PRECISION NOT NULL,
	lng           DOUBLE PRECISION NOT NULL,
	range_start   TEXT,
	range_end     TEXT,
	specific_date TEXT,
	specific_hour INTEGER
)`

const insertRow = `INSERT INTO marker_settings
	(seq, lat, lng, range_start, range_end, specific_date, specific_hour)
	VALUES (:seq, :lat, :lng, :range_start, :range_end, :specific_date, :specific_hour)`

// Store is a domain.SettingsStore backed by a single table. Every Save
// replaces the whole snapshot.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// Open connects with driver ("sqlite3" or "postgres") and ensures the schema.
func Open(ctx context.Context, driver, dsn string, logger *slog.Logger) (*Store, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open settings db: %w", err)
	}
	if driver == "sqlite3" {
		// One writer avoids "database is locked" and keeps :memory: to one database.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping settings db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	logger.Info("settings store ready", "driver", driver)
	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// CheckReadiness pings the database.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Load returns the saved snapshot in marker order. Rows with unparseable
// dates load with that field unset.
func (s *Store) Load(ctx context.Context) ([]domain.MarkerSettings, error) {
	var rows []settingsRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT seq, lat, lng, range_start, range_end, specific_date, specific_hour
		 FROM marker_settings ORDER BY seq`); err != nil {
		return nil, fmt.Errorf("load marker settings: %w", err)
	}

	settings := make([]domain.MarkerSettings, 0, len(rows))
	for _, r := range rows {
		settings = append(settings, r.toDomain(s.logger))
	}
	return settings, nil
}

// Save atomically replaces the stored snapshot with settings.
func (s *Store) Save(ctx context.Context, settings []domain.MarkerSettings) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM marker_settings`); err != nil {
		return fmt.Errorf("clear marker settings: %w", err)
	}
	for i, ms := range settings {
		if _, err := tx.NamedExecContext(ctx, insertRow, fromDomain(i, ms)); err != nil {
			return fmt.Errorf("insert marker %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit marker settings: %w", err)
	}

	s.logger.Debug("marker settings saved", "markers", len(settings))
	return nil
}

type settingsRow struct {
	Seq          int            `db:"seq"`
	Lat          float64        `db:"lat"`
	Lng          float64        `db:"lng"`
	RangeStart   sql.NullString `db:"range_start"`
	RangeEnd     sql.NullString `db:"range_end"`
	SpecificDate sql.NullString `db:"specific_date"`
	SpecificHour sql.NullInt64  `db:"specific_hour"`
}

func fromDomain(seq int, ms domain.MarkerSettings) settingsRow {
	row := settingsRow{
		Seq:          seq,
		Lat:          ms.Point.Lat,
		Lng:          ms.Point.Lng,
		RangeStart:   nullDate(ms.RangeStart),
		RangeEnd:     nullDate(ms.RangeEnd),
		SpecificDate: nullDate(ms.SpecificDate),
	}
	if ms.SpecificHour != nil {
		row.SpecificHour = sql.NullInt64{Int64: int64(*ms.SpecificHour), Valid: true}
	}
	return row
}

func (r settingsRow) toDomain(logger *slog.Logger) domain.MarkerSettings {
	ms := domain.BlankSettings(domain.GeoPoint{Lat: r.Lat, Lng: r.Lng})
	ms.RangeStart = parseNullDate(r.RangeStart, "range_start", r.Seq, logger)
	ms.RangeEnd = parseNullDate(r.RangeEnd, "range_end", r.Seq, logger)
	ms.SpecificDate = parseNullDate(r.SpecificDate, "specific_date", r.Seq, logger)
	if r.SpecificHour.Valid {
		h := int(r.SpecificHour.Int64)
		ms.SpecificHour = &h
	}
	return ms
}

func nullDate(d domain.Date) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseNullDate(s sql.NullString, column string, seq int, logger *slog.Logger) domain.Date {
	if !s.Valid {
		return domain.Date{}
	}
	d, err := domain.ParseDate(s.String)
	if err != nil {
		logger.Warn("ignoring unparseable stored date", "column", column, "marker", seq, "value", s.String)
		return domain.Date{}
	}
	return d
}
