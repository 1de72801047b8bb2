// Command export answers one point-in-time weather question and writes the
// result as a JSON or CSV export file, using the same engine and provider
// configuration as the service.
//
// Usage:
//
//	go run ./cmd/export -lat 39.74 -lng -104.99 -date 2025-07-04 -hour 15 \
//	  -format csv -out exports/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/couchcryptid/weather-outlook-service/internal/app"
	"github.com/couchcryptid/weather-outlook-service/internal/config"
	"github.com/couchcryptid/weather-outlook-service/internal/domain"
	"github.com/couchcryptid/weather-outlook-service/internal/export"
	"github.com/couchcryptid/weather-outlook-service/internal/observability"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	lat := flag.Float64("lat", 0, "latitude in decimal degrees")
	lng := flag.Float64("lng", 0, "longitude in decimal degrees")
	date := flag.String("date", "", "calendar date (YYYY-MM-DD)")
	hour := flag.Int("hour", 12, "hour of day (0-23, UTC)")
	format := flag.String("format", "json", "export format: json or csv")
	outDir := flag.String("out", ".", "output directory")
	flag.Parse()

	if *date == "" {
		flag.Usage()
		return errors.New("missing required flag: -date")
	}
	if *format != "json" && *format != "csv" {
		return fmt.Errorf("unsupported format %q", *format)
	}
	day, err := domain.ParseDate(*date)
	if err != nil {
		return err
	}
	q := domain.Query{Point: domain.GeoPoint{Lat: *lat, Lng: *lng}, Date: day, Hour: *hour}
	if err := q.Validate(); err != nil {
		return err
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := app.NewService(cfg, app.Deps{}, metrics, logger)
	doc, err := svc.Export(ctx, q)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if doc.Result == nil {
		logger.Warn("no weather data available", "point", q.Point.String(), "date", q.Date.String(), "hour", q.Hour)
	}

	path := filepath.Join(*outDir, export.Filename(doc, *format))
	if err := writeFile(path, *format, doc); err != nil {
		return err
	}
	metrics.ExportsGenerated.WithLabelValues(*format).Inc()
	log.Printf("wrote %s", path)
	return nil
}

func writeFile(path, format string, doc domain.ExportDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if format == "csv" {
		err = export.WriteCSV(f, doc)
	} else {
		err = export.WriteJSON(f, doc)
	}
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
