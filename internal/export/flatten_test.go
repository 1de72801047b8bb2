package export_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/weather-outlook-service/internal/domain"
	"github.com/couchcryptid/weather-outlook-service/internal/export"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestFlatten_NestedOrder(t *testing.T) {
	doc := json.RawMessage(`{"a": 1, "b": [2, 3], "c": {"d": null}}`)

	rows, err := export.Flatten(doc)
	require.NoError(t, err)

	want := []export.Row{
		{Key: "a", Value: "1"},
		{Key: "b[0]", Value: "2"},
		{Key: "b[1]", Value: "3"},
		{Key: "c.d", Value: ""},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("Flatten mismatch (-want +got):\n%s", diff)
	}
}

func TestFlatten_ScalarRoot(t *testing.T) {
	rows, err := export.Flatten(42.5)
	require.NoError(t, err)
	assert.Equal(t, []export.Row{{Key: "value", Value: "42.5"}}, rows)

	rows, err = export.Flatten(nil)
	require.NoError(t, err)
	assert.Equal(t, []export.Row{{Key: "value", Value: ""}}, rows)
}

func TestFlatten_ArrayOfObjectsAndEmptyContainers(t *testing.T) {
	rows, err := export.Flatten(json.RawMessage(`[{"x": true}, {}, {"y": []}, "s"]`))
	require.NoError(t, err)

	want := []export.Row{
		{Key: "[0].x", Value: "true"},
		{Key: "[3]", Value: "s"},
	}
	assert.Equal(t, want, rows)
}

func TestFlatten_PreservesNumberText(t *testing.T) {
	rows, err := export.Flatten(json.RawMessage(`{"big": 12345678901234567890, "small": 0.1}`))
	require.NoError(t, err)
	assert.Equal(t, "12345678901234567890", rows[0].Value)
	assert.Equal(t, "0.1", rows[1].Value)
}

func TestWriteCSV_QuotesValues(t *testing.T) {
	var buf bytes.Buffer
	err := export.WriteCSV(&buf, map[string]any{
		"name":  `The "Big" Apple, NY`,
		"empty": nil,
	})
	require.NoError(t, err)

	want := "key,value\n" +
		"empty,\"\"\n" +
		"name,\"The \"\"Big\"\" Apple, NY\"\n"
	assert.Equal(t, want, buf.String())
}

func sampleDocument() domain.ExportDocument {
	return domain.ExportDocument{
		GeneratedAt: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
		Request: domain.ExportRequest{
			Point: domain.GeoPoint{Lat: 40.7128, Lng: -74.006},
			Date:  domain.NewDate(2024, time.June, 1),
			Hour:  12,
		},
		PlaceName: ptr("New York, NY"),
		Result: &domain.ExactWeatherRecord{
			Type: domain.ResultHistorical,
			WeatherSample: domain.WeatherSample{
				Temperature: ptr(22.4),
				WeatherCode: ptr(3),
			},
			Weather:    "Overcast",
			ObservedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
			SourceURL:  "https://archive.test/2024-06-01",
		},
		Metadata: domain.ExportMetadata{
			Units:      map[string]string{"t2m": "°C"},
			SourceURLs: []string{"https://archive.test/2024-06-01"},
		},
	}
}

func TestWriteCSV_ExportDocument(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, sampleDocument()))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Equal(t, "key,value", lines[0])
	assert.Equal(t, `generatedAt,"2025-06-01T08:00:00Z"`, lines[1])
	assert.Contains(t, lines, `request.point.lat,"40.7128"`)
	assert.Contains(t, lines, `request.date,"2024-06-01"`)
	assert.Contains(t, lines, `placeName,"New York, NY"`)
	assert.Contains(t, lines, `result.type,"historical"`)
	assert.Contains(t, lines, `result.t2m,"22.4"`)
	assert.Contains(t, lines, `result.rh2m,""`)
	assert.Contains(t, lines, `metadata.sourceUrls[0],"https://archive.test/2024-06-01"`)
}

func TestWriteJSON_DecodeJSON(t *testing.T) {
	doc := sampleDocument()

	var buf bytes.Buffer
	require.NoError(t, export.WriteJSON(&buf, doc))
	assert.True(t, strings.HasPrefix(buf.String(), "{\n  \"generatedAt\""))

	got, err := export.DecodeJSON(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(doc, got, cmp.AllowUnexported(domain.Date{})); diff != "" {
		t.Errorf("decoded document mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeJSON_Climatology(t *testing.T) {
	in := `{"generatedAt":"2025-06-01T00:00:00Z","request":{"point":{"lat":1,"lng":2},"date":"2026-01-01","hour":0,"isFuture":true},
		"placeName":null,"result":{"type":"climatology","totalSamples":4,"prectot":{"sampleCount":4,"occurrenceProbability":0.25}},
		"metadata":{"units":{},"sourceUrls":[]}}`

	doc, err := export.DecodeJSON(strings.NewReader(in))
	require.NoError(t, err)

	sum, ok := doc.Result.(*domain.ClimatologySummary)
	require.True(t, ok)
	assert.Equal(t, 4, sum.TotalSamples)
	assert.Equal(t, 0.25, *sum.Precipitation.OccurrenceProbability)
	assert.True(t, doc.Request.IsFuture)
}

func TestDecodeJSON_UnknownType(t *testing.T) {
	_, err := export.DecodeJSON(strings.NewReader(`{"result":{"type":"forecast"}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forecast")
}

func TestDecodeJSON_NullResult(t *testing.T) {
	doc, err := export.DecodeJSON(strings.NewReader(`{"result":null}`))
	require.NoError(t, err)
	assert.Nil(t, doc.Result)
}
