// Command validate performs integrity checks on weather export files: the
// JSON document's shape, the statistical sanity of climatology summaries, and
// row-for-row parity between a JSON export and its CSV counterpart.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -json exports/Denver_2025-07-04_15.json \
//	  -csv exports/Denver_2025-07-04_15.csv
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/couchcryptid/weather-outlook-service/internal/domain"
	"github.com/couchcryptid/weather-outlook-service/internal/export"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	jsonPath := flag.String("json", "", "path to a JSON export")
	csvPath := flag.String("csv", "", "path to the matching CSV export (optional)")
	flag.Parse()

	if *jsonPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*jsonPath, *csvPath))
}

func run(jsonPath, csvPath string) int {
	fmt.Println("=== Weather Export Validation ===")
	fmt.Println()

	doc, err := loadDocument(jsonPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load JSON export: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateDocument(doc),
		validateClimatology(doc),
	}

	if csvPath != "" {
		rows, err := loadCSV(csvPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load CSV export: %v\n", err)
			return 1
		}
		phases = append(phases, validateCSVParity(doc, rows))
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadDocument(path string) (domain.ExportDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.ExportDocument{}, err
	}
	defer f.Close()
	return export.DecodeJSON(f)
}

func loadCSV(path string) ([]export.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readRows(f)
}

// readRows parses a "key,value" CSV export. Quoted fields with doubled
// quotes are standard CSV, so encoding/csv reads them back.
func readRows(r io.Reader) ([]export.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	all, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, errors.New("empty CSV")
	}
	if all[0][0] != "key" || all[0][1] != "value" {
		return nil, fmt.Errorf("unexpected header %q", all[0])
	}

	rows := make([]export.Row, 0, len(all)-1)
	for _, rec := range all[1:] {
		rows = append(rows, export.Row{Key: rec[0], Value: rec[1]})
	}
	return rows, nil
}

// ── Phase 1: Document shape ──

func validateDocument(doc domain.ExportDocument) *phase {
	p := &phase{name: "Phase 1: Document Shape"}

	if doc.GeneratedAt.IsZero() {
		p.errorf("generatedAt is missing")
	}
	if doc.Request.Date.IsZero() {
		p.errorf("request.date is missing")
	}
	if doc.Request.Hour < 0 || doc.Request.Hour > 23 {
		p.errorf("request.hour %d outside 0..23", doc.Request.Hour)
	}
	if math.Abs(doc.Request.Point.Lat) > 90 || math.Abs(doc.Request.Point.Lng) > 180 {
		p.errorf("request.point %s out of range", doc.Request.Point.String())
	}
	for key := range domain.Units() {
		if _, ok := doc.Metadata.Units[key]; !ok {
			p.errorf("metadata.units missing %q", key)
		}
	}

	switch r := doc.Result.(type) {
	case nil:
		if doc.Request.IsFuture {
			p.errorf("future request has no climatology result")
		}
	case *domain.ExactWeatherRecord:
		if doc.Request.IsFuture {
			p.errorf("future request carries a historical result")
		}
		if r.SourceURL == "" {
			p.errorf("historical result has no sourceUrl")
		}
		if r.ObservedAt.Hour() != doc.Request.Hour {
			p.errorf("observedAt hour %d does not match request hour %d", r.ObservedAt.Hour(), doc.Request.Hour)
		}
	case *domain.ClimatologySummary:
		if !doc.Request.IsFuture {
			p.errorf("past request carries a climatology result")
		}
	}
	return p
}

// ── Phase 2: Climatology sanity ──

func validateClimatology(doc domain.ExportDocument) *phase {
	p := &phase{name: "Phase 2: Climatology Statistics"}

	sum, ok := doc.Result.(*domain.ClimatologySummary)
	if !ok {
		return p
	}

	if sum.YearsQueried < 0 {
		p.errorf("yearsQueried is negative: %d", sum.YearsQueried)
	}
	if sum.TotalSamples > sum.YearsQueried {
		p.errorf("totalSamples %d exceeds yearsQueried %d", sum.TotalSamples, sum.YearsQueried)
	}

	vars := map[string]domain.VariableStats{
		"t2m":                 sum.Temperature,
		"rh2m":                sum.Humidity,
		"ws10m":               sum.WindSpeed,
		"apparentTemperature": sum.ApparentTemperature,
		"prectot":             sum.Precipitation.VariableStats,
		"snowfall":            sum.Snowfall.VariableStats,
	}
	for _, name := range sortedKeys(vars) {
		checkVariable(p, name, vars[name], sum.YearsQueried)
	}

	checkProbability(p, "prectot.occurrenceProbability", sum.Precipitation.OccurrenceProbability)
	checkProbability(p, "snowfall.occurrenceProbability", sum.Snowfall.OccurrenceProbability)

	checkConditions(p, sum.Weather, sum.YearsQueried)
	checkSamples(p, sum)
	return p
}

// checkSamples verifies the raw per-year values agree with the statistics.
// Documents without a samples block are skipped.
func checkSamples(p *phase, sum *domain.ClimatologySummary) {
	raw := map[string]struct {
		values []float64
		count  int
	}{
		"t2m":                 {sum.Samples.Temperature, sum.Temperature.SampleCount},
		"rh2m":                {sum.Samples.Humidity, sum.Humidity.SampleCount},
		"ws10m":               {sum.Samples.WindSpeed, sum.WindSpeed.SampleCount},
		"apparentTemperature": {sum.Samples.ApparentTemperature, sum.ApparentTemperature.SampleCount},
		"prectot":             {sum.Samples.Precipitation, sum.Precipitation.SampleCount},
		"snowfall":            {sum.Samples.Snowfall, sum.Snowfall.SampleCount},
	}
	for _, name := range sortedKeys(raw) {
		r := raw[name]
		if r.values != nil && len(r.values) != r.count {
			p.errorf("samples.%s has %d values, sampleCount is %d", name, len(r.values), r.count)
		}
	}
	if sum.Samples.WeatherCodes != nil && len(sum.Samples.WeatherCodes) != sum.Weather.SampleCount {
		p.errorf("samples.weatherCodes has %d values, weather.sampleCount is %d", len(sum.Samples.WeatherCodes), sum.Weather.SampleCount)
	}
}

func checkVariable(p *phase, name string, s domain.VariableStats, yearsQueried int) {
	if s.SampleCount > yearsQueried {
		p.errorf("%s.sampleCount %d exceeds yearsQueried %d", name, s.SampleCount, yearsQueried)
	}
	if s.SampleCount == 0 {
		if s.Mean != nil || s.Min != nil || s.Max != nil {
			p.errorf("%s has statistics without samples", name)
		}
		return
	}
	if s.Mean == nil || s.Min == nil || s.Max == nil {
		p.errorf("%s has %d samples but missing statistics", name, s.SampleCount)
		return
	}
	if *s.Min > *s.Mean+1e-9 || *s.Mean > *s.Max+1e-9 {
		p.errorf("%s ordering violated: min=%g mean=%g max=%g", name, *s.Min, *s.Mean, *s.Max)
	}
	if s.StdDev != nil && *s.StdDev < 0 {
		p.errorf("%s.stdDev is negative: %g", name, *s.StdDev)
	}
	if s.Quartile25 != nil && s.Quartile75 != nil && *s.Quartile25 > *s.Quartile75+1e-9 {
		p.errorf("%s quartiles inverted: q25=%g q75=%g", name, *s.Quartile25, *s.Quartile75)
	}
}

func checkProbability(p *phase, name string, v *float64) {
	if v == nil {
		return
	}
	if *v < 0 || *v > 1 {
		p.errorf("%s %g outside [0,1]", name, *v)
	}
}

func checkConditions(p *phase, c domain.ConditionStats, yearsQueried int) {
	if c.SampleCount > yearsQueried {
		p.errorf("weather.sampleCount %d exceeds yearsQueried %d", c.SampleCount, yearsQueried)
	}

	total := 0
	sum := 0.0
	for _, label := range sortedKeys(c.Counts) {
		total += c.Counts[label]
		prob, ok := c.Probabilities[label]
		if !ok {
			p.errorf("weather label %q has a count but no probability", label)
			continue
		}
		if prob < 0 || prob > 1 {
			p.errorf("weather label %q probability %g outside [0,1]", label, prob)
		}
		sum += prob
	}
	if total != c.SampleCount {
		p.errorf("weather counts sum to %d, sampleCount is %d", total, c.SampleCount)
	}
	if total > 0 && !floatEq(sum, 1) {
		p.errorf("weather probabilities sum to %g", sum)
	}
}

// ── Phase 3: CSV parity ──

func validateCSVParity(doc domain.ExportDocument, csvRows []export.Row) *phase {
	p := &phase{name: "Phase 3: CSV Parity"}

	want, err := export.Flatten(doc)
	if err != nil {
		p.errorf("flatten JSON export: %v", err)
		return p
	}

	if len(want) != len(csvRows) {
		p.errorf("row count mismatch: JSON flattens to %d rows, CSV has %d", len(want), len(csvRows))
	}

	got := make(map[string]string, len(csvRows))
	for _, r := range csvRows {
		if _, dup := got[r.Key]; dup {
			p.errorf("duplicate CSV key %q", r.Key)
		}
		got[r.Key] = r.Value
	}
	for _, r := range want {
		v, ok := got[r.Key]
		if !ok {
			p.errorf("CSV missing key %q", r.Key)
			continue
		}
		if v != r.Value {
			p.errorf("%s: JSON=%q CSV=%q", r.Key, r.Value, v)
		}
	}
	return p
}

// ── Helpers ──

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
