// Command genfeed generates mock upstream feed files for local development
// and test fixtures: a monthly observation CSV, a forecast CSV, and a
// temperature JSON, covering every location in the embedded directory. It
// uses the actual domain package so fixture values classify the same way
// live data does.
//
// Usage:
//
//	go run ./cmd/genfeed -out-dir data/mock
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/masakick/wbgt-checker/internal/directory"
	"github.com/masakick/wbgt-checker/internal/domain"
)

var baseTime = time.Date(2025, time.July, 7, 15, 0, 0, 0, domain.JST)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out-dir", "", "directory to write mock feed files into")
	hours := flag.Int("hours", 48, "hours of observation history to generate")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out-dir")
	}

	// Fixed clock for reproducible fixtures.
	domain.SetClock(clockwork.NewFakeClockAt(baseTime))
	defer domain.SetClock(nil)

	dir, err := directory.Load()
	if err != nil {
		return fmt.Errorf("load location directory: %w", err)
	}
	locations := dir.All()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	obsName := fmt.Sprintf("wbgt_all_%04d%02d.csv", baseTime.Year(), int(baseTime.Month()))
	if err := writeObservationCSV(filepath.Join(*outDir, obsName), locations, *hours); err != nil {
		return err
	}
	fcName := fmt.Sprintf("yohou_all_%04d%02d.csv", baseTime.Year(), int(baseTime.Month()))
	if err := writeForecastCSV(filepath.Join(*outDir, fcName), locations); err != nil {
		return err
	}
	if err := writeTemperatureJSON(filepath.Join(*outDir, "temp.json"), locations); err != nil {
		return err
	}

	log.Printf("wrote %s, %s, temp.json for %d locations", obsName, fcName, len(locations))
	return nil
}

// mockWBGT produces a plausible diurnal WBGT curve, offset per location so
// fixtures exercise all five risk levels.
func mockWBGT(code string, at time.Time) float64 {
	seed := 0
	for _, b := range []byte(code) {
		seed += int(b)
	}
	base := 20 + float64(seed%8)
	diurnal := 6 * math.Sin(float64(at.Hour()-5)/24*2*math.Pi)
	return math.Round((base+diurnal)*10) / 10
}

func writeObservationCSV(path string, locations []directory.Location, hours int) error {
	var b strings.Builder

	b.WriteString("Date,Time")
	for _, loc := range locations {
		b.WriteString("," + loc.Code)
	}
	b.WriteString("\n")

	start := baseTime.Add(-time.Duration(hours) * time.Hour)
	for h := 0; h <= hours; h++ {
		at := start.Add(time.Duration(h) * time.Hour)
		fmt.Fprintf(&b, "%d/%d/%d,%d:00", at.Year(), int(at.Month()), at.Day(), at.Hour())
		for _, loc := range locations {
			fmt.Fprintf(&b, ",%.1f", mockWBGT(loc.Code, at))
		}
		b.WriteString("\n")
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func writeForecastCSV(path string, locations []directory.Location) error {
	var b strings.Builder

	// Horizon columns at 3-hour steps from the next full slot.
	horizons := make([]time.Time, 0, 21)
	next := baseTime.Truncate(3 * time.Hour).Add(3 * time.Hour)
	for i := 0; i < 21; i++ {
		horizons = append(horizons, next.Add(time.Duration(i)*3*time.Hour))
	}

	b.WriteString(",")
	for _, h := range horizons {
		fmt.Fprintf(&b, ",%04d%02d%02d%02d", h.Year(), int(h.Month()), h.Day(), h.Hour())
	}
	b.WriteString("\n")

	issued := baseTime.Format("2006/01/02 15:04")
	for _, loc := range locations {
		b.WriteString(loc.Code + "," + issued)
		for _, h := range horizons {
			// Forecast feed carries WBGT×10 integers.
			fmt.Fprintf(&b, ",%d", int(mockWBGT(loc.Code, h)*10))
		}
		b.WriteString("\n")
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func writeTemperatureJSON(path string, locations []directory.Location) error {
	readings := make([]domain.TemperatureReading, 0, len(locations))
	for _, loc := range locations {
		wbgt := mockWBGT(loc.Code, baseTime)
		readings = append(readings, domain.TemperatureReading{
			LocationCode: loc.Code,
			Temperature:  math.Round((wbgt+5)*10) / 10,
			Humidity:     65,
			Timestamp:    baseTime.UTC().Format(time.RFC3339),
		})
	}

	payload := map[string]any{
		"updateTime": domain.FormatUpdateTime(baseTime),
		"data":       readings,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
