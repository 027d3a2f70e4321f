package feed

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/masakick/wbgt-checker/internal/directory"
	"github.com/masakick/wbgt-checker/internal/domain"
)

// ErrFeedFormat marks a feed that is structurally unusable for this cycle:
// too few lines, no column header, or no sufficiently populated data row.
var ErrFeedFormat = errors.New("invalid feed format")

// Observation parsing constants. The trailing rows of the feed may be
// partially written during the upstream update, so a row only counts as the
// latest observation when enough of its leading columns carry data.
const (
	sampledColumns    = 10 // data columns inspected for the populated check
	minPopulated      = 5  // populated columns required of the sampled ones
	forecastWindow    = 24 // trailing rows the synthesized forecast draws from
	maxForecastPoints = 21 // 3 days x 8 samples/day
)

const defaultHumidity = 65

// ParseObservationCSV parses the wide-format observation feed into one
// reading per location. The header's column order is the index mapping for
// every data row. Returns the readings, the number of columns dropped because
// their code is absent from the directory, and an error only when the feed as
// a whole is unusable; individual malformed cells skip that location only.
func ParseObservationCSV(text string, dir *directory.Directory) ([]domain.WBGTReading, int, error) {
	lines := splitLines(text)
	if len(lines) < 2 {
		return nil, 0, fmt.Errorf("%w: insufficient data (%d lines)", ErrFeedFormat, len(lines))
	}

	header := strings.Split(lines[0], ",")
	if len(header) < 3 {
		return nil, 0, fmt.Errorf("%w: no location columns in header", ErrFeedFormat)
	}
	codes := header[2:]

	latest := findLatestRow(lines[1:])
	if latest == nil {
		return nil, 0, fmt.Errorf("%w: no valid data lines found", ErrFeedFormat)
	}

	timestamp := parseJSTDateTime(latest[0], latest[1])

	var readings []domain.WBGTReading
	dropped := 0

	for i, rawCode := range codes {
		code := strings.TrimSpace(rawCode)
		col := i + 2
		if code == "" || col >= len(latest) {
			continue
		}

		wbgt, err := strconv.ParseFloat(strings.TrimSpace(latest[col]), 64)
		if err != nil {
			// Malformed or empty cell: this location only, never the feed.
			continue
		}

		loc, ok := dir.Lookup(code)
		if !ok {
			// Upstream sometimes ships codes before the directory knows
			// them. Dropped silently but counted for observability.
			dropped++
			continue
		}

		readings = append(readings, domain.WBGTReading{
			LocationCode: code,
			LocationName: loc.Name,
			Prefecture:   loc.Prefecture,
			WBGT:         wbgt,
			Temperature:  estimateTemperature(wbgt),
			Humidity:     defaultHumidity,
			Timestamp:    timestamp.UTC().Format(time.RFC3339),
			Forecast:     synthesizeForecast(lines[1:], col),
			Source:       domain.SourceLive,
		})
	}

	return readings, dropped, nil
}

// findLatestRow scans the data rows backward for the most recent one with a
// date, a time, and at least minPopulated of its first sampledColumns data
// columns non-empty.
func findLatestRow(rows []string) []string {
	for i := len(rows) - 1; i >= 0; i-- {
		cols := strings.Split(rows[i], ",")
		if len(cols) < 3 || strings.TrimSpace(cols[0]) == "" || strings.TrimSpace(cols[1]) == "" {
			continue
		}

		populated := 0
		for j := 2; j < len(cols) && j < 2+sampledColumns; j++ {
			if strings.TrimSpace(cols[j]) != "" {
				populated++
			}
		}
		if populated >= minPopulated {
			return cols
		}
	}
	return nil
}

// parseJSTDateTime combines "2025/7/7" and "15:00" as JST wall-clock time.
// Falls back to the current time when the winning row's fields are malformed,
// matching the stale-but-available policy: a bad timestamp should not discard
// otherwise good readings.
func parseJSTDateTime(date, clock string) time.Time {
	dateParts := strings.Split(strings.TrimSpace(date), "/")
	clockParts := strings.Split(strings.TrimSpace(clock), ":")
	if len(dateParts) != 3 || len(clockParts) < 1 {
		return domain.Now()
	}

	year, errY := strconv.Atoi(dateParts[0])
	month, errM := strconv.Atoi(dateParts[1])
	day, errD := strconv.Atoi(dateParts[2])
	hour, errH := strconv.Atoi(clockParts[0])
	if errY != nil || errM != nil || errD != nil || errH != nil {
		return domain.Now()
	}

	minute := 0
	if len(clockParts) > 1 {
		if m, err := strconv.Atoi(clockParts[1]); err == nil {
			minute = m
		}
	}

	// The feed uses 24:00 for midnight at the end of a day; time.Date
	// normalizes the overflow.
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, domain.JST)
}

// synthesizeForecast derives a short-term forecast for one location from its
// own trailing time-series in the same feed. No real forecast is available in
// the observation file, so the recent history stands in until the forecast
// feed overrides it.
func synthesizeForecast(rows []string, col int) []domain.ForecastPoint {
	start := len(rows) - forecastWindow
	if start < 0 {
		start = 0
	}

	var points []domain.ForecastPoint
	for _, row := range rows[start:] {
		cols := strings.Split(row, ",")
		if col >= len(cols) {
			continue
		}
		wbgt, err := strconv.ParseFloat(strings.TrimSpace(cols[col]), 64)
		if err != nil {
			continue
		}

		level := domain.Classify(wbgt)
		points = append(points, domain.ForecastPoint{
			Date:     displayDate(cols[0]),
			Time:     displayHour(cols[1]),
			WBGT:     wbgt,
			Level:    level.Level,
			Label:    level.Label,
			Guidance: level.Guidance,
		})
		if len(points) >= maxForecastPoints {
			break
		}
	}
	return points
}

// estimateTemperature approximates air temperature from WBGT. No live
// temperature feed exists for most locations; WBGT + 5°C is a crude but
// serviceable estimate, rounded to one decimal.
func estimateTemperature(wbgt float64) float64 {
	return math.Round((wbgt+5)*10) / 10
}

// displayDate renders "2025/7/7" as "7月7日", passing malformed input through.
func displayDate(csvDate string) string {
	parts := strings.Split(strings.TrimSpace(csvDate), "/")
	if len(parts) != 3 {
		return csvDate
	}
	month, errM := strconv.Atoi(parts[1])
	day, errD := strconv.Atoi(parts[2])
	if errM != nil || errD != nil {
		return csvDate
	}
	return fmt.Sprintf("%d月%d日", month, day)
}

// displayHour renders "15:00" as "15時", passing malformed input through.
func displayHour(csvTime string) string {
	parts := strings.Split(strings.TrimSpace(csvTime), ":")
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return csvTime
	}
	return fmt.Sprintf("%d時", hour)
}

// splitLines splits the raw feed into non-blank lines, tolerating CRLF.
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
