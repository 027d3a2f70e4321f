package feed

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/masakick/wbgt-checker/internal/domain"
)

// ParseForecastCSV parses the forecast feed variant, keyed by forecast
// horizon rather than by historical row:
//
//	,,2025070718,2025070721,...
//	11001,2025/07/07 15:25,210,180,...
//
// Header tokens are 10-digit YYYYMMDDHH horizons; values encode one decimal
// digit as an integer (210 → 21.0). Returns forecast sequences per location
// code. Cells that fail to decode are skipped without failing the horizon or
// the row.
func ParseForecastCSV(text string) (map[string][]domain.ForecastPoint, error) {
	lines := splitLines(text)
	if len(lines) < 2 {
		return nil, fmt.Errorf("%w: insufficient data (%d lines)", ErrFeedFormat, len(lines))
	}

	header := strings.Split(lines[0], ",")
	if len(header) < 3 {
		return nil, fmt.Errorf("%w: no horizon columns in header", ErrFeedFormat)
	}
	horizons := header[2:]

	result := make(map[string][]domain.ForecastPoint, len(lines)-1)

	for _, row := range lines[1:] {
		cols := strings.Split(row, ",")
		code := strings.TrimSpace(cols[0])
		if code == "" {
			continue
		}

		var points []domain.ForecastPoint
		for i, token := range horizons {
			col := i + 2
			if col >= len(cols) {
				break
			}

			month, day, hour, ok := decodeHorizon(strings.TrimSpace(token))
			if !ok {
				continue
			}
			encoded, err := strconv.Atoi(strings.TrimSpace(cols[col]))
			if err != nil {
				continue
			}

			wbgt := float64(encoded) / 10
			level := domain.Classify(wbgt)
			points = append(points, domain.ForecastPoint{
				Date:     fmt.Sprintf("%d月%d日", month, day),
				Time:     fmt.Sprintf("%d時", hour),
				WBGT:     wbgt,
				Level:    level.Level,
				Label:    level.Label,
				Guidance: level.Guidance,
			})
		}
		result[code] = points
	}

	return result, nil
}

// decodeHorizon splits a YYYYMMDDHH token into its components.
func decodeHorizon(token string) (month, day, hour int, ok bool) {
	if len(token) != 10 {
		return 0, 0, 0, false
	}
	month, errM := strconv.Atoi(token[4:6])
	day, errD := strconv.Atoi(token[6:8])
	hour, errH := strconv.Atoi(token[8:10])
	if errM != nil || errD != nil || errH != nil {
		return 0, 0, 0, false
	}
	return month, day, hour, true
}
