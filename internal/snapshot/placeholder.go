package snapshot

import (
	"fmt"
	"time"

	"github.com/masakick/wbgt-checker/internal/directory"
	"github.com/masakick/wbgt-checker/internal/domain"
)

// placeholderReading synthesizes a stable stand-in reading for a location the
// directory knows but the snapshot does not cover yet. Seeded from the code's
// byte sum so repeated requests for the same location render the same values.
// Tagged SourcePlaceholder; consumers must not present it as an observation.
func placeholderReading(loc directory.Location) domain.WBGTReading {
	seed := byteSum(loc.Code)

	wbgt := float64(18 + seed%12)           // 18–29
	humidity := float64(50 + (seed/12)%31)  // 50–80
	temperature := wbgt + 5

	now := domain.Now()
	return domain.WBGTReading{
		LocationCode: loc.Code,
		LocationName: loc.Name,
		Prefecture:   loc.Prefecture,
		WBGT:         wbgt,
		Temperature:  temperature,
		Humidity:     humidity,
		Timestamp:    now.UTC().Format(time.RFC3339),
		Forecast:     placeholderForecast(seed, wbgt),
		Source:       domain.SourcePlaceholder,
	}
}

// placeholderForecast emits the usual 21-point, 3-hour-interval shape with a
// small deterministic wobble around the base value.
func placeholderForecast(seed int, base float64) []domain.ForecastPoint {
	points := make([]domain.ForecastPoint, 0, 21)
	start := domain.Now().In(domain.JST)

	for i := 0; i < 21; i++ {
		at := start.Add(time.Duration(i) * 3 * time.Hour)
		wbgt := base + float64((seed+i)%7-3)
		if wbgt < 15 {
			wbgt = 15
		}

		level := domain.Classify(wbgt)
		points = append(points, domain.ForecastPoint{
			Date:     fmt.Sprintf("%d月%d日", int(at.Month()), at.Day()),
			Time:     fmt.Sprintf("%d時", at.Hour()),
			WBGT:     wbgt,
			Level:    level.Level,
			Label:    level.Label,
			Guidance: level.Guidance,
		})
	}
	return points
}

func byteSum(s string) int {
	sum := 0
	for _, b := range []byte(s) {
		sum += int(b)
	}
	return sum
}
