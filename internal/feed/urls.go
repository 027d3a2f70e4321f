// Package feed resolves upstream resource URLs and parses the Environment
// Ministry CSV/JSON feed formats into domain readings.
package feed

import (
	"fmt"
	"time"

	"github.com/masakick/wbgt-checker/internal/domain"
)

// DefaultBaseURL is the production feed root. Overridable via FEED_BASE_URL
// for mirrors and tests.
const DefaultBaseURL = "https://www.wbgt.env.go.jp/est15WG/dl"

// ObservationURL returns the observation CSV for the month containing date.
// The feed is partitioned by JST calendar month.
func ObservationURL(base string, date time.Time) string {
	return monthlyURL(base, "wbgt_all", date)
}

// PreviousObservationURL returns the prior month's observation CSV. Used as a
// fallback right after a month boundary, before the new file is published.
func PreviousObservationURL(base string, date time.Time) string {
	return monthlyURL(base, "wbgt_all", previousMonth(date))
}

// ForecastURL returns the forecast CSV for the month containing date.
func ForecastURL(base string, date time.Time) string {
	return monthlyURL(base, "yohou_all", date)
}

// PreviousForecastURL returns the prior month's forecast CSV.
func PreviousForecastURL(base string, date time.Time) string {
	return monthlyURL(base, "yohou_all", previousMonth(date))
}

// TemperatureURL returns the temperature JSON resource, which is not
// month-partitioned.
func TemperatureURL(base string) string {
	return base + "/temp.json"
}

func monthlyURL(base, prefix string, date time.Time) string {
	j := date.In(domain.JST)
	return fmt.Sprintf("%s/%s_%04d%02d.csv", base, prefix, j.Year(), int(j.Month()))
}

func previousMonth(date time.Time) time.Time {
	j := date.In(domain.JST)
	// First of the current month minus a day lands in the previous month
	// regardless of day-of-month overflow.
	return time.Date(j.Year(), j.Month(), 1, 0, 0, 0, 0, domain.JST).AddDate(0, 0, -1)
}
