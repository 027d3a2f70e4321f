package domain

import "time"

// Reading source discriminators. Consumers must check Source before treating
// a reading as an actual observation.
const (
	SourceLive        = "live"
	SourcePlaceholder = "placeholder"
)

// ForecastPoint is one 3-hour-interval forecast sample for a location.
// Date and Time use the Japanese display forms ("7月7日", "15時").
type ForecastPoint struct {
	Date     string  `json:"date"`
	Time     string  `json:"time"`
	WBGT     float64 `json:"wbgt"`
	Level    int     `json:"level"`
	Label    string  `json:"label"`
	Guidance string  `json:"guidance"`
}

// WBGTReading is the per-location record produced by an ingestion cycle.
// A new instance replaces the previous one wholesale; readings are never
// patched in place.
type WBGTReading struct {
	LocationCode string          `json:"locationCode"`
	LocationName string          `json:"locationName"`
	Prefecture   string          `json:"prefecture"`
	WBGT         float64         `json:"wbgt"`
	Temperature  float64         `json:"temperature"`
	Humidity     float64         `json:"humidity"`
	Timestamp    string          `json:"timestamp"`
	Forecast     []ForecastPoint `json:"forecast"`
	Source       string          `json:"source,omitempty"`
}

// Snapshot is the complete set of readings current as of the last successful
// ingestion cycle. DataCount always equals len(Data) and location codes within
// Data are unique.
type Snapshot struct {
	Timestamp  string        `json:"timestamp"`
	UpdateTime string        `json:"updateTime"`
	DataCount  int           `json:"dataCount"`
	Data       []WBGTReading `json:"data"`
}

// Find returns the reading for the given location code.
func (s *Snapshot) Find(code string) (WBGTReading, bool) {
	for _, r := range s.Data {
		if r.LocationCode == code {
			return r, true
		}
	}
	return WBGTReading{}, false
}

// TemperatureReading is one location's record from the temperature JSON feed.
type TemperatureReading struct {
	LocationCode string  `json:"locationCode"`
	Temperature  float64 `json:"temperature"`
	Humidity     float64 `json:"humidity"`
	Timestamp    string  `json:"timestamp"`
}

// TemperatureSnapshot is the current set of temperature readings.
type TemperatureSnapshot struct {
	Timestamp  string               `json:"timestamp"`
	UpdateTime string               `json:"updateTime"`
	DataCount  int                  `json:"dataCount"`
	Data       []TemperatureReading `json:"data"`
}

// JST is the timezone of all upstream wall-clock times.
var JST = time.FixedZone("JST", 9*60*60)

// FormatUpdateTime renders a timestamp in the human-readable JST form used in
// snapshot envelopes and API responses, e.g. "2025/7/7 15:00".
func FormatUpdateTime(t time.Time) string {
	j := t.In(JST)
	return j.Format("2006/1/2 15:04")
}
