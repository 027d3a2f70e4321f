package feed

import (
	"encoding/json"
	"fmt"

	"github.com/masakick/wbgt-checker/internal/domain"
)

// TemperaturePayload is the envelope of the upstream temperature JSON feed.
// It is the decode target for upstream.Client.FetchJSON.
type TemperaturePayload struct {
	UpdateTime string                      `json:"updateTime"`
	Data       []domain.TemperatureReading `json:"data"`
}

// Readings validates the envelope and returns the usable readings. Entries
// without a location code are skipped rather than failing the feed.
func (p *TemperaturePayload) Readings() ([]domain.TemperatureReading, error) {
	if p.Data == nil {
		return nil, fmt.Errorf("%w: temperature feed has no data array", ErrFeedFormat)
	}

	readings := make([]domain.TemperatureReading, 0, len(p.Data))
	for _, r := range p.Data {
		if r.LocationCode == "" {
			continue
		}
		readings = append(readings, r)
	}
	return readings, nil
}

// DecodeTemperatureJSON decodes a raw temperature feed body.
func DecodeTemperatureJSON(raw []byte) ([]domain.TemperatureReading, error) {
	var payload TemperaturePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode temperature feed: %w", err)
	}
	return payload.Readings()
}
