package feed_test

import (
	"testing"

	"github.com/masakick/wbgt-checker/internal/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseForecastCSV(t *testing.T) {
	csv := ",,2025070718,2025070721,2025070800\n" +
		"44132,2025/07/07 15:25,210,180,165\n" +
		"62078,2025/07/07 15:25,315,290,240\n"

	result, err := feed.ParseForecastCSV(csv)
	require.NoError(t, err)
	require.Len(t, result, 2)

	tokyo := result["44132"]
	require.Len(t, tokyo, 3)
	assert.Equal(t, "7月7日", tokyo[0].Date)
	assert.Equal(t, "18時", tokyo[0].Time)
	assert.InDelta(t, 21.0, tokyo[0].WBGT, 0.001)
	assert.Equal(t, 1, tokyo[0].Level)
	assert.Equal(t, "7月8日", tokyo[2].Date)
	assert.Equal(t, "0時", tokyo[2].Time)
	assert.InDelta(t, 16.5, tokyo[2].WBGT, 0.001)
	assert.Equal(t, 0, tokyo[2].Level)

	osaka := result["62078"]
	require.Len(t, osaka, 3)
	assert.InDelta(t, 31.5, osaka[0].WBGT, 0.001)
	assert.Equal(t, 4, osaka[0].Level)
	assert.Equal(t, "危険", osaka[0].Label)
}

func TestParseForecastCSV_SkipsBadCells(t *testing.T) {
	csv := ",,2025070718,badtoken,2025070800\n" +
		"44132,2025/07/07 15:25,210,180,\n"

	result, err := feed.ParseForecastCSV(csv)
	require.NoError(t, err)

	// The bad horizon token and the empty cell each drop one point.
	assert.Len(t, result["44132"], 1)
}

func TestParseForecastCSV_SkipsRowsWithoutCode(t *testing.T) {
	csv := ",,2025070718\n" +
		",2025/07/07 15:25,210\n" +
		"44132,2025/07/07 15:25,210\n"

	result, err := feed.ParseForecastCSV(csv)
	require.NoError(t, err)
	assert.Len(t, result, 1)
}

func TestParseForecastCSV_InsufficientData(t *testing.T) {
	_, err := feed.ParseForecastCSV(",,2025070718\n")
	assert.ErrorIs(t, err, feed.ErrFeedFormat)
}

func TestDecodeTemperatureJSON(t *testing.T) {
	raw := []byte(`{
		"updateTime": "2025/7/7 15:00",
		"data": [
			{"locationCode": "44132", "temperature": 33.5, "humidity": 62, "timestamp": "2025-07-07T06:00:00Z"},
			{"locationCode": "", "temperature": 30.0, "humidity": 50, "timestamp": "2025-07-07T06:00:00Z"}
		]
	}`)

	readings, err := feed.DecodeTemperatureJSON(raw)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, "44132", readings[0].LocationCode)
	assert.InDelta(t, 33.5, readings[0].Temperature, 0.001)
}

func TestDecodeTemperatureJSON_Invalid(t *testing.T) {
	_, err := feed.DecodeTemperatureJSON([]byte("not json"))
	assert.Error(t, err)

	_, err = feed.DecodeTemperatureJSON([]byte(`{"updateTime":"x"}`))
	assert.ErrorIs(t, err, feed.ErrFeedFormat)
}
