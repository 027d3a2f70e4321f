package feed_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/masakick/wbgt-checker/internal/directory"
	"github.com/masakick/wbgt-checker/internal/domain"
	"github.com/masakick/wbgt-checker/internal/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDirectory(t *testing.T) *directory.Directory {
	t.Helper()
	dir, err := directory.Load()
	require.NoError(t, err)
	return dir
}

func TestParseObservationCSV_WellFormed(t *testing.T) {
	csv := "Date,Time,44132,62078\n" +
		"2025/7/7,12:00,27.0,28.9\n" +
		"2025/7/7,15:00,28.5,30.2\n"

	readings, dropped, err := feed.ParseObservationCSV(csv, loadDirectory(t))
	require.NoError(t, err)
	assert.Zero(t, dropped)
	require.Len(t, readings, 2)

	tokyo := readings[0]
	assert.Equal(t, "44132", tokyo.LocationCode)
	assert.Equal(t, "東京", tokyo.LocationName)
	assert.Equal(t, "東京都", tokyo.Prefecture)
	assert.InDelta(t, 28.5, tokyo.WBGT, 0.001)
	assert.InDelta(t, 33.5, tokyo.Temperature, 0.001)
	assert.InDelta(t, 65, tokyo.Humidity, 0.001)
	assert.Equal(t, domain.SourceLive, tokyo.Source)
	// 15:00 JST is 06:00 UTC.
	assert.Equal(t, "2025-07-07T06:00:00Z", tokyo.Timestamp)

	osaka := readings[1]
	assert.InDelta(t, 30.2, osaka.WBGT, 0.001)
	assert.InDelta(t, 35.2, osaka.Temperature, 0.001)
}

func TestParseObservationCSV_SkipsPartiallyWrittenRow(t *testing.T) {
	header := "Date,Time,44132,62078,14163,34392,43056,45148,46106,51106,61286,82182"
	full := "2025/7/7,12:00,27.0,28.9,24.1,26.6,29.0,27.2,28.1,29.3,28.8,30.0"
	// Final row mid-write upstream: only 2 of 10 sampled columns populated.
	partial := "2025/7/7,15:00,28.5,30.2,,,,,,,,"

	readings, _, err := feed.ParseObservationCSV(strings.Join([]string{header, full, partial}, "\n"), loadDirectory(t))
	require.NoError(t, err)
	require.NotEmpty(t, readings)

	// The 12:00 row wins, not the partially written 15:00 row.
	assert.InDelta(t, 27.0, readings[0].WBGT, 0.001)
	assert.Equal(t, "2025-07-07T03:00:00Z", readings[0].Timestamp)
	assert.Len(t, readings, 10)
}

func TestParseObservationCSV_InsufficientData(t *testing.T) {
	_, _, err := feed.ParseObservationCSV("Date,Time,44132\n", loadDirectory(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, feed.ErrFeedFormat)

	_, _, err = feed.ParseObservationCSV("", loadDirectory(t))
	assert.ErrorIs(t, err, feed.ErrFeedFormat)
}

func TestParseObservationCSV_NoHeaderColumns(t *testing.T) {
	_, _, err := feed.ParseObservationCSV("Date,Time\n2025/7/7,15:00\n", loadDirectory(t))
	assert.ErrorIs(t, err, feed.ErrFeedFormat)
}

func TestParseObservationCSV_NoPopulatedRow(t *testing.T) {
	csv := "Date,Time,44132,62078\n" +
		",,28.5,30.2\n" +
		"2025/7/7,15:00,,\n"
	_, _, err := feed.ParseObservationCSV(csv, loadDirectory(t))
	assert.ErrorIs(t, err, feed.ErrFeedFormat)
}

func TestParseObservationCSV_CountsDroppedCodes(t *testing.T) {
	// 99999 is not in the directory; its column drops without error.
	csv := "Date,Time,44132,99999,62078\n" +
		"2025/7/7,15:00,28.5,21.0,30.2\n"

	readings, dropped, err := feed.ParseObservationCSV(csv, loadDirectory(t))
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	assert.Len(t, readings, 2)
}

func TestParseObservationCSV_MalformedCellIsolatedToLocation(t *testing.T) {
	csv := "Date,Time,44132,62078\n" +
		"2025/7/7,15:00,not-a-number,30.2\n"

	readings, dropped, err := feed.ParseObservationCSV(csv, loadDirectory(t))
	require.NoError(t, err)
	assert.Zero(t, dropped)
	require.Len(t, readings, 1)
	assert.Equal(t, "62078", readings[0].LocationCode)
}

func TestParseObservationCSV_ForecastFromTrailingRows(t *testing.T) {
	var b strings.Builder
	b.WriteString("Date,Time,44132,62078\n")
	// 30 hourly rows; the synthesized forecast draws from the trailing 24
	// and caps at 21 points.
	for h := 0; h < 30; h++ {
		fmt.Fprintf(&b, "2025/7/%d,%d:00,28.5,30.2\n", 7+h/24, h%24)
	}

	readings, _, err := feed.ParseObservationCSV(b.String(), loadDirectory(t))
	require.NoError(t, err)
	require.Len(t, readings, 2)

	forecast := readings[0].Forecast
	require.Len(t, forecast, 21)
	first := forecast[0]
	assert.Equal(t, "7月7日", first.Date)
	assert.Equal(t, "6時", first.Time)
	assert.InDelta(t, 28.5, first.WBGT, 0.001)
	assert.Equal(t, 3, first.Level)
	assert.Equal(t, "厳重警戒", first.Label)
}

func TestParseObservationCSV_CRLFAndBlankLines(t *testing.T) {
	csv := "Date,Time,44132,62078\r\n\r\n2025/7/7,15:00,28.5,30.2\r\n\r\n"
	readings, _, err := feed.ParseObservationCSV(csv, loadDirectory(t))
	require.NoError(t, err)
	assert.Len(t, readings, 2)
}

