package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masakick/wbgt-checker/internal/directory"
	"github.com/masakick/wbgt-checker/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDirectory(t *testing.T) *directory.Directory {
	t.Helper()
	dir, err := directory.Load()
	require.NoError(t, err)
	return dir
}

func sampleSnapshot(t *testing.T, codes ...string) *domain.Snapshot {
	t.Helper()
	data := make([]domain.WBGTReading, 0, len(codes))
	for i, code := range codes {
		data = append(data, domain.WBGTReading{
			LocationCode: code,
			LocationName: fmt.Sprintf("location-%d", i),
			WBGT:         25.5 + float64(i),
			Temperature:  30.5 + float64(i),
			Humidity:     65,
			Timestamp:    "2025-07-07T06:00:00Z",
			Source:       domain.SourceLive,
		})
	}
	return &domain.Snapshot{
		Timestamp:  "2025-07-07T06:10:00Z",
		UpdateTime: "2025/7/7 15:10",
		DataCount:  len(data),
		Data:       data,
	}
}

type failingTier struct{}

func (failingTier) Save(context.Context, *domain.Snapshot) error { return errors.New("disk full") }
func (failingTier) Load(context.Context) (*domain.Snapshot, error) {
	return nil, errors.New("disk full")
}

func TestWriteThenRead(t *testing.T) {
	store := New(testDirectory(t), testLogger())
	snap := sampleSnapshot(t, "44132", "62078")

	require.NoError(t, store.Write(context.Background(), snap))

	got, err := store.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, got.DataCount)
	assert.Equal(t, "44132", got.Data[0].LocationCode)
}

func TestWriteRejectsCountMismatch(t *testing.T) {
	store := New(testDirectory(t), testLogger())
	snap := sampleSnapshot(t, "44132")
	snap.DataCount = 5

	err := store.Write(context.Background(), snap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataCount")

	_, err = store.Read(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestWriteRejectsNil(t *testing.T) {
	store := New(testDirectory(t), testLogger())
	require.Error(t, store.Write(context.Background(), nil))
}

func TestReadWithoutSnapshot(t *testing.T) {
	store := New(testDirectory(t), testLogger())

	_, err := store.Read(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestReadWarmsFromFileTier(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wbgt.json")
	dir := testDirectory(t)

	writer := New(dir, testLogger(), NewFileStore(path))
	require.NoError(t, writer.Write(context.Background(), sampleSnapshot(t, "44132")))

	// A fresh store over the same file simulates a process restart: the
	// first read falls through to the file and warms the cache.
	reader := New(dir, testLogger(), NewFileStore(path))
	got, err := reader.Read(context.Background())
	require.NoError(t, err)

	want := sampleSnapshot(t, "44132")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("restored snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteTierFailureKeepsPreviousSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wbgt.json")
	dir := testDirectory(t)

	store := New(dir, testLogger(), NewFileStore(path))
	require.NoError(t, store.Write(context.Background(), sampleSnapshot(t, "44132")))

	// Swap in a failing tier for the second write.
	store.tiers = []Durable{failingTier{}}
	err := store.Write(context.Background(), sampleSnapshot(t, "62078", "44132"))
	require.Error(t, err)

	got, readErr := store.Read(context.Background())
	require.NoError(t, readErr)
	assert.Equal(t, "44132", got.Data[0].LocationCode, "previous snapshot must stay visible")
	assert.Equal(t, 1, got.DataCount)
}

func TestReadLocationLive(t *testing.T) {
	store := New(testDirectory(t), testLogger())
	require.NoError(t, store.Write(context.Background(), sampleSnapshot(t, "44132")))

	reading, err := store.ReadLocation(context.Background(), "44132")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceLive, reading.Source)
	assert.InDelta(t, 25.5, reading.WBGT, 0.001)
}

func TestReadLocationPlaceholder(t *testing.T) {
	store := New(testDirectory(t), testLogger())
	require.NoError(t, store.Write(context.Background(), sampleSnapshot(t, "44132")))

	// 62078 is in the directory but absent from the snapshot.
	reading, err := store.ReadLocation(context.Background(), "62078")
	require.NoError(t, err)
	assert.Equal(t, domain.SourcePlaceholder, reading.Source)
	assert.Equal(t, "62078", reading.LocationCode)
	assert.NotEmpty(t, reading.LocationName)
	assert.Len(t, reading.Forecast, 21)
	assert.InDelta(t, reading.WBGT+5, reading.Temperature, 0.001)
	assert.GreaterOrEqual(t, reading.WBGT, 18.0)
	assert.Less(t, reading.WBGT, 30.0)
	assert.GreaterOrEqual(t, reading.Humidity, 50.0)
	assert.LessOrEqual(t, reading.Humidity, 80.0)
}

func TestReadLocationPlaceholderDeterministic(t *testing.T) {
	store := New(testDirectory(t), testLogger())

	first, err := store.ReadLocation(context.Background(), "62078")
	require.NoError(t, err)
	second, err := store.ReadLocation(context.Background(), "62078")
	require.NoError(t, err)

	assert.Equal(t, first.WBGT, second.WBGT)
	assert.Equal(t, first.Humidity, second.Humidity)

	other, err := store.ReadLocation(context.Background(), "44132")
	require.NoError(t, err)
	assert.NotEqual(t, first.LocationCode, other.LocationCode)
}

func TestReadLocationUnknownCode(t *testing.T) {
	store := New(testDirectory(t), testLogger())

	_, err := store.ReadLocation(context.Background(), "00000")
	assert.ErrorIs(t, err, ErrUnknownLocation)
}

func TestConcurrentReadersAndWriter(t *testing.T) {
	store := New(testDirectory(t), testLogger())
	require.NoError(t, store.Write(context.Background(), sampleSnapshot(t, "44132")))

	done := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		codes := [][]string{{"44132"}, {"44132", "62078"}, {"44132", "62078", "45148"}}
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
			}
			_ = store.Write(context.Background(), sampleSnapshot(t, codes[i%len(codes)]...))
		}
	}()

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				snap, err := store.Read(context.Background())
				if err != nil {
					t.Errorf("read failed: %v", err)
					return
				}
				// Readers must never see a half-written snapshot.
				if snap.DataCount != len(snap.Data) {
					t.Errorf("torn snapshot: dataCount=%d len=%d", snap.DataCount, len(snap.Data))
					return
				}
			}
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(done)
	wg.Wait()
}
