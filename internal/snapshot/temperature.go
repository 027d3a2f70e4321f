package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/masakick/wbgt-checker/internal/domain"
)

// TemperatureStore holds the temperature snapshot behind a memory-then-file
// read path. The temperature feed is already nationwide JSON, so there is no
// Postgres tier; the file alone survives restarts.
type TemperatureStore struct {
	mu      sync.RWMutex
	current *domain.TemperatureSnapshot

	path   string
	logger *slog.Logger
}

func NewTemperatureStore(path string, logger *slog.Logger) *TemperatureStore {
	return &TemperatureStore{path: path, logger: logger}
}

// Write persists the snapshot to disk, then publishes it with a pointer swap.
func (s *TemperatureStore) Write(_ context.Context, snap *domain.TemperatureSnapshot) error {
	if snap == nil {
		return fmt.Errorf("nil temperature snapshot")
	}
	if snap.DataCount != len(snap.Data) {
		return fmt.Errorf("temperature snapshot dataCount %d does not match %d readings", snap.DataCount, len(snap.Data))
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal temperature snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temperature snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace temperature snapshot: %w", err)
	}

	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()
	return nil
}

// Read returns the current snapshot, falling back to the file after a
// restart. Returns ErrNoSnapshot when neither holds one.
func (s *TemperatureStore) Read(_ context.Context) (*domain.TemperatureSnapshot, error) {
	s.mu.RLock()
	snap := s.current
	s.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read temperature snapshot: %w", err)
	}

	var loaded domain.TemperatureSnapshot
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("decode temperature snapshot: %w", err)
	}

	s.mu.Lock()
	if s.current == nil {
		s.current = &loaded
	}
	snap = s.current
	s.mu.Unlock()
	return snap, nil
}
