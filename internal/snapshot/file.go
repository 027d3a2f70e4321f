package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/masakick/wbgt-checker/internal/domain"
)

// FileStore is the durable tier holding the latest snapshot as one JSON file,
// overwritten each cycle. No history is retained.
type FileStore struct {
	path string
}

// NewFileStore creates a file tier at path, creating parent directories as
// needed on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save writes the snapshot via a temp file and rename so a crash mid-write
// never leaves a truncated snapshot behind.
func (f *FileStore) Save(_ context.Context, snap *domain.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot file, returning ErrNoSnapshot when the file does
// not exist yet.
func (f *FileStore) Load(_ context.Context) (*domain.Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	return decodeSnapshot(data)
}

// decodeSnapshot unmarshals a persisted snapshot, rejecting one whose
// dataCount disagrees with its readings so a corrupted tier can never warm
// the memory tier with an invariant-violating snapshot.
func decodeSnapshot(data []byte) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.DataCount != len(snap.Data) {
		return nil, fmt.Errorf("corrupt snapshot: dataCount %d, %d readings", snap.DataCount, len(snap.Data))
	}
	return &snap, nil
}
