// Package snapshot holds the current validated snapshot behind a tiered read
// path: an in-memory pointer, then a JSON file, then an optional Postgres
// row. A hit at any tier warms the tiers above it. Writes replace the whole
// snapshot; readers always observe either the old or the new version.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/masakick/wbgt-checker/internal/directory"
	"github.com/masakick/wbgt-checker/internal/domain"
)

var (
	// ErrNoSnapshot means no snapshot has ever been produced (or a durable
	// tier holds none).
	ErrNoSnapshot = errors.New("no snapshot available")

	// ErrUnknownLocation means a code is absent from both the directory and
	// the current snapshot.
	ErrUnknownLocation = errors.New("unknown location code")
)

// Durable is one persistence tier below the in-memory cache. Load returns
// ErrNoSnapshot when the tier holds nothing.
type Durable interface {
	Save(ctx context.Context, snap *domain.Snapshot) error
	Load(ctx context.Context) (*domain.Snapshot, error)
}

// Store is the process-wide snapshot holder. Constructed once and injected,
// not a package global, so tests can use a fake directory and temp files.
type Store struct {
	mu      sync.RWMutex
	current *domain.Snapshot

	tiers  []Durable
	dir    *directory.Directory
	logger *slog.Logger
}

// New creates a Store over zero or more durable tiers, ordered fastest
// first.
func New(dir *directory.Directory, logger *slog.Logger, tiers ...Durable) *Store {
	return &Store{tiers: tiers, dir: dir, logger: logger}
}

// Write persists the snapshot to every durable tier, then publishes it to
// readers with a single pointer swap. A durable tier failure aborts the write
// so a cycle cannot report success while leaving stale durable state; the
// previous snapshot stays visible.
func (s *Store) Write(ctx context.Context, snap *domain.Snapshot) error {
	if snap == nil {
		return errors.New("nil snapshot")
	}
	if snap.DataCount != len(snap.Data) {
		return fmt.Errorf("snapshot dataCount %d does not match %d readings", snap.DataCount, len(snap.Data))
	}

	for _, tier := range s.tiers {
		if err := tier.Save(ctx, snap); err != nil {
			return fmt.Errorf("persist snapshot: %w", err)
		}
	}

	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()

	return nil
}

// Read returns the current snapshot, falling through memory to the durable
// tiers. A durable hit warms the in-memory cache.
func (s *Store) Read(ctx context.Context) (*domain.Snapshot, error) {
	s.mu.RLock()
	snap := s.current
	s.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}

	for i, tier := range s.tiers {
		loaded, err := tier.Load(ctx)
		if errors.Is(err, ErrNoSnapshot) {
			continue
		}
		if err != nil {
			s.logger.Warn("snapshot tier read failed", "tier", i, "error", err)
			continue
		}

		s.mu.Lock()
		// Another reader may have warmed the cache meanwhile; keep
		// whichever arrived first, both are complete snapshots.
		if s.current == nil {
			s.current = loaded
		}
		snap = s.current
		s.mu.Unlock()
		return snap, nil
	}

	return nil, ErrNoSnapshot
}

// ReadLocation returns one location's reading. A directory-known code with no
// live data yields a deterministic placeholder so the per-location pages
// never render empty; the Source field tells the caller which it got.
func (s *Store) ReadLocation(ctx context.Context, code string) (domain.WBGTReading, error) {
	snap, err := s.Read(ctx)
	if err == nil {
		if reading, ok := snap.Find(code); ok {
			return reading, nil
		}
	}

	loc, ok := s.dir.Lookup(code)
	if !ok {
		return domain.WBGTReading{}, ErrUnknownLocation
	}

	s.logger.Warn("serving placeholder reading", "code", code)
	return placeholderReading(loc), nil
}
