package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/masakick/wbgt-checker/internal/domain"
)

// PostgresStore is an optional durable tier for deployments where the
// filesystem is ephemeral (serverless invocations). One row holds the latest
// snapshot payload; each cycle overwrites it.
type PostgresStore struct {
	db *sqlx.DB
}

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS wbgt_snapshot (
    id          smallint PRIMARY KEY DEFAULT 1 CHECK (id = 1),
    payload     jsonb NOT NULL,
    updated_at  timestamptz NOT NULL DEFAULT now()
)`

// NewPostgresStore connects, verifies the connection, and ensures the
// snapshot table exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, snapshotSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure snapshot table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Save upserts the single snapshot row.
func (p *PostgresStore) Save(ctx context.Context, snap *domain.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO wbgt_snapshot (id, payload, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		payload)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot row, returning ErrNoSnapshot when none exists.
func (p *PostgresStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	var payload []byte
	err := p.db.GetContext(ctx, &payload, `SELECT payload FROM wbgt_snapshot WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("select snapshot: %w", err)
	}

	return decodeSnapshot(payload)
}

// Close releases the connection pool.
func (p *PostgresStore) Close() error {
	return p.db.Close()
}
