// Package store persists calculation result snapshots. Each calculation run
// writes a new immutable, versioned JSONB row so a reviewed deal can always
// point at the exact numbers that were approved.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealdesk/dealdesk-api/internal/calc"
)

// SnapshotVersion is the schema version stamped on every stored snapshot.
// Bump it when the result model changes shape.
const SnapshotVersion = 1

// Snapshot is one stored calculation result row.
type Snapshot struct {
	ID         uuid.UUID                   `json:"id"`
	QuoteID    uuid.UUID                   `json:"quote_id"`
	Version    int                         `json:"version"`
	Result     *calc.QuoteCalculationResult `json:"result"`
	CreatedAt  time.Time                   `json:"created_at"`
}

// SnapshotStore reads and writes calculation snapshots through a pgx pool.
type SnapshotStore struct {
	pool *pgxpool.Pool
}

// NewSnapshotStore creates a snapshot store over the given pool.
func NewSnapshotStore(pool *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

// NewPool builds a connection pool with the service's standard settings.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database connection string: %w", err)
	}
	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	return pool, nil
}

// SaveSnapshot inserts a new snapshot row for the result's quote.
func (s *SnapshotStore) SaveSnapshot(ctx context.Context, result *calc.QuoteCalculationResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal calculation result: %w", err)
	}

	const query = `
		INSERT INTO calculation_snapshots (id, quote_id, version, result, created_at)
		VALUES ($1, $2, $3, $4, now())`

	_, err = s.pool.Exec(ctx, query, uuid.New(), result.QuoteID, SnapshotVersion, payload)
	if err != nil {
		return fmt.Errorf("failed to insert calculation snapshot: %w", err)
	}
	return nil
}

// GetLatestSnapshot returns the most recent snapshot for a quote, or
// pgx.ErrNoRows when none exists.
func (s *SnapshotStore) GetLatestSnapshot(ctx context.Context, quoteID uuid.UUID) (*Snapshot, error) {
	const query = `
		SELECT id, quote_id, version, result, created_at
		FROM calculation_snapshots
		WHERE quote_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	var snapshot Snapshot
	var payload []byte
	err := s.pool.QueryRow(ctx, query, quoteID).Scan(
		&snapshot.ID, &snapshot.QuoteID, &snapshot.Version, &payload, &snapshot.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load calculation snapshot: %w", err)
	}

	if err := json.Unmarshal(payload, &snapshot.Result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal calculation snapshot %s: %w", snapshot.ID, err)
	}
	return &snapshot, nil
}

// ListSnapshots returns all snapshots for a quote, newest first.
func (s *SnapshotStore) ListSnapshots(ctx context.Context, quoteID uuid.UUID) ([]Snapshot, error) {
	const query = `
		SELECT id, quote_id, version, result, created_at
		FROM calculation_snapshots
		WHERE quote_id = $1
		ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list calculation snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var snapshot Snapshot
		var payload []byte
		if err := rows.Scan(&snapshot.ID, &snapshot.QuoteID, &snapshot.Version, &payload, &snapshot.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan calculation snapshot: %w", err)
		}
		if err := json.Unmarshal(payload, &snapshot.Result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal calculation snapshot %s: %w", snapshot.ID, err)
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, rows.Err()
}
