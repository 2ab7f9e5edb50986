// Package postgres stores each pricing store as one JSONB document in Postgres.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Simplici0/moveops/internal/store"
)

const (
	keyItems     = "items"
	keyRateCards = "rate_cards"
	keyExtras    = "extras"
	keyMargin    = "margin_policy"
)

const schema = `
CREATE TABLE IF NOT EXISTS pricing_config (
	key TEXT PRIMARY KEY,
	body JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Persister implements store.Persister on a pgx pool.
type Persister struct {
	Pool *pgxpool.Pool
}

// New connects to dsn and makes sure the pricing_config table exists.
func New(ctx context.Context, dsn string) (*Persister, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create pricing_config table: %w", err)
	}
	return &Persister{Pool: pool}, nil
}

// Close releases the pool.
func (p *Persister) Close() { p.Pool.Close() }

// Load implements store.Persister.
func (p *Persister) Load(ctx context.Context) (store.Snapshot, error) {
	rows, err := p.Pool.Query(ctx, `SELECT key, body FROM pricing_config`)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("query pricing_config: %w", err)
	}
	defer rows.Close()

	docs := map[string][]byte{}
	for rows.Next() {
		var key string
		var body []byte
		if err := rows.Scan(&key, &body); err != nil {
			return store.Snapshot{}, fmt.Errorf("scan pricing_config: %w", err)
		}
		docs[key] = body
	}
	if err := rows.Err(); err != nil {
		return store.Snapshot{}, fmt.Errorf("iterate pricing_config: %w", err)
	}

	var snap store.Snapshot
	targets := map[string]any{
		keyItems:     &snap.Items,
		keyRateCards: &snap.RateCards,
		keyExtras:    &snap.Extras,
		keyMargin:    &snap.Margin,
	}
	for key, dst := range targets {
		body, ok := docs[key]
		if !ok {
			return store.Snapshot{}, store.ErrNotSeeded
		}
		if err := json.Unmarshal(body, dst); err != nil {
			return store.Snapshot{}, fmt.Errorf("decode %s: %w", key, err)
		}
	}
	return snap, nil
}

// Save upserts every document in one transaction.
func (p *Persister) Save(ctx context.Context, snap store.Snapshot) (err error) {
	tx, err := p.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin save transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	docs := []struct {
		key string
		val any
	}{
		{keyItems, snap.Items},
		{keyRateCards, snap.RateCards},
		{keyExtras, snap.Extras},
		{keyMargin, snap.Margin},
	}
	for _, d := range docs {
		body, mErr := json.Marshal(d.val)
		if mErr != nil {
			return fmt.Errorf("encode %s: %w", d.key, mErr)
		}
		if _, err = tx.Exec(ctx, `
			INSERT INTO pricing_config (key, body, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at
		`, d.key, body); err != nil {
			return fmt.Errorf("upsert %s: %w", d.key, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save transaction: %w", err)
	}
	return nil
}
