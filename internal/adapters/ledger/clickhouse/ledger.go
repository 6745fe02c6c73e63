// Package clickhouse appends accepted shares to the share_events ledger
package clickhouse

import (
	"context"
	"fmt"

	"sharerelay/internal/platform/store"
	"sharerelay/internal/services/api/share/domain"
)

// Table is the ledger table name
const Table = "share_events"

// ddl column order matches the values Append sends
const ddl = `CREATE TABLE IF NOT EXISTS ` + Table + ` (
	ts          DateTime64(3, 'UTC'),
	account_id  String,
	kind        LowCardinality(String),
	platform    LowCardinality(String),
	external_id String,
	url         String,
	source      LowCardinality(String),
	persisted   Bool
) ENGINE = MergeTree
PARTITION BY toYYYYMM(ts)
ORDER BY (account_id, ts)`

// Ledger writes through the store's clickhouse seam
type Ledger struct{ ch store.Clickhouse }

var _ domain.Ledger = (*Ledger)(nil)

// New wraps ch
func New(ch store.Clickhouse) *Ledger { return &Ledger{ch: ch} }

// Migrate creates the ledger table when missing
func (l *Ledger) Migrate(ctx context.Context) error {
	if err := l.ch.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create %s: %w", Table, err)
	}
	return nil
}

// Append writes one entry synchronously. Request paths go through Writer
func (l *Ledger) Append(ctx context.Context, e domain.LedgerEntry) error {
	return l.AppendBatch(ctx, []domain.LedgerEntry{e})
}

// AppendBatch writes entries as one insert
func (l *Ledger) AppendBatch(ctx context.Context, entries []domain.LedgerEntry) error {
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []any{
			e.TS.UTC(), e.AccountID, e.Kind, e.Platform, e.ExternalID, e.URL, e.Source, e.Persisted,
		})
	}
	return l.ch.Insert(ctx, Table, rows)
}

// Ping reports ledger readiness
func (l *Ledger) Ping(ctx context.Context) error { return l.ch.Ping(ctx) }
