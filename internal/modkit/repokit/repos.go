// Package repokit holds the small seams SQL writers share: tx helpers,
// begin hooks and tx scoped binders
package repokit

import (
	"context"

	"sharerelay/internal/platform/store"
)

// Queryer is the minimal read and write surface for SQL writers
type Queryer = store.RowQuerier

// TxRunner can execute a function inside a transaction
type TxRunner = store.TxRunner

type (
	// Rows are the result set of a query
	Rows = store.Rows

	// Row is a single row result from a query
	Row = store.Row

	// CommandTag is the result of a command that modifies data
	CommandTag = store.CommandTag
)

// WithTx runs fn inside a transaction using the provided TxRunner
func WithTx(ctx context.Context, tx TxRunner, fn func(q Queryer) error) error {
	return tx.Tx(ctx, fn)
}
