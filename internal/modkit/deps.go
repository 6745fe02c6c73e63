// Package modkit provides module wiring and core deps
package modkit

import (
	"sharerelay/internal/platform/config"
	"sharerelay/internal/platform/logger"
	"sharerelay/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log *logger.Logger
	Cfg config.Conf

	// PG is the direct postgres seam, nil unless RELAY_STORE=postgres
	PG store.TxRunner
	// CH is the share ledger seam, nil unless CLICKHOUSE_DSN is set
	CH store.Clickhouse
}

// Logger returns Log or a named root logger when Log is unset
func (d Deps) Logger(component string) *logger.Logger {
	if d.Log != nil {
		l := d.Log.With().Str("component", component).Logger()
		return &l
	}
	return logger.Named(component)
}

// ZeroOK returns true when deps are safe to use with zero values in tests
// consumers should still nil check for optional stores
func (d Deps) ZeroOK() bool { return true }
