// Package module wires POST /share into the API using modkit
package module

import (
	"context"

	"sharerelay/internal/adapters/ledger/clickhouse"
	"sharerelay/internal/adapters/persist/pgdirect"
	"sharerelay/internal/adapters/persist/postgrest"
	modkit "sharerelay/internal/modkit"
	"sharerelay/internal/modkit/httpkit"
	"sharerelay/internal/services/api/share/domain"
	sharehttp "sharerelay/internal/services/api/share/http"
	sharesvc "sharerelay/internal/services/api/share/service"
	events "sharerelay/internal/services/events/domain"
	ident "sharerelay/internal/services/ident/domain"
	identhttp "sharerelay/internal/services/ident/http"
	persist "sharerelay/internal/services/persist/domain"
	persistsvc "sharerelay/internal/services/persist/service"
)

// Store choices for RELAY_STORE
const (
	StorePostgREST = "postgrest"
	StorePostgres  = "postgres"
)

// Imports are the ports share needs from other modules, passed with modkit.WithPorts
type Imports struct {
	Resolver  ident.Resolver
	Publisher events.Publisher
}

// Ports exposed by the share module
type Ports struct {
	Submitter domain.Submitter
	// Ledger is nil when CLICKHOUSE_DSN is unset
	Ledger *clickhouse.Ledger
}

// Module implements the share module
type Module struct {
	b      modkit.Built
	deps   modkit.Deps
	in     Imports
	ports  Ports
	opts   Options
	writer *clickhouse.Writer // nil without a ledger
}

// New constructs the share module. It panics when Imports were not supplied
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("share"), modkit.WithPrefix("")}, opts...)...)
	in, ok := b.Ports.(Imports)
	if !ok || in.Resolver == nil || in.Publisher == nil {
		panic("share module: resolver and publisher imports are required")
	}
	o := OptionsFromConfig(deps.Cfg)

	var ledger domain.Ledger
	var chLedger *clickhouse.Ledger
	var writer *clickhouse.Writer
	if deps.CH != nil {
		chLedger = clickhouse.New(deps.CH)
		writer = clickhouse.NewWriter(chLedger, clickhouse.WriterOptionsFromEnv(deps.Cfg))
		ledger = writer
	}

	svc := sharesvc.New(o.Share, persistsvc.New(transport(deps, o), o.Persist), in.Publisher, ledger)
	return &Module{
		b:      b,
		deps:   deps,
		in:     in,
		opts:   o,
		ports:  Ports{Submitter: svc, Ledger: chLedger},
		writer: writer,
	}
}

// transport picks the persistence wire. It returns an untyped nil when no
// store is configured so the upsert reports supabase_not_configured
func transport(deps modkit.Deps, o Options) persist.Transport {
	log := deps.Logger("share")
	switch {
	case o.Store == StorePostgres && deps.PG != nil:
		return pgdirect.New(deps.PG, pgdirect.OptionsFromEnv(deps.Cfg))
	case o.Store == StorePostgres:
		log.Warn().Msg("RELAY_STORE=postgres without DATABASE_URL; falling back to postgrest")
	}
	if o.PostgREST.Configured() {
		return postgrest.NewClient(o.PostgREST)
	}
	log.Warn().Msg("no persistence store configured; shares are published but not saved")
	return nil
}

// Migrate prepares the ledger table when a ledger is wired
func (m *Module) Migrate(ctx context.Context) error {
	if m.ports.Ledger == nil {
		return nil
	}
	return m.ports.Ledger.Migrate(ctx)
}

// Close flushes ledger entries still queued
func (m *Module) Close(ctx context.Context) error {
	if m.writer == nil {
		return nil
	}
	return m.writer.Close(ctx)
}

// MountRoutes mounts POST /share behind auth and the per credential limiter
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) {
		rr.Group(func(g httpkit.Router) {
			// auth first so the limiter can key on the credential
			g.Use(
				identhttp.Auth(m.in.Resolver, ident.ScopeShare),
				httpkit.RateLimit(m.opts.RateLimit, m.opts.RateWindow),
			)
			sharehttp.Register(g, m.ports.Submitter)
		})
	})
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.b.Name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }
