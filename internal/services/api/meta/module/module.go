// Package module wires the liveness probes and meta endpoints into the API
package module

import (
	"time"

	modkit "sharerelay/internal/modkit"
	"sharerelay/internal/modkit/httpkit"

	metahttp "sharerelay/internal/services/api/meta/http"
)

// Module implements the modkit.Module interface
type Module struct {
	b    modkit.Built
	deps metahttp.Deps
}

// New constructs a meta module. The probes mount at the root, the rest under
// the prefix (default /meta)
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	md := metahttp.Deps{ServiceName: "sharerelay-api", StartedAt: time.Now()}
	// keep untyped nils so readiness reports skipped
	if deps.PG != nil {
		md.Store = deps.PG
	}
	if deps.CH != nil {
		md.Ledger = deps.CH
	}
	return &Module{b: b, deps: md}
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	metahttp.RegisterProbes(r, m.deps)
	m.b.Mount(r, func(rr httpkit.Router) {
		metahttp.Register(rr, m.deps)
	})
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.b.Name }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
