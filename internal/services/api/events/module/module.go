// Package module owns the event router and mounts GET /events
package module

import (
	modkit "sharerelay/internal/modkit"
	"sharerelay/internal/modkit/httpkit"
	eventshttp "sharerelay/internal/services/api/events/http"
	events "sharerelay/internal/services/events/domain"
	eventsvc "sharerelay/internal/services/events/service"
	ident "sharerelay/internal/services/ident/domain"
	identhttp "sharerelay/internal/services/ident/http"
)

// Imports are passed with modkit.WithPorts
type Imports struct {
	Resolver ident.Resolver
}

// Ports exposes the router to the share module
type Ports struct {
	Publisher events.Publisher
	Streamer  events.Streamer
}

// Module implements the events module
type Module struct {
	b      modkit.Built
	in     Imports
	router *eventsvc.Router
}

// New constructs the router once for the process
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("events"), modkit.WithPrefix("")}, opts...)...)
	in, ok := b.Ports.(Imports)
	if !ok || in.Resolver == nil {
		panic("events module: resolver import is required")
	}
	return &Module{b: b, in: in, router: eventsvc.New(eventsvc.OptionsFromEnv(deps.Cfg))}
}

// MountRoutes mounts GET /events behind the events scope auth
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) {
		rr.Group(func(g httpkit.Router) {
			g.Use(identhttp.Auth(m.in.Resolver, ident.ScopeEvents))
			eventshttp.Register(g, m.router)
		})
	})
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.b.Name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return Ports{Publisher: m.router, Streamer: m.router} }
