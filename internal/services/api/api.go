// Package api assembles the relay HTTP surface from its modules
package api

import (
	"context"
	"errors"
	"fmt"

	"sharerelay/internal/platform/config"
	"sharerelay/internal/platform/logger"
	"sharerelay/internal/platform/metrics"
	phttp "sharerelay/internal/platform/net/http"
	"sharerelay/internal/platform/store"

	"sharerelay/internal/modkit"
	"sharerelay/internal/modkit/httpkit"
	"sharerelay/internal/modkit/module"
	"sharerelay/internal/modkit/swaggerkit"

	eventsmod "sharerelay/internal/services/api/events/module"
	metamod "sharerelay/internal/services/api/meta/module"
	sharemod "sharerelay/internal/services/api/share/module"
	identsvc "sharerelay/internal/services/ident/service"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
	EnableMetrics  bool
}

// migrator is implemented by modules that own schema
type migrator interface {
	Migrate(ctx context.Context) error
}

// closer is implemented by modules holding background work
type closer interface {
	Close(ctx context.Context) error
}

// Mounted is what Mount built. Close it after the server has drained
type Mounted struct {
	mods []module.Module
}

// Close releases modules in reverse mount order
func (m *Mounted) Close(ctx context.Context) error {
	var errs []error
	for i := len(m.mods) - 1; i >= 0; i-- {
		if c, ok := m.mods[i].(closer); ok {
			if err := c.Close(ctx); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", m.mods[i].Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}

// Mount builds every module, runs their migrations and mounts the routes on r.
// r must not have routes yet since the common stack is installed with Use
func Mount(ctx context.Context, r phttp.Router, opt Options) (*Mounted, error) {
	deps := modkit.Deps{Cfg: opt.Config, Log: opt.Logger}
	// keep the seams untyped nil when a backend is off
	if opt.Store != nil {
		if opt.Store.PG != nil {
			deps.PG = opt.Store.PG
		}
		if opt.Store.CH != nil {
			deps.CH = opt.Store.CH
		}
	}

	resolver := identsvc.New(identsvc.ConfigFromEnv(opt.Config))

	// events first: share publishes into its router
	events := eventsmod.New(deps, modkit.WithPorts(eventsmod.Imports{Resolver: resolver}))
	evPorts := module.MustPortsOf[eventsmod.Ports](events)

	share := sharemod.New(deps, modkit.WithPorts(sharemod.Imports{
		Resolver:  resolver,
		Publisher: evPorts.Publisher,
	}))

	mods := []module.Module{
		metamod.New(deps),
		events,
		share,
	}

	mounted := &Mounted{mods: mods}
	for _, m := range mods {
		if mg, ok := m.(migrator); ok {
			if err := mg.Migrate(ctx); err != nil {
				_ = mounted.Close(ctx)
				return nil, fmt.Errorf("migrate %s: %w", m.Name(), err)
			}
		}
	}

	r.Use(httpkit.CommonStack(httpkit.StackFromConfig(opt.Config))...)

	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)
	if opt.EnableMetrics {
		r.Handle("/metrics", metrics.Handler())
	}

	for _, m := range mods {
		m.MountRoutes(r)
	}
	return mounted, nil
}
