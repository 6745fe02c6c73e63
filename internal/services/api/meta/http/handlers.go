// Package http provides the liveness probes and meta endpoints
package http

import (
	stdctx "context"
	"net/http"
	"time"

	"sharerelay/internal/core/version"
	"sharerelay/internal/modkit/httpkit"
)

// Pinger is satisfied by adapters that expose Ping
type Pinger interface {
	Ping(stdctx.Context) error
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Store       any
	Ledger      any

	// Now defaults to time.Now
	Now func() time.Time
}

type handlers struct {
	deps Deps
}

func newHandlers(d Deps) *handlers {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &handlers{deps: d}
}

// RegisterProbes mounts the flat liveness probes. Load balancers and the
// Android client poll these so their bodies stay unenveloped
func RegisterProbes(r httpkit.Router, d Deps) {
	h := newHandlers(d)
	httpkit.GetRaw(r, "/", h.root)
	httpkit.GetRaw(r, "/healthz", h.healthz)
	httpkit.GetRaw(r, "/health", h.health)
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	h := newHandlers(d)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
}

//
// Swagger DTOs and route docs
//

// ProbeResponse is the body of / and /healthz
type ProbeResponse struct {
	OK     bool    `json:"ok"     example:"true"`
	Status string  `json:"status" example:"alive"`
	T      float64 `json:"t"      example:"1700000000.123"`
}

// HealthResponse is the body of /health
type HealthResponse struct {
	Status string  `json:"status" example:"ok"`
	T      float64 `json:"t"      example:"1700000000.123"`
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"   example:"store"`
	Status string `json:"status" example:"ok"` // ok fail skipped unknown
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432 connect: connection refused"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"` // ok degraded fail
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2025-09-03T13:05:00Z"`
}

// ServiceResponse describes service info
type ServiceResponse struct {
	Name    string `json:"name"    example:"sharerelay-api"`
	Started string `json:"started" example:"2025-09-03T13:00:00Z"`
	Uptime  int64  `json:"uptime"  example:"300"`
}

func epoch(t time.Time) float64 { return float64(t.UnixNano()) / 1e9 }

// @Summary Liveness probe
// @Tags Meta
// @Produce json
// @Success 200 {object} ProbeResponse "alive"
// @Router / [get]
func (h *handlers) root(_ *http.Request) (any, error) {
	return ProbeResponse{OK: true, Status: "alive", T: epoch(h.deps.Now())}, nil
}

// @Summary Liveness probe
// @Tags Meta
// @Produce json
// @Success 200 {object} ProbeResponse "healthy"
// @Router /healthz [get]
func (h *handlers) healthz(_ *http.Request) (any, error) {
	return ProbeResponse{OK: true, Status: "healthy", T: epoch(h.deps.Now())}, nil
}

// @Summary Liveness probe
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse "ok"
// @Router /health [get]
func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{Status: "ok", T: epoch(h.deps.Now())}, nil
}

// @Summary Readiness probe with dependency checks
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse "ok"
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	check := func(name string, c any) ReadyCheck {
		if c == nil {
			return ReadyCheck{Name: name, Status: "skipped"}
		}
		if p, ok := c.(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				return ReadyCheck{Name: name, Status: "fail", Error: err.Error()}
			}
			return ReadyCheck{Name: name, Status: "ok"}
		}
		return ReadyCheck{Name: name, Status: "unknown"}
	}

	checks := []ReadyCheck{check("store", h.deps.Store), check("ledger", h.deps.Ledger)}

	// an unconfigured store is a supported mode, so skipped counts as ok
	overall := "ok"
	for _, c := range checks {
		switch c.Status {
		case "fail":
			overall = "fail"
		case "unknown":
			if overall == "ok" {
				overall = "degraded"
			}
		}
	}

	return ReadyResponse{
		Status: overall,
		Checks: checks,
		Now:    h.deps.Now().UTC().Format(time.RFC3339),
	}, nil
}

// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo "ok"
// @Router /meta/version [get]
func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}

// @Summary Service info and uptime
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse "ok"
// @Router /meta/service [get]
func (h *handlers) service(_ *http.Request) (any, error) {
	return ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(h.deps.Now().Sub(h.deps.StartedAt) / time.Second),
	}, nil
}
