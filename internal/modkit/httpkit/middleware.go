package httpkit

import (
	"net/http"
	"time"

	"sharerelay/internal/platform/config"
	phttp "sharerelay/internal/platform/net/http"
	"sharerelay/internal/platform/net/middleware"
)

// StackOptions tunes the shared middleware stack
type StackOptions struct {
	CORSOrigins []string
	SlowRequest time.Duration
	// LogProbes keeps liveness probes in the access log
	LogProbes bool
}

// StackFromConfig reads CORS_ALLOW_ORIGINS, ACCESS_LOG_SLOW and ACCESS_LOG_PROBES
func StackFromConfig(cfg config.Conf) StackOptions {
	return StackOptions{
		CORSOrigins: cfg.MayCSV("CORS_ALLOW_ORIGINS", []string{"*"}),
		SlowRequest: cfg.MayDuration("ACCESS_LOG_SLOW", 2*time.Second),
		LogProbes:   cfg.MayBool("ACCESS_LOG_PROBES", false),
	}
}

var probePaths = map[string]struct{}{"/": {}, "/health": {}, "/healthz": {}}

func isProbe(r *http.Request) bool {
	_, ok := probePaths[r.URL.Path]
	return ok
}

// CommonStack returns the root middleware slice: correlation, recovery and
// no-cache first, then the access log, then CORS. Nothing in it buffers
// the body, so /events streams through it
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	skip := isProbe
	if o.LogProbes {
		skip = nil
	}
	stack := middleware.Defaults()
	stack = append(stack,
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: o.SlowRequest, Skip: skip}),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.CORSOrigins}),
	)
	return stack
}

// Auth wires the auth middleware to the platform JSON writer
func Auth(p middleware.AuthPort) func(http.Handler) http.Handler {
	return middleware.Auth(p, phttp.JSON)
}

// RateLimit limits per credential and answers 429 in the error envelope
func RateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	return middleware.RateLimit(middleware.RateLimitOptions{
		Requests: requests,
		Window:   window,
		Write:    phttp.JSON,
	})
}
