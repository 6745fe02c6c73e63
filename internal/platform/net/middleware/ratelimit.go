package middleware

import (
	"net/http"
	"time"

	perr "sharerelay/internal/platform/errors"
	pnet "sharerelay/internal/platform/net"

	"github.com/go-chi/httprate"
)

// RateLimitOptions configures a fixed window limiter
type RateLimitOptions struct {
	Requests int
	Window   time.Duration
	// Write renders the 429 body; nil falls back to a plain text reply
	Write func(w http.ResponseWriter, status int, body any)
}

// KeyByCredential keys on the authenticated credential, falling back to client ip
// for requests that reached the limiter without one
func KeyByCredential(r *http.Request) (string, error) {
	if c := pnet.Credential(r.Context()); c != "" {
		return "cred:" + c, nil
	}
	ip, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + ip, nil
}

// RateLimit limits requests per credential. Requests <= 0 disables it
func RateLimit(o RateLimitOptions) func(http.Handler) http.Handler {
	if o.Requests <= 0 || o.Window <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	opts := []httprate.Option{httprate.WithKeyFuncs(KeyByCredential)}
	if o.Write != nil {
		opts = append(opts, httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			status, body := pnet.Error(perr.TooManyRequestsf("rate limit exceeded"), pnet.RequestID(r.Context()))
			o.Write(w, status, body)
		}))
	}
	return httprate.Limit(o.Requests, o.Window, opts...)
}
