package httpkit

import (
	"context"
	"net/http"
	"strings"

	perr "sharerelay/internal/platform/errors"
	"sharerelay/internal/platform/net/middleware"
	pstrings "sharerelay/internal/platform/strings"
)

// Credentials is what a request presents for identity resolution
type Credentials struct {
	Key      string
	Account  string
	SSEToken string
}

// ResolveFunc turns presented credentials into a principal
type ResolveFunc func(ctx context.Context, c Credentials) (middleware.Principal, error)

// Port implements middleware.AuthPort by reading credentials and delegating to a ResolveFunc
type Port struct {
	resolve ResolveFunc
}

// NewPortFunc builds a Port from a resolver function
func NewPortFunc(fn ResolveFunc) *Port {
	return &Port{resolve: fn}
}

// Parse reads the credentials and resolves them
func (p *Port) Parse(r *http.Request) (middleware.Principal, error) {
	if p.resolve == nil {
		return middleware.Principal{}, perr.Unauthorizedf("invalid api key")
	}
	return p.resolve(r.Context(), ReadCredentials(r))
}

// ReadCredentials collects the key from X-Api-Key, then the second word of
// Authorization, then ?api_key. Routing key and sse token come from their
// header or query parameter
func ReadCredentials(r *http.Request) Credentials {
	h, q := r.Header, r.URL.Query()
	return Credentials{
		Key:      pstrings.FirstNonEmpty(h.Get("X-Api-Key"), authzValue(h.Get("Authorization")), q.Get("api_key")),
		Account:  pstrings.FirstNonEmpty(h.Get("X-Account-Id"), q.Get("account_id")),
		SSEToken: pstrings.FirstNonEmpty(h.Get("X-Sse-Token"), q.Get("sse_token")),
	}
}

// authzValue accepts any scheme ("Bearer k", "ApiKey k"); a bare value has none and is ignored
func authzValue(v string) string {
	_, rest, ok := strings.Cut(strings.TrimSpace(v), " ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(rest)
}
