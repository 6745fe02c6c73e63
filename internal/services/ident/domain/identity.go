// Package domain defines the core types and interfaces for the ident service
package domain

import "context"

// UserIDLen is the number of hex chars kept from the credential digest
const UserIDLen = 12

type (
	// Identity is who a request is and where its events route
	Identity struct {
		Credential string
		// UserID is a stable one-way derivation of Credential
		UserID string
		// RoutingKey partitions rows and event queues, the "account id"
		RoutingKey string
	}

	// Request is what the caller presented
	Request struct {
		Credential string
		Route      string
		SSEToken   string
	}

	// Scope says which surface is being entered
	Scope uint8
)

const (
	// ScopeShare is POST /share
	ScopeShare Scope = iota
	// ScopeEvents is GET /events, which may also demand an sse token
	ScopeEvents
)

// String names the scope for logs
func (s Scope) String() string {
	if s == ScopeEvents {
		return "events"
	}
	return "share"
}

// Config is the static credential policy
type Config struct {
	// DefaultKey is always accepted
	DefaultKey string
	// ValidKeys is the allow-list; empty accepts any non-empty key
	ValidKeys map[string]struct{}
	// DefaultAccount is the routing key when the caller names none;
	// empty falls back to the derived user id
	DefaultAccount string
	// AllowedAccounts restricts routing keys when non-empty
	AllowedAccounts map[string]struct{}
	// RequireSSEToken gates ScopeEvents on ValidTokens
	RequireSSEToken bool
	ValidTokens     map[string]struct{}
}

// Resolver authenticates a request and resolves its routing key
type Resolver interface {
	Resolve(ctx context.Context, req Request, scope Scope) (Identity, error)
}
