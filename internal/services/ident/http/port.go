// Package http adapts the ident resolver to the auth middleware
package http

import (
	"context"
	stdhttp "net/http"

	"sharerelay/internal/modkit/httpkit"
	pnet "sharerelay/internal/platform/net"
	"sharerelay/internal/platform/net/middleware"
	"sharerelay/internal/services/ident/domain"
)

// AuthPort builds the credential port for one scope
func AuthPort(r domain.Resolver, scope domain.Scope) *httpkit.Port {
	return httpkit.NewPortFunc(func(ctx context.Context, c httpkit.Credentials) (middleware.Principal, error) {
		id, err := r.Resolve(ctx, domain.Request{Credential: c.Key, Route: c.Account, SSEToken: c.SSEToken}, scope)
		if err != nil {
			return middleware.Principal{}, err
		}
		return middleware.Principal{Credential: id.Credential, UserID: id.UserID, AccountID: id.RoutingKey}, nil
	})
}

// Auth is AuthPort wrapped as middleware
func Auth(r domain.Resolver, scope domain.Scope) func(stdhttp.Handler) stdhttp.Handler {
	return httpkit.Auth(AuthPort(r, scope))
}

// FromRequest rebuilds the Identity the auth middleware resolved
func FromRequest(r *stdhttp.Request) (domain.Identity, error) {
	route, err := httpkit.Account(r)
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{
		Credential: pnet.Credential(r.Context()),
		UserID:     pnet.UserID(r.Context()),
		RoutingKey: route,
	}, nil
}
