package httpkit

import (
	"net/http"

	perr "sharerelay/internal/platform/errors"
	pnet "sharerelay/internal/platform/net"
)

// Account returns the routing key the auth middleware resolved
func Account(r *http.Request) (string, error) {
	if a := pnet.AccountID(r.Context()); a != "" {
		return a, nil
	}
	return "", perr.Unauthorizedf("missing credentials")
}
