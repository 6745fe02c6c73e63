package middleware

import (
	"net/http"

	"sharerelay/internal/platform/logger"
	pnet "sharerelay/internal/platform/net"
)

// Principal is what an AuthPort recognised on the request
type Principal struct {
	Credential string
	UserID     string
	AccountID  string
}

// AuthPort turns a request into a Principal or a project error
type AuthPort interface {
	Parse(r *http.Request) (Principal, error)
}

// Auth rejects requests the port refuses and stamps the principal on the context.
// A nil port passes everything through
func Auth(p AuthPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			who, err := p.Parse(r)
			if err != nil {
				logger.C(r.Context()).Debug().Err(err).Str("path", r.URL.Path).Msg("auth refused")
				status, body := pnet.Error(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			ctx := pnet.WithUser(r.Context(), who.UserID)
			ctx = pnet.WithCredential(ctx, who.Credential)
			ctx = pnet.WithRequest(ctx, "", who.AccountID)
			ctx = logger.WithRequest(ctx, "", who.AccountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
