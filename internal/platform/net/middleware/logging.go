package middleware

import (
	"net/http"

	"sharerelay/internal/platform/logger"
	pnet "sharerelay/internal/platform/net"
)

// LogContext copies the chi request id onto the logger context so logger.C
// stamps request_id on every line written while serving the request.
// Mount it after RequestID
func LogContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = logger.WithRequest(ctx, pnet.RequestID(ctx), pnet.AccountID(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
