// Package net carries request scoped identity on the context
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ctxKey is an unexported key type for context values
type ctxKey string

const (
	keyAccountID  ctxKey = "account_id"
	keyUserID     ctxKey = "user_id"
	keyCredential ctxKey = "credential"
)

// WithRequest annotates context with the request id and the routing account
func WithRequest(ctx context.Context, reqID, accountID string) context.Context {
	if reqID != "" {
		// set chi RequestID so chimw.GetReqID can retrieve it
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	if accountID != "" {
		ctx = context.WithValue(ctx, keyAccountID, accountID)
	}
	return ctx
}

// WithUser annotates context with the internal user id derived from the credential
func WithUser(ctx context.Context, userID string) context.Context {
	if userID != "" {
		ctx = context.WithValue(ctx, keyUserID, userID)
	}
	return ctx
}

// WithCredential stores the presented credential, used as a rate limit key
func WithCredential(ctx context.Context, cred string) context.Context {
	if cred != "" {
		ctx = context.WithValue(ctx, keyCredential, cred)
	}
	return ctx
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// AccountID returns the routing account on the context if present
func AccountID(ctx context.Context) string { return str(ctx, keyAccountID) }

// UserID returns the internal user id on the context if present
func UserID(ctx context.Context) string { return str(ctx, keyUserID) }

// Credential returns the authenticated credential on the context if present
func Credential(ctx context.Context) string { return str(ctx, keyCredential) }

func str(ctx context.Context, k ctxKey) string {
	v, _ := ctx.Value(k).(string)
	return v
}
