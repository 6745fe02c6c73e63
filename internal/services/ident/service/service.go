// Package service provides the ident service implementation
package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strings"

	"sharerelay/internal/platform/config"
	perr "sharerelay/internal/platform/errors"
	"sharerelay/internal/platform/logger"
	pstrings "sharerelay/internal/platform/strings"
	"sharerelay/internal/services/ident/domain"
)

// Defaults for an unconfigured deployment
const (
	DefaultAPIKey    = "DEMO_API_KEY_123"
	DefaultAccountID = "dumock"
)

// Svc resolves credentials against a static policy
type Svc struct {
	cfg domain.Config
}

var _ domain.Resolver = (*Svc)(nil)

// New constructs the ident service
func New(cfg domain.Config) *Svc {
	return &Svc{cfg: cfg}
}

// ConfigFromEnv reads DEFAULT_API_KEY, VALID_API_KEYS, DEFAULT_ACCOUNT_ID,
// ALLOWED_ACCOUNT_IDS, REQUIRE_SSE_TOKEN and VALID_API_TOKENS.
// DEFAULT_ACCOUNT_ID set to an empty value routes each key to its own user id
func ConfigFromEnv(c config.Conf) domain.Config {
	return domain.Config{
		DefaultKey:      c.MayString("DEFAULT_API_KEY", DefaultAPIKey),
		ValidKeys:       pstrings.Set(c.MayCSV("VALID_API_KEYS", nil)),
		DefaultAccount:  c.MayStringOrEmpty("DEFAULT_ACCOUNT_ID", DefaultAccountID),
		AllowedAccounts: pstrings.Set(c.MayCSV("ALLOWED_ACCOUNT_IDS", nil)),
		RequireSSEToken: c.MayBool("REQUIRE_SSE_TOKEN", false),
		ValidTokens:     pstrings.Set(c.MayCSV("VALID_API_TOKENS", nil)),
	}
}

// Resolve authenticates req.Credential and picks the routing key:
// the requested route, else the default account, else the derived user id
func (s *Svc) Resolve(ctx context.Context, req domain.Request, scope domain.Scope) (domain.Identity, error) {
	key := strings.TrimSpace(req.Credential)
	if key == "" {
		return domain.Identity{}, perr.Unauthorizedf("missing credentials")
	}
	if !s.keyAllowed(key) {
		return domain.Identity{}, perr.Unauthorizedf("Invalid API Key")
	}
	if scope == domain.ScopeEvents && s.cfg.RequireSSEToken {
		if _, ok := s.cfg.ValidTokens[strings.TrimSpace(req.SSEToken)]; !ok {
			return domain.Identity{}, perr.Unauthorizedf("invalid sse token")
		}
	}

	uid := UserID(key)
	route := pstrings.FirstNonEmpty(req.Route, s.cfg.DefaultAccount, uid)

	if len(s.cfg.AllowedAccounts) > 0 {
		if _, ok := s.cfg.AllowedAccounts[route]; !ok {
			logger.C(ctx).Debug().Str("route", route).Str("scope", scope.String()).Msg("routing key not allowed")
			return domain.Identity{}, perr.Forbiddenf("account not allowed")
		}
	}
	return domain.Identity{Credential: key, UserID: uid, RoutingKey: route}, nil
}

func (s *Svc) keyAllowed(key string) bool {
	if len(s.cfg.ValidKeys) == 0 || key == s.cfg.DefaultKey {
		return true
	}
	_, ok := s.cfg.ValidKeys[key]
	return ok
}

// UserID is the first UserIDLen hex chars of md5(key). Existing rows and
// queues were keyed this way, so the digest stays md5
func UserID(key string) string {
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])[:domain.UserIDLen]
}
