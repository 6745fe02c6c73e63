package service

import (
	"context"
	"testing"

	"sharerelay/internal/platform/config"
	perr "sharerelay/internal/platform/errors"
	pstrings "sharerelay/internal/platform/strings"
	"sharerelay/internal/services/ident/domain"
)

func TestResolve_Table(t *testing.T) {
	base := domain.Config{
		DefaultKey:     DefaultAPIKey,
		ValidKeys:      pstrings.Set([]string{"k-live"}),
		DefaultAccount: DefaultAccountID,
	}
	cases := []struct {
		name    string
		cfg     domain.Config
		req     domain.Request
		scope   domain.Scope
		code    perr.ErrorCode
		wantErr bool
		route   string
	}{
		{"missing", base, domain.Request{Credential: "  "}, domain.ScopeShare, perr.ErrorCodeUnauthorized, true, ""},
		{"not on allow-list", base, domain.Request{Credential: "k-other"}, domain.ScopeShare, perr.ErrorCodeUnauthorized, true, ""},
		{"default key bypasses list", base, domain.Request{Credential: DefaultAPIKey}, domain.ScopeShare, 0, false, DefaultAccountID},
		{"listed key, default account", base, domain.Request{Credential: "k-live"}, domain.ScopeShare, 0, false, DefaultAccountID},
		{"requested route wins", base, domain.Request{Credential: "k-live", Route: "  team-a "}, domain.ScopeShare, 0, false, "team-a"},
		{"empty list accepts any", domain.Config{DefaultAccount: "d"}, domain.Request{Credential: "anything"}, domain.ScopeShare, 0, false, "d"},
		{"no default falls back to uid", domain.Config{}, domain.Request{Credential: "abc"}, domain.ScopeShare, 0, false, UserID("abc")},
		{
			"allow-list blocks account",
			domain.Config{DefaultAccount: "d", AllowedAccounts: pstrings.Set([]string{"ok"})},
			domain.Request{Credential: "k", Route: "nope"}, domain.ScopeShare, perr.ErrorCodeForbidden, true, "",
		},
		{
			"allow-list passes account",
			domain.Config{DefaultAccount: "d", AllowedAccounts: pstrings.Set([]string{"ok"})},
			domain.Request{Credential: "k", Route: "ok"}, domain.ScopeShare, 0, false, "ok",
		},
		{
			"sse token required on events",
			domain.Config{RequireSSEToken: true, ValidTokens: pstrings.Set([]string{"t1"})},
			domain.Request{Credential: "k"}, domain.ScopeEvents, perr.ErrorCodeUnauthorized, true, "",
		},
		{
			"sse token accepted",
			domain.Config{DefaultAccount: "d", RequireSSEToken: true, ValidTokens: pstrings.Set([]string{"t1"})},
			domain.Request{Credential: "k", SSEToken: "t1"}, domain.ScopeEvents, 0, false, "d",
		},
		{
			"sse token ignored on share",
			domain.Config{DefaultAccount: "d", RequireSSEToken: true},
			domain.Request{Credential: "k"}, domain.ScopeShare, 0, false, "d",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			id, err := New(c.cfg).Resolve(context.Background(), c.req, c.scope)
			if c.wantErr {
				if !perr.IsCode(err, c.code) {
					t.Fatalf("err = %v, want code %v", err, c.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if id.RoutingKey != c.route {
				t.Fatalf("route = %q want %q", id.RoutingKey, c.route)
			}
			if id.UserID != UserID(id.Credential) {
				t.Fatalf("user id not derived from credential: %+v", id)
			}
		})
	}
}

func TestUserID_StableShortHex(t *testing.T) {
	// md5("DEMO_API_KEY_123") prefix, pinned so existing queues keep their keys
	a, b := UserID("DEMO_API_KEY_123"), UserID("DEMO_API_KEY_123")
	if a != b || len(a) != domain.UserIDLen {
		t.Fatalf("UserID = %q %q", a, b)
	}
	if UserID("other") == a {
		t.Fatal("distinct keys collided")
	}
	if got := UserID(""); got != "d41d8cd98f00" {
		t.Fatalf("md5 of empty = %q", got)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("DEFAULT_API_KEY", "")
	t.Setenv("VALID_API_KEYS", "a, b ,")
	t.Setenv("DEFAULT_ACCOUNT_ID", "")
	t.Setenv("ALLOWED_ACCOUNT_IDS", "")
	t.Setenv("REQUIRE_SSE_TOKEN", "yes")
	t.Setenv("VALID_API_TOKENS", "t1")

	cfg := ConfigFromEnv(config.New())
	if cfg.DefaultKey != DefaultAPIKey {
		t.Fatalf("default key = %q", cfg.DefaultKey)
	}
	if _, ok := cfg.ValidKeys["b"]; !ok || len(cfg.ValidKeys) != 2 {
		t.Fatalf("valid keys = %v", cfg.ValidKeys)
	}
	if cfg.DefaultAccount != "" {
		t.Fatalf("explicit empty default account = %q", cfg.DefaultAccount)
	}
	if !cfg.RequireSSEToken || len(cfg.ValidTokens) != 1 || len(cfg.AllowedAccounts) != 0 {
		t.Fatalf("cfg = %+v", cfg)
	}
}
