package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	pnet "sharerelay/internal/platform/net"
	phttp "sharerelay/internal/platform/net/http"
	pstrings "sharerelay/internal/platform/strings"
	"sharerelay/internal/services/ident/domain"
	identsvc "sharerelay/internal/services/ident/service"

	"github.com/go-chi/chi/v5"
)

func TestAuth_EventsScopeUsesQueryCredentials(t *testing.T) {
	svc := identsvc.New(domain.Config{
		DefaultAccount:  "dumock",
		RequireSSEToken: true,
		ValidTokens:     pstrings.Set([]string{"tok"}),
	})

	r := phttp.AdaptChi(chi.NewRouter())
	r.Use(Auth(svc, domain.ScopeEvents))
	r.Get("/events", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(pnet.AccountID(req.Context()) + "|" + pnet.Credential(req.Context())))
	})

	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events?api_key=k&account_id=tv-1&sse_token=tok", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "tv-1|k" {
		t.Fatalf("status %d body %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events?api_key=k", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token status %d", rec.Code)
	}
}

func TestAuthPort_MissingCredential(t *testing.T) {
	p := AuthPort(identsvc.New(domain.Config{}), domain.ScopeShare)
	if _, err := p.Parse(httptest.NewRequest(http.MethodPost, "/share", nil)); err == nil {
		t.Fatal("expected missing credentials")
	}
}

func TestFromRequest(t *testing.T) {
	r := phttp.AdaptChi(chi.NewRouter())
	r.Use(Auth(identsvc.New(domain.Config{DefaultAccount: "dumock"}), domain.ScopeShare))
	var got domain.Identity
	r.Post("/share", func(w http.ResponseWriter, req *http.Request) {
		got, _ = FromRequest(req)
	})

	req := httptest.NewRequest(http.MethodPost, "/share", nil)
	req.Header.Set("Authorization", "Bearer abc")
	r.Mux().ServeHTTP(httptest.NewRecorder(), req)
	if got.Credential != "abc" || got.RoutingKey != "dumock" || got.UserID != identsvc.UserID("abc") {
		t.Fatalf("identity = %+v", got)
	}

	if _, err := FromRequest(httptest.NewRequest(http.MethodPost, "/share", nil)); err == nil {
		t.Fatal("unauthenticated request must not yield an identity")
	}
}
