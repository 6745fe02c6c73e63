package http_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "sharerelay/internal/platform/errors"
	phttp "sharerelay/internal/platform/net/http"
	"sharerelay/internal/platform/net/http/bind"

	"github.com/go-chi/chi/v5"
)

type echoIn struct {
	URL string `json:"url" validate:"notblank"`
}

func newRouter() phttp.Router { return phttp.AdaptChi(chi.NewRouter()) }

func TestPostRaw_FlatBodyAndLenientFields(t *testing.T) {
	r := newRouter()
	phttp.PostRaw(r, "/echo", func(_ *http.Request, in echoIn) (any, error) {
		return map[string]any{"ok": true, "url": in.URL}, nil
	}, bind.JSONOptions{MaxBytes: 1 << 10, DisallowUnknown: false})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"url":"@a","extra":1}`))
	r.Mux().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	body := decode[map[string]any](t, rec)
	if body["ok"] != true || body["url"] != "@a" {
		t.Fatalf("body %v", body)
	}
}

func TestPostRaw_ValidationIsEnveloped400(t *testing.T) {
	r := newRouter()
	phttp.PostRaw(r, "/echo", func(_ *http.Request, in echoIn) (any, error) {
		t.Fatal("handler must not run")
		return nil, nil
	})

	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"url":"   "}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
	env := decode[phttp.Envelope](t, rec)
	if env.Code != perr.ErrorCodeValidation || env.Error != "url must not be empty" {
		t.Fatalf("envelope %+v", env)
	}
}

func TestPostJSON_EnvelopesAndMapsErrors(t *testing.T) {
	r := newRouter()
	phttp.PostJSON(r, "/ok", func(_ *http.Request, in echoIn) (any, error) { return in.URL, nil })
	phttp.PostJSON(r, "/fail", func(_ *http.Request, in echoIn) (any, error) {
		return nil, perr.Unavailablef("store down")
	})

	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ok", strings.NewReader(`{"url":"x"}`)))
	if env := decode[phttp.Envelope](t, rec); env.Data != "x" {
		t.Fatalf("data %v", env.Data)
	}

	rec = httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/fail", strings.NewReader(`{"url":"x"}`)))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestGetRawAndGetJSON(t *testing.T) {
	r := newRouter()
	phttp.GetRaw(r, "/raw", func(*http.Request) (any, error) { return map[string]string{"status": "ok"}, nil })
	phttp.GetJSON(r, "/env", func(*http.Request) (any, error) { return "v", nil })
	phttp.GetRaw(r, "/err", func(*http.Request) (any, error) { return nil, errors.New("boom") })
	phttp.GetRaw(r, "/resp", func(*http.Request) (any, error) { return phttp.NoContent(), nil })

	get := func(p string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
		return rec
	}

	if body := decode[map[string]string](t, get("/raw")); body["status"] != "ok" {
		t.Fatalf("raw %v", body)
	}
	if env := decode[phttp.Envelope](t, get("/env")); env.Data != "v" {
		t.Fatalf("env %+v", env)
	}
	if rec := get("/err"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("err status %d", rec.Code)
	}
	if rec := get("/resp"); rec.Code != http.StatusNoContent {
		t.Fatalf("resp passthrough %d", rec.Code)
	}
}
