package postgrest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sharerelay/internal/platform/config"
	"sharerelay/internal/services/persist/domain"

	"github.com/goccy/go-json"
)

type captured struct {
	path, query, prefer, apikey, authz, ctype string
	rows                                      []map[string]any
}

func newServer(t *testing.T, status int, body string) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.path = r.URL.Path
		c.query = r.URL.Query().Get("on_conflict")
		c.prefer = r.Header.Get("Prefer")
		c.apikey = r.Header.Get("apikey")
		c.authz = r.Header.Get("Authorization")
		c.ctype = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &c.rows)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func TestWrite_UpsertRequestShape(t *testing.T) {
	srv, got := newServer(t, http.StatusCreated, `[{"id":1}]`)
	c := NewClient(Options{BaseURL: srv.URL + "/", Key: "svc-key"})

	row := domain.Row{"platform": "youtube", "external_id": "dQw4w9WgXcQ"}
	if err := c.Write(context.Background(), "videos", row, []string{"platform", "external_id"}, domain.ModeUpsert); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got.path != "/rest/v1/videos" {
		t.Fatalf("path = %q", got.path)
	}
	if got.query != "platform,external_id" {
		t.Fatalf("on_conflict = %q", got.query)
	}
	if got.prefer != preferUpsert {
		t.Fatalf("prefer = %q", got.prefer)
	}
	if got.apikey != "svc-key" || got.authz != "Bearer svc-key" || got.ctype != "application/json" {
		t.Fatalf("headers = %+v", got)
	}
	if len(got.rows) != 1 || got.rows[0]["external_id"] != "dQw4w9WgXcQ" {
		t.Fatalf("body rows = %v", got.rows)
	}
}

func TestWrite_InsertHasNoConflictTarget(t *testing.T) {
	srv, got := newServer(t, http.StatusCreated, `[]`)
	c := NewClient(Options{BaseURL: srv.URL, Key: "k"})

	if err := c.Write(context.Background(), "channels", domain.Row{"a": 1}, []string{"platform"}, domain.ModeInsert); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got.query != "" || got.prefer != preferInsert {
		t.Fatalf("insert query=%q prefer=%q", got.query, got.prefer)
	}
}

func TestWrite_ErrorBodyIsClassified(t *testing.T) {
	body := `{"code":"42703","message":"column \"memo\" of relation \"channels\" does not exist"}`
	srv, _ := newServer(t, http.StatusBadRequest, body)
	c := NewClient(Options{BaseURL: srv.URL, Key: "k"})

	err := c.Write(context.Background(), "channels", domain.Row{"memo": "x"}, nil, domain.ModeUpsert)
	var f *domain.Fault
	if !errors.As(err, &f) {
		t.Fatalf("want *Fault, got %T %v", err, err)
	}
	if f.Kind != domain.FaultUnknownColumn || f.Column != "memo" || f.Status != 400 || f.Body != body {
		t.Fatalf("fault = %+v", f)
	}
}

func TestWrite_TransportErrorHasNoStatus(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, "")
	srv.Close()
	c := NewClient(Options{BaseURL: srv.URL, Key: "k", Timeout: time.Second})

	err := c.Write(context.Background(), "videos", domain.Row{}, nil, domain.ModeUpsert)
	var f *domain.Fault
	if !errors.As(err, &f) {
		t.Fatalf("want *Fault, got %T", err)
	}
	if f.Status != 0 || f.Err == nil || !f.Transient() {
		t.Fatalf("fault = %+v", f)
	}
}

func TestClassify_Table(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		kind   domain.FaultKind
		column string
	}{
		{"unique code 409", 409, `{"code":"23505","message":"duplicate key value violates unique constraint \"videos_pkey\""}`, domain.FaultUniqueViolation, ""},
		{"unique text 400", 400, `duplicate key value violates unique constraint`, domain.FaultUniqueViolation, ""},
		{"undefined column", 400, `{"code":"42703","message":"column \"memo\" of relation \"channels\" does not exist"}`, domain.FaultUnknownColumn, "memo"},
		{"schema cache", 400, `{"code":"PGRST204","message":"Could not find the 'user_id' column of 'channels' in the schema cache"}`, domain.FaultUnknownColumn, "user_id"},
		{"no constraint code", 400, `{"code":"42P10","message":"x"}`, domain.FaultNoUniqueConstraint, ""},
		{"no constraint text", 400, `there is no unique or exclusion constraint matching the ON CONFLICT specification`, domain.FaultNoUniqueConstraint, ""},
		{"plain 400", 400, `{"message":"bad"}`, domain.FaultOther, ""},
		{"unique on 500 is other", 500, `23505`, domain.FaultOther, ""},
		{"column on 409 is other", 409, `column "a" of relation "b" does not exist`, domain.FaultOther, ""},
		{"401", 401, `{"message":"JWT expired"}`, domain.FaultOther, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := Classify(c.status, c.body)
			if f.Kind != c.kind || f.Column != c.column {
				t.Fatalf("Classify = %s/%q, want %s/%q", f.Kind, f.Column, c.kind, c.column)
			}
			if f.Status != c.status || f.Body != c.body {
				t.Fatalf("status/body not kept: %+v", f)
			}
		})
	}
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://x.supabase.co")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "")
	t.Setenv("SUPABASE_TIMEOUT_SEC", "2.5")

	o := OptionsFromEnv(config.New())
	if o.Configured() {
		t.Fatal("missing key must not count as configured")
	}
	if o.Timeout != 2500*time.Millisecond {
		t.Fatalf("timeout = %v", o.Timeout)
	}
	o.Key = "k"
	if !o.Configured() {
		t.Fatal("url+key should be configured")
	}
	if !strings.HasPrefix(NewClient(o).opts.BaseURL, "https://") {
		t.Fatal("base url lost")
	}
}
