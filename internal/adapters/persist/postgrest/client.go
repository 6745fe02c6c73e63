// Package postgrest writes relay rows through a PostgREST endpoint (Supabase)
package postgrest

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"sharerelay/internal/platform/config"
	perr "sharerelay/internal/platform/errors"
	"sharerelay/internal/platform/logger"
	"sharerelay/internal/services/persist/domain"

	"github.com/goccy/go-json"
)

const (
	defaultTimeout = 6 * time.Second
	// maxBody bounds how much of an error body is kept for classification
	maxBody = 64 << 10

	preferUpsert = "resolution=merge-duplicates,return=representation"
	preferInsert = "return=representation"
)

// Options configures the Client
type Options struct {
	BaseURL string
	Key     string
	Timeout time.Duration
}

// OptionsFromEnv reads URL, SERVICE_ROLE_KEY and TIMEOUT_SEC under the SUPABASE_ prefix
func OptionsFromEnv(c config.Conf) Options {
	c = c.Prefix("SUPABASE_")
	return Options{
		BaseURL: c.MayString("URL", ""),
		Key:     c.MayString("SERVICE_ROLE_KEY", ""),
		Timeout: c.MaySeconds("TIMEOUT_SEC", defaultTimeout),
	}
}

// Configured reports whether both the endpoint and the key are set
func (o Options) Configured() bool { return o.BaseURL != "" && o.Key != "" }

// Client is a persist Transport speaking the PostgREST insert protocol
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
	now  func() time.Time
}

var _ domain.Transport = (*Client)(nil)

// NewClient creates a Client with sane defaults
func NewClient(o Options) *Client {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("postgrest"),
		now:  time.Now,
	}
}

// Name labels the breaker and metrics
func (c *Client) Name() string { return "postgrest" }

// Write posts row as a one element array. ModeUpsert adds on_conflict and asks
// for merge-duplicates; ModeInsert is a bare insert
func (c *Client) Write(ctx context.Context, table string, row domain.Row, conflict []string, mode domain.Mode) error {
	body, err := json.Marshal([]domain.Row{row})
	if err != nil {
		return &domain.Fault{Kind: domain.FaultOther, Err: perr.Wrapf(err, perr.ErrorCodeJSON, "encode row")}
	}

	endpoint := c.opts.BaseURL + "/rest/v1/" + url.PathEscape(table)
	prefer := preferInsert
	if mode == domain.ModeUpsert {
		prefer = preferUpsert
		if len(conflict) > 0 {
			endpoint += "?on_conflict=" + url.QueryEscape(strings.Join(conflict, ","))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return &domain.Fault{Kind: domain.FaultOther, Err: err}
	}
	req.Header.Set("apikey", c.opts.Key)
	req.Header.Set("Authorization", "Bearer "+c.opts.Key)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", prefer)

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("table", table).Str("mode", mode.String()).Msg("postgrest request failed")
		return &domain.Fault{Kind: domain.FaultOther, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	c.log.Debug().
		Str("table", table).
		Str("mode", mode.String()).
		Int("status", resp.StatusCode).
		Dur("latency", c.now().Sub(start)).
		Msg("postgrest response")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	f := Classify(resp.StatusCode, string(raw))
	c.log.Debug().Str("table", table).Str("fault", f.Kind.String()).Str("body", string(raw)).Msg("postgrest error body")
	return f
}

// PostgREST reports a payload key missing from its schema cache as PGRST204
var schemaCacheColumnRe = regexp.MustCompile(`Could not find the '([^']+)' column of '([^']+)' in the schema cache`)

// Classify turns a non-2xx PostgREST answer into a typed fault
func Classify(status int, body string) *domain.Fault {
	f := &domain.Fault{Kind: domain.FaultOther, Status: status, Body: body}
	switch {
	case (status == http.StatusConflict || status == http.StatusBadRequest) && looksUnique(body):
		f.Kind = domain.FaultUniqueViolation
	case status == http.StatusBadRequest:
		if col, ok := unknownColumn(body); ok {
			f.Kind, f.Column = domain.FaultUnknownColumn, col
		} else if looksNoConstraint(body) {
			f.Kind = domain.FaultNoUniqueConstraint
		}
	}
	return f
}

func looksUnique(body string) bool {
	return strings.Contains(body, perr.PgUniqueViolation) ||
		strings.Contains(body, "duplicate key value violates unique constraint")
}

func looksNoConstraint(body string) bool {
	return strings.Contains(body, perr.PgInvalidConflictTarget) ||
		strings.Contains(body, "there is no unique or exclusion constraint")
}

func unknownColumn(body string) (string, bool) {
	if col, ok := perr.ParseUndefinedColumn(body); ok {
		return col, true
	}
	if m := schemaCacheColumnRe.FindStringSubmatch(body); m != nil {
		return m[1], true
	}
	return "", false
}
