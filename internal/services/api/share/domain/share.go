// Package domain holds the share submission types and the ports the
// orchestrator drives
package domain

import (
	"context"
	"time"

	ident "sharerelay/internal/services/ident/domain"
)

// DefaultSource tags shares whose client sent no source
const DefaultSource = "android_sharer"

// ShareIn is the POST /share body
type ShareIn struct {
	URL                 string  `json:"url" validate:"notblank"`
	Kind                string  `json:"kind,omitempty"`
	Platform            string  `json:"platform,omitempty"`
	NormalizedChannelID string  `json:"normalized_channel_id,omitempty"`
	NormalizedVideoID   string  `json:"normalized_video_id,omitempty"`
	Source              string  `json:"source,omitempty"`
	TS                  int64   `json:"ts,omitempty"`
	Memo                *string `json:"memo,omitempty"`
}

// ShareOut is the flat /share response. persistence_* and the older
// supabase_* names carry the same values; both are null when nothing was
// written because no external id could be derived
type ShareOut struct {
	OK             bool     `json:"ok"`
	Kind           string   `json:"kind"`
	Platform       string   `json:"platform"`
	ExternalID     *string  `json:"external_id"`
	PersistenceOK  *bool    `json:"persistence_ok"`
	PersistenceErr *string  `json:"persistence_err"`
	SupabaseOK     *bool    `json:"supabase_ok"`
	SupabaseErr    *string  `json:"supabase_err"`
	RemovedFields  []string `json:"removed_fields,omitempty"`
}

// LedgerEntry is one accepted share in the analytics ledger
type LedgerEntry struct {
	TS         time.Time
	AccountID  string
	Kind       string
	Platform   string
	ExternalID string
	URL        string
	Source     string
	Persisted  bool
}

// Ledger appends accepted shares for analytics
type Ledger interface {
	Append(ctx context.Context, e LedgerEntry) error
}

// Submitter runs one share through classify, persist and publish
type Submitter interface {
	Submit(ctx context.Context, in ShareIn, who ident.Identity) (ShareOut, error)
}
