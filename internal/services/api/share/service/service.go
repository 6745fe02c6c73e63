// Package service implements the ingestion orchestrator behind POST /share
package service

import (
	"context"
	"time"

	"sharerelay/internal/core/linkparse"
	perr "sharerelay/internal/platform/errors"
	"sharerelay/internal/platform/logger"
	"sharerelay/internal/platform/metrics"
	pstrings "sharerelay/internal/platform/strings"
	"sharerelay/internal/services/api/share/domain"
	events "sharerelay/internal/services/events/domain"
	ident "sharerelay/internal/services/ident/domain"
	persist "sharerelay/internal/services/persist/domain"
)

// Svc composes classifier, persistence, router and ledger
type Svc struct {
	cfg    Config
	store  persist.Upserter
	pub    events.Publisher
	ledger domain.Ledger
	now    func() time.Time
}

var _ domain.Submitter = (*Svc)(nil)

// New constructs the orchestrator. ledger may be nil
func New(cfg Config, store persist.Upserter, pub events.Publisher, ledger domain.Ledger) *Svc {
	return &Svc{cfg: cfg, store: store, pub: pub, ledger: ledger, now: time.Now}
}

// Submit validates and classifies in, persists it when an external id can
// be derived and always publishes a notification. Persistence failures are
// reported in the result, never as an error
func (s *Svc) Submit(ctx context.Context, in domain.ShareIn, who ident.Identity) (domain.ShareOut, error) {
	url := linkparse.Normalize(in.URL)
	if url == "" {
		return domain.ShareOut{}, perr.WithField(perr.Validationf("empty url"), "url")
	}
	kind, platform := linkparse.Classify(url, in.Kind, in.Platform)
	if !kind.Valid() {
		return domain.ShareOut{}, perr.WithField(perr.Validationf("invalid kind"), "kind")
	}

	createdAt := in.TS
	if createdAt == 0 {
		createdAt = s.now().UnixMilli()
	}
	sh := share{
		route:     who.RoutingKey,
		kind:      kind,
		platform:  platform,
		url:       url,
		source:    pstrings.FirstNonEmpty(in.Source, domain.DefaultSource),
		createdAt: createdAt,
		memo:      in.Memo,
	}
	ext, hasID := linkparse.ExtractID(kind, platform, url, in.NormalizedChannelID, in.NormalizedVideoID)
	sh.externalID = ext

	log := logger.C(ctx)
	log.Info().Str("kind", string(kind)).Str("platform", string(platform)).
		Str("external_id", ext).Str("url", url).Msg("share received")

	out := domain.ShareOut{OK: true, Kind: string(kind), Platform: string(platform)}
	var res persist.Outcome
	if hasID {
		out.ExternalID = &ext
		res = s.persist(ctx, sh)
		ok, reason := res.OK, res.Err
		out.PersistenceOK, out.SupabaseOK = &ok, &ok
		if !ok {
			out.PersistenceErr, out.SupabaseErr = &reason, &reason
		}
		out.RemovedFields = res.Removed
	}
	persisted := out.PersistenceOK != nil && *out.PersistenceOK

	if s.cfg.EmitOnDuplicate || !res.Duplicate {
		s.pub.Publish(sh.route, events.AddedEvent(string(kind)), events.SharePayload{
			Kind:       string(kind),
			Platform:   string(platform),
			ExternalID: out.ExternalID,
			URL:        url,
			Source:     sh.source,
			TS:         createdAt,
			Supabase:   persisted,
		})
	} else {
		log.Debug().Str("external_id", ext).Msg("duplicate share; notification suppressed")
	}

	s.appendLedger(ctx, sh, persisted)
	metrics.Shares.WithLabelValues(string(kind), string(platform)).Inc()
	return out, nil
}

func (s *Svc) persist(ctx context.Context, sh share) persist.Outcome {
	table, row, reason := rowFor(s.cfg, sh)
	if reason != "" {
		return persist.Outcome{Err: reason}
	}
	res := s.store.Upsert(ctx, table, row, s.cfg.OnConflict)
	log := logger.C(ctx)
	if res.OK {
		log.Info().Str("table", table).Str("external_id", sh.externalID).
			Bool("duplicate", res.Duplicate).Strs("removed", res.Removed).Msg("share persisted")
	} else {
		log.Warn().Err(perr.Upstreamf("%s", res.Err)).Str("table", table).
			Str("external_id", sh.externalID).Msg("share persistence failed")
	}
	return res
}

// appendLedger is best effort: a ledger outage never changes the response.
// The wired ledger only enqueues, so this never waits on clickhouse
func (s *Svc) appendLedger(ctx context.Context, sh share, persisted bool) {
	if s.ledger == nil {
		return
	}
	err := s.ledger.Append(context.WithoutCancel(ctx), domain.LedgerEntry{
		TS:         time.UnixMilli(sh.createdAt).UTC(),
		AccountID:  sh.route,
		Kind:       string(sh.kind),
		Platform:   string(sh.platform),
		ExternalID: sh.externalID,
		URL:        sh.url,
		Source:     sh.source,
		Persisted:  persisted,
	})
	if err != nil {
		logger.C(ctx).Warn().Err(err).Msg("share ledger append failed")
	}
}
