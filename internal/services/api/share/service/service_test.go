package service

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"sharerelay/internal/platform/config"
	perr "sharerelay/internal/platform/errors"
	"sharerelay/internal/services/api/share/domain"
	events "sharerelay/internal/services/events/domain"
	ident "sharerelay/internal/services/ident/domain"
	persist "sharerelay/internal/services/persist/domain"
)

type upsertCall struct {
	table    string
	row      persist.Row
	conflict []string
}

type fakeStore struct {
	calls []upsertCall
	out   persist.Outcome
}

func (f *fakeStore) Upsert(_ context.Context, table string, row persist.Row, conflict []string) persist.Outcome {
	f.calls = append(f.calls, upsertCall{table, row, conflict})
	return f.out
}

type published struct {
	key, event string
	payload    events.SharePayload
}

type fakePub struct{ msgs []published }

func (f *fakePub) Publish(key, event string, payload any) bool {
	f.msgs = append(f.msgs, published{key, event, payload.(events.SharePayload)})
	return true
}

type fakeLedger struct {
	entries []domain.LedgerEntry
	err     error
}

func (f *fakeLedger) Append(_ context.Context, e domain.LedgerEntry) error {
	f.entries = append(f.entries, e)
	return f.err
}

func baseConfig() Config {
	return Config{
		TableChannels:   "channels",
		TableVideos:     "relay_videos",
		OnConflict:      []string{"account_id", "platform", "external_id"},
		VideosMode:      VideosModeRelay,
		EmitOnDuplicate: true,
	}
}

var who = ident.Identity{Credential: "DEMO_API_KEY_123", UserID: "abc", RoutingKey: "dumock"}

func newSvc(cfg Config, st *fakeStore, pub *fakePub, led domain.Ledger) *Svc {
	s := New(cfg, st, pub, led)
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return s
}

func TestSubmit_YouTubeVideo(t *testing.T) {
	st := &fakeStore{out: persist.Outcome{OK: true}}
	pub := &fakePub{}
	led := &fakeLedger{}
	s := newSvc(baseConfig(), st, pub, led)

	out, err := s.Submit(context.Background(), domain.ShareIn{URL: " https://www.youtube.com/watch?v=dQw4w9WgXcQ "}, who)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !out.OK || out.Kind != "video" || out.Platform != "youtube" || out.ExternalID == nil || *out.ExternalID != "dQw4w9WgXcQ" {
		t.Fatalf("out = %+v", out)
	}
	if out.PersistenceOK == nil || !*out.PersistenceOK || out.PersistenceErr != nil || out.SupabaseOK != out.PersistenceOK {
		t.Fatalf("persistence fields = %+v", out)
	}

	if len(st.calls) != 1 || st.calls[0].table != "relay_videos" {
		t.Fatalf("calls = %+v", st.calls)
	}
	row := st.calls[0].row
	if row["account_id"] != "dumock" || row["source"] != domain.DefaultSource || row["created_at"] != int64(1700000000000) {
		t.Fatalf("row = %v", row)
	}
	if v, ok := row["user_id"]; !ok || v != nil {
		t.Fatalf("user_id must be present and null: %v", row)
	}
	if v, ok := row["memo"]; !ok || v != nil {
		t.Fatalf("memo must be present and null: %v", row)
	}

	if len(pub.msgs) != 1 {
		t.Fatalf("published = %d", len(pub.msgs))
	}
	m := pub.msgs[0]
	if m.key != "dumock" || m.event != events.EventVideoAdded || !m.payload.Supabase || m.payload.TS != 1700000000000 {
		t.Fatalf("message = %+v", m)
	}
	if len(led.entries) != 1 || !led.entries[0].Persisted || led.entries[0].ExternalID != "dQw4w9WgXcQ" {
		t.Fatalf("ledger = %+v", led.entries)
	}
}

func TestSubmit_ChannelUsesChannelTableAndHints(t *testing.T) {
	st := &fakeStore{out: persist.Outcome{OK: true}}
	pub := &fakePub{}
	s := newSvc(baseConfig(), st, pub, nil)
	memo := "later"

	out, err := s.Submit(context.Background(), domain.ShareIn{
		URL: "https://www.tiktok.com/@alice", Source: "ios", TS: 42, Memo: &memo,
	}, who)
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != "channel" || *out.ExternalID != "@alice" {
		t.Fatalf("out = %+v", out)
	}
	row := st.calls[0].row
	if st.calls[0].table != "channels" || row["memo"] != "later" || row["source"] != "ios" || row["created_at"] != int64(42) {
		t.Fatalf("call = %+v", st.calls[0])
	}
	if pub.msgs[0].event != events.EventChannelAdded {
		t.Fatalf("event = %q", pub.msgs[0].event)
	}
}

func TestSubmit_BlankMemoIsNull(t *testing.T) {
	st := &fakeStore{out: persist.Outcome{OK: true}}
	s := newSvc(baseConfig(), st, &fakePub{}, nil)
	memo := "   "

	if _, err := s.Submit(context.Background(), domain.ShareIn{
		URL: "https://youtu.be/dQw4w9WgXcQ", Memo: &memo,
	}, who); err != nil {
		t.Fatal(err)
	}
	if v, ok := st.calls[0].row["memo"]; !ok || v != nil {
		t.Fatalf("blank memo must be null: %v", st.calls[0].row)
	}
}

func TestSubmit_NoExternalIDPublishesOnly(t *testing.T) {
	st := &fakeStore{}
	pub := &fakePub{}
	s := newSvc(baseConfig(), st, pub, nil)

	out, err := s.Submit(context.Background(), domain.ShareIn{URL: "@some_handle"}, who)
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != "channel" || out.Platform != "unknown" || out.ExternalID != nil || out.PersistenceOK != nil {
		t.Fatalf("out = %+v", out)
	}
	if len(st.calls) != 0 || len(pub.msgs) != 1 || pub.msgs[0].payload.Supabase || pub.msgs[0].payload.ExternalID != nil {
		t.Fatalf("calls=%d msgs=%+v", len(st.calls), pub.msgs)
	}
}

func TestSubmit_PersistenceFailureStillPublishes(t *testing.T) {
	st := &fakeStore{out: persist.Outcome{Err: "supabase_http_500: boom", Removed: []string{"memo"}}}
	pub := &fakePub{}
	led := &fakeLedger{err: errors.New("ch down")}
	s := newSvc(baseConfig(), st, pub, led)

	out, err := s.Submit(context.Background(), domain.ShareIn{URL: "https://youtu.be/dQw4w9WgXcQ"}, who)
	if err != nil {
		t.Fatalf("ledger or store failures must not fail the request: %v", err)
	}
	if *out.PersistenceOK || out.PersistenceErr == nil || *out.PersistenceErr != "supabase_http_500: boom" || *out.SupabaseErr != *out.PersistenceErr {
		t.Fatalf("out = %+v", out)
	}
	if !slices.Equal(out.RemovedFields, []string{"memo"}) {
		t.Fatalf("removed = %v", out.RemovedFields)
	}
	if len(pub.msgs) != 1 || pub.msgs[0].payload.Supabase {
		t.Fatalf("msgs = %+v", pub.msgs)
	}
}

func TestSubmit_Validation(t *testing.T) {
	s := newSvc(baseConfig(), &fakeStore{}, &fakePub{}, nil)
	for name, in := range map[string]domain.ShareIn{
		"blank":           {URL: "   "},
		"zero width only": {URL: "\u200b\u200b"},
		"bad kind":        {URL: "https://youtu.be/dQw4w9WgXcQ", Kind: "playlist"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Submit(context.Background(), in, who)
			if !perr.IsCode(err, perr.ErrorCodeValidation) {
				t.Fatalf("err = %v", err)
			}
		})
	}
}

func TestSubmit_DuplicateSuppressedWhenConfigured(t *testing.T) {
	cfg := baseConfig()
	cfg.EmitOnDuplicate = false
	pub := &fakePub{}
	s := newSvc(cfg, &fakeStore{out: persist.Outcome{OK: true, Duplicate: true}}, pub, nil)

	out, _ := s.Submit(context.Background(), domain.ShareIn{URL: "https://youtu.be/dQw4w9WgXcQ"}, who)
	if !*out.PersistenceOK || len(pub.msgs) != 0 {
		t.Fatalf("ok=%v msgs=%d", *out.PersistenceOK, len(pub.msgs))
	}

	cfg.EmitOnDuplicate = true
	pub = &fakePub{}
	s = newSvc(cfg, &fakeStore{out: persist.Outcome{OK: true, Duplicate: true}}, pub, nil)
	_, _ = s.Submit(context.Background(), domain.ShareIn{URL: "https://youtu.be/dQw4w9WgXcQ"}, who)
	if len(pub.msgs) != 1 {
		t.Fatalf("default should still publish duplicates, got %d", len(pub.msgs))
	}
}

func TestSubmit_WebMode(t *testing.T) {
	cfg := baseConfig()
	cfg.VideosMode = VideosModeWeb
	cfg.DefaultUserID = "5b0c1e62-3a63-4c4e-9d7a-0d3c5e0f9a11"
	cfg.DefaultChannelID = "ch-1"
	st := &fakeStore{out: persist.Outcome{OK: true}}
	s := newSvc(cfg, st, &fakePub{}, nil)

	_, err := s.Submit(context.Background(), domain.ShareIn{URL: "https://youtu.be/dQw4w9WgXcQ", TS: 1700000000000}, who)
	if err != nil {
		t.Fatal(err)
	}
	row := st.calls[0].row
	if row["youtube_video_id"] != "dQw4w9WgXcQ" || row["channel_id"] != "ch-1" || row["collected_at"] != "2023-11-14T22:13:20Z" {
		t.Fatalf("web row = %v", row)
	}
	if _, ok := row["account_id"]; ok {
		t.Fatal("web rows carry no account_id")
	}

	// non youtube video: reason, no write
	st2 := &fakeStore{}
	s = newSvc(cfg, st2, &fakePub{}, nil)
	out, _ := s.Submit(context.Background(), domain.ShareIn{URL: "https://www.douyin.com/video/7301234567890123456"}, who)
	if len(st2.calls) != 0 || *out.PersistenceOK || *out.PersistenceErr != "SUPABASE_VIDEOS_MODE=web is youtube-only right now" {
		t.Fatalf("out = %+v calls=%d", out, len(st2.calls))
	}

	// missing defaults
	cfg.DefaultChannelID = ""
	s = newSvc(cfg, &fakeStore{}, &fakePub{}, nil)
	out, _ = s.Submit(context.Background(), domain.ShareIn{URL: "https://youtu.be/dQw4w9WgXcQ"}, who)
	if *out.PersistenceOK || *out.PersistenceErr != "missing SUPABASE_DEFAULT_USER_ID or SUPABASE_DEFAULT_CHANNEL_ID for web/videos" {
		t.Fatalf("out = %+v", out)
	}
}

func TestSubmit_Determinism(t *testing.T) {
	s := newSvc(baseConfig(), &fakeStore{out: persist.Outcome{OK: true}}, &fakePub{}, nil)
	const link = "https://v.douyin.com/MA0_1C1VB7g/"
	a, _ := s.Submit(context.Background(), domain.ShareIn{URL: link}, who)
	b, _ := s.Submit(context.Background(), domain.ShareIn{URL: link}, who)
	if a.ExternalID == nil || len(*a.ExternalID) != 12 || *a.ExternalID != *b.ExternalID {
		t.Fatalf("fallback ids %v %v", a.ExternalID, b.ExternalID)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("SUPABASE_TABLE_VIDEOS", "videos")
	t.Setenv("SUPABASE_UPSERT_ON_CONFLICT", "platform, external_id")
	t.Setenv("SUPABASE_VIDEOS_MODE", "WEB")
	t.Setenv("EMIT_SSE_ON_DUP", "0")
	t.Setenv("SUPABASE_TABLE_CHANNELS", "")

	c := ConfigFromEnv(config.New())
	if c.TableVideos != "videos" || c.TableChannels != "channels" || c.VideosMode != VideosModeWeb || c.EmitOnDuplicate {
		t.Fatalf("config = %+v", c)
	}
	if !slices.Equal(c.OnConflict, []string{"platform", "external_id"}) {
		t.Fatalf("conflict = %v", c.OnConflict)
	}
}
