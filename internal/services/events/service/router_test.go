package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"sharerelay/internal/platform/config"
	"sharerelay/internal/platform/metrics"
	kit "sharerelay/internal/platform/testkit"
	"sharerelay/internal/services/events/domain"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func fixedRouter(opt Options) *Router {
	r := New(opt)
	r.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return r
}

// pending reports how many messages wait on key's queue
func pending(r *Router, key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queues[key])
}

func TestFormat_WireShape(t *testing.T) {
	id := "id-1"
	got, err := Format("42", domain.EventVideoAdded, domain.SharePayload{
		Kind: "video", Platform: "youtube", ExternalID: &id, URL: "https://x/?a=1&b=<2>", Source: "안드로이드", TS: 7,
	})
	if err != nil {
		t.Fatal(err)
	}
	want := `id: 42` + "\n" + `event: video_added` + "\n" +
		`data: {"kind":"video","platform":"youtube","external_id":"id-1","url":"https://x/?a=1&b=<2>","source":"안드로이드","ts":7,"supabase":false}` +
		"\n\n"
	if got != want {
		t.Fatalf("Format =\n%q\nwant\n%q", got, want)
	}
}

func TestFormat_NullExternalID(t *testing.T) {
	got, _ := Format("1", domain.EventChannelAdded, domain.SharePayload{Kind: "channel"})
	kit.MustContain(t, got, `"external_id":null`)
}

func TestPreambleAndHeartbeat(t *testing.T) {
	if got := Preamble(5000); got != "retry: 5000\n\nevent: ready\ndata: {}\n\n" {
		t.Fatalf("preamble = %q", got)
	}
	if got := Heartbeat(3); got != ": keep-3\n\n" {
		t.Fatalf("heartbeat = %q", got)
	}
}

func TestPublish_FIFOAndIDs(t *testing.T) {
	r := fixedRouter(Options{QueueSize: 4})
	for i := range 3 {
		if !r.Publish("acct", domain.EventVideoAdded, map[string]int{"n": i}) {
			t.Fatalf("publish %d dropped", i)
		}
	}
	q := r.Subscribe("acct")
	for i := range 3 {
		msg := <-q
		kit.MustContain(t, msg, "id: 1700000000123\n")
		kit.MustContain(t, msg, `"n":`+string(rune('0'+i)))
	}
}

func TestPublish_DropsWhenFull(t *testing.T) {
	r := fixedRouter(Options{QueueSize: 2})
	before := testutil.ToFloat64(metrics.EventsDropped)

	ok := 0
	for range 5 {
		if r.Publish("idle", domain.EventChannelAdded, struct{}{}) {
			ok++
		}
	}
	if ok != 2 || pending(r, "idle") != 2 {
		t.Fatalf("accepted=%d pending=%d", ok, pending(r, "idle"))
	}
	if d := testutil.ToFloat64(metrics.EventsDropped) - before; d != 3 {
		t.Fatalf("dropped metric delta = %v", d)
	}
}

func TestQueue_DefaultBound(t *testing.T) {
	r := New(Options{})
	for range domain.QueueSize + 50 {
		r.Publish("k", domain.EventVideoAdded, nil)
	}
	if got := pending(r, "k"); got != domain.QueueSize {
		t.Fatalf("pending = %d", got)
	}
}

func TestQueue_ConcurrentGetOrCreate(t *testing.T) {
	r := New(Options{QueueSize: 8})
	var wg sync.WaitGroup
	chans := make([]<-chan string, 16)
	for i := range chans {
		wg.Add(1)
		go func() {
			defer wg.Done()
			chans[i] = r.Subscribe("same")
		}()
	}
	wg.Wait()
	for _, c := range chans[1:] {
		if c != chans[0] {
			t.Fatal("one routing key must map to one queue")
		}
	}
	if r.Subscribe("other") == chans[0] {
		t.Fatal("distinct keys share a queue")
	}
}

// sink collects stream writes and signals each one
type sink struct {
	mu      sync.Mutex
	b       strings.Builder
	writes  chan struct{}
	flushes int
	fail    error
}

func newSink() *sink { return &sink{writes: make(chan struct{}, 64)} }

func (s *sink) WriteString(v string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return 0, s.fail
	}
	s.b.WriteString(v)
	s.writes <- struct{}{}
	return len(v), nil
}

func (s *sink) Flush() {
	s.mu.Lock()
	s.flushes++
	s.mu.Unlock()
}

func (s *sink) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func waitWrites(t *testing.T, s *sink, n int) {
	t.Helper()
	for range n {
		select {
		case <-s.writes:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for writes; got %q", s.String())
		}
	}
}

func TestStream_PreambleMessagesHeartbeats(t *testing.T) {
	r := fixedRouter(Options{QueueSize: 4, KeepAlive: 30 * time.Millisecond, RetryMs: 1234})
	r.Publish("acct", domain.EventVideoAdded, map[string]string{"a": "b"})

	ctx, cancel := context.WithCancel(context.Background())
	s := newSink()
	done := make(chan error, 1)
	go func() { done <- r.Stream(ctx, "acct", s) }()

	// preamble, queued message, then at least one heartbeat
	waitWrites(t, s, 3)
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Stream: %v", err)
	}

	out := s.String()
	if !strings.HasPrefix(out, "retry: 1234\n\nevent: ready\ndata: {}\n\nid: 1700000000123\nevent: video_added\n") {
		t.Fatalf("stream head = %q", out)
	}
	kit.MustContain(t, out, ": keep-1\n\n")
}

func TestStream_WriteErrorEndsStream(t *testing.T) {
	r := New(Options{KeepAlive: time.Hour})
	s := newSink()
	s.fail = errors.New("client gone")
	if err := r.Stream(context.Background(), "x", s); err == nil {
		t.Fatal("expected write error")
	}
}

func TestStream_SubscriberGauge(t *testing.T) {
	r := New(Options{KeepAlive: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	s := newSink()
	base := testutil.ToFloat64(metrics.SSESubscribers)

	done := make(chan struct{})
	go func() { _ = r.Stream(ctx, "g", s); close(done) }()
	waitWrites(t, s, 1)
	if got := testutil.ToFloat64(metrics.SSESubscribers) - base; got != 1 {
		t.Fatalf("gauge delta while open = %v", got)
	}
	cancel()
	<-done
	if got := testutil.ToFloat64(metrics.SSESubscribers) - base; got != 0 {
		t.Fatalf("gauge delta after close = %v", got)
	}
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("SSE_QUEUE_SIZE", "10")
	t.Setenv("SSE_KEEPALIVE_SEC", "2")
	t.Setenv("SSE_INITIAL_RETRY", "")
	o := OptionsFromEnv(config.New())
	if o.QueueSize != 10 || o.KeepAlive != 2*time.Second || o.RetryMs != 5000 {
		t.Fatalf("options = %+v", o)
	}
}
