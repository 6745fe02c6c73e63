// Package service implements the per routing key event router
package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"sharerelay/internal/platform/config"
	"sharerelay/internal/platform/logger"
	"sharerelay/internal/platform/metrics"
	"sharerelay/internal/services/events/domain"
)

// Options tunes queues and streams
type Options struct {
	QueueSize int
	KeepAlive time.Duration
	RetryMs   int
}

// OptionsFromEnv reads SSE_QUEUE_SIZE, SSE_KEEPALIVE_SEC and SSE_INITIAL_RETRY
func OptionsFromEnv(c config.Conf) Options {
	c = c.Prefix("SSE_")
	return Options{
		QueueSize: c.MayInt("QUEUE_SIZE", domain.QueueSize),
		KeepAlive: c.MaySeconds("KEEPALIVE_SEC", 5*time.Second),
		RetryMs:   c.MayInt("INITIAL_RETRY", 5000),
	}
}

// Router owns one bounded queue per routing key. Queues are created on first
// use by either side and live for the process. Every subscriber of a key
// reads the same queue, so concurrent subscribers split its messages
type Router struct {
	mu     sync.Mutex
	queues map[string]chan string
	opt    Options
	now    func() time.Time
	log    *logger.Logger
}

var (
	_ domain.Publisher = (*Router)(nil)
	_ domain.Streamer  = (*Router)(nil)
)

// New constructs a Router
func New(opt Options) *Router {
	if opt.QueueSize <= 0 {
		opt.QueueSize = domain.QueueSize
	}
	if opt.KeepAlive <= 0 {
		opt.KeepAlive = 5 * time.Second
	}
	if opt.RetryMs <= 0 {
		opt.RetryMs = 5000
	}
	return &Router{
		queues: make(map[string]chan string),
		opt:    opt,
		now:    time.Now,
		log:    logger.Named("events"),
	}
}

// queue is the idempotent get-or-create for key
func (r *Router) queue(key string) chan string {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.queues[key]
	if !ok {
		q = make(chan string, r.opt.QueueSize)
		r.queues[key] = q
	}
	return q
}

// Publish formats and enqueues a message; a full queue drops it
func (r *Router) Publish(key, event string, payload any) bool {
	msg, err := Format(strconv.FormatInt(r.now().UnixMilli(), 10), event, payload)
	if err != nil {
		r.log.Error().Err(err).Str("event", event).Msg("encode event")
		return false
	}
	select {
	case r.queue(key) <- msg:
		metrics.EventsPublished.WithLabelValues(event).Inc()
		return true
	default:
		metrics.EventsDropped.Inc()
		r.log.Debug().Str("route", key).Str("event", event).Msg("route queue full; dropped")
		return false
	}
}

// Subscribe returns the receive side of key's queue
func (r *Router) Subscribe(key string) <-chan string { return r.queue(key) }

// Stream writes the preamble, then every message from key's queue, with a
// heartbeat whenever a keepalive interval passes without one. It returns nil
// when ctx ends and the write error when the client is gone
func (r *Router) Stream(ctx context.Context, key string, w domain.StreamWriter) error {
	metrics.SSESubscribers.Inc()
	defer metrics.SSESubscribers.Dec()

	if _, err := w.WriteString(Preamble(r.opt.RetryMs)); err != nil {
		return err
	}
	w.Flush()

	q := r.Subscribe(key)
	idle := time.NewTimer(r.opt.KeepAlive)
	defer idle.Stop()

	keep := 0
	for {
		var out string
		select {
		case <-ctx.Done():
			return nil
		case out = <-q:
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
		case <-idle.C:
			keep++
			out = Heartbeat(keep)
		}
		if _, err := w.WriteString(out); err != nil {
			return err
		}
		w.Flush()
		idle.Reset(r.opt.KeepAlive)
	}
}
