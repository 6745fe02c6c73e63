package clickhouse

import (
	"context"
	"errors"
	"sync"
	"time"

	"sharerelay/internal/platform/config"
	"sharerelay/internal/platform/logger"
	"sharerelay/internal/platform/metrics"
	"sharerelay/internal/services/api/share/domain"
)

const (
	defaultBuffer       = 1024
	defaultBatch        = 100
	defaultFlushEvery   = time.Second
	defaultFlushTimeout = 5 * time.Second
)

var (
	// ErrBufferFull means Append dropped the entry
	ErrBufferFull = errors.New("ledger buffer full")
	// ErrWriterClosed means Append was called after Close
	ErrWriterClosed = errors.New("ledger writer closed")
)

// WriterOptions tune the background batcher
type WriterOptions struct {
	// Buffer is how many entries may wait before Append drops
	Buffer int
	// Batch flushes as soon as this many entries are pending
	Batch int
	// FlushEvery bounds how long an entry waits under light traffic
	FlushEvery time.Duration
	// FlushTimeout caps one insert
	FlushTimeout time.Duration
}

// WriterOptionsFromEnv reads LEDGER_BUFFER, LEDGER_BATCH and LEDGER_FLUSH_SEC
func WriterOptionsFromEnv(c config.Conf) WriterOptions {
	lc := c.Prefix("LEDGER_")
	return WriterOptions{
		Buffer:       lc.MayInt("BUFFER", defaultBuffer),
		Batch:        lc.MayInt("BATCH", defaultBatch),
		FlushEvery:   lc.MaySeconds("FLUSH_SEC", defaultFlushEvery),
		FlushTimeout: defaultFlushTimeout,
	}
}

// Writer keeps ledger inserts off the request path. Append only enqueues;
// one goroutine turns the queue into multi row inserts
type Writer struct {
	l    *Ledger
	opt  WriterOptions
	in   chan domain.LedgerEntry
	quit chan struct{}
	done chan struct{}
	stop sync.Once
	log  logger.Logger
}

var _ domain.Ledger = (*Writer)(nil)

// NewWriter starts the flush loop. Call Close to drain it
func NewWriter(l *Ledger, o WriterOptions) *Writer {
	if o.Buffer <= 0 {
		o.Buffer = defaultBuffer
	}
	if o.Batch <= 0 {
		o.Batch = defaultBatch
	}
	if o.FlushEvery <= 0 {
		o.FlushEvery = defaultFlushEvery
	}
	if o.FlushTimeout <= 0 {
		o.FlushTimeout = defaultFlushTimeout
	}
	w := &Writer{
		l:    l,
		opt:  o,
		in:   make(chan domain.LedgerEntry, o.Buffer),
		quit: make(chan struct{}),
		done: make(chan struct{}),
		log:  *logger.Named("ledger"),
	}
	go w.run()
	return w
}

// Append queues e and never blocks
func (w *Writer) Append(_ context.Context, e domain.LedgerEntry) error {
	select {
	case <-w.quit:
		return ErrWriterClosed
	default:
	}
	select {
	case w.in <- e:
		return nil
	default:
		metrics.LedgerRows.WithLabelValues("dropped").Inc()
		return ErrBufferFull
	}
}

// Close stops the loop after flushing everything queued so far.
// It returns ctx's error when the final flush outlives ctx
func (w *Writer) Close(ctx context.Context) error {
	w.stop.Do(func() { close(w.quit) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Writer) run() {
	defer close(w.done)
	tick := time.NewTicker(w.opt.FlushEvery)
	defer tick.Stop()

	batch := make([]domain.LedgerEntry, 0, w.opt.Batch)
	for {
		select {
		case e := <-w.in:
			batch = append(batch, e)
			if len(batch) >= w.opt.Batch {
				batch = w.flush(batch)
			}
		case <-tick.C:
			batch = w.flush(batch)
		case <-w.quit:
			for {
				select {
				case e := <-w.in:
					batch = append(batch, e)
				default:
					w.flush(batch)
					return
				}
			}
		}
	}
}

// flush writes batch and returns it emptied for reuse
func (w *Writer) flush(batch []domain.LedgerEntry) []domain.LedgerEntry {
	if len(batch) == 0 {
		return batch
	}
	ctx, cancel := context.WithTimeout(context.Background(), w.opt.FlushTimeout)
	defer cancel()
	if err := w.l.AppendBatch(ctx, batch); err != nil {
		metrics.LedgerRows.WithLabelValues("failed").Add(float64(len(batch)))
		w.log.Warn().Err(err).Int("rows", len(batch)).Msg("ledger flush failed")
	} else {
		metrics.LedgerRows.WithLabelValues("written").Add(float64(len(batch)))
	}
	return batch[:0]
}
