// Package service implements the self-healing upsert on top of a Transport
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sharerelay/internal/platform/config"
	"sharerelay/internal/platform/logger"
	"sharerelay/internal/platform/metrics"
	"sharerelay/internal/services/persist/domain"

	"github.com/sony/gobreaker/v2"
)

// NotConfigured is the outcome text when no transport is wired
const NotConfigured = "supabase_not_configured"

var errCircuitOpen = errors.New("circuit open")

// Options tunes the upsert loop
type Options struct {
	// MaxAttempts bounds merge attempts, each column removal costs one
	MaxAttempts int
	// BreakerMaxFailures consecutive transient faults open the breaker, 0 disables it
	BreakerMaxFailures uint32
	BreakerOpenFor     time.Duration
}

// OptionsFromEnv reads BREAKER_MAX_FAILURES and BREAKER_OPEN_FOR
func OptionsFromEnv(c config.Conf) Options {
	return Options{
		MaxAttempts:        3,
		BreakerMaxFailures: uint32(max(0, c.MayInt("BREAKER_MAX_FAILURES", 5))),
		BreakerOpenFor:     c.MayDuration("BREAKER_OPEN_FOR", 30*time.Second),
	}
}

// Svc is the adaptive persistence adapter
type Svc struct {
	t   domain.Transport
	cb  *gobreaker.CircuitBreaker[struct{}]
	max int
	log *logger.Logger
}

var _ domain.Upserter = (*Svc)(nil)

// New wraps t. A nil t yields a Svc that reports supabase_not_configured
func New(t domain.Transport, opt Options) *Svc {
	s := &Svc{t: t, max: opt.MaxAttempts, log: logger.Named("persist")}
	if s.max <= 0 {
		s.max = 3
	}
	if t != nil && opt.BreakerMaxFailures > 0 {
		s.cb = newBreaker(t.Name(), opt)
	}
	return s
}

func newBreaker(name string, opt Options) *gobreaker.CircuitBreaker[struct{}] {
	metrics.BreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))
	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     opt.BreakerOpenFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= opt.BreakerMaxFailures
		},
		// the row's own problems (4xx) say nothing about the store's health
		IsSuccessful: func(err error) bool {
			return err == nil || !AsFault(err).Transient()
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
			logger.Named("persist").Warn().Str("breaker", name).
				Str("from", from.String()).Str("to", to.String()).Msg("breaker state change")
		},
	})
}

// Upsert writes row into table, merging on conflict. It narrows the row when
// the table lacks a column and falls back to a plain insert when the conflict
// target has no unique constraint. It never returns an error: the outcome
// carries the failure text instead
func (s *Svc) Upsert(ctx context.Context, table string, row domain.Row, conflict []string) domain.Outcome {
	if s.t == nil {
		return domain.Outcome{Err: NotConfigured}
	}
	work := row.Clone()
	var removed []string

	for range s.max {
		work.ApplyUserIDRule()
		err := s.write(ctx, table, work, conflict, domain.ModeUpsert)

		d := Decide(err, work)
		switch d.Action {
		case ActSucceed:
			s.count(table, d)
			return domain.Outcome{OK: true, Removed: removed, Duplicate: d.Duplicate}
		case ActDropColumn:
			delete(work, d.Column)
			removed = append(removed, d.Column)
			metrics.PersistColumnsRemoved.WithLabelValues(table, d.Column).Inc()
			metrics.PersistAttempts.WithLabelValues(table, "column_removed").Inc()
			logger.C(ctx).Warn().Str("table", table).Str("column", d.Column).
				Msg("column missing on target table; removed from row")
			continue
		case ActPlainInsert:
			return s.plainInsert(ctx, table, work, removed)
		default:
			metrics.PersistAttempts.WithLabelValues(table, "failed").Inc()
			return domain.Outcome{Err: FailureText(err, false), Removed: removed}
		}
	}

	metrics.PersistAttempts.WithLabelValues(table, "failed").Inc()
	return domain.Outcome{
		Err:     fmt.Sprintf("supabase_http_400: column_mismatch_auto_removed=%v but still failing", removed),
		Removed: removed,
	}
}

func (s *Svc) plainInsert(ctx context.Context, table string, row domain.Row, removed []string) domain.Outcome {
	logger.C(ctx).Info().Str("table", table).Msg("no unique constraint for conflict target; plain insert")
	err := s.write(ctx, table, row, nil, domain.ModeInsert)
	d := DecideInsert(err)
	if d.Action == ActSucceed {
		s.count(table, d)
		metrics.PersistAttempts.WithLabelValues(table, "fallback").Inc()
		return domain.Outcome{OK: true, Removed: removed, Duplicate: d.Duplicate, Fallback: true}
	}
	metrics.PersistAttempts.WithLabelValues(table, "failed").Inc()
	return domain.Outcome{Err: FailureText(err, true), Removed: removed, Fallback: true}
}

func (s *Svc) count(table string, d Decision) {
	result := "ok"
	if d.Duplicate {
		result = "duplicate"
	}
	metrics.PersistAttempts.WithLabelValues(table, result).Inc()
}

// write runs one transport call through the breaker
func (s *Svc) write(ctx context.Context, table string, row domain.Row, conflict []string, mode domain.Mode) error {
	call := func() (struct{}, error) {
		return struct{}{}, s.t.Write(ctx, table, row, conflict, mode)
	}
	if s.cb == nil {
		_, err := call()
		return err
	}
	_, err := s.cb.Execute(call)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		s.log.Debug().Str("table", table).Msg("breaker refused write")
		return &domain.Fault{Kind: domain.FaultOther, Err: errCircuitOpen}
	}
	return err
}
