// Package ch provides a clickhouse client for append-only writes
package ch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// Config configures clickhouse client
type Config struct {
	// DSN is a clickhouse:// url; database, credentials and settings ride along as query params
	DSN         string
	Role        string
	Tag         string
	DialTimeout time.Duration
}

// appender is the part of driver.Batch Insert uses
type appender interface {
	Append(v ...any) error
	Send() error
	Abort() error
}

// conn is the part of driver.Conn the client uses
type conn interface {
	Exec(ctx context.Context, query string, args ...any) error
	Ping(ctx context.Context) error
	Close() error
}

// CH is a clickhouse client over the native protocol
type CH struct {
	conn    conn
	prepare func(ctx context.Context, query string) (appender, error)
}

// Open parses the DSN, connects and pings
func Open(ctx context.Context, cfg Config) (*CH, error) {
	opts, err := clickhouse.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("clickhouse dsn: %w", err)
	}
	opts.ClientInfo = BuildClientInfo(cfg.Role, cfg.Tag)
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	} else if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}

	dc, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	if err := dc.Ping(ctx); err != nil {
		_ = dc.Close()
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}
	return &CH{
		conn: dc,
		prepare: func(ctx context.Context, query string) (appender, error) {
			return dc.PrepareBatch(ctx, query)
		},
	}, nil
}

// Exec runs a statement that returns no rows (DDL, ALTER)
func (c *CH) Exec(ctx context.Context, query string, args ...any) error {
	return c.conn.Exec(ctx, query, args...)
}

// Insert sends rows to table as a single batch. An empty slice is a no-op
func (c *CH) Insert(ctx context.Context, table string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	batch, err := c.prepare(ctx, "INSERT INTO "+table)
	if err != nil {
		return fmt.Errorf("prepare batch %s: %w", table, err)
	}
	for i, r := range rows {
		if err := batch.Append(r...); err != nil {
			return errors.Join(fmt.Errorf("append row %d to %s: %w", i, table, err), batch.Abort())
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch %s: %w", table, err)
	}
	return nil
}

// Ping checks the connection
func (c *CH) Ping(ctx context.Context) error { return c.conn.Ping(ctx) }

// Close closes the connection pool
func (c *CH) Close() error { return c.conn.Close() }
