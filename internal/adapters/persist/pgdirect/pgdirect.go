// Package pgdirect writes relay rows straight into Postgres through pgx.
// It speaks the same typed faults as the PostgREST transport so the upsert
// loop cannot tell the two apart
package pgdirect

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"sharerelay/internal/modkit/repokit"
	"sharerelay/internal/platform/config"
	perr "sharerelay/internal/platform/errors"
	"sharerelay/internal/platform/logger"
	"sharerelay/internal/services/persist/domain"

	"github.com/jackc/pgx/v5"
)

const defaultStatementTimeout = 6 * time.Second

// Options configures the Writer
type Options struct {
	// StatementTimeout is applied with SET LOCAL at the start of every write tx
	StatementTimeout time.Duration
}

// OptionsFromEnv shares SUPABASE_TIMEOUT_SEC with the PostgREST transport
func OptionsFromEnv(c config.Conf) Options {
	return Options{StatementTimeout: c.Prefix("SUPABASE_").MaySeconds("TIMEOUT_SEC", defaultStatementTimeout)}
}

// Writer is a persist Transport over a pgx backed TxRunner
type Writer struct {
	tx  repokit.TxRunner
	log logger.Logger
}

var _ domain.Transport = (*Writer)(nil)

// New wraps tx so every write runs under the statement timeout
func New(tx repokit.TxRunner, o Options) *Writer {
	if o.StatementTimeout <= 0 {
		o.StatementTimeout = defaultStatementTimeout
	}
	return &Writer{
		tx:  repokit.WithBeginHooks(tx, statementTimeout(o.StatementTimeout)),
		log: *logger.Named("pgdirect"),
	}
}

// Name labels the breaker and metrics
func (w *Writer) Name() string { return "postgres" }

// Write runs one INSERT, with ON CONFLICT DO UPDATE for ModeUpsert, in its own tx
func (w *Writer) Write(ctx context.Context, table string, row domain.Row, conflict []string, mode domain.Mode) error {
	sql, args := BuildInsert(table, row, conflict, mode)
	err := repokit.WithTx(ctx, w.tx, func(q repokit.Queryer) error {
		return repokit.MustBind(writes, q).run(ctx, sql, args)
	})
	if err != nil {
		f := Classify(err)
		w.log.Debug().Err(err).Str("table", table).Str("mode", mode.String()).Str("fault", f.Kind.String()).Msg("pg write failed")
		return f
	}
	return nil
}

func statementTimeout(d time.Duration) repokit.BeginHook {
	stmt := fmt.Sprintf("SET LOCAL statement_timeout = %d", d.Milliseconds())
	return func(ctx context.Context, q repokit.Queryer) error {
		_, err := q.Exec(ctx, stmt)
		return err
	}
}

// writeRepo is bound to the tx scoped Queryer
type writeRepo struct{ q repokit.Queryer }

var writes = repokit.BindFunc[writeRepo](func(q repokit.Queryer) writeRepo { return writeRepo{q: q} })

// run executes the statement and drains RETURNING so errors raised while
// streaming rows surface here
func (r writeRepo) run(ctx context.Context, sql string, args []any) error {
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
	}
	return rows.Err()
}

// BuildInsert renders the statement with columns in sorted order so the same
// row shape always produces the same SQL
func BuildInsert(table string, row domain.Row, conflict []string, mode domain.Mode) (string, []any) {
	cols := make([]string, 0, len(row))
	for k := range row {
		cols = append(cols, k)
	}
	slices.Sort(cols)

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(pgx.Identifier{table}.Sanitize())

	args := make([]any, 0, len(cols))
	if len(cols) == 0 {
		b.WriteString(" DEFAULT VALUES")
	} else {
		quoted := make([]string, len(cols))
		marks := make([]string, len(cols))
		for i, c := range cols {
			quoted[i] = pgx.Identifier{c}.Sanitize()
			marks[i] = fmt.Sprintf("$%d", i+1)
			args = append(args, row[c])
		}
		b.WriteString(" (" + strings.Join(quoted, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")")
	}

	if mode == domain.ModeUpsert && len(conflict) > 0 {
		target := make([]string, len(conflict))
		for i, c := range conflict {
			target[i] = pgx.Identifier{c}.Sanitize()
		}
		b.WriteString(" ON CONFLICT (" + strings.Join(target, ", ") + ")")

		var sets []string
		for _, c := range cols {
			if slices.Contains(conflict, c) {
				continue
			}
			id := pgx.Identifier{c}.Sanitize()
			sets = append(sets, id+" = EXCLUDED."+id)
		}
		if len(sets) == 0 {
			b.WriteString(" DO NOTHING")
		} else {
			b.WriteString(" DO UPDATE SET " + strings.Join(sets, ", "))
		}
	}
	b.WriteString(" RETURNING *")
	return b.String(), args
}

// SQLSTATE classes that say the server, not the statement, is at fault
var serverClasses = []string{"08", "53", "57", "58", "XX"}

// Classify maps a pgx error onto the shared fault kinds. Errors that never
// reached the server keep status 0
func Classify(err error) *domain.Fault {
	f := &domain.Fault{Kind: domain.FaultOther, Err: err}
	pgErr, ok := perr.ExtractPgError(err)
	if !ok {
		return f
	}
	f.Body = pgErr.Message
	f.Status = statusFor(err, pgErr.Code)

	switch {
	case perr.IsDuplicateKey(err):
		f.Kind = domain.FaultUniqueViolation
	case perr.IsInvalidConflictTarget(err):
		f.Kind = domain.FaultNoUniqueConstraint
	default:
		if col, ok := perr.UndefinedColumn(err); ok {
			f.Kind, f.Column = domain.FaultUnknownColumn, col
		}
	}
	return f
}

func statusFor(err error, code string) int {
	if len(code) >= 2 && slices.Contains(serverClasses, code[:2]) {
		return http.StatusServiceUnavailable
	}
	if s := perr.HTTPStatus(perr.FromPostgres(err, "pg write")); s != http.StatusInternalServerError {
		return s
	}
	return http.StatusBadRequest
}
