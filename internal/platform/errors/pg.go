package errors

// Postgres-specific helpers for mapping pgx errors to project ErrorCode and
// recognising the schema drift errors the relay heals around

import (
	stderrs "errors"
	"regexp"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the relay cares about
const (
	PgUniqueViolation       = "23505"
	PgUndefinedColumn       = "42703"
	PgInvalidConflictTarget = "42P10"

	pgNotNullViolation          = "23502"
	pgCheckViolation            = "23514"
	pgInvalidTextRepresentation = "22P02"
	pgCannotConnectNow          = "57P03"
)

// undefinedColumnRe matches the server text for 42703 on writes, e.g.
// column "memo" of relation "channels" does not exist
// quotes may arrive JSON-escaped when the text is lifted from a response body
var undefinedColumnRe = regexp.MustCompile(
	`(?i)column\s+\\?"([^"\\]+)\\?"\s+of\s+relation\s+\\?"([^"\\]+)\\?"\s+does\s+not\s+exist`,
)

// ParseUndefinedColumn extracts the column name from a 42703 message body.
// Works on raw server text as well as JSON bodies that embed it
func ParseUndefinedColumn(text string) (string, bool) {
	m := undefinedColumnRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractPgError returns (*pgconn.PgError, true) if the root cause is a PgError
func ExtractPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsSQLState reports whether the error is a Postgres error with the given SQLSTATE code
func IsSQLState(err error, code string) bool {
	pgErr, ok := ExtractPgError(err)
	return ok && pgErr.Code == code
}

// IsDuplicateKey reports whether the error is a unique constraint violation
func IsDuplicateKey(err error) bool { return IsSQLState(err, PgUniqueViolation) }

// IsInvalidConflictTarget reports whether ON CONFLICT named columns without a matching
// unique or exclusion constraint
func IsInvalidConflictTarget(err error) bool { return IsSQLState(err, PgInvalidConflictTarget) }

// UndefinedColumn returns the missing column name when err is a 42703
func UndefinedColumn(err error) (string, bool) {
	pgErr, ok := ExtractPgError(err)
	if !ok || pgErr.Code != PgUndefinedColumn {
		return "", false
	}
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName, true
	}
	return ParseUndefinedColumn(pgErr.Message)
}

// DBErrorCode maps a Postgres error to an ErrorCode with an ok flag
// !ok means err wasn't a PgError; caller may fall back to generic handling
func DBErrorCode(err error) (ErrorCode, bool) {
	pgErr, ok := ExtractPgError(err)
	if !ok {
		return ErrorCodeUnknown, false
	}
	switch pgErr.Code {
	case PgUniqueViolation:
		return ErrorCodeDuplicateKey, true
	case pgNotNullViolation, pgCheckViolation, pgInvalidTextRepresentation:
		return ErrorCodeValidation, true
	case pgCannotConnectNow:
		return ErrorCodeUnavailable, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps a pg error with a mapped ErrorCode and message. nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	if code, ok := DBErrorCode(err); ok {
		return Wrap(err, code, msg)
	}
	return Wrap(err, ErrorCodeDB, msg)
}
