// Package domain holds the persistence types shared by the upsert loop and
// its transports
package domain

import (
	"context"
	"fmt"
	"maps"

	"github.com/google/uuid"
)

// FaultKind classifies a failed write
type FaultKind uint8

const (
	// FaultOther is anything the upsert loop cannot heal
	FaultOther FaultKind = iota
	// FaultUniqueViolation means the row already exists
	FaultUniqueViolation
	// FaultUnknownColumn means the table lacks Column
	FaultUnknownColumn
	// FaultNoUniqueConstraint means the conflict target has no matching constraint
	FaultNoUniqueConstraint
)

// String is the wire name used in logs and metrics
func (k FaultKind) String() string {
	switch k {
	case FaultUniqueViolation:
		return "unique_violation"
	case FaultUnknownColumn:
		return "unknown_column"
	case FaultNoUniqueConstraint:
		return "no_unique_constraint"
	}
	return "other"
}

// Fault is the typed failure every transport returns.
// Status 0 means the request never got an answer; Err then holds the cause
type Fault struct {
	Kind   FaultKind
	Column string
	Status int
	Body   string
	Err    error
}

func (f *Fault) Error() string {
	if f.Status == 0 && f.Err != nil {
		return f.Kind.String() + ": " + f.Err.Error()
	}
	return fmt.Sprintf("%s: status %d", f.Kind, f.Status)
}

func (f *Fault) Unwrap() error { return f.Err }

// Transient reports failures that say something about the store's health
// rather than the row: no answer at all, or a 5xx
func (f *Fault) Transient() bool {
	return f.Kind == FaultOther && (f.Status == 0 || f.Status >= 500)
}

// Mode selects the write statement
type Mode uint8

const (
	// ModeUpsert merges on the conflict columns
	ModeUpsert Mode = iota
	// ModeInsert is a plain insert with no conflict handling
	ModeInsert
)

// String names the mode in logs
func (m Mode) String() string {
	if m == ModeInsert {
		return "insert"
	}
	return "upsert"
}

// Transport performs one write. A nil error is success; anything else is a *Fault
type Transport interface {
	Write(ctx context.Context, table string, row Row, conflict []string, mode Mode) error
	Name() string
}

// Row is one record keyed by column name
type Row map[string]any

// Clone returns a shallow copy so the loop can shrink it freely
func (r Row) Clone() Row { return maps.Clone(r) }

// ApplyUserIDRule sets user_id from account_id: the account id when it is a
// UUID, else nil. Rows without both fields are left alone
func (r Row) ApplyUserIDRule() {
	acct, hasAcct := r["account_id"]
	if _, hasUser := r["user_id"]; !hasAcct || !hasUser {
		return
	}
	r["user_id"] = UserIDFor(fmt.Sprint(acct))
}

// UserIDFor returns account unchanged when it parses as a UUID, else nil
func UserIDFor(account string) any {
	if _, err := uuid.Parse(account); err != nil {
		return nil
	}
	return account
}

// Outcome is what one Upsert call reports
type Outcome struct {
	OK  bool
	Err string
	// Removed lists dropped fields in removal order
	Removed []string
	// Duplicate is set when success came from an existing row
	Duplicate bool
	// Fallback is set when the plain insert path ran
	Fallback bool
}

// Upserter is the adaptive write the orchestrator calls
type Upserter interface {
	Upsert(ctx context.Context, table string, row Row, conflict []string) Outcome
}
