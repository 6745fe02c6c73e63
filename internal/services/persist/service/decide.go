package service

import (
	"errors"
	"fmt"

	pstrings "sharerelay/internal/platform/strings"
	"sharerelay/internal/services/persist/domain"
)

// Action is the next step of the upsert loop
type Action uint8

const (
	// ActSucceed ends the loop successfully
	ActSucceed Action = iota
	// ActDropColumn removes Decision.Column and retries
	ActDropColumn
	// ActPlainInsert retries once without conflict handling
	ActPlainInsert
	// ActFail ends the loop with the fault
	ActFail
)

// Decision is Decide's verdict
type Decision struct {
	Action    Action
	Column    string
	Duplicate bool
}

// bodyLimit caps upstream bodies quoted in failure strings
const bodyLimit = 500

// Decide maps the result of a merge write of row to the next step. It is
// pure so the state machine can be driven by hand-built faults
func Decide(err error, row domain.Row) Decision {
	if err == nil {
		return Decision{Action: ActSucceed}
	}
	f := AsFault(err)
	switch f.Kind {
	case domain.FaultUniqueViolation:
		return Decision{Action: ActSucceed, Duplicate: true}
	case domain.FaultUnknownColumn:
		// a column we are not sending cannot be healed by shrinking the row
		if _, ok := row[f.Column]; ok && f.Column != "" {
			return Decision{Action: ActDropColumn, Column: f.Column}
		}
	case domain.FaultNoUniqueConstraint:
		return Decision{Action: ActPlainInsert}
	}
	return Decision{Action: ActFail}
}

// DecideInsert maps the result of the plain insert fallback. A unique
// violation there is another writer winning the race
func DecideInsert(err error) Decision {
	if err == nil {
		return Decision{Action: ActSucceed}
	}
	if AsFault(err).Kind == domain.FaultUniqueViolation {
		return Decision{Action: ActSucceed, Duplicate: true}
	}
	return Decision{Action: ActFail}
}

// AsFault unwraps err to a *Fault, treating foreign errors as unanswered requests
func AsFault(err error) *domain.Fault {
	var f *domain.Fault
	if errors.As(err, &f) {
		return f
	}
	return &domain.Fault{Kind: domain.FaultOther, Err: err}
}

// FailureText renders a fault in the remote-store convention clients already parse:
// supabase_http_<status>: <body> or supabase_exception: <err>
func FailureText(err error, fallback bool) string {
	f := AsFault(err)
	tag := ""
	if fallback {
		tag = " (fallback_plain_insert)"
	}
	if f.Status == 0 {
		msg := f.Body
		if f.Err != nil {
			msg = f.Err.Error()
		}
		return fmt.Sprintf("supabase_exception%s: %s", tag, msg)
	}
	return fmt.Sprintf("supabase_http_%d%s: %s", f.Status, tag, pstrings.Truncate(f.Body, bodyLimit))
}
