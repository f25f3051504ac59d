// Package core holds the shared types of the schema reconciliation engine:
// the error taxonomy and the run report exchanged between the engine and
// its callers.
package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a reconciliation failure. The first two kinds are
// always recovered inside the engine and never reach a caller; the rest
// abort or degrade the run as described on each constant.
type ErrorKind int

const (
	// BenignDuplicate means the object already existed. Equivalent to
	// success, logged at debug level at most.
	BenignDuplicate ErrorKind = iota

	// TransientRace means a concurrent creator won a create race. Recovered
	// by re-checking existence; escalated only if the object never appears.
	TransientRace

	// MissingDependency means a prerequisite module's object is absent.
	// Fatal for the run.
	MissingDependency

	// BackfillFailure means a populate rule failed or left rows unpopulated.
	// The affected constraint is skipped with a warning; the run continues.
	BackfillFailure

	// CapabilityMissing means the capability bootstrap itself failed.
	// Fatal for the run.
	CapabilityMissing

	// VerificationFailure means a critical table is still absent after a
	// full run. Fatal; indicates a defect in the engine, not the
	// environment.
	VerificationFailure
)

// String returns the kind's name.
func (k ErrorKind) String() string {
	switch k {
	case BenignDuplicate:
		return "benign_duplicate"
	case TransientRace:
		return "transient_race"
	case MissingDependency:
		return "missing_dependency"
	case BackfillFailure:
		return "backfill_failure"
	case CapabilityMissing:
		return "capability_missing"
	case VerificationFailure:
		return "verification_failure"
	default:
		return "unknown"
	}
}

// SchemaError is the aggregated error surfaced to callers. Module and
// Object identify where reconciliation stopped.
type SchemaError struct {
	Kind   ErrorKind
	Module string
	Object string
	Err    error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Object)
	if e.Module != "" {
		msg = fmt.Sprintf("module %s: %s", e.Module, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *SchemaError) Unwrap() error {
	return e.Err
}

// NewSchemaError builds a SchemaError for the given kind and object.
func NewSchemaError(kind ErrorKind, module, object string, err error) *SchemaError {
	return &SchemaError{Kind: kind, Module: module, Object: object, Err: err}
}

// KindOf extracts the kind of a SchemaError anywhere in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var se *SchemaError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}

// IsFatal reports whether an error kind aborts the whole run.
func (k ErrorKind) IsFatal() bool {
	switch k {
	case MissingDependency, CapabilityMissing, VerificationFailure:
		return true
	default:
		return false
	}
}
