package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorKind_String(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{BenignDuplicate, "benign_duplicate"},
		{TransientRace, "transient_race"},
		{MissingDependency, "missing_dependency"},
		{BackfillFailure, "backfill_failure"},
		{CapabilityMissing, "capability_missing"},
		{VerificationFailure, "verification_failure"},
		{ErrorKind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestErrorKind_IsFatal(t *testing.T) {
	fatal := []ErrorKind{MissingDependency, CapabilityMissing, VerificationFailure}
	for _, k := range fatal {
		if !k.IsFatal() {
			t.Errorf("%s should be fatal", k)
		}
	}
	recovered := []ErrorKind{BenignDuplicate, TransientRace, BackfillFailure}
	for _, k := range recovered {
		if k.IsFatal() {
			t.Errorf("%s should not be fatal", k)
		}
	}
}

func TestSchemaError_Error(t *testing.T) {
	err := NewSchemaError(MissingDependency, "crm", "employees", errors.New("relation does not exist"))
	msg := err.Error()
	for _, want := range []string{"module crm", "missing_dependency", "employees", "relation does not exist"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestSchemaError_Unwrap(t *testing.T) {
	cause := errors.New("duplicate key value")
	err := fmt.Errorf("reconciling: %w", NewSchemaError(TransientRace, "finance", "invoices", cause))

	if !errors.Is(err, cause) {
		t.Error("cause lost through wrapping")
	}

	kind, ok := KindOf(err)
	if !ok || kind != TransientRace {
		t.Errorf("KindOf = (%v, %v), want (TransientRace, true)", kind, ok)
	}
}

func TestKindOf_PlainError(t *testing.T) {
	if _, ok := KindOf(errors.New("connection refused")); ok {
		t.Error("plain error should not carry a kind")
	}
}

func TestReport_Warnings(t *testing.T) {
	r := &Report{
		Modules: []ModuleResult{
			{Module: "crm", Warnings: []string{"skipping foreign key fk_clients_account_manager"}},
			{Module: "workflow"},
			{Module: "finance", Warnings: []string{"backfill incomplete", "constraint deferred"}},
		},
	}

	got := r.Warnings()
	if len(got) != 3 {
		t.Fatalf("expected 3 warnings, got %d", len(got))
	}
	if got[0] != "crm: skipping foreign key fk_clients_account_manager" {
		t.Errorf("warning not prefixed with module: %q", got[0])
	}
}
