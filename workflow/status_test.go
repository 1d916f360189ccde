package workflow

import (
	"errors"
	"testing"
)

func TestValidTransitions(t *testing.T) {
	allowed := []struct{ from, to string }{
		{StatusPending, StatusDesigning},
		{StatusPending, StatusCancelled},
		{StatusDesigning, StatusApproved},
		{StatusDesigning, StatusPending},
		{StatusDesigning, StatusCancelled},
		{StatusApproved, StatusProduction},
		{StatusApproved, StatusDesigning},
		{StatusApproved, StatusCancelled},
		{StatusProduction, StatusQualityControl},
		{StatusProduction, StatusApproved},
		{StatusProduction, StatusCancelled},
		{StatusQualityControl, StatusCompleted},
		{StatusQualityControl, StatusProduction},
		{StatusQualityControl, StatusCancelled},
		{StatusCancelled, StatusPending},
	}
	for _, tc := range allowed {
		if !IsValidTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be allowed", tc.from, tc.to)
		}
		if err := Validate(tc.from, tc.to); err != nil {
			t.Errorf("Validate(%s, %s) = %v", tc.from, tc.to, err)
		}
	}
}

func TestRejectedTransitions(t *testing.T) {
	rejected := []struct{ from, to string }{
		{StatusPending, StatusApproved},      // skipping designing
		{StatusPending, StatusCompleted},     // skipping everything
		{StatusDesigning, StatusProduction},  // skipping approval
		{StatusCompleted, StatusPending},     // completed is terminal
		{StatusCompleted, StatusCancelled},   // completed is terminal
		{StatusCancelled, StatusProduction},  // cancelled revives to pending only
		{StatusPending, StatusPending},       // self-transition
		{StatusPending, "warehouse"},         // unknown target
		{"warehouse", StatusPending},         // unknown source
	}
	for _, tc := range rejected {
		if IsValidTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be rejected", tc.from, tc.to)
		}
	}
}

func TestValidateReturnsTransitionError(t *testing.T) {
	err := Validate(StatusCompleted, StatusPending)
	if err == nil {
		t.Fatal("expected error")
	}
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("error type = %T", err)
	}
	if te.From != StatusCompleted || te.To != StatusPending {
		t.Errorf("error fields = %s -> %s", te.From, te.To)
	}
}

func TestIsTerminal(t *testing.T) {
	if !IsTerminal(StatusCompleted) {
		t.Error("completed should be terminal")
	}
	for _, s := range []string{StatusPending, StatusDesigning, StatusApproved, StatusProduction, StatusQualityControl, StatusCancelled} {
		if IsTerminal(s) {
			t.Errorf("%s should not be terminal", s)
		}
	}
	if IsTerminal("warehouse") {
		t.Error("unknown status is not terminal")
	}
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range []string{StatusPending, StatusDesigning, StatusApproved, StatusProduction, StatusQualityControl, StatusCompleted, StatusCancelled} {
		if !IsValidStatus(s) {
			t.Errorf("%s should be a valid status", s)
		}
	}
	if IsValidStatus("shipped") {
		t.Error("shipped is not a status")
	}
}
