package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("bad input"), KindValidation},
		{"not found", NotFound("missing %d", 7), KindNotFound},
		{"state", State("illegal move"), KindState},
		{"authorization", Authorization("denied"), KindAuthorization},
		{"conflict", Conflict("already taken"), KindConflict},
		{"plain error", errors.New("boom"), KindUnknown},
		{"nil", nil, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	base := NotFound("purchase order 9 not found")
	wrapped := fmt.Errorf("loading order: %w", base)

	if got := KindOf(wrapped); got != KindNotFound {
		t.Errorf("KindOf through fmt wrap = %v, want KindNotFound", got)
	}
	if !IsKind(wrapped, KindNotFound) {
		t.Error("IsKind should see through fmt wrapping")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindUnknown, cause, "failed to save receipt %s", "GRN-1")

	if !errors.Is(err, cause) {
		t.Error("Wrapped error should match its cause with errors.Is")
	}
	if err.Error() != "failed to save receipt GRN-1: connection reset" {
		t.Errorf("Unexpected message: %q", err.Error())
	}
}

func TestMessageFormatting(t *testing.T) {
	err := Validation("quantity %s exceeds limit %s", "120", "110")
	if err.Error() != "quantity 120 exceeds limit 110" {
		t.Errorf("Unexpected message: %q", err.Error())
	}
}
