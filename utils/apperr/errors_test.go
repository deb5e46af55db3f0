package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	if got := KindOf(NotFound("missing")); got != KindNotFound {
		t.Errorf("KindOf = %v, want KindNotFound", got)
	}
	if got := KindOf(errors.New("plain")); got != 0 {
		t.Errorf("KindOf(plain error) = %v, want 0", got)
	}
	if got := KindOf(nil); got != 0 {
		t.Errorf("KindOf(nil) = %v, want 0", got)
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("loading fee: %w", Conflict("duplicate course"))
	if !IsKind(err, KindConflict) {
		t.Errorf("wrapped error lost its kind: %v", err)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindValidation, "decoding request", cause)

	if !errors.Is(err, cause) {
		t.Error("Wrap broke the error chain")
	}
	if err.Error() != "decoding request: connection reset" {
		t.Errorf("message = %q", err.Error())
	}
}
