package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfWrapped(t *testing.T) {
	base := NotFound("order not found")
	wrapped := fmt.Errorf("load order: %w", base)

	if got := KindOf(wrapped); got != KindNotFound {
		t.Fatalf("KindOf(wrapped) = %v, want %v", got, KindNotFound)
	}
	if !Is(wrapped, KindNotFound) {
		t.Fatal("Is should see through %w wrapping")
	}
}

func TestKindOfForeignError(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != KindInternal {
		t.Fatalf("KindOf(foreign) = %v, want internal", got)
	}
	if Is(nil, KindInternal) {
		t.Fatal("nil error must not match any kind")
	}
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("conn reset")
	err := Internal("save order", cause)
	if !errors.Is(err, cause) {
		t.Fatal("Internal should unwrap to its cause")
	}
	if err.Error() != "save order: conn reset" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
