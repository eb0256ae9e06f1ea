package validate

import (
	"strings"
	"testing"
)

type signup struct {
	Name  string `json:"name" validate:"required,min=2"`
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"otp" validate:"omitempty,len=6,numeric"`
}

func TestStructValid(t *testing.T) {
	if msgs := Struct(signup{Name: "Ana", Email: "ana@example.com", Code: "123456"}); msgs != nil {
		t.Fatalf("expected no errors, got %v", msgs)
	}
}

func TestStructEnumeratesEveryField(t *testing.T) {
	msgs := Struct(signup{Name: "A", Email: "nope", Code: "12ab"})
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d: %v", len(msgs), msgs)
	}
	joined := strings.Join(msgs, "|")
	for _, want := range []string{"name must be at least 2 characters", "email must be a valid email", "otp must be exactly 6 characters"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in %v", want, msgs)
		}
	}
}
