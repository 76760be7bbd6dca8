package aggregates

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCodeHelpers(t *testing.T) {
	base := NotFound("task.get", "Task not found")
	wrapped := fmt.Errorf("handler: %w", base)

	if !IsCode(wrapped, CodeNotFound) {
		t.Fatalf("expected not_found code through wrap")
	}
	if got := CodeOf(wrapped); got != CodeNotFound {
		t.Fatalf("CodeOf: want=%q got=%q", CodeNotFound, got)
	}
	if got := MessageOf(wrapped); got != "Task not found" {
		t.Fatalf("MessageOf: want=%q got=%q", "Task not found", got)
	}
	if got := base.Error(); got != "task.get: Task not found (not_found)" {
		t.Fatalf("Error(): got=%q", got)
	}
}

func TestForeignErrorsHaveNoCode(t *testing.T) {
	err := errors.New("boom")
	if CodeOf(err) != "" {
		t.Fatalf("foreign error should not carry a code")
	}
	if MessageOf(err) != "boom" {
		t.Fatalf("MessageOf should fall back to Error()")
	}
	if Wrap(CodeInternal, "op", nil) != nil {
		t.Fatalf("Wrap(nil) must be nil")
	}
}
