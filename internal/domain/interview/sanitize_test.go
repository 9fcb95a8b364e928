package interview

import (
	"context"
	"strings"
	"testing"

	"pulse-server/internal/utils/platformerrors"
)

func TestSanitizeContentStripsScripts(t *testing.T) {
	got, err := SanitizeContent(context.Background(), "<script>alert(1)</script>hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello" {
		t.Fatalf("script contents must be removed entirely, got %q", got)
	}
}

func TestSanitizeContentStripsMarkup(t *testing.T) {
	got, err := SanitizeContent(context.Background(), "I <b>really</b> like my <i>team</i>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "I really like my team" {
		t.Fatalf("markup tags must be stripped, got %q", got)
	}
}

func TestSanitizeContentRejectsEmpty(t *testing.T) {
	if _, err := SanitizeContent(context.Background(), "   "); err == nil {
		t.Fatal("blank content must be rejected")
	}
}

func TestSanitizeContentRejectsOversized(t *testing.T) {
	_, err := SanitizeContent(context.Background(), strings.Repeat("a", MaxContentLength+1))
	if err == nil {
		t.Fatal("content above the length cap must be rejected")
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
		t.Fatalf("expected a validation error, got %v", err)
	}
}

func TestSanitizeContentRejectsSpecialCharFlood(t *testing.T) {
	if _, err := SanitizeContent(context.Background(), "payload {{{{{{[[[[[]]]}}}"); err == nil {
		t.Fatal("more than 10 special characters must be rejected")
	}
}

func TestSanitizeContentAllowsFewSpecialChars(t *testing.T) {
	got, err := SanitizeContent(context.Background(), "math like {x} and [y] is fine")
	if err != nil {
		t.Fatalf("a handful of special characters is allowed: %v", err)
	}
	if got == "" {
		t.Fatal("content should survive")
	}
}

func TestIsStartSentinel(t *testing.T) {
	if !IsStartSentinel([]Message{{Role: RoleUser, Content: StartConversationSentinel}}) {
		t.Fatal("lone sentinel message should be detected")
	}
	if IsStartSentinel([]Message{
		{Role: RoleUser, Content: StartConversationSentinel},
		{Role: RoleAssistant, Content: "hi"},
	}) {
		t.Fatal("sentinel only counts when it is the sole message")
	}
	if IsStartSentinel([]Message{{Role: RoleUser, Content: "hello"}}) {
		t.Fatal("ordinary content is not the sentinel")
	}
}
