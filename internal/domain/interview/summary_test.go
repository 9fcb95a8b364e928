package interview

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func summaryTurns(contents ...string) []*Turn {
	out := make([]*Turn, 0, len(contents))
	for i, content := range contents {
		out = append(out, &Turn{ID: uint(i + 1), UserContent: content})
	}
	return out
}

func TestSummaryGeneratorParsesModelOutput(t *testing.T) {
	gateway := &fakeGateway{reply: `{"opening": "Thanks for the open conversation.", "key_points": ["The workload has grown faster than the team, which makes sprint planning feel like triage rather than planning.", "Recognition from the direct manager is consistent, but wider visibility of the team's work is missing."], "sentiment": "mixed"}`}
	generator := NewSummaryGenerator(gateway, zerolog.Nop())

	summary := generator.Generate(context.Background(), coverageSession(), summaryTurns("a", "b"))
	if summary == nil {
		t.Fatal("summary is never nil")
	}
	if len(summary.KeyPoints) != 2 {
		t.Fatalf("expected 2 key points, got %d", len(summary.KeyPoints))
	}
	if summary.Sentiment != "mixed" {
		t.Fatalf("unexpected sentiment: %q", summary.Sentiment)
	}
	if summary.Opening == nil || !strings.Contains(*summary.Opening, "Thanks") {
		t.Fatalf("opening lost: %v", summary.Opening)
	}
}

func TestSummaryGeneratorNormalizesUnknownSentiment(t *testing.T) {
	gateway := &fakeGateway{reply: `{"key_points": ["Something concrete was said about workload."], "sentiment": "elated"}`}
	generator := NewSummaryGenerator(gateway, zerolog.Nop())

	summary := generator.Generate(context.Background(), coverageSession(), summaryTurns("a"))
	if summary.Sentiment != "mixed" {
		t.Fatalf("unknown sentiment must normalize to mixed, got %q", summary.Sentiment)
	}
}

func TestSummaryGeneratorFallbackOnModelError(t *testing.T) {
	gateway := &fakeGateway{err: errors.New("upstream down")}
	generator := NewSummaryGenerator(gateway, zerolog.Nop())

	summary := generator.Generate(context.Background(), coverageSession(),
		summaryTurns("The onboarding docs were out of date", "Standups run too long"))
	if summary == nil || len(summary.KeyPoints) == 0 {
		t.Fatal("fallback summary must still carry key points")
	}
	if !strings.Contains(summary.KeyPoints[0], "onboarding docs") {
		t.Fatalf("fallback should quote recent turns, got %q", summary.KeyPoints[0])
	}
}

func TestSummaryGeneratorFallbackOnGarbage(t *testing.T) {
	gateway := &fakeGateway{reply: "I could not produce JSON, sorry!"}
	generator := NewSummaryGenerator(gateway, zerolog.Nop())

	summary := generator.Generate(context.Background(), coverageSession(), summaryTurns("Useful feedback here"))
	if summary == nil || len(summary.KeyPoints) == 0 {
		t.Fatal("unparseable output must degrade to the raw-turn fallback")
	}
}

func TestSummaryGeneratorFallbackWithNoTurns(t *testing.T) {
	gateway := &fakeGateway{err: errors.New("down")}
	generator := NewSummaryGenerator(gateway, zerolog.Nop())

	summary := generator.Generate(context.Background(), coverageSession(), nil)
	if summary == nil || len(summary.KeyPoints) == 0 {
		t.Fatal("even an empty transcript yields a non-empty summary")
	}
}
