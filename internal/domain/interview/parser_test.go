package interview

import (
	"strings"
	"testing"
)

func TestParseModelReplyDirectJSON(t *testing.T) {
	reply := ParseModelReply(`{"empathy": "That sounds tough.", "question": "What would help most?"}`)
	if reply.Fallback {
		t.Fatal("direct JSON should not be a fallback")
	}
	if reply.Question != "What would help most?" {
		t.Fatalf("unexpected question: %q", reply.Question)
	}
	if reply.Empathy == nil || *reply.Empathy != "That sounds tough." {
		t.Fatalf("unexpected empathy: %v", reply.Empathy)
	}
}

func TestParseModelReplyNullEmpathy(t *testing.T) {
	reply := ParseModelReply(`{"empathy": null, "question": "How long have you worked here?"}`)
	if reply.Empathy != nil {
		t.Fatalf("expected nil empathy, got %q", *reply.Empathy)
	}
	if reply.Fallback {
		t.Fatal("unexpected fallback")
	}
}

func TestParseModelReplyCodeFenced(t *testing.T) {
	raw := "```json\n{\"empathy\": \"I hear you.\", \"question\": \"What changed?\"}\n```"
	reply := ParseModelReply(raw)
	if reply.Fallback || reply.Question != "What changed?" {
		t.Fatalf("fenced JSON not parsed: %+v", reply)
	}
}

func TestParseModelReplyEmbeddedBlock(t *testing.T) {
	raw := `Sure, here is my reply: {"empathy": "Thanks for sharing.", "question": "Can you give an example?"} Hope that helps.`
	reply := ParseModelReply(raw)
	if reply.Fallback {
		t.Fatalf("embedded block should parse: %+v", reply)
	}
	if reply.Question != "Can you give an example?" {
		t.Fatalf("unexpected question: %q", reply.Question)
	}
}

func TestParseModelReplyTruncatedFragment(t *testing.T) {
	raw := `{"empathy": "That is frustrating.", "question": "What would a better week look like for yo`
	reply := ParseModelReply(raw)
	if reply.Fallback {
		t.Fatalf("truncated fragment should be salvaged: %+v", reply)
	}
	if !strings.HasPrefix(reply.Question, "What would a better week look like") {
		t.Fatalf("unexpected question: %q", reply.Question)
	}
	if reply.Empathy == nil || *reply.Empathy != "That is frustrating." {
		t.Fatalf("unexpected empathy: %v", reply.Empathy)
	}
}

func TestParseModelReplyJSONGarbageFallsBack(t *testing.T) {
	raw := `{"question": bro{ken "empathy"`
	reply := ParseModelReply(raw)
	if !reply.Fallback {
		t.Fatal("expected fallback for unsalvageable JSON-looking output")
	}
	if reply.Question != FallbackQuestion {
		t.Fatalf("JSON-looking garbage must not be shown verbatim, got %q", reply.Question)
	}
}

func TestParseModelReplyBraceGarbageFallsBack(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"braces without question marker", "¡€{}"},
		{"lone opening brace", "{"},
		{"brace amid prose", "well {3 things come to mind"},
		{"closing brace only", "done}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := ParseModelReply(tt.raw)
			if !reply.Fallback {
				t.Fatal("expected fallback for brace-bearing garbage")
			}
			if reply.Question != FallbackQuestion {
				t.Fatalf("brace-bearing garbage must not be shown verbatim, got %q", reply.Question)
			}
		})
	}
}

func TestParseModelReplyPlainTextVerbatim(t *testing.T) {
	raw := "Could you walk me through a typical day?"
	reply := ParseModelReply(raw)
	if !reply.Fallback {
		t.Fatal("plain text should be marked as fallback")
	}
	if reply.Question != raw {
		t.Fatalf("plain text should be used verbatim, got %q", reply.Question)
	}
}

func TestParseModelReplyEmpty(t *testing.T) {
	reply := ParseModelReply("   ")
	if !reply.Fallback || reply.Question != FallbackQuestion {
		t.Fatalf("empty output should use the generic question: %+v", reply)
	}
}
