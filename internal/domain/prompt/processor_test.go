package prompt

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

func systemContent(messages []openai.ChatCompletionMessage) string {
	var sb strings.Builder
	for _, message := range messages {
		if message.Role == openai.ChatMessageRoleSystem {
			sb.WriteString(message.Content)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func basePromptContext() *Context {
	return &Context{
		SessionID:  "conv_test",
		SurveyType: "employee_satisfaction",
		Themes: []ThemeInfo{
			{ID: "theme-workload", Name: "Workload", Description: "How manageable the workload feels."},
			{ID: "theme-growth", Name: "Growth", Description: "Opportunities to learn."},
		},
		ExchangesByTheme: map[string]int{},
	}
}

func TestProcessorFirstTurn(t *testing.T) {
	processor := NewProcessor(zerolog.Nop())
	promptCtx := basePromptContext()
	promptCtx.FirstTurn = true

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: "Please open the conversation with your first question."},
	}
	result, err := processor.Process(context.Background(), promptCtx, messages)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	system := systemContent(result)
	if !strings.Contains(system, "workplace-listening interviewer") {
		t.Error("role framing missing for employee satisfaction")
	}
	if !strings.Contains(system, "Workload: How manageable the workload feels.") {
		t.Error("theme catalogue missing")
	}
	if !strings.Contains(system, `"empathy" must be null`) {
		t.Error("first-turn output contract must force null empathy")
	}
	if strings.Contains(system, "Conversation context:") {
		t.Error("conversation context must not apply on the first turn")
	}

	// The transcript stays after the system blocks.
	last := result[len(result)-1]
	if last.Role != openai.ChatMessageRoleUser {
		t.Errorf("transcript should follow the system blocks, last role = %q", last.Role)
	}
}

func TestProcessorCourseEvaluationFraming(t *testing.T) {
	processor := NewProcessor(zerolog.Nop())
	promptCtx := basePromptContext()
	promptCtx.SurveyType = "course_evaluation"
	promptCtx.FirstTurn = true

	result, err := processor.Process(context.Background(), promptCtx, nil)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !strings.Contains(systemContent(result), "course-evaluation interviewer") {
		t.Error("course evaluation framing missing")
	}
}

func TestProcessorConversationContext(t *testing.T) {
	processor := NewProcessor(zerolog.Nop())
	promptCtx := basePromptContext()
	promptCtx.Discussed = []string{"Workload"}
	promptCtx.ExchangesByTheme = map[string]int{"Workload": 3}
	promptCtx.CurrentTheme = "Workload"
	promptCtx.ConsecutiveOnCurrent = 3
	promptCtx.SentimentTrend = []string{"neutral", "negative", "negative"}
	promptCtx.Excerpts = []string{"the reorg doubled my meeting load"}

	result, err := processor.Process(context.Background(), promptCtx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: "It is still a lot."},
	})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	system := systemContent(result)
	if !strings.Contains(system, "Themes already discussed: Workload") {
		t.Error("discussed themes missing")
	}
	if !strings.Contains(system, "neutral -> negative -> negative") {
		t.Error("sentiment trend missing")
	}
	if !strings.Contains(system, "the reorg doubled my meeting load") {
		t.Error("excerpt missing")
	}
	if !strings.Contains(system, "must transition to a different theme now") {
		t.Error("pacing directive missing after 3 consecutive exchanges")
	}
	if strings.Contains(system, `"empathy" must be null`) {
		t.Error("null-empathy constraint only applies to the first turn")
	}
}

func TestProcessorFocusTheme(t *testing.T) {
	processor := NewProcessor(zerolog.Nop())
	promptCtx := basePromptContext()
	promptCtx.FocusTheme = &promptCtx.Themes[1]

	result, err := processor.Process(context.Background(), promptCtx, nil)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !strings.Contains(systemContent(result), `remaining time on "Growth"`) {
		t.Error("focus theme constraint missing")
	}
}

func TestProcessorAllThemesCovered(t *testing.T) {
	processor := NewProcessor(zerolog.Nop())
	promptCtx := basePromptContext()
	promptCtx.AllThemesCovered = true

	result, err := processor.Process(context.Background(), promptCtx, nil)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !strings.Contains(systemContent(result), "Begin wrapping up") {
		t.Error("wrap-up directive missing once all themes are covered")
	}
}

func TestProcessorExchangesLeft(t *testing.T) {
	processor := NewProcessor(zerolog.Nop())
	promptCtx := basePromptContext()
	left := 2
	promptCtx.ExchangesLeft = &left

	result, err := processor.Process(context.Background(), promptCtx, nil)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !strings.Contains(systemContent(result), "roughly 2 exchange(s) left") {
		t.Error("remaining-exchange pacing missing")
	}
}
