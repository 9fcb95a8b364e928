package prompt

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// appendSystemBlock inserts a system message after any existing system
// messages, keeping module registration order ahead of the transcript.
func appendSystemBlock(messages []openai.ChatCompletionMessage, content string) []openai.ChatCompletionMessage {
	insert := 0
	for insert < len(messages) && messages[insert].Role == openai.ChatMessageRoleSystem {
		insert++
	}
	block := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: content}
	out := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	out = append(out, messages[:insert]...)
	out = append(out, block)
	out = append(out, messages[insert:]...)
	return out
}

// ===============================================
// Role framing
// ===============================================

// RoleFramingModule sets the interviewer persona per survey type.
type RoleFramingModule struct{}

func NewRoleFramingModule() *RoleFramingModule { return &RoleFramingModule{} }

func (m *RoleFramingModule) Name() string { return "role-framing" }

func (m *RoleFramingModule) ShouldApply(_ context.Context, _ *Context, _ []openai.ChatCompletionMessage) bool {
	return true
}

func (m *RoleFramingModule) Apply(_ context.Context, promptCtx *Context, messages []openai.ChatCompletionMessage) ([]openai.ChatCompletionMessage, error) {
	var framing string
	switch promptCtx.SurveyType {
	case "course_evaluation":
		framing = "You are a thoughtful course-evaluation interviewer. You help students reflect on their learning experience through a natural spoken conversation. Ask one question at a time, keep questions conversational and specific, and build on what the student just said."
	default:
		framing = "You are a warm, attentive workplace-listening interviewer. You help employees talk about how work really feels through a natural spoken conversation. Ask one question at a time, keep questions conversational and specific, and build on what the employee just said."
	}
	return appendSystemBlock(messages, framing), nil
}

// ===============================================
// Theme catalogue
// ===============================================

// ThemeCatalogModule lists the dimensions the interview should explore.
type ThemeCatalogModule struct{}

func NewThemeCatalogModule() *ThemeCatalogModule { return &ThemeCatalogModule{} }

func (m *ThemeCatalogModule) Name() string { return "theme-catalog" }

func (m *ThemeCatalogModule) ShouldApply(_ context.Context, promptCtx *Context, _ []openai.ChatCompletionMessage) bool {
	return len(promptCtx.Themes) > 0
}

func (m *ThemeCatalogModule) Apply(_ context.Context, promptCtx *Context, messages []openai.ChatCompletionMessage) ([]openai.ChatCompletionMessage, error) {
	var sb strings.Builder
	sb.WriteString("The conversation should explore these themes:\n")
	for _, theme := range promptCtx.Themes {
		if theme.Description != "" {
			fmt.Fprintf(&sb, "- %s: %s\n", theme.Name, theme.Description)
		} else {
			fmt.Fprintf(&sb, "- %s\n", theme.Name)
		}
	}
	sb.WriteString("Let the conversation move naturally between themes rather than working through them as a checklist.")
	return appendSystemBlock(messages, sb.String()), nil
}

// ===============================================
// Tone rules
// ===============================================

// ToneRulesModule fixes the empathy calibration and redirection rules.
type ToneRulesModule struct{}

func NewToneRulesModule() *ToneRulesModule { return &ToneRulesModule{} }

func (m *ToneRulesModule) Name() string { return "tone-rules" }

func (m *ToneRulesModule) ShouldApply(_ context.Context, _ *Context, _ []openai.ChatCompletionMessage) bool {
	return true
}

func (m *ToneRulesModule) Apply(_ context.Context, _ *Context, messages []openai.ChatCompletionMessage) ([]openai.ChatCompletionMessage, error) {
	rules := strings.Join([]string{
		"Tone rules:",
		"- Calibrate empathy to emotional intensity: 3-5 words for low intensity, 5-8 for medium, 8-12 for high.",
		"- Acknowledge feelings, but never validate a complaint as objective fact.",
		"- Always redirect toward what improvement would look like for the participant.",
		"- Never diagnose, promise outcomes, or speak on behalf of the organization.",
	}, "\n")
	return appendSystemBlock(messages, rules), nil
}

// ===============================================
// Focus theme
// ===============================================

// FocusThemeModule constrains the conversation after the participant picked
// a theme to go deeper on.
type FocusThemeModule struct{}

func NewFocusThemeModule() *FocusThemeModule { return &FocusThemeModule{} }

func (m *FocusThemeModule) Name() string { return "focus-theme" }

func (m *FocusThemeModule) ShouldApply(_ context.Context, promptCtx *Context, _ []openai.ChatCompletionMessage) bool {
	return promptCtx.FocusTheme != nil
}

func (m *FocusThemeModule) Apply(_ context.Context, promptCtx *Context, messages []openai.ChatCompletionMessage) ([]openai.ChatCompletionMessage, error) {
	block := fmt.Sprintf(
		"The participant chose to spend the remaining time on %q. Keep the conversation anchored to that theme unless they clearly steer elsewhere.",
		promptCtx.FocusTheme.Name,
	)
	return appendSystemBlock(messages, block), nil
}

// ===============================================
// Conversation context
// ===============================================

// ConversationContextModule injects the live coverage, sentiment-trend and
// pacing block.
type ConversationContextModule struct{}

func NewConversationContextModule() *ConversationContextModule { return &ConversationContextModule{} }

func (m *ConversationContextModule) Name() string { return "conversation-context" }

func (m *ConversationContextModule) ShouldApply(_ context.Context, promptCtx *Context, _ []openai.ChatCompletionMessage) bool {
	return !promptCtx.FirstTurn
}

func (m *ConversationContextModule) Apply(_ context.Context, promptCtx *Context, messages []openai.ChatCompletionMessage) ([]openai.ChatCompletionMessage, error) {
	var sb strings.Builder
	sb.WriteString("Conversation context:\n")

	if len(promptCtx.Discussed) > 0 {
		fmt.Fprintf(&sb, "- Themes already discussed: %s\n", strings.Join(promptCtx.Discussed, ", "))
		for _, name := range promptCtx.Discussed {
			if count, ok := promptCtx.ExchangesByTheme[name]; ok && count > 0 {
				fmt.Fprintf(&sb, "  - %s: %d exchange(s)\n", name, count)
			}
		}
	} else {
		sb.WriteString("- No themes have been discussed yet.\n")
	}

	if len(promptCtx.SentimentTrend) > 0 {
		fmt.Fprintf(&sb, "- Recent sentiment trend: %s\n", strings.Join(promptCtx.SentimentTrend, " -> "))
	}

	for _, excerpt := range promptCtx.Excerpts {
		fmt.Fprintf(&sb, "- Earlier the participant said: %q\n", excerpt)
	}

	sb.WriteString("Pacing:\n")
	if promptCtx.ExchangesLeft != nil {
		fmt.Fprintf(&sb, "- You have roughly %d exchange(s) left in this conversation.\n", *promptCtx.ExchangesLeft)
	}
	if promptCtx.ConsecutiveOnCurrent >= 2 && promptCtx.CurrentTheme != "" {
		fmt.Fprintf(&sb, "- You have spent %d consecutive exchanges on %q; you must transition to a different theme now.\n",
			promptCtx.ConsecutiveOnCurrent, promptCtx.CurrentTheme)
	}
	if promptCtx.AllThemesCovered {
		sb.WriteString("- All themes have been covered. Begin wrapping up the conversation.\n")
	}

	return appendSystemBlock(messages, sb.String()), nil
}

// ===============================================
// Output contract
// ===============================================

// OutputContractModule pins the reply format the parser expects.
type OutputContractModule struct{}

func NewOutputContractModule() *OutputContractModule { return &OutputContractModule{} }

func (m *OutputContractModule) Name() string { return "output-contract" }

func (m *OutputContractModule) ShouldApply(_ context.Context, _ *Context, _ []openai.ChatCompletionMessage) bool {
	return true
}

func (m *OutputContractModule) Apply(_ context.Context, promptCtx *Context, messages []openai.ChatCompletionMessage) ([]openai.ChatCompletionMessage, error) {
	var sb strings.Builder
	sb.WriteString(`Reply with compact JSON only, no code fences: {"empathy": string or null, "question": string}.`)
	if promptCtx.FirstTurn {
		sb.WriteString(` This is the very first question of the conversation: "empathy" must be null.`)
	} else {
		sb.WriteString(` "empathy" briefly acknowledges what was just said; "question" is your next single question.`)
	}
	return appendSystemBlock(messages, sb.String()), nil
}
