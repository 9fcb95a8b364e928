package prompt

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// ThemeInfo is the catalogue entry a prompt module can render.
type ThemeInfo struct {
	ID          string
	Name        string
	Description string
}

// Context carries the live conversation state a prompt is built from.
type Context struct {
	SessionID  string
	SurveyType string // employee_satisfaction | course_evaluation
	Themes     []ThemeInfo

	FirstTurn  bool
	FocusTheme *ThemeInfo

	// Coverage-derived state.
	Discussed            []string
	ExchangesByTheme     map[string]int
	CurrentTheme         string
	ConsecutiveOnCurrent int
	AllThemesCovered     bool

	// Trend and pacing.
	SentimentTrend []string
	Excerpts       []string
	ExchangesLeft  *int
}

// Module is one conditional prompt block.
type Module interface {
	// Name returns the module identifier
	Name() string

	// ShouldApply determines if this module should be applied based on context
	ShouldApply(ctx context.Context, promptCtx *Context, messages []openai.ChatCompletionMessage) bool

	// Apply modifies the messages array by adding or modifying prompts
	Apply(ctx context.Context, promptCtx *Context, messages []openai.ChatCompletionMessage) ([]openai.ChatCompletionMessage, error)
}

// Processor orchestrates prompt composition by applying conditional modules.
type Processor interface {
	Process(ctx context.Context, promptCtx *Context, messages []openai.ChatCompletionMessage) ([]openai.ChatCompletionMessage, error)
}
