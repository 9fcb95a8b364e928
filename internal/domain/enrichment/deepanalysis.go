package enrichment

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/invopop/jsonschema"
	openai "github.com/sashabaranov/go-openai"

	"pulse-server/internal/domain/interview"
)

// DeepAnalysisResult is the structured output of the second-pass analysis,
// enforced through a tool call so the model cannot answer free-form.
type DeepAnalysisResult struct {
	UrgencyScore        int      `json:"urgency_score" jsonschema:"required,minimum=1,maximum=5" jsonschema_description:"How urgent is follow-up, 1 (none) to 5 (immediate)"`
	Reasoning           string   `json:"reasoning" jsonschema:"required" jsonschema_description:"Short reasoning behind the urgency score"`
	DetectedThemes      []string `json:"detected_themes" jsonschema_description:"Theme names the turn touches on"`
	SentimentIndicators []string `json:"sentiment_indicators" jsonschema_description:"Phrases that carry the emotional signal"`
	SuggestedFollowUp   string   `json:"suggested_follow_up" jsonschema_description:"One question an interviewer could ask next"`
}

const deepAnalysisToolName = "record_turn_analysis"

var errNoToolCall = errors.New("model returned no tool call")

func deepAnalysisTool() openai.Tool {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        deepAnalysisToolName,
			Description: "Record the structured analysis of one interview turn",
			Parameters:  reflector.Reflect(&DeepAnalysisResult{}),
		},
	}
}

// analyzeDeep runs the tool-call pass over a single turn.
func (p *Pipeline) analyzeDeep(ctx context.Context, content string) (*DeepAnalysisResult, error) {
	resp, err := p.gateway.CompleteWithTools(ctx, []openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleSystem,
			Content: "You analyze one turn of an employee interview. " +
				"Call record_turn_analysis with your assessment of the feedback below.",
		},
		{Role: openai.ChatMessageRoleUser, Content: content},
	}, []openai.Tool{deepAnalysisTool()}, interview.CompletionOptions{Temperature: 0, MaxTokens: 500})
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.ToolCalls) == 0 {
		return nil, errNoToolCall
	}

	var result DeepAnalysisResult
	arguments := resp.Choices[0].Message.ToolCalls[0].Function.Arguments
	if err := json.Unmarshal([]byte(arguments), &result); err != nil {
		return nil, err
	}
	if result.UrgencyScore < 1 {
		result.UrgencyScore = 1
	}
	if result.UrgencyScore > 5 {
		result.UrgencyScore = 5
	}
	return &result, nil
}
