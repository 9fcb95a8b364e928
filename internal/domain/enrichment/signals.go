package enrichment

import (
	"context"
	"encoding/json"

	"github.com/invopop/jsonschema"
	openai "github.com/sashabaranov/go-openai"

	"pulse-server/internal/domain/interview"
)

// The five psychological dimensions extracted for employee satisfaction
// interviews. Course evaluations skip this pass entirely.
var signalDimensions = []string{"autonomy", "competence", "belonging", "fairness", "growth"}

type signalExtraction struct {
	Signals []extractedSignal `json:"signals" jsonschema:"required" jsonschema_description:"One entry per dimension the turn gives evidence for"`
}

type extractedSignal struct {
	Dimension  string  `json:"dimension" jsonschema:"required,enum=autonomy,enum=competence,enum=belonging,enum=fairness,enum=growth"`
	Intensity  float64 `json:"intensity" jsonschema:"required,minimum=0,maximum=1" jsonschema_description:"How strongly the turn speaks to the dimension"`
	Sentiment  string  `json:"sentiment" jsonschema:"required,enum=positive,enum=neutral,enum=negative"`
	Confidence float64 `json:"confidence" jsonschema:"required,minimum=0,maximum=1"`
}

const signalToolName = "record_psychological_signals"

func signalTool() openai.Tool {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        signalToolName,
			Description: "Record psychological dimension signals found in one interview turn",
			Parameters:  reflector.Reflect(&signalExtraction{}),
		},
	}
}

// extractSignals maps one turn onto the dimension model. Dimensions without
// evidence are simply absent from the result.
func (p *Pipeline) extractSignals(ctx context.Context, content string) ([]interview.SemanticSignal, error) {
	resp, err := p.gateway.CompleteWithTools(ctx, []openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleSystem,
			Content: "You map employee feedback onto five psychological dimensions: " +
				"autonomy, competence, belonging, fairness, growth. " +
				"Call record_psychological_signals with one entry per dimension the text gives real evidence for. " +
				"Omit dimensions the text says nothing about.",
		},
		{Role: openai.ChatMessageRoleUser, Content: content},
	}, []openai.Tool{signalTool()}, interview.CompletionOptions{Temperature: 0, MaxTokens: 500})
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.ToolCalls) == 0 {
		return nil, errNoToolCall
	}

	var extraction signalExtraction
	arguments := resp.Choices[0].Message.ToolCalls[0].Function.Arguments
	if err := json.Unmarshal([]byte(arguments), &extraction); err != nil {
		return nil, err
	}

	signals := make([]interview.SemanticSignal, 0, len(extraction.Signals))
	for _, signal := range extraction.Signals {
		if !validDimension(signal.Dimension) {
			continue
		}
		signals = append(signals, interview.SemanticSignal{
			Dimension:  signal.Dimension,
			Intensity:  clamp01(signal.Intensity),
			Sentiment:  signal.Sentiment,
			Confidence: clamp01(signal.Confidence),
		})
	}
	return signals, nil
}

func validDimension(dimension string) bool {
	for _, d := range signalDimensions {
		if d == dimension {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
