package enrichment

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"pulse-server/internal/domain/interview"
)

// classifySentiment asks for a single label and maps it onto the fixed
// score scale. Unrecognised output falls back to neutral.
func (p *Pipeline) classifySentiment(ctx context.Context, content string) (string, int, error) {
	raw, err := p.gateway.Complete(ctx, []openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleSystem,
			Content: "Classify the sentiment of the employee feedback below. " +
				"Answer with exactly one word: positive, neutral or negative.",
		},
		{Role: openai.ChatMessageRoleUser, Content: content},
	}, interview.CompletionOptions{Temperature: 0, MaxTokens: 5})
	if err != nil {
		return "", 0, err
	}

	label := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(label, interview.SentimentPositive):
		label = interview.SentimentPositive
	case strings.Contains(label, interview.SentimentNegative):
		label = interview.SentimentNegative
	default:
		label = interview.SentimentNeutral
	}
	return label, interview.SentimentScoreFor(label), nil
}

// classifyTheme matches the model's answer against the theme catalogue by
// case-insensitive name containment. No match means the turn stays
// unclassified rather than being forced onto a theme.
func (p *Pipeline) classifyTheme(ctx context.Context, content string, themes []interview.Theme) (*string, error) {
	if len(themes) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(themes))
	for _, theme := range themes {
		names = append(names, theme.Name)
	}

	raw, err := p.gateway.Complete(ctx, []openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleSystem,
			Content: fmt.Sprintf(
				"Which of these themes does the feedback below talk about? Themes: %s. "+
					"Answer with the theme name only, or \"none\".",
				strings.Join(names, ", ")),
		},
		{Role: openai.ChatMessageRoleUser, Content: content},
	}, interview.CompletionOptions{Temperature: 0, MaxTokens: 20})
	if err != nil {
		return nil, err
	}

	answer := strings.ToLower(raw)
	for i := range themes {
		if strings.Contains(answer, strings.ToLower(themes[i].Name)) {
			return &themes[i].PublicID, nil
		}
	}
	return nil, nil
}

// classifyUrgency is a binary gate: does the turn describe something that
// needs human attention now.
func (p *Pipeline) classifyUrgency(ctx context.Context, content string) (bool, error) {
	raw, err := p.gateway.Complete(ctx, []openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleSystem,
			Content: "Does the feedback below describe harassment, safety risk, legal exposure " +
				"or acute distress that needs human attention? Answer yes or no.",
		},
		{Role: openai.ChatMessageRoleUser, Content: content},
	}, interview.CompletionOptions{Temperature: 0, MaxTokens: 5})
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(raw)), "yes"), nil
}
