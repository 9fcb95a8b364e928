package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// StructuredSummary is the short recap shown before completion.
type StructuredSummary struct {
	Opening   *string  `json:"opening,omitempty"`
	KeyPoints []string `json:"key_points"`
	Sentiment string   `json:"sentiment"` // positive | mixed | negative
}

const (
	summaryMinPoints = 2
	summaryMaxPoints = 4
	// fallbackExcerptLength bounds the raw-turn excerpts used when the
	// model summary cannot be parsed.
	fallbackExcerptLength = 160
)

// SummaryGenerator produces a StructuredSummary from a transcript. It never
// fails: on any model or parse error it degrades to recent raw user turns.
type SummaryGenerator struct {
	gateway ModelGateway
	log     zerolog.Logger
}

func NewSummaryGenerator(gateway ModelGateway, log zerolog.Logger) *SummaryGenerator {
	return &SummaryGenerator{
		gateway: gateway,
		log:     log.With().Str("component", "summary-generator").Logger(),
	}
}

// Generate asks the model for a structured recap of the user's feedback.
func (g *SummaryGenerator) Generate(ctx context.Context, session *Session, turns []*Turn) *StructuredSummary {
	raw, err := g.gateway.Complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: summarySystemPrompt(session)},
		{Role: openai.ChatMessageRoleUser, Content: transcriptForSummary(turns)},
	}, CompletionOptions{Temperature: 0.3, MaxTokens: 400})
	if err != nil {
		g.log.Warn().Err(err).Str("session_id", session.PublicID).Msg("summary model call failed, using fallback")
		return fallbackSummary(turns)
	}

	summary, ok := parseSummary(raw)
	if !ok {
		g.log.Warn().Str("session_id", session.PublicID).Msg("summary response unparseable, using fallback")
		return fallbackSummary(turns)
	}
	return summary
}

func summarySystemPrompt(session *Session) string {
	var sb strings.Builder
	sb.WriteString("You summarize a ")
	if session.SurveyType == SurveyTypeCourseEvaluation {
		sb.WriteString("course evaluation")
	} else {
		sb.WriteString("workplace satisfaction")
	}
	sb.WriteString(" interview. Reply with compact JSON only: ")
	sb.WriteString(`{"opening": string (optional), "key_points": [2 to 4 strings, each 25-35 words], "sentiment": "positive"|"mixed"|"negative"}. `)
	sb.WriteString("Key points must paraphrase what the participant actually said; never invent content.")
	return sb.String()
}

func transcriptForSummary(turns []*Turn) string {
	var sb strings.Builder
	for _, turn := range turns {
		fmt.Fprintf(&sb, "Participant: %s\n", turn.UserContent)
	}
	if sb.Len() == 0 {
		sb.WriteString("(no responses)")
	}
	return sb.String()
}

type summaryJSON struct {
	Opening   *string  `json:"opening"`
	KeyPoints []string `json:"key_points"`
	Sentiment string   `json:"sentiment"`
}

func parseSummary(raw string) (*StructuredSummary, bool) {
	text := strings.TrimSpace(raw)
	text = codeFencePattern.ReplaceAllString(text, "")

	var parsed summaryJSON
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &parsed); err != nil {
		return nil, false
	}

	points := make([]string, 0, summaryMaxPoints)
	for _, point := range parsed.KeyPoints {
		point = strings.TrimSpace(point)
		if point == "" {
			continue
		}
		points = append(points, point)
		if len(points) == summaryMaxPoints {
			break
		}
	}
	if len(points) == 0 {
		return nil, false
	}

	sentiment := strings.ToLower(strings.TrimSpace(parsed.Sentiment))
	switch sentiment {
	case "positive", "mixed", "negative":
	default:
		sentiment = "mixed"
	}

	return &StructuredSummary{Opening: parsed.Opening, KeyPoints: points, Sentiment: sentiment}, true
}

// fallbackSummary uses the most recent raw user turns as key points.
func fallbackSummary(turns []*Turn) *StructuredSummary {
	points := make([]string, 0, 3)
	for i := len(turns) - 1; i >= 0 && len(points) < 3; i-- {
		content := strings.TrimSpace(turns[i].UserContent)
		if content == "" || content == StartConversationSentinel {
			continue
		}
		if len(content) > fallbackExcerptLength {
			content = content[:fallbackExcerptLength] + "..."
		}
		points = append([]string{content}, points...)
	}
	if len(points) == 0 {
		points = []string{"The participant completed the conversation without detailed feedback."}
	}
	return &StructuredSummary{KeyPoints: points, Sentiment: "mixed"}
}
