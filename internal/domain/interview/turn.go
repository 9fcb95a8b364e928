package interview

import (
	"context"
	"time"
)

// Sentiment labels assigned by the fast classifier, with their numeric scores.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// SentimentScoreFor maps a classifier label to its numeric score.
func SentimentScoreFor(label string) int {
	switch label {
	case SentimentPositive:
		return 75
	case SentimentNegative:
		return 25
	default:
		return 50
	}
}

// Turn is one user utterance plus the model's resulting question/empathy
// pair. Created synchronously with classification fields empty; the
// enrichment pipeline fills them in afterwards. Classification fields are
// only ever set, never retracted.
type Turn struct {
	ID          uint      `json:"-"`
	PublicID    string    `json:"id"`
	SessionID   uint      `json:"-"`
	UserContent string    `json:"user_content"`
	Question    string    `json:"question"`
	Empathy     *string   `json:"empathy,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	// Enrichment output (eventually consistent).
	SentimentLabel *string          `json:"sentiment,omitempty"`
	SentimentScore *int             `json:"sentiment_score,omitempty"`
	ThemeID        *string          `json:"theme_id,omitempty"`
	Urgent         bool             `json:"urgent"`
	UrgencyScore   *int             `json:"urgency_score,omitempty"`
	DeepAnalysis   map[string]any   `json:"deep_analysis,omitempty"`
	Signals        []SemanticSignal `json:"signals,omitempty"`
}

// SemanticSignal maps feedback onto one psychological dimension.
type SemanticSignal struct {
	Dimension  string  `json:"dimension"`
	Intensity  float64 `json:"intensity"`
	Sentiment  string  `json:"sentiment"`
	Confidence float64 `json:"confidence"`
}

// TurnClassification is the joined result of the fast classifiers.
type TurnClassification struct {
	SentimentLabel string
	SentimentScore int
	ThemeID        *string
	Urgent         bool
}

// TurnRepository persists turns and applies enrichment updates. All Apply*
// methods target an already-persisted turn by id and must be idempotent: a
// retried enrichment step may re-apply the same values.
type TurnRepository interface {
	Create(ctx context.Context, turn *Turn) error
	ListBySession(ctx context.Context, sessionID uint) ([]*Turn, error)
	CountBySession(ctx context.Context, sessionID uint) (int, error)
	ApplyClassification(ctx context.Context, turnID uint, classification TurnClassification) error
	ApplyDeepAnalysis(ctx context.Context, turnID uint, urgencyScore int, payload map[string]any) error
	ApplySignals(ctx context.Context, turnID uint, signals []SemanticSignal) error
}
