package enrichment

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"pulse-server/internal/domain/interview"
)

// scriptedGateway routes each classifier call to a canned answer based on
// the system prompt, so the concurrent fan-out stays deterministic.
type scriptedGateway struct {
	mu sync.Mutex

	sentimentReply string
	sentimentErr   error
	themeReply     string
	themeErr       error
	urgencyReply   string
	urgencyErr     error

	deepArguments   string
	deepErr         error
	signalArguments string
	signalErr       error

	toolCalls []string
}

func (g *scriptedGateway) Complete(_ context.Context, messages []openai.ChatCompletionMessage, _ interview.CompletionOptions) (string, error) {
	system := messages[0].Content
	switch {
	case strings.Contains(system, "sentiment"):
		return g.sentimentReply, g.sentimentErr
	case strings.Contains(system, "themes"):
		return g.themeReply, g.themeErr
	case strings.Contains(system, "human attention"):
		return g.urgencyReply, g.urgencyErr
	}
	return "", errors.New("unexpected completion prompt")
}

func (g *scriptedGateway) CompleteWithTools(_ context.Context, _ []openai.ChatCompletionMessage, tools []openai.Tool, _ interview.CompletionOptions) (*openai.ChatCompletionResponse, error) {
	name := tools[0].Function.Name
	g.mu.Lock()
	g.toolCalls = append(g.toolCalls, name)
	g.mu.Unlock()

	var arguments string
	switch name {
	case deepAnalysisToolName:
		if g.deepErr != nil {
			return nil, g.deepErr
		}
		arguments = g.deepArguments
	case signalToolName:
		if g.signalErr != nil {
			return nil, g.signalErr
		}
		arguments = g.signalArguments
	default:
		return nil, errors.New("unexpected tool " + name)
	}
	if arguments == "" {
		// Simulates the model answering free-form instead of calling the tool.
		return &openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "ok"}}},
		}, nil
	}
	return &openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				ToolCalls: []openai.ToolCall{{
					Type:     openai.ToolTypeFunction,
					Function: openai.FunctionCall{Name: name, Arguments: arguments},
				}},
			},
		}},
	}, nil
}

// syncScheduler runs the job inline so tests observe the full chain.
type syncScheduler struct {
	scheduled int
}

func (s *syncScheduler) Schedule(job func(ctx context.Context)) {
	s.scheduled++
	job(context.Background())
}

type recordingTurnRepo struct {
	classification    *interview.TurnClassification
	classificationErr error
	deepScore         int
	deepPayload       map[string]any
	signals           []interview.SemanticSignal
}

func (r *recordingTurnRepo) Create(context.Context, *interview.Turn) error { return nil }
func (r *recordingTurnRepo) ListBySession(context.Context, uint) ([]*interview.Turn, error) {
	return nil, nil
}
func (r *recordingTurnRepo) CountBySession(context.Context, uint) (int, error) { return 0, nil }

func (r *recordingTurnRepo) ApplyClassification(_ context.Context, _ uint, classification interview.TurnClassification) error {
	if r.classificationErr != nil {
		return r.classificationErr
	}
	r.classification = &classification
	return nil
}

func (r *recordingTurnRepo) ApplyDeepAnalysis(_ context.Context, _ uint, urgencyScore int, payload map[string]any) error {
	r.deepScore = urgencyScore
	r.deepPayload = payload
	return nil
}

func (r *recordingTurnRepo) ApplySignals(_ context.Context, _ uint, signals []interview.SemanticSignal) error {
	r.signals = signals
	return nil
}

type recordedEscalation struct {
	reason string
	score  int
}

type recordingEscalations struct {
	logged []recordedEscalation
}

func (r *recordingEscalations) LogEscalation(_ context.Context, _ *interview.Session, _ *interview.Turn, reason string, urgencyScore int) error {
	r.logged = append(r.logged, recordedEscalation{reason: reason, score: urgencyScore})
	return nil
}

type recordingAudits struct {
	processed int
}

func (r *recordingAudits) LogTurnProcessed(context.Context, *interview.Session, *interview.Turn) error {
	r.processed++
	return nil
}

type stepCounter struct {
	mu    sync.Mutex
	steps map[string]int
}

func (c *stepCounter) RecordEnrichmentStep(step, status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.steps == nil {
		c.steps = make(map[string]int)
	}
	c.steps[step+"/"+status]++
}

type pipelineHarness struct {
	pipeline    *Pipeline
	gateway     *scriptedGateway
	turns       *recordingTurnRepo
	escalations *recordingEscalations
	audits      *recordingAudits
	scheduler   *syncScheduler
	metrics     *stepCounter
}

func newPipelineHarness() *pipelineHarness {
	h := &pipelineHarness{
		gateway: &scriptedGateway{
			sentimentReply: "neutral",
			themeReply:     "none",
			urgencyReply:   "no",
			deepArguments:  `{"urgency_score": 1, "reasoning": "routine feedback"}`,
		},
		turns:       &recordingTurnRepo{},
		escalations: &recordingEscalations{},
		audits:      &recordingAudits{},
		scheduler:   &syncScheduler{},
		metrics:     &stepCounter{},
	}
	h.pipeline = NewPipeline(h.gateway, h.turns, h.escalations, h.audits, h.scheduler, h.metrics, zerolog.Nop())
	return h
}

func enrichedSession() *interview.Session {
	return &interview.Session{
		ID:         1,
		PublicID:   "conv_enrich",
		SurveyID:   "employee-satisfaction-q3",
		SurveyType: interview.SurveyTypeEmployeeSatisfaction,
		OwnerID:    "user-1",
		OwnerKind:  interview.OwnerUser,
	}
}

func enrichedTurn(content string) *interview.Turn {
	return &interview.Turn{ID: 7, PublicID: "turn_enrich", SessionID: 1, UserContent: content}
}

func workloadThemes() []interview.Theme {
	return []interview.Theme{
		{PublicID: "theme-workload", SurveyID: "employee-satisfaction-q3", Name: "Workload"},
		{PublicID: "theme-growth", SurveyID: "employee-satisfaction-q3", Name: "Growth"},
	}
}

func TestPipelineAppliesClassification(t *testing.T) {
	h := newPipelineHarness()
	h.gateway.sentimentReply = "Negative."
	h.gateway.themeReply = "That sounds like Workload"

	turn := enrichedTurn("the workload has been crushing lately")
	h.pipeline.EnrichAsync(enrichedSession(), turn, workloadThemes())

	if h.turns.classification == nil {
		t.Fatal("classification was not applied")
	}
	if h.turns.classification.SentimentLabel != interview.SentimentNegative {
		t.Errorf("sentiment = %q, want negative", h.turns.classification.SentimentLabel)
	}
	if h.turns.classification.SentimentScore != 25 {
		t.Errorf("sentiment score = %d, want 25", h.turns.classification.SentimentScore)
	}
	if h.turns.classification.ThemeID == nil || *h.turns.classification.ThemeID != "theme-workload" {
		t.Errorf("theme = %v, want theme-workload", h.turns.classification.ThemeID)
	}
	if h.turns.classification.Urgent {
		t.Error("turn should not be flagged urgent")
	}
	// The in-memory turn must reflect the classification too, so the
	// escalation record carries the enriched state.
	if turn.SentimentLabel == nil || *turn.SentimentLabel != interview.SentimentNegative {
		t.Errorf("turn sentiment = %v, want negative", turn.SentimentLabel)
	}
	if h.metrics.steps["classification/ok"] != 1 {
		t.Errorf("classification/ok = %d, want 1", h.metrics.steps["classification/ok"])
	}
}

func TestPipelineUnmatchedThemeStaysUnclassified(t *testing.T) {
	h := newPipelineHarness()
	h.gateway.themeReply = "none of these apply"

	h.pipeline.EnrichAsync(enrichedSession(), enrichedTurn("just saying hi"), workloadThemes())

	if h.turns.classification == nil {
		t.Fatal("classification was not applied")
	}
	if h.turns.classification.ThemeID != nil {
		t.Errorf("theme = %q, want nil", *h.turns.classification.ThemeID)
	}
}

func TestPipelineSkipsEmptyContent(t *testing.T) {
	h := newPipelineHarness()

	h.pipeline.EnrichAsync(enrichedSession(), enrichedTurn("   "), workloadThemes())

	if h.scheduler.scheduled != 0 {
		t.Errorf("scheduled %d jobs for blank content, want 0", h.scheduler.scheduled)
	}
}

func TestPipelineClassifierErrorKeepsPartialResult(t *testing.T) {
	h := newPipelineHarness()
	h.gateway.sentimentErr = errors.New("model unavailable")
	h.gateway.themeReply = "Workload"

	h.pipeline.EnrichAsync(enrichedSession(), enrichedTurn("some feedback"), workloadThemes())

	if h.turns.classification == nil {
		t.Fatal("the surviving classifier results must still be applied")
	}
	if h.turns.classification.SentimentLabel != "" {
		t.Errorf("failed sentiment must stay unset, got %q", h.turns.classification.SentimentLabel)
	}
	if h.turns.classification.ThemeID == nil || *h.turns.classification.ThemeID != "theme-workload" {
		t.Errorf("theme = %v, want theme-workload", h.turns.classification.ThemeID)
	}
	if h.metrics.steps["classification/error"] != 1 {
		t.Errorf("classification/error = %d, want 1", h.metrics.steps["classification/error"])
	}
	if h.metrics.steps["classification/ok"] != 1 {
		t.Errorf("classification/ok = %d, want 1", h.metrics.steps["classification/ok"])
	}
	if h.turns.deepScore != 1 {
		t.Errorf("deep urgency = %d, want 1", h.turns.deepScore)
	}
}

func TestPipelineAllClassifiersFailing(t *testing.T) {
	h := newPipelineHarness()
	h.gateway.sentimentErr = errors.New("model unavailable")
	h.gateway.themeErr = errors.New("model unavailable")
	h.gateway.urgencyErr = errors.New("model unavailable")

	h.pipeline.EnrichAsync(enrichedSession(), enrichedTurn("some feedback"), workloadThemes())

	if h.turns.classification != nil {
		t.Error("nothing to apply when every classifier failed")
	}
	if h.metrics.steps["classification/error"] != 3 {
		t.Errorf("classification/error = %d, want 3", h.metrics.steps["classification/error"])
	}
	if h.turns.deepScore != 1 {
		t.Errorf("deep urgency = %d, want 1", h.turns.deepScore)
	}
}

func TestPipelineEscalatesOnUrgentClassifier(t *testing.T) {
	h := newPipelineHarness()
	h.gateway.urgencyReply = "Yes"
	h.gateway.deepArguments = `{"urgency_score": 3, "reasoning": "mentions being afraid of a colleague"}`

	h.pipeline.EnrichAsync(enrichedSession(), enrichedTurn("I am afraid of my team lead"), workloadThemes())

	if len(h.escalations.logged) != 1 {
		t.Fatalf("escalations logged = %d, want 1", len(h.escalations.logged))
	}
	got := h.escalations.logged[0]
	if got.reason != "mentions being afraid of a colleague" {
		t.Errorf("escalation reason = %q, want the deep-pass reasoning", got.reason)
	}
	if got.score != 3 {
		t.Errorf("escalation score = %d, want 3", got.score)
	}
}

func TestPipelineEscalatesOnDeepUrgencyAlone(t *testing.T) {
	h := newPipelineHarness()
	h.gateway.urgencyReply = "no"
	h.gateway.deepArguments = `{"urgency_score": 5, "reasoning": "explicit safety concern"}`

	h.pipeline.EnrichAsync(enrichedSession(), enrichedTurn("the machine guard is broken"), workloadThemes())

	if len(h.escalations.logged) != 1 {
		t.Fatalf("escalations logged = %d, want 1", len(h.escalations.logged))
	}
	if h.escalations.logged[0].score != 5 {
		t.Errorf("escalation score = %d, want 5", h.escalations.logged[0].score)
	}
}

func TestPipelineClampsDeepUrgencyScore(t *testing.T) {
	h := newPipelineHarness()
	h.gateway.deepArguments = `{"urgency_score": 9, "reasoning": "out of range"}`

	h.pipeline.EnrichAsync(enrichedSession(), enrichedTurn("feedback"), workloadThemes())

	if h.turns.deepScore != 5 {
		t.Errorf("deep urgency = %d, want clamped to 5", h.turns.deepScore)
	}
}

func TestPipelineDeepPassWithoutToolCall(t *testing.T) {
	h := newPipelineHarness()
	h.gateway.deepArguments = ""

	h.pipeline.EnrichAsync(enrichedSession(), enrichedTurn("feedback"), workloadThemes())

	if h.turns.deepPayload != nil {
		t.Error("deep analysis should not be applied without a tool call")
	}
	if h.metrics.steps["deep_analysis/error"] != 1 {
		t.Errorf("deep_analysis/error = %d, want 1", h.metrics.steps["deep_analysis/error"])
	}
}

func TestPipelineExtractsSignalsForEmployeeSurveys(t *testing.T) {
	h := newPipelineHarness()
	h.gateway.signalArguments = `{"signals": [
		{"dimension": "autonomy", "intensity": 0.8, "sentiment": "negative", "confidence": 0.9},
		{"dimension": "bogus", "intensity": 0.5, "sentiment": "neutral", "confidence": 0.5},
		{"dimension": "growth", "intensity": 1.4, "sentiment": "positive", "confidence": -0.2}
	]}`

	h.pipeline.EnrichAsync(enrichedSession(), enrichedTurn("I never get to decide anything"), workloadThemes())

	if len(h.turns.signals) != 2 {
		t.Fatalf("signals applied = %d, want 2 (unknown dimension dropped)", len(h.turns.signals))
	}
	if h.turns.signals[0].Dimension != "autonomy" {
		t.Errorf("first signal dimension = %q, want autonomy", h.turns.signals[0].Dimension)
	}
	if h.turns.signals[1].Intensity != 1 || h.turns.signals[1].Confidence != 0 {
		t.Errorf("signal values not clamped: intensity=%v confidence=%v",
			h.turns.signals[1].Intensity, h.turns.signals[1].Confidence)
	}
}

func TestPipelineSkipsSignalsForCourseEvaluations(t *testing.T) {
	h := newPipelineHarness()
	h.gateway.signalArguments = `{"signals": []}`
	session := enrichedSession()
	session.SurveyType = interview.SurveyTypeCourseEvaluation

	h.pipeline.EnrichAsync(session, enrichedTurn("the pacing was fine"), workloadThemes())

	for _, name := range h.gateway.toolCalls {
		if name == signalToolName {
			t.Fatal("signal extraction ran for a course evaluation")
		}
	}
}

func TestPipelineAuditTrail(t *testing.T) {
	h := newPipelineHarness()
	h.pipeline.EnrichAsync(enrichedSession(), enrichedTurn("feedback"), workloadThemes())
	if h.audits.processed != 1 {
		t.Errorf("audit records = %d, want 1 for an authenticated session", h.audits.processed)
	}

	h = newPipelineHarness()
	session := enrichedSession()
	session.OwnerKind = interview.OwnerPreview
	session.OwnerID = "203.0.113.7"
	h.pipeline.EnrichAsync(session, enrichedTurn("feedback"), workloadThemes())
	if h.audits.processed != 0 {
		t.Errorf("audit records = %d, want 0 for a preview session", h.audits.processed)
	}
}
