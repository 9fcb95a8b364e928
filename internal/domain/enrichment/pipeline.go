package enrichment

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"pulse-server/internal/domain/interview"
)

// EscalationLogger records turns that need human follow-up. Implementations
// must be idempotent: the same session/turn pair may be logged twice.
type EscalationLogger interface {
	LogEscalation(ctx context.Context, session *interview.Session, turn *interview.Turn, reason string, urgencyScore int) error
}

// AuditLogger records that a turn of an authenticated conversation was
// processed, for compliance trails.
type AuditLogger interface {
	LogTurnProcessed(ctx context.Context, session *interview.Session, turn *interview.Turn) error
}

// MetricsRecorder counts enrichment step outcomes.
type MetricsRecorder interface {
	RecordEnrichmentStep(step, status string)
}

// Pipeline is the post-reply classification chain. It never blocks or fails
// the turn that triggered it: every error is logged, counted and swallowed.
type Pipeline struct {
	gateway     interview.ModelGateway
	turns       interview.TurnRepository
	escalations EscalationLogger
	audits      AuditLogger
	scheduler   Scheduler
	metrics     MetricsRecorder
	log         zerolog.Logger
}

func NewPipeline(
	gateway interview.ModelGateway,
	turns interview.TurnRepository,
	escalations EscalationLogger,
	audits AuditLogger,
	scheduler Scheduler,
	metrics MetricsRecorder,
	log zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		gateway:     gateway,
		turns:       turns,
		escalations: escalations,
		audits:      audits,
		scheduler:   scheduler,
		metrics:     metrics,
		log:         log.With().Str("component", "enrichment-pipeline").Logger(),
	}
}

// EnrichAsync schedules the full chain for one turn and returns immediately.
func (p *Pipeline) EnrichAsync(session *interview.Session, turn *interview.Turn, themes []interview.Theme) {
	if strings.TrimSpace(turn.UserContent) == "" {
		return
	}
	p.scheduler.Schedule(func(ctx context.Context) {
		p.run(ctx, session, turn, themes)
	})
}

func (p *Pipeline) run(ctx context.Context, session *interview.Session, turn *interview.Turn, themes []interview.Theme) {
	log := p.log.With().
		Str("session_id", session.PublicID).
		Str("turn_id", turn.PublicID).
		Logger()

	classification, ok := p.classify(ctx, log, turn, themes)
	deep := p.deepPass(ctx, log, turn)

	if session.SurveyType == interview.SurveyTypeEmployeeSatisfaction {
		p.signalPass(ctx, log, turn)
	}

	urgent := ok && classification.Urgent
	urgencyScore := 0
	if deep != nil {
		urgencyScore = deep.UrgencyScore
		urgent = urgent || deep.UrgencyScore >= 4
	}
	if urgent {
		reason := "flagged urgent by classifier"
		if deep != nil && deep.Reasoning != "" {
			reason = deep.Reasoning
		}
		if err := p.escalations.LogEscalation(ctx, session, turn, reason, urgencyScore); err != nil {
			p.metrics.RecordEnrichmentStep("escalation", "error")
			log.Error().Err(err).Msg("failed to log escalation")
		} else {
			p.metrics.RecordEnrichmentStep("escalation", "ok")
		}
	}

	if session.OwnerKind == interview.OwnerUser {
		if err := p.audits.LogTurnProcessed(ctx, session, turn); err != nil {
			p.metrics.RecordEnrichmentStep("audit", "error")
			log.Warn().Err(err).Msg("failed to write audit record")
		}
	}
}

// classify fans the three fast classifiers out concurrently. Each classifier
// fails on its own; whatever succeeded is still applied, with the failed
// dimension left unset.
func (p *Pipeline) classify(ctx context.Context, log zerolog.Logger, turn *interview.Turn, themes []interview.Theme) (interview.TurnClassification, bool) {
	var classification interview.TurnClassification
	var sentimentErr, themeErr, urgencyErr error

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		label, score, err := p.classifySentiment(ctx, turn.UserContent)
		if err != nil {
			sentimentErr = err
			return
		}
		classification.SentimentLabel = label
		classification.SentimentScore = score
	}()
	go func() {
		defer wg.Done()
		themeID, err := p.classifyTheme(ctx, turn.UserContent, themes)
		if err != nil {
			themeErr = err
			return
		}
		classification.ThemeID = themeID
	}()
	go func() {
		defer wg.Done()
		urgent, err := p.classifyUrgency(ctx, turn.UserContent)
		if err != nil {
			urgencyErr = err
			return
		}
		classification.Urgent = urgent
	}()
	wg.Wait()

	failures := 0
	for _, err := range []error{sentimentErr, themeErr, urgencyErr} {
		if err == nil {
			continue
		}
		failures++
		p.metrics.RecordEnrichmentStep("classification", "error")
		log.Error().Err(err).Msg("classifier failed")
	}
	if failures == 3 {
		return classification, false
	}

	if err := p.turns.ApplyClassification(ctx, turn.ID, classification); err != nil {
		p.metrics.RecordEnrichmentStep("classification", "error")
		log.Error().Err(err).Msg("failed to apply classification")
		return classification, false
	}
	p.metrics.RecordEnrichmentStep("classification", "ok")

	if classification.SentimentLabel != "" {
		turn.SentimentLabel = &classification.SentimentLabel
		turn.SentimentScore = &classification.SentimentScore
	}
	if classification.ThemeID != nil {
		turn.ThemeID = classification.ThemeID
	}
	turn.Urgent = classification.Urgent
	return classification, true
}

func (p *Pipeline) deepPass(ctx context.Context, log zerolog.Logger, turn *interview.Turn) *DeepAnalysisResult {
	deep, err := p.analyzeDeep(ctx, turn.UserContent)
	if err != nil {
		p.metrics.RecordEnrichmentStep("deep_analysis", "error")
		log.Error().Err(err).Msg("deep analysis failed")
		return nil
	}

	payload := map[string]any{
		"reasoning":            deep.Reasoning,
		"detected_themes":      deep.DetectedThemes,
		"sentiment_indicators": deep.SentimentIndicators,
		"suggested_follow_up":  deep.SuggestedFollowUp,
	}
	if err := p.turns.ApplyDeepAnalysis(ctx, turn.ID, deep.UrgencyScore, payload); err != nil {
		p.metrics.RecordEnrichmentStep("deep_analysis", "error")
		log.Error().Err(err).Msg("failed to apply deep analysis")
		return deep
	}
	p.metrics.RecordEnrichmentStep("deep_analysis", "ok")
	return deep
}

func (p *Pipeline) signalPass(ctx context.Context, log zerolog.Logger, turn *interview.Turn) {
	signals, err := p.extractSignals(ctx, turn.UserContent)
	if err != nil {
		p.metrics.RecordEnrichmentStep("signals", "error")
		log.Error().Err(err).Msg("signal extraction failed")
		return
	}
	if len(signals) == 0 {
		p.metrics.RecordEnrichmentStep("signals", "ok")
		return
	}
	if err := p.turns.ApplySignals(ctx, turn.ID, signals); err != nil {
		p.metrics.RecordEnrichmentStep("signals", "error")
		log.Error().Err(err).Msg("failed to apply signals")
		return
	}
	p.metrics.RecordEnrichmentStep("signals", "ok")
}
