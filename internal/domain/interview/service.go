package interview

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"pulse-server/internal/domain/prompt"
	"pulse-server/internal/utils/idgen"
	"pulse-server/internal/utils/platformerrors"
)

// Enricher runs the post-reply classification pipeline. Best-effort: it may
// not complete, and its results may only be visible on the next turn.
type Enricher interface {
	EnrichAsync(session *Session, turn *Turn, themes []Theme)
}

// MetricsRecorder counts turn outcomes and parser recoveries.
type MetricsRecorder interface {
	RecordTurn(phase, surveyType string)
	RecordParserFallback()
}

// Caller identifies who is driving the conversation.
type Caller struct {
	ID            string
	Kind          OwnerKind
	Authenticated bool
}

// TurnInput is one inbound turn request, already bound and validated at the
// transport layer.
type TurnInput struct {
	ConversationID           string
	Messages                 []Message
	TestMode                 bool
	SelectedDuration         *int
	SelectedThemeID          *string
	FinishEarly              bool
	IsFinalResponse          bool
	IsCompletionConfirmation bool
	InitialMood              *int
}

// TurnOutput is the synchronous reply for one turn.
type TurnOutput struct {
	Message            string
	Empathy            *string
	ShouldComplete     bool
	IsCompletionPrompt bool
	Phase              Phase
	Progress           *CoverageReport
	Summary            *StructuredSummary
}

// Service is the per-request phase router: it receives one turn, advances the
// session state machine and produces the reply. The enrichment pipeline is
// scheduled after the reply and never blocks it.
type Service struct {
	sessions  SessionRepository
	turns     TurnRepository
	themes    ThemeRepository
	gateway   ModelGateway
	prompts   prompt.Processor
	summaries *SummaryGenerator
	enricher  Enricher
	metrics   MetricsRecorder
	log       zerolog.Logger
}

func NewService(
	sessions SessionRepository,
	turns TurnRepository,
	themes ThemeRepository,
	gateway ModelGateway,
	prompts prompt.Processor,
	summaries *SummaryGenerator,
	enricher Enricher,
	metrics MetricsRecorder,
	log zerolog.Logger,
) *Service {
	return &Service{
		sessions:  sessions,
		turns:     turns,
		themes:    themes,
		gateway:   gateway,
		prompts:   prompts,
		summaries: summaries,
		enricher:  enricher,
		metrics:   metrics,
		log:       log.With().Str("component", "interview-service").Logger(),
	}
}

const (
	durationPromptMessage = "Before we start: how much time do you have for this conversation today? 5, 10 or 15 minutes?"
	durationRetryMessage  = "No problem - just let me know whether you have 5, 10 or 15 minutes, and we'll take it from there."
	closingMessage        = "Thank you for taking the time to share all of this. Your feedback has been recorded."
	alreadyCompleteMsg    = "This conversation is already complete. Thank you again for your time."
	transitionWordLimit   = 15
)

var (
	terminalChoicePattern = regexp.MustCompile(`(?i)^\s*(i'?m all good|all good|nothing else|no,?\s*(that'?s|thats)\s*(all|it))\s*[.!]?\s*$`)
	reviewConfirmPattern  = regexp.MustCompile(`(?i)^\s*(yes|yep|yeah|done|correct|no|nope|looks good|nothing else|that'?s all|i'?m all good|all good)\b`)
	durationNumberPattern = regexp.MustCompile(`\b(5|10|15)\b`)
)

// HandleTurn routes one request through the state machine. On degraded paths
// (persistence failure after a successful model call) both an output and an
// error are returned so the transport can surface the message with the
// failure status.
func (s *Service) HandleTurn(ctx context.Context, caller Caller, input TurnInput) (*TurnOutput, error) {
	if strings.TrimSpace(input.ConversationID) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"conversationId is required", nil, "")
	}
	if len(input.Messages) == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"messages must be a non-empty list", nil, "")
	}

	session, err := s.sessions.FindByPublicID(ctx, input.ConversationID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "conversation not found")
	}
	if session.OwnerID != caller.ID || session.OwnerKind != caller.Kind {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden,
			"caller is not entitled to this conversation", nil, "")
	}

	if input.InitialMood != nil && session.InitialMood == nil {
		session.InitialMood = input.InitialMood
		if err := s.sessions.Update(ctx, session); err != nil {
			// Mood is auxiliary; losing it must not fail the turn.
			s.log.Warn().Err(err).Str("session_id", session.PublicID).Msg("failed to store initial mood")
		}
	}

	themes, err := s.themes.ListBySurvey(ctx, session.SurveyID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load themes")
	}

	turns, err := s.turns.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load turns")
	}

	isStart := IsStartSentinel(input.Messages)
	content := ""
	if !isStart {
		content, err = SanitizeContent(ctx, LastUserContent(input.Messages))
		if err != nil {
			return nil, err
		}
	}

	var out *TurnOutput
	switch {
	case session.Phase == PhaseNone:
		// Covers both the sentinel and a client that skipped the
		// introduction trigger; either way the opener comes first.
		out, err = s.handleStart(ctx, session, themes)
	case session.Phase == PhaseDurationSelection:
		out, err = s.handleDurationSelection(ctx, session, themes, input, content)
	case session.Phase == PhaseInterview:
		out, err = s.handleInterview(ctx, session, themes, turns, input, content)
	case session.Phase == PhaseThemeSelection:
		out, err = s.handleThemeSelection(ctx, session, themes, turns, input, content)
	case session.Phase == PhaseReviewing:
		out, err = s.handleReviewing(ctx, session, themes, turns, input, content)
	case session.Phase == PhaseComplete:
		out = &TurnOutput{Message: alreadyCompleteMsg, ShouldComplete: true, Phase: PhaseComplete}
	default:
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			fmt.Sprintf("unknown phase %q", session.Phase), nil, "")
	}
	if out != nil {
		s.metrics.RecordTurn(string(out.Phase), string(session.SurveyType))
	}
	return out, err
}

// ===============================================
// Phase handlers
// ===============================================

func (s *Service) handleStart(ctx context.Context, session *Session, themes []Theme) (*TurnOutput, error) {
	if session.Mode == ModeDuration {
		session.Phase = PhaseDurationSelection
		if err := s.sessions.Update(ctx, session); err != nil {
			return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to store session phase")
		}
		return &TurnOutput{Message: durationPromptMessage, Phase: PhaseDurationSelection}, nil
	}

	question, err := s.firstQuestion(ctx, session, themes)
	if err != nil {
		return nil, err
	}
	session.Phase = PhaseInterview
	if err := s.sessions.Update(ctx, session); err != nil {
		return &TurnOutput{Message: question, Phase: PhaseInterview},
			platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to store session phase")
	}
	return &TurnOutput{Message: question, Phase: PhaseInterview}, nil
}

func (s *Service) handleDurationSelection(ctx context.Context, session *Session, themes []Theme, input TurnInput, content string) (*TurnOutput, error) {
	minutes := 0
	if input.SelectedDuration != nil {
		minutes = *input.SelectedDuration
	} else if match := durationNumberPattern.FindString(content); match != "" {
		minutes, _ = strconv.Atoi(match)
	}

	if !session.SelectDuration(minutes) {
		return &TurnOutput{Message: durationRetryMessage, Phase: PhaseDurationSelection}, nil
	}

	question, err := s.firstQuestion(ctx, session, themes)
	if err != nil {
		return nil, err
	}
	session.Phase = PhaseInterview
	if err := s.sessions.Update(ctx, session); err != nil {
		return &TurnOutput{Message: question, Phase: PhaseInterview},
			platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to store duration selection")
	}
	return &TurnOutput{Message: question, Phase: PhaseInterview}, nil
}

func (s *Service) handleInterview(ctx context.Context, session *Session, themes []Theme, turns []*Turn, input TurnInput, content string) (*TurnOutput, error) {
	report := BuildCoverage(themes, turns)

	// Two exchanges past the duration target the session closes outright,
	// without another reviewing round-trip.
	if session.Mode == ModeDuration &&
		(DurationPolicy{}).ForceComplete(session, append(turns, &Turn{UserContent: content})) {
		return s.forceCompletion(ctx, session, themes, turns, content)
	}

	// Explicit finish signals short-circuit the policy.
	if input.FinishEarly || input.IsFinalResponse || terminalChoicePattern.MatchString(content) {
		return s.completionPrompt(ctx, session, themes, turns, content)
	}

	// Duration-gated sessions offer a theme focus once, at the halfway point.
	if session.Mode == ModeDuration && session.FocusThemeID == nil {
		if halfway := session.HalfwayPoint(); halfway > 0 && len(turns)+1 >= halfway {
			return s.themeSelectionPrompt(ctx, session, themes, report, content)
		}
	}

	// The incoming turn counts toward completion.
	if PolicyForSession(session).ShouldComplete(session, themes, append(turns, &Turn{UserContent: content})) {
		return s.completionPrompt(ctx, session, themes, turns, content)
	}

	reply, err := s.askModel(ctx, session, themes, turns, input, report, false)
	if err != nil {
		return nil, err
	}

	turn := &Turn{
		PublicID:    idgen.MustGenerateSecureID("turn", 16),
		SessionID:   session.ID,
		UserContent: content,
		Question:    reply.Question,
		Empathy:     reply.Empathy,
	}
	persistErr := s.turns.Create(ctx, turn)
	if persistErr == nil {
		s.enricher.EnrichAsync(session, turn, themes)
		turns = append(turns, turn)
	} else {
		s.log.Error().Err(persistErr).Str("session_id", session.PublicID).Msg("failed to persist turn")
	}

	progress := BuildCoverage(themes, turns)
	out := &TurnOutput{
		Message:  reply.Question,
		Empathy:  reply.Empathy,
		Phase:    PhaseInterview,
		Progress: &progress,
	}
	if persistErr != nil {
		// The reply is still returned so the conversation isn't lost on-screen.
		return out, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeDatabaseError,
			"failed to persist turn", persistErr, "")
	}
	return out, nil
}

func (s *Service) handleThemeSelection(ctx context.Context, session *Session, themes []Theme, turns []*Turn, input TurnInput, content string) (*TurnOutput, error) {
	chosen := s.resolveChosenTheme(themes, input.SelectedThemeID, content)
	if chosen == nil {
		report := BuildCoverage(themes, turns)
		return &TurnOutput{
			Message: themeSelectionMessage(UndiscussedThemes(report)),
			Phase:   PhaseThemeSelection,
		}, nil
	}

	session.FocusThemeID = &chosen.PublicID
	question, err := s.transitionQuestion(ctx, session, *chosen)
	if err != nil {
		return nil, err
	}

	session.Phase = PhaseInterview
	if err := s.sessions.Update(ctx, session); err != nil {
		return &TurnOutput{Message: question, Phase: PhaseInterview},
			platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to store theme focus")
	}
	return &TurnOutput{Message: question, Phase: PhaseInterview}, nil
}

func (s *Service) handleReviewing(ctx context.Context, session *Session, themes []Theme, turns []*Turn, input TurnInput, content string) (*TurnOutput, error) {
	if input.IsCompletionConfirmation || reviewConfirmPattern.MatchString(content) {
		if hasTrailingSubstance(content) {
			turn := &Turn{
				PublicID:    idgen.MustGenerateSecureID("turn", 16),
				SessionID:   session.ID,
				UserContent: content,
				Question:    closingMessage,
			}
			if err := s.turns.Create(ctx, turn); err != nil {
				s.log.Error().Err(err).Str("session_id", session.PublicID).Msg("failed to persist trailing turn")
			} else {
				s.enricher.EnrichAsync(session, turn, themes)
			}
		}
		session.Phase = PhaseComplete
		if err := s.sessions.Update(ctx, session); err != nil {
			return &TurnOutput{Message: closingMessage, ShouldComplete: true, Phase: PhaseComplete},
				platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to store completion")
		}
		return &TurnOutput{Message: closingMessage, ShouldComplete: true, Phase: PhaseComplete}, nil
	}

	// The participant has more to say: drop back into the interview without
	// persisting a completion.
	session.Phase = PhaseInterview
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to reopen interview")
	}
	return s.handleInterview(ctx, session, themes, turns, input, content)
}

// ===============================================
// Shared steps
// ===============================================

// completionPrompt generates the structured recap and moves the session to
// reviewing.
func (s *Service) completionPrompt(ctx context.Context, session *Session, themes []Theme, turns []*Turn, content string) (*TurnOutput, error) {
	if hasTrailingSubstance(content) {
		turn := &Turn{
			PublicID:    idgen.MustGenerateSecureID("turn", 16),
			SessionID:   session.ID,
			UserContent: content,
			Question:    "",
		}
		if err := s.turns.Create(ctx, turn); err != nil {
			s.log.Error().Err(err).Str("session_id", session.PublicID).Msg("failed to persist final turn")
		} else {
			s.enricher.EnrichAsync(session, turn, themes)
			turns = append(turns, turn)
		}
	}

	summary := s.summaries.Generate(ctx, session, turns)
	session.Phase = PhaseReviewing
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to store reviewing phase")
	}

	progress := BuildCoverage(themes, turns)
	return &TurnOutput{
		Message:            completionPromptMessage(summary),
		IsCompletionPrompt: true,
		Phase:              PhaseReviewing,
		Progress:           &progress,
		Summary:            summary,
	}, nil
}

// forceCompletion closes an overrun duration session directly, skipping the
// reviewing phase.
func (s *Service) forceCompletion(ctx context.Context, session *Session, themes []Theme, turns []*Turn, content string) (*TurnOutput, error) {
	if hasTrailingSubstance(content) {
		turn := &Turn{
			PublicID:    idgen.MustGenerateSecureID("turn", 16),
			SessionID:   session.ID,
			UserContent: content,
			Question:    closingMessage,
		}
		if err := s.turns.Create(ctx, turn); err != nil {
			s.log.Error().Err(err).Str("session_id", session.PublicID).Msg("failed to persist final turn")
		} else {
			s.enricher.EnrichAsync(session, turn, themes)
			turns = append(turns, turn)
		}
	}

	summary := s.summaries.Generate(ctx, session, turns)
	session.Phase = PhaseComplete
	out := &TurnOutput{
		Message:        closingMessage,
		ShouldComplete: true,
		Phase:          PhaseComplete,
		Summary:        summary,
	}
	if err := s.sessions.Update(ctx, session); err != nil {
		return out, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to store completion")
	}
	return out, nil
}

// themeSelectionPrompt persists the in-flight turn, then offers the list of
// undiscussed themes.
func (s *Service) themeSelectionPrompt(ctx context.Context, session *Session, themes []Theme, report CoverageReport, content string) (*TurnOutput, error) {
	message := themeSelectionMessage(UndiscussedThemes(report))

	turn := &Turn{
		PublicID:    idgen.MustGenerateSecureID("turn", 16),
		SessionID:   session.ID,
		UserContent: content,
		Question:    message,
	}
	if err := s.turns.Create(ctx, turn); err != nil {
		s.log.Error().Err(err).Str("session_id", session.PublicID).Msg("failed to persist turn before theme selection")
	} else {
		s.enricher.EnrichAsync(session, turn, themes)
	}

	session.Phase = PhaseThemeSelection
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to store theme selection phase")
	}
	return &TurnOutput{Message: message, Phase: PhaseThemeSelection}, nil
}

// firstQuestion asks the model to open the interview. Empathy is forced to
// null on the very first turn.
func (s *Service) firstQuestion(ctx context.Context, session *Session, themes []Theme) (string, error) {
	reply, err := s.askModel(ctx, session, themes, nil, TurnInput{}, CoverageReport{}, true)
	if err != nil {
		return "", err
	}
	return reply.Question, nil
}

// askModel builds the prompt, calls the gateway and parses the reply.
func (s *Service) askModel(ctx context.Context, session *Session, themes []Theme, turns []*Turn, input TurnInput, report CoverageReport, firstTurn bool) (ParsedReply, error) {
	promptCtx := s.buildPromptContext(session, themes, turns, report, firstTurn)

	messages := transcriptMessages(input.Messages)
	if firstTurn {
		messages = []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: "Please open the conversation with your first question.",
		}}
	}

	messages, err := s.prompts.Process(ctx, promptCtx, messages)
	if err != nil {
		return ParsedReply{}, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to build prompt")
	}

	raw, err := s.gateway.Complete(ctx, messages, CompletionOptions{})
	if err != nil {
		return ParsedReply{}, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal,
			"model gateway unavailable", err, "")
	}

	reply := ParseModelReply(raw)
	if reply.Fallback {
		s.metrics.RecordParserFallback()
	}
	if firstTurn {
		reply.Empathy = nil
	}
	return reply, nil
}

// transitionQuestion asks for a single short question focused on the chosen
// theme and enforces the word limit locally.
func (s *Service) transitionQuestion(ctx context.Context, session *Session, theme Theme) (string, error) {
	instruction := fmt.Sprintf(
		"The participant chose to focus on %q (%s). Ask exactly one transition question about it, at most %d words.",
		theme.Name, theme.Description, transitionWordLimit,
	)
	raw, err := s.gateway.Complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: instruction},
	}, CompletionOptions{Temperature: 0.5, MaxTokens: 60})
	if err != nil {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal,
			"model gateway unavailable", err, "")
	}

	question := ParseModelReply(raw).Question
	words := strings.Fields(question)
	if len(words) > transitionWordLimit {
		question = strings.Join(words[:transitionWordLimit], " ")
		if !strings.HasSuffix(question, "?") {
			question += "?"
		}
	}
	return question, nil
}

func (s *Service) buildPromptContext(session *Session, themes []Theme, turns []*Turn, report CoverageReport, firstTurn bool) *prompt.Context {
	promptCtx := &prompt.Context{
		SessionID:        session.PublicID,
		SurveyType:       string(session.SurveyType),
		FirstTurn:        firstTurn,
		ExchangesByTheme: make(map[string]int),
	}
	for _, theme := range themes {
		promptCtx.Themes = append(promptCtx.Themes, prompt.ThemeInfo{
			ID:          theme.PublicID,
			Name:        theme.Name,
			Description: theme.Description,
		})
	}
	if session.FocusThemeID != nil {
		for i := range promptCtx.Themes {
			if promptCtx.Themes[i].ID == *session.FocusThemeID {
				promptCtx.FocusTheme = &promptCtx.Themes[i]
				break
			}
		}
	}
	if firstTurn {
		return promptCtx
	}

	for _, progress := range report.Themes {
		if !progress.Discussed {
			continue
		}
		promptCtx.Discussed = append(promptCtx.Discussed, progress.Theme.Name)
		promptCtx.ExchangesByTheme[progress.Theme.Name] = progress.Exchanges
		if progress.Current {
			promptCtx.CurrentTheme = progress.Theme.Name
		}
	}
	promptCtx.ConsecutiveOnCurrent = ConsecutiveExchangesOnCurrent(turns)
	promptCtx.AllThemesCovered = len(themes) > 0 && report.DiscussedCount == len(themes)

	for _, turn := range lastN(turns, 3) {
		if turn.SentimentLabel != nil {
			promptCtx.SentimentTrend = append(promptCtx.SentimentTrend, *turn.SentimentLabel)
		}
	}
	for _, turn := range lastN(turns, 2) {
		excerpt := turn.UserContent
		if len(excerpt) > 120 {
			excerpt = excerpt[:120] + "..."
		}
		promptCtx.Excerpts = append(promptCtx.Excerpts, excerpt)
	}

	if session.Mode == ModeDuration && session.TargetExchanges != nil {
		left := *session.TargetExchanges - len(turns)
		if left < 0 {
			left = 0
		}
		promptCtx.ExchangesLeft = &left
	}
	return promptCtx
}

func (s *Service) resolveChosenTheme(themes []Theme, selectedID *string, content string) *Theme {
	if selectedID != nil {
		for i := range themes {
			if themes[i].PublicID == *selectedID {
				return &themes[i]
			}
		}
		return nil
	}
	lowered := strings.ToLower(content)
	for i := range themes {
		if strings.Contains(lowered, strings.ToLower(themes[i].Name)) {
			return &themes[i]
		}
	}
	return nil
}

// ===============================================
// Helpers
// ===============================================

func transcriptMessages(messages []Message) []openai.ChatCompletionMessage {
	const maxTranscript = 12
	if len(messages) > maxTranscript {
		messages = messages[len(messages)-maxTranscript:]
	}
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, message := range messages {
		if strings.TrimSpace(message.Content) == StartConversationSentinel {
			continue
		}
		role := openai.ChatMessageRoleUser
		if message.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: message.Content})
	}
	return out
}

func completionPromptMessage(summary *StructuredSummary) string {
	var sb strings.Builder
	if summary.Opening != nil && strings.TrimSpace(*summary.Opening) != "" {
		sb.WriteString(strings.TrimSpace(*summary.Opening))
		sb.WriteString(" ")
	}
	sb.WriteString("Here's what I've captured so far:\n")
	for _, point := range summary.KeyPoints {
		fmt.Fprintf(&sb, "- %s\n", point)
	}
	sb.WriteString("Did I get that right - or is there anything you'd like to add before we finish?")
	return sb.String()
}

func themeSelectionMessage(undiscussed []Theme) string {
	if len(undiscussed) == 0 {
		return "We're about halfway through. Is there a topic you'd like to spend the remaining time on?"
	}
	var sb strings.Builder
	sb.WriteString("We're about halfway through. We haven't touched on these yet:\n")
	for _, theme := range undiscussed {
		fmt.Fprintf(&sb, "- %s\n", theme.Name)
	}
	sb.WriteString("Which one would you like to spend the remaining time on?")
	return sb.String()
}

// hasTrailingSubstance filters out bare confirmations and sentinels so they
// are not persisted as feedback.
func hasTrailingSubstance(content string) bool {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" || trimmed == StartConversationSentinel {
		return false
	}
	if reviewConfirmPattern.MatchString(trimmed) && len(strings.Fields(trimmed)) <= 4 {
		return false
	}
	if terminalChoicePattern.MatchString(trimmed) {
		return false
	}
	return true
}

func lastN(turns []*Turn, n int) []*Turn {
	if len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}
