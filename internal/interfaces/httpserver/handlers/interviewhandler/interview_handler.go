package interviewhandler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"pulse-server/internal/domain"
	"pulse-server/internal/domain/interview"
	"pulse-server/internal/infrastructure/memstore"
	"pulse-server/internal/infrastructure/ratelimit"
	"pulse-server/internal/interfaces/httpserver/middlewares"
	"pulse-server/internal/interfaces/httpserver/requests/interviewreq"
	"pulse-server/internal/interfaces/httpserver/responses"
	"pulse-server/internal/interfaces/httpserver/responses/interviewresp"
	"pulse-server/internal/utils/idgen"
	"pulse-server/internal/utils/platformerrors"
)

const degradedTurnNotice = "reply generated but the conversation could not be saved"

// InterviewHandler serves the turn endpoints. Authenticated turns run against
// the persistent service; preview turns run against the memory-backed one.
type InterviewHandler struct {
	service  *interview.Service
	preview  *domain.PreviewService
	sessions interview.SessionRepository
	surveys  interview.SurveyRepository
	themes   interview.ThemeRepository
	store    *memstore.Store
	limiter  *ratelimit.Limiter
	logger   zerolog.Logger
}

func NewInterviewHandler(
	service *interview.Service,
	preview *domain.PreviewService,
	sessions interview.SessionRepository,
	surveys interview.SurveyRepository,
	themes interview.ThemeRepository,
	store *memstore.Store,
	limiter *ratelimit.Limiter,
	logger zerolog.Logger,
) *InterviewHandler {
	return &InterviewHandler{
		service:  service,
		preview:  preview,
		sessions: sessions,
		surveys:  surveys,
		themes:   themes,
		store:    store,
		limiter:  limiter,
		logger:   logger.With().Str("component", "interview-handler").Logger(),
	}
}

// StartSession creates a conversation for a catalogued survey, owned by the
// calling principal.
func (h *InterviewHandler) StartSession(c *gin.Context) {
	var req interviewreq.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error())
		return
	}

	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required")
		return
	}

	ctx := c.Request.Context()
	survey, err := h.surveys.FindByPublicID(ctx, req.SurveyID)
	if err != nil {
		responses.HandleError(c, h.logger, err)
		return
	}

	session := &interview.Session{
		PublicID:    idgen.MustGenerateSecureID("conv", 16),
		OwnerID:     principal.ID,
		OwnerKind:   principal.Kind,
		SurveyID:    survey.PublicID,
		SurveyType:  survey.Type,
		Mode:        survey.Mode,
		Phase:       interview.PhaseNone,
		InitialMood: req.InitialMood,
	}
	if err := h.sessions.Create(ctx, session); err != nil {
		responses.HandleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, interviewresp.StartSessionResponse{
		ConversationID: session.PublicID,
		SurveyID:       session.SurveyID,
		Phase:          string(session.Phase),
	})
}

// HandleTurn processes one authenticated interview turn.
func (h *InterviewHandler) HandleTurn(c *gin.Context) {
	var req interviewreq.TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error())
		return
	}

	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required")
		return
	}

	if !h.limiter.AllowIdentity(principal.ID) {
		responses.HandleNewError(c, platformerrors.ErrorTypeRateLimited, "too many requests, slow down")
		return
	}

	out, err := h.service.HandleTurn(c.Request.Context(), principal.Caller(), req.ToInput())
	h.respondTurn(c, out, err)
}

// HandlePreviewTurn processes a turn for an anonymous preview conversation.
// The session is created lazily in the memory store on the first turn, keyed
// by client IP so a preview cannot be resumed from elsewhere.
func (h *InterviewHandler) HandlePreviewTurn(c *gin.Context) {
	var req interviewreq.TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error())
		return
	}

	clientIP := c.ClientIP()
	if !h.limiter.AllowPreview(clientIP, req.ConversationID) {
		responses.HandleNewError(c, platformerrors.ErrorTypeRateLimited, "too many preview requests, slow down")
		return
	}

	caller := interview.Caller{ID: clientIP, Kind: interview.OwnerPreview}
	if err := h.ensurePreviewSession(c, clientIP, &req); err != nil {
		responses.HandleError(c, h.logger, err)
		return
	}

	out, err := h.preview.HandleTurn(c.Request.Context(), caller, req.ToInput())
	h.respondTurn(c, out, err)
}

// ensurePreviewSession creates the memory-backed session on the first turn of
// a preview conversation. Themes come from the catalogue by id and are copied
// into the preview store under a per-conversation survey namespace.
func (h *InterviewHandler) ensurePreviewSession(c *gin.Context, clientIP string, req *interviewreq.TurnRequest) error {
	ctx := c.Request.Context()
	previewSessions := memstore.NewSessionStore(h.store)

	if _, err := previewSessions.FindByPublicID(ctx, req.ConversationID); err == nil {
		return nil
	} else if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		return err
	}

	if len(req.Themes) == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeValidation,
			"themes are required to start a preview conversation", nil, "")
	}

	catalogued, err := h.themes.FindByPublicIDs(ctx, req.Themes)
	if err != nil {
		return err
	}
	if len(catalogued) == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeValidation,
			"no catalogued themes match the given ids", nil, "")
	}

	surveyType := interview.SurveyTypeEmployeeSatisfaction
	mode := interview.ModeCoverage
	if survey, err := h.surveys.FindByPublicID(ctx, catalogued[0].SurveyID); err == nil {
		surveyType = survey.Type
		mode = survey.Mode
	}

	previewSurveyID := "preview-" + req.ConversationID
	previewThemes := memstore.NewThemeStore(h.store)
	for i := range catalogued {
		copied := catalogued[i]
		copied.SurveyID = previewSurveyID
		if err := previewThemes.Upsert(ctx, &copied); err != nil {
			return err
		}
	}

	session := &interview.Session{
		PublicID:   req.ConversationID,
		OwnerID:    clientIP,
		OwnerKind:  interview.OwnerPreview,
		SurveyID:   previewSurveyID,
		SurveyType: surveyType,
		Mode:       mode,
		Phase:      interview.PhaseNone,
		CreatedAt:  time.Now(),
	}
	return previewSessions.Create(ctx, session)
}

// respondTurn maps the service result onto the wire. A degraded turn, where
// the reply was produced but could not be saved, still returns the message
// with the error surfaced in the body.
func (h *InterviewHandler) respondTurn(c *gin.Context, out *interview.TurnOutput, err error) {
	if err != nil && out == nil {
		responses.HandleError(c, h.logger, err)
		return
	}

	resp := interviewresp.NewTurnResponse(out)
	if err != nil {
		h.logger.Error().Err(err).Str("phase", resp.Phase).Msg("turn persisted with errors")
		notice := degradedTurnNotice
		resp.Error = &notice
	}
	c.JSON(http.StatusOK, resp)
}
