package interviewroute

import (
	"github.com/gin-gonic/gin"

	"pulse-server/internal/interfaces/httpserver/handlers/interviewhandler"
)

// InterviewRoute handles routing for the interview turn endpoints.
type InterviewRoute struct {
	handler *interviewhandler.InterviewHandler
}

func NewInterviewRoute(handler *interviewhandler.InterviewHandler) *InterviewRoute {
	return &InterviewRoute{handler: handler}
}

// RegisterProtectedRouter registers the endpoints that require a principal,
// either a JWT subject or a public-link participant.
func (route *InterviewRoute) RegisterProtectedRouter(router gin.IRouter) {
	group := router.Group("interview")
	group.POST("/sessions", route.handler.StartSession)
	group.POST("/turn", route.handler.HandleTurn)
}

// RegisterPublicRouter registers the anonymous preview endpoint. It is rate
// limited per client IP and conversation instead of authenticated.
func (route *InterviewRoute) RegisterPublicRouter(router gin.IRouter) {
	group := router.Group("interview")
	group.POST("/preview/turn", route.handler.HandlePreviewTurn)
}
