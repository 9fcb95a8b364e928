package v1

import (
	"github.com/gin-gonic/gin"

	"pulse-server/internal/interfaces/httpserver/routes/v1/interviewroute"
)

type V1Route struct {
	interview *interviewroute.InterviewRoute
}

func NewV1Route(interview *interviewroute.InterviewRoute) *V1Route {
	return &V1Route{interview: interview}
}

// RegisterRouter mounts the v1 API under the given public and protected
// router groups.
func (route *V1Route) RegisterRouter(public gin.IRouter, protected gin.IRouter) {
	publicV1 := public.Group("v1")
	protectedV1 := protected.Group("v1")

	route.interview.RegisterPublicRouter(publicV1)
	route.interview.RegisterProtectedRouter(protectedV1)
}
