package routes

import (
	"github.com/google/wire"

	"pulse-server/internal/interfaces/httpserver/handlers/interviewhandler"
	v1 "pulse-server/internal/interfaces/httpserver/routes/v1"
	"pulse-server/internal/interfaces/httpserver/routes/v1/interviewroute"
)

var RouteProvider = wire.NewSet(
	// Handlers
	interviewhandler.NewInterviewHandler,

	// Routes
	interviewroute.NewInterviewRoute,
	v1.NewV1Route,
)
