package httpserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"pulse-server/internal/config"
	"pulse-server/internal/infrastructure"
	middleware "pulse-server/internal/interfaces/httpserver/middlewares"
	v1 "pulse-server/internal/interfaces/httpserver/routes/v1"
)

type HTTPServer struct {
	engine  *gin.Engine
	infra   *infrastructure.Infrastructure
	v1Route *v1.V1Route
	config  *config.Config
}

func NewHttpServer(
	v1Route *v1.V1Route,
	infra *infrastructure.Infrastructure,
	cfg *config.Config,
) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)
	server := HTTPServer{
		gin.New(),
		infra,
		v1Route,
		cfg,
	}
	server.engine.Use(middleware.RequestID())
	server.engine.Use(middleware.TracingMiddleware(cfg.ServiceName))
	server.engine.Use(middleware.LoggingMiddleware(infra.Logger))
	server.engine.Use(middleware.CORSMiddleware())
	server.engine.Use(middleware.MetricsMiddleware())

	server.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	server.engine.GET("/readyz", middleware.ReadinessHandler(infra.JWTValidator))

	server.engine.GET("/healthcheck", func(c *gin.Context) {
		c.JSON(200, "ok")
	})

	return &server
}

func (httpServer *HTTPServer) Run() error {
	// Public routes (no auth required)
	root := httpServer.engine.Group("/")

	// Protected routes (auth middleware applied)
	protected := httpServer.engine.Group("/")
	protected.Use(
		middleware.AuthMiddleware(httpServer.infra.JWTValidator, httpServer.infra.Logger),
	)

	httpServer.v1Route.RegisterRouter(root, protected)

	if err := httpServer.engine.Run(fmt.Sprintf(":%d", httpServer.config.HTTPPort)); err != nil {
		return err
	}
	return nil
}
