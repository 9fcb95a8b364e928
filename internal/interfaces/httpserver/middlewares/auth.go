package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"pulse-server/internal/domain"
	"pulse-server/internal/domain/interview"
	authvalidator "pulse-server/internal/infrastructure/auth"
	"pulse-server/internal/infrastructure/metrics"
	"pulse-server/internal/interfaces/httpserver/responses"
	"pulse-server/internal/utils/platformerrors"
)

const (
	principalContextKey = "principal"
	publicLinkHeader    = "X-Public-Link-Id"
)

// AuthMiddleware validates JWT bearer tokens against the configured JWKS.
// Requests without a bearer token may instead present a public-link id,
// which identifies an anonymous survey participant.
func AuthMiddleware(validator *authvalidator.JWTValidator, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			if linkID := strings.TrimSpace(c.GetHeader(publicLinkHeader)); linkID != "" {
				metrics.AuthRequestsTotal.WithLabelValues("public_link").Inc()
				setPrincipal(c, domain.Principal{
					ID:   linkID,
					Kind: interview.OwnerPublicLink,
				})
				c.Next()
				return
			}
			metrics.AuthRequestsTotal.WithLabelValues("missing").Inc()
			responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required")
			c.Abort()
			return
		}

		rawToken := strings.TrimPrefix(header, "Bearer ")
		claims, err := validator.Validate(c.Request.Context(), rawToken)
		if err != nil {
			metrics.AuthRequestsTotal.WithLabelValues("invalid").Inc()
			logger.Warn().Err(err).Str("path", c.FullPath()).Msg("jwt validation failed")
			responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "invalid token")
			c.Abort()
			return
		}

		metrics.AuthRequestsTotal.WithLabelValues("ok").Inc()
		setPrincipal(c, domain.Principal{
			ID:      claims.Subject,
			Subject: claims.Subject,
			Email:   claims.Email,
			Name:    claims.Name,
			Kind:    interview.OwnerUser,
		})
		c.Next()
	}
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(c *gin.Context) (domain.Principal, bool) {
	val, ok := c.Get(principalContextKey)
	if !ok {
		return domain.Principal{}, false
	}
	principal, ok := val.(domain.Principal)
	return principal, ok
}

func setPrincipal(c *gin.Context, principal domain.Principal) {
	c.Set(principalContextKey, principal)
	c.Set("user_id", principal.ID)
	if principal.ID != "" {
		c.Writer.Header().Set("X-Principal-Id", principal.ID)
	}
}

// ReadinessHandler reports JWKS freshness for load balancer checks.
func ReadinessHandler(validator *authvalidator.JWTValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if validator != nil && !validator.Ready() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "jwks unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
