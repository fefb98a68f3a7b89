package server

import (
	"strings"

	auditdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/audit/domain"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/auditcontext"
	"github.com/gin-gonic/gin"
)

const contextAuthTypeKey = "auth_type"

// AdminKeyRequired authenticates admin requests with the configured bearer key,
// stored either in plain text or as an argon2id hash.
// Repeated failures from one client are throttled.
func (s *Server) AdminKeyRequired() gin.HandlerFunc {
	expected := strings.TrimSpace(s.cfg.Admin.APIKey)
	return func(c *gin.Context) {
		if len(expected) == 0 {
			AbortWithError(c, ErrServiceUnavailable)
			return
		}

		clientKey := c.ClientIP()
		if s.authFailures != nil && s.authFailures.Exceeded(clientKey) {
			AbortWithError(c, ErrTooManyRequests)
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		parts := strings.Fields(header)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			s.recordAuthFailure(clientKey)
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ok, err := verifyAdminKey(c.Request.Context(), parts[1], expected)
		if err != nil {
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if !ok {
			s.recordAuthFailure(clientKey)
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(contextAuthTypeKey, "admin_key")
		ctx := auditcontext.WithActor(c.Request.Context(), string(auditdomain.ActorTypeAdmin), "")
		ctx = auditcontext.WithIPAddress(ctx, c.ClientIP())
		ctx = auditcontext.WithUserAgent(ctx, c.Request.UserAgent())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) recordAuthFailure(key string) {
	if s.authFailures != nil {
		s.authFailures.Allow(key)
	}
}
