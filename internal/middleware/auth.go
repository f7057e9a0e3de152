package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	iauth "github.com/charlesng35/teamforge/internal/auth"
	"github.com/charlesng35/teamforge/pkg/errors"
	"github.com/charlesng35/teamforge/pkg/logger"
	"github.com/charlesng35/teamforge/pkg/metrics"
	"github.com/charlesng35/teamforge/pkg/response"
)

const (
	CtxClaimsKey = "authClaims"
	CtxUserIDKey = "userID"
	CtxRoleKey   = "role"
	CtxTokenKey  = "sessionToken"
)

// TokenVerifier validates a bearer token and returns the claims it carries.
type TokenVerifier interface {
	Verify(token string) (*iauth.SessionClaims, bool)
}

// LogoutChecker reports whether a token was discarded by its holder.
type LogoutChecker interface {
	IsLoggedOut(ctx context.Context, token string) (bool, error)
}

// Auth enforces bearer session authentication. logouts may be nil.
func Auth(verifier TokenVerifier, logouts LogoutChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c)
			return
		}

		claims, valid := verifier.Verify(token)
		if !valid {
			unauthorized(c)
			return
		}

		if logouts != nil {
			loggedOut, err := logouts.IsLoggedOut(c.Request.Context(), token)
			if err != nil {
				// Fail closed: a marker we cannot read may exist.
				logger.WithModule("auth").Warn("logout marker lookup failed", zap.Error(err))
				unauthorized(c)
				return
			}
			if loggedOut {
				metrics.SessionVerifications.WithLabelValues("logged_out").Inc()
				unauthorized(c)
				return
			}
		}

		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUserIDKey, claims.SubjectID)
		c.Set(CtxRoleKey, claims.Role)
		c.Set(CtxTokenKey, token)

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	if len(header) < 8 || !strings.EqualFold(header[:7], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	response.Error(c, errors.ErrUnauthorized)
	c.Abort()
}
