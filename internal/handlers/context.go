package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/teamforge/internal/auth"
	"github.com/charlesng35/teamforge/internal/middleware"
	"github.com/charlesng35/teamforge/pkg/errors"
	"github.com/charlesng35/teamforge/pkg/response"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// currentClaims returns the verified session claims placed by middleware.Auth,
// writing a 401 when they are absent.
func currentClaims(c *gin.Context) (*iauth.SessionClaims, bool) {
	value, ok := c.Get(middleware.CtxClaimsKey)
	claims, _ := value.(*iauth.SessionClaims)
	if !ok || claims == nil || claims.SubjectID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return nil, false
	}
	return claims, true
}
