package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	iauth "github.com/charlesng35/teamforge/internal/auth"
	"github.com/charlesng35/teamforge/internal/middleware"
	"github.com/charlesng35/teamforge/internal/services"
	"github.com/charlesng35/teamforge/pkg/logger"
	"github.com/charlesng35/teamforge/pkg/response"
)

// AccountHandler serves account teardown for administrators and for the account holder.
type AccountHandler struct {
	accounts *services.AccountService
	logouts  *iauth.LogoutRegistry
}

func NewAccountHandler(accounts *services.AccountService, logouts *iauth.LogoutRegistry) *AccountHandler {
	return &AccountHandler{accounts: accounts, logouts: logouts}
}

// DELETE /api/admin/accounts/:id
func (h *AccountHandler) Delete(c *gin.Context) {
	deleted, err := h.accounts.SoftDeleteAccount(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, deleted)
}

// DELETE /api/auth/me
func (h *AccountHandler) DeleteSelf(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	deleted, err := h.accounts.SoftDeleteAccount(requestContext(c), claims.SubjectID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.logouts != nil {
		token := c.GetString(middleware.CtxTokenKey)
		if err := h.logouts.Revoke(requestContext(c), token, claims.ExpiresAt); err != nil {
			// The account is already gone; its token fails the account lookups regardless.
			logger.WithModule("auth").Warn("failed to record logout after deletion", zap.String("user_id", claims.SubjectID), zap.Error(err))
		}
	}

	response.Success(c, http.StatusOK, deleted)
}
