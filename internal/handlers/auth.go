package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	iauth "github.com/charlesng35/teamforge/internal/auth"
	"github.com/charlesng35/teamforge/internal/middleware"
	"github.com/charlesng35/teamforge/internal/models"
	"github.com/charlesng35/teamforge/internal/services"
	"github.com/charlesng35/teamforge/pkg/errors"
	"github.com/charlesng35/teamforge/pkg/logger"
	"github.com/charlesng35/teamforge/pkg/response"
)

// AuthHandler manages sign-up, login, logout and identity lookups.
type AuthHandler struct {
	accounts *services.AccountService
	codec    *iauth.SessionCodec
	logouts  *iauth.LogoutRegistry
}

// NewAuthHandler wires the handler. logouts may be nil, in which case logout is
// purely client side.
func NewAuthHandler(accounts *services.AccountService, codec *iauth.SessionCodec, logouts *iauth.LogoutRegistry) *AuthHandler {
	return &AuthHandler{accounts: accounts, codec: codec, logouts: logouts}
}

type signUpRequest struct {
	Name     string `json:"name" validate:"required,notblank,max=128"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=user organizer"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Account   *models.Account `json:"account"`
}

// POST /api/auth/signup
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req signUpRequest
	if !bindAndValidate(c, &req) {
		return
	}

	account, err := h.accounts.SignUp(requestContext(c), services.SignUpInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     models.AccountRole(strings.ToLower(req.Role)),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.respondWithSession(c, http.StatusCreated, account)
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	account, err := h.accounts.SignIn(requestContext(c), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.respondWithSession(c, http.StatusOK, account)
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	if h.logouts != nil {
		token := c.GetString(middleware.CtxTokenKey)
		if err := h.logouts.Revoke(requestContext(c), token, claims.ExpiresAt); err != nil {
			logger.WithModule("auth").Warn("failed to record logout", zap.String("user_id", claims.SubjectID), zap.Error(err))
			response.Error(c, errors.ErrInternalServer.WithInternal(err))
			return
		}
	}

	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	account, err := h.accounts.GetAccount(requestContext(c), claims.SubjectID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"account":            account,
		"session_expires_at": claims.ExpiresAt,
	})
}

func (h *AuthHandler) respondWithSession(c *gin.Context, status int, account *models.Account) {
	token, err := h.codec.Issue(account.ID, account.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	claims, ok := h.codec.Verify(token)
	if !ok {
		response.Error(c, errors.ErrInternalServer)
		return
	}

	response.Success(c, status, sessionResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt,
		Account:   account,
	})
}
