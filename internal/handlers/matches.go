package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/teamforge/internal/models"
	"github.com/charlesng35/teamforge/internal/services"
	"github.com/charlesng35/teamforge/pkg/errors"
	"github.com/charlesng35/teamforge/pkg/response"
)

// MatchHandler records swipes and lists the caller's matches.
type MatchHandler struct {
	svc *services.MatchService
}

func NewMatchHandler(svc *services.MatchService) *MatchHandler {
	return &MatchHandler{svc: svc}
}

type swipeRequest struct {
	SwipeeID  string `json:"swipee_id" validate:"required,notblank"`
	Direction string `json:"direction" validate:"required"`
}

// POST /api/swipes
func (h *MatchHandler) Swipe(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	var body swipeRequest
	if !bindAndValidate(c, &body) {
		return
	}

	direction, ok := models.ParseSwipeDirection(body.Direction)
	if !ok {
		response.Error(c, errors.NewBadRequest("direction must be LIKE or PASS"))
		return
	}

	result, err := h.svc.RecordSwipe(requestContext(c), claims.SubjectID, body.SwipeeID, direction)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// GET /api/matches
func (h *MatchHandler) List(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	matches, err := h.svc.ListMatches(requestContext(c), claims.SubjectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, matches)
}
