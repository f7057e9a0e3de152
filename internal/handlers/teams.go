package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/teamforge/internal/services"
	"github.com/charlesng35/teamforge/pkg/response"
)

// TeamHandler exposes team creation and the membership workflows.
type TeamHandler struct {
	svc *services.MembershipService
}

func NewTeamHandler(svc *services.MembershipService) *TeamHandler {
	return &TeamHandler{svc: svc}
}

type createTeamRequest struct {
	Name       string `json:"name" validate:"required,notblank,min=2,max=128"`
	MaxMembers int    `json:"max_members" validate:"required,min=1,max=1000"`
}

type messageRequest struct {
	Message string `json:"message" validate:"max=500"`
}

type inviteRequest struct {
	InviteeID string `json:"invitee_id" validate:"required,notblank"`
	Message   string `json:"message" validate:"max=500"`
}

type invitationResponseRequest struct {
	Action string `json:"action" validate:"required,oneof=accept decline"`
}

type joinRequestResponseRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
}

// POST /api/teams
func (h *TeamHandler) Create(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	var body createTeamRequest
	if !bindAndValidate(c, &body) {
		return
	}

	team, err := h.svc.CreateTeam(requestContext(c), services.CreateTeamInput{
		OwnerID:    claims.SubjectID,
		Name:       body.Name,
		MaxMembers: body.MaxMembers,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, team)
}

// GET /api/teams/:id
func (h *TeamHandler) Get(c *gin.Context) {
	team, err := h.svc.GetTeam(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, team)
}

// GET /api/teams/:id/members
func (h *TeamHandler) Members(c *gin.Context) {
	members, err := h.svc.ListMembers(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, members)
}

// POST /api/teams/:id/invitations
func (h *TeamHandler) Invite(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	var body inviteRequest
	if !bindAndValidate(c, &body) {
		return
	}

	invitation, err := h.svc.InviteToTeam(requestContext(c), c.Param("id"), claims.SubjectID, body.InviteeID, body.Message)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, invitation)
}

// POST /api/invitations/:id/respond
func (h *TeamHandler) RespondToInvitation(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	var body invitationResponseRequest
	if !bindAndValidate(c, &body) {
		return
	}

	invitation, err := h.svc.RespondToInvitation(requestContext(c), c.Param("id"), claims.SubjectID, body.Action == "accept")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, invitation)
}

// POST /api/teams/:id/join-requests
func (h *TeamHandler) RequestToJoin(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	var body messageRequest
	if !bindAndValidate(c, &body) {
		return
	}

	request, err := h.svc.RequestToJoin(requestContext(c), c.Param("id"), claims.SubjectID, body.Message)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, request)
}

// POST /api/join-requests/:id/respond
func (h *TeamHandler) RespondToJoinRequest(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	var body joinRequestResponseRequest
	if !bindAndValidate(c, &body) {
		return
	}

	request, err := h.svc.RespondToJoinRequest(requestContext(c), c.Param("id"), claims.SubjectID, body.Action == "approve")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, request)
}
