package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/teamforge/internal/handlers"
)

func registerTeamRoutes(api *gin.RouterGroup, deps Dependencies) {
	teamHandler := handlers.NewTeamHandler(deps.Membership)

	teams := api.Group("/teams")
	{
		teams.POST("", teamHandler.Create)
		teams.GET("/:id", teamHandler.Get)
		teams.GET("/:id/members", teamHandler.Members)
		teams.POST("/:id/invitations", teamHandler.Invite)
		teams.POST("/:id/join-requests", teamHandler.RequestToJoin)
	}

	api.POST("/invitations/:id/respond", teamHandler.RespondToInvitation)
	api.POST("/join-requests/:id/respond", teamHandler.RespondToJoinRequest)
}
