package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/teamforge/internal/handlers"
)

func registerMatchRoutes(api *gin.RouterGroup, deps Dependencies) {
	matchHandler := handlers.NewMatchHandler(deps.Matches)

	api.POST("/swipes", matchHandler.Swipe)
	api.GET("/matches", matchHandler.List)
}
