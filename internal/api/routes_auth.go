package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/teamforge/internal/handlers"
)

func registerAuthRoutes(api *gin.RouterGroup, deps Dependencies, requireAuth, limit gin.HandlerFunc) {
	authHandler := handlers.NewAuthHandler(deps.Accounts, deps.Codec, deps.Logouts)
	accountHandler := handlers.NewAccountHandler(deps.Accounts, deps.Logouts)

	auth := api.Group("/auth")
	{
		auth.POST("/signup", limit, authHandler.SignUp)
		auth.POST("/login", limit, authHandler.Login)
		auth.POST("/logout", requireAuth, authHandler.Logout)
		auth.GET("/me", requireAuth, authHandler.Me)
		auth.DELETE("/me", requireAuth, accountHandler.DeleteSelf)
	}
}
