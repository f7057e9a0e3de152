package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/teamforge/internal/handlers"
	"github.com/charlesng35/teamforge/internal/middleware"
	"github.com/charlesng35/teamforge/internal/models"
)

func registerAdminRoutes(api *gin.RouterGroup, deps Dependencies) {
	accountHandler := handlers.NewAccountHandler(deps.Accounts, deps.Logouts)

	admin := api.Group("/admin")
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	{
		admin.DELETE("/accounts/:id", accountHandler.Delete)
	}
}
