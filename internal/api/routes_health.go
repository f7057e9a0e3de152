package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/teamforge/internal/handlers"
)

func registerHealthRoutes(r *gin.Engine, deps Dependencies) {
	if !deps.Config.Monitoring.Health.Enabled {
		return
	}
	health := handlers.Health(deps.DB)
	r.GET("/health", health)
	r.GET("/api/health", health)
}
