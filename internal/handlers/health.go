package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/charlesng35/teamforge/pkg/response"
)

// Health returns a readiness payload; the database must answer a ping.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{"status": "ok", "database": "ok"}
		if db == nil {
			response.Success(c, http.StatusOK, status)
			return
		}

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(requestContext(c))
		}
		if err != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			response.Success(c, http.StatusServiceUnavailable, status)
			return
		}
		response.Success(c, http.StatusOK, status)
	}
}
