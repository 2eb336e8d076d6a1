package routes

import (
	"agendai/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the gateway webhook and the health endpoint.
// Authentication, signature verification and rate limiting live at the
// gateway in front of this service.
func RegisterRoutes(r *gin.Engine, wh *handlers.WebhookHandler) {
	api := r.Group("/api")
	{
		api.POST("/webhook/message", wh.HandleMessage)
		api.GET("/health", wh.HealthHandler)
	}
}
