package routes

import (
	"fleet_monitor/internal/controllers"

	"github.com/gin-gonic/gin"
)

// WebSocketRoutes mounts the live position stream. The hub checks the
// token itself because websocket clients pass it as a query parameter.
func WebSocketRoutes(r *gin.Engine, hub *controllers.PositionHub) {
	ws := r.Group("/ws")
	{
		ws.GET("/positions", hub.ServeWS)
	}
}
