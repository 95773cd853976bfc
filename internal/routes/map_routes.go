package routes

import (
	"fleet_monitor/internal/controllers"
	"fleet_monitor/internal/middleware"

	"github.com/gin-gonic/gin"
)

func MapRoutes(r *gin.Engine, mc *controllers.MapController) {
	m := r.Group("/map")
	m.Use(middleware.RequireAuth())
	{
		m.GET("/view", mc.View)
	}
}
