package routes

import (
	"fleet_monitor/internal/controllers"
	"fleet_monitor/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RouteRoutes(r *gin.Engine, rc *controllers.RouteController) {
	route := r.Group("/routes")
	route.Use(middleware.RequireAuth())
	{
		route.GET("", rc.ListRoutes)
		route.POST("", rc.CreateRoute)
		route.GET("/:id", rc.GetRoute)
		route.PUT("/:id", rc.UpdateRoute)
		route.DELETE("/:id", rc.DeleteRoute)
		route.POST("/:id/stops", rc.AppendStop)
		route.GET("/:id/geojson", rc.RouteGeoJSON)
	}
}
