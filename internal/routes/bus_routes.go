package routes

import (
	"fleet_monitor/internal/controllers"
	"fleet_monitor/internal/middleware"

	"github.com/gin-gonic/gin"
)

// BusRoutes mounts the bus surface. There is deliberately no DELETE:
// buses are never removed from the fleet.
func BusRoutes(r *gin.Engine, bc *controllers.BusController) {
	bus := r.Group("/buses")
	bus.Use(middleware.RequireAuth())
	{
		bus.GET("", bc.ListBuses)
		bus.POST("", bc.CreateBus)
		bus.GET("/search", bc.SearchBuses)
		bus.GET("/:id", bc.GetBus)
		bus.PUT("/:id", bc.UpdateBus)
		bus.PUT("/:id/seats", bc.UpdateSeats)
		bus.PUT("/:id/location", bc.UpdateLocation)
	}
}
