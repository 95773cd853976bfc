package routes

import (
	"fleet_monitor/internal/controllers"
	"fleet_monitor/internal/middleware"

	"github.com/gin-gonic/gin"
)

func TerminalRoutes(r *gin.Engine, tc *controllers.TerminalController) {
	terminal := r.Group("/terminals")
	terminal.Use(middleware.RequireAuth())
	{
		terminal.GET("", tc.ListTerminals)
		terminal.POST("", tc.CreateTerminal)
		terminal.GET("/:id", tc.GetTerminal)
		terminal.PUT("/:id", tc.UpdateTerminal)
		terminal.DELETE("/:id", tc.DeleteTerminal)
	}
}
