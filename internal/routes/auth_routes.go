package routes

import (
	"fleet_monitor/internal/controllers"
	"fleet_monitor/internal/middleware"

	"github.com/gin-gonic/gin"
)

func AuthRoutes(r *gin.Engine, ac *controllers.AuthController) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", ac.Login)
		auth.POST("/logout", middleware.RequireAuth(), ac.Logout)
		auth.GET("/session", ac.Session)
	}
}
