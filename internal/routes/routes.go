package routes

import (
	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"fleet_monitor/internal/controllers"
)

// Controllers bundles every handler group the router mounts.
type Controllers struct {
	Auth     *controllers.AuthController
	Bus      *controllers.BusController
	Terminal *controllers.TerminalController
	Route    *controllers.RouteController
	Map      *controllers.MapController
	Hub      *controllers.PositionHub
}

// SetupRouter mounts all route groups and returns the engine. The
// caller starts the listener.
func SetupRouter(c Controllers) *gin.Engine {
	r := gin.New()

	// Recovery middleware
	r.Use(gin.Recovery())

	// Request logging middleware
	r.Use(ginlog.SetLogger())

	AuthRoutes(r, c.Auth)
	BusRoutes(r, c.Bus)
	TerminalRoutes(r, c.Terminal)
	RouteRoutes(r, c.Route)
	MapRoutes(r, c.Map)
	WebSocketRoutes(r, c.Hub)

	return r
}
