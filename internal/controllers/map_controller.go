package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet_monitor/internal/maps"
	"fleet_monitor/internal/store"
)

// MapController serves the live map view: markers colored by occupancy,
// the mean center, and bounds fitted to the fleet.
type MapController struct {
	Store *store.Store
}

func NewMapController(s *store.Store) *MapController {
	return &MapController{Store: s}
}

func (mc *MapController) View(c *gin.Context) {
	c.JSON(http.StatusOK, maps.BuildView(mc.Store.Buses()))
}
