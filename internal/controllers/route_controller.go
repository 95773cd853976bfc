package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"

	geoloc "fleet_monitor/internal/geo"
	"fleet_monitor/internal/models"
	"fleet_monitor/internal/store"
)

// RouteController exposes route CRUD plus stop appends. Stops can only
// be appended; there is no reorder or remove.
type RouteController struct {
	Store *store.Store
	Geo   geoloc.Provider
}

func NewRouteController(s *store.Store, g geoloc.Provider) *RouteController {
	return &RouteController{Store: s, Geo: g}
}

type stopInput struct {
	Name string  `json:"name" binding:"required"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// CreateRoute registers a route between two terminals. The terminal ids
// are stored as given; nothing checks they exist.
func (rc *RouteController) CreateRoute(c *gin.Context) {
	var input struct {
		Name            string      `json:"name" binding:"required"`
		StartTerminalID string      `json:"startTerminalId" binding:"required"`
		EndTerminalID   string      `json:"endTerminalId" binding:"required"`
		Stops           []stopInput `json:"stops"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		logrus.WithError(err).Warn("CreateRoute: invalid input payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	stops := make([]models.RouteStop, len(input.Stops))
	for i, s := range input.Stops {
		stops[i] = models.RouteStop{Name: s.Name, Lat: s.Lat, Lng: s.Lng, Order: i + 1}
	}

	route := rc.Store.AddRoute(models.Route{
		Name:            input.Name,
		StartTerminalID: input.StartTerminalID,
		EndTerminalID:   input.EndTerminalID,
		Stops:           stops,
	})
	c.JSON(http.StatusCreated, gin.H{"route": route})
}

func (rc *RouteController) ListRoutes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": rc.Store.Routes()})
}

func (rc *RouteController) GetRoute(c *gin.Context) {
	route, ok := rc.Store.GetRoute(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": route})
}

func (rc *RouteController) UpdateRoute(c *gin.Context) {
	id := c.Param("id")

	var input struct {
		Name            *string      `json:"name"`
		StartTerminalID *string      `json:"startTerminalId"`
		EndTerminalID   *string      `json:"endTerminalId"`
		Stops           *[]stopInput `json:"stops"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update: " + err.Error()})
		return
	}

	patch := store.RoutePatch{
		Name:            input.Name,
		StartTerminalID: input.StartTerminalID,
		EndTerminalID:   input.EndTerminalID,
	}
	if input.Stops != nil {
		stops := make([]models.RouteStop, len(*input.Stops))
		for i, s := range *input.Stops {
			stops[i] = models.RouteStop{Name: s.Name, Lat: s.Lat, Lng: s.Lng, Order: i + 1}
		}
		patch.Stops = &stops
	}
	rc.Store.UpdateRoute(id, patch)

	route, ok := rc.Store.GetRoute(id)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"route": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": route})
}

// DeleteRoute removes the route; unknown ids are silently ignored.
// Buses assigned to it keep their dangling routeId.
func (rc *RouteController) DeleteRoute(c *gin.Context) {
	rc.Store.DeleteRoute(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "Route deleted"})
}

// AppendStop adds a stop to the end of the route's sequence. When the
// payload carries no coordinates the caller's current position is
// fetched from the geolocation collaborator, the way the dashboard's
// "add stop here" button worked.
func (rc *RouteController) AppendStop(c *gin.Context) {
	id := c.Param("id")

	var input struct {
		Name string   `json:"name" binding:"required"`
		Lat  *float64 `json:"lat"`
		Lng  *float64 `json:"lng"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stop input: " + err.Error()})
		return
	}

	stop := models.RouteStop{Name: input.Name}
	if input.Lat != nil && input.Lng != nil {
		stop.Lat, stop.Lng = *input.Lat, *input.Lng
	} else {
		pos, err := rc.Geo.GetCurrentPosition(c.Request.Context(), geoloc.DefaultOptions())
		if err != nil {
			logrus.WithError(err).Warn("AppendStop: geolocation unavailable")
			c.JSON(http.StatusBadGateway, gin.H{"error": "Could not determine current position: " + err.Error()})
			return
		}
		stop.Lat, stop.Lng = pos.Lat, pos.Lng
	}

	stored, ok := rc.Store.AppendStop(id, stop)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"stop": stored})
}

// RouteGeoJSON exports the stop sequence as a GeoJSON LineString for
// map overlays.
func (rc *RouteController) RouteGeoJSON(c *gin.Context) {
	route, ok := rc.Store.GetRoute(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		return
	}
	if len(route.Stops) == 0 {
		c.JSON(http.StatusOK, gin.H{"route_id": route.ID, "geometry": nil})
		return
	}

	coords := make([]geom.Coord, len(route.Stops))
	for i, s := range route.Stops {
		coords[i] = geom.Coord{s.Lng, s.Lat}
	}
	line := geom.NewLineString(geom.XY)
	if _, err := line.SetCoords(coords); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid geometry: " + err.Error()})
		return
	}
	encoded, err := gjson.Marshal(line)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "GeoJSON encoding failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"route_id": route.ID, "geometry": string(encoded)})
}
