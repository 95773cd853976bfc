package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet_monitor/internal/models"
	"fleet_monitor/internal/store"
)

// BusController exposes the bus collection. Buses are never deleted;
// the surface deliberately has no delete handler.
type BusController struct {
	Store *store.Store
}

func NewBusController(s *store.Store) *BusController {
	return &BusController{Store: s}
}

// CreateBus registers a new bus. Occupied seats are clamped to
// [0, totalSeats] here; the store writes whatever it is handed.
func (bc *BusController) CreateBus(c *gin.Context) {
	var input struct {
		Registration  string  `json:"registration" binding:"required"`
		TotalSeats    int     `json:"totalSeats" binding:"required,gt=0"`
		OccupiedSeats int     `json:"occupiedSeats"`
		Lat           float64 `json:"lat"`
		Lng           float64 `json:"lng"`
		TerminalID    *string `json:"terminalId"`
		RouteID       *string `json:"routeId"`
		IsActive      *bool   `json:"isActive"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bus input: " + err.Error()})
		return
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	bus := bc.Store.AddBus(models.Bus{
		Registration:  input.Registration,
		TotalSeats:    input.TotalSeats,
		OccupiedSeats: clampSeats(input.OccupiedSeats, input.TotalSeats),
		Lat:           input.Lat,
		Lng:           input.Lng,
		TerminalID:    input.TerminalID,
		RouteID:       input.RouteID,
		IsActive:      active,
	})

	c.JSON(http.StatusCreated, gin.H{"bus": bus})
}

func (bc *BusController) ListBuses(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": bc.Store.Buses()})
}

func (bc *BusController) GetBus(c *gin.Context) {
	bus, ok := bc.Store.GetBus(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bus not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bus": bus})
}

// UpdateBus merges the provided fields. A missing id is not an error:
// the store ignores it and the response simply carries no bus.
func (bc *BusController) UpdateBus(c *gin.Context) {
	id := c.Param("id")

	var input struct {
		Registration  *string  `json:"registration"`
		TotalSeats    *int     `json:"totalSeats"`
		OccupiedSeats *int     `json:"occupiedSeats"`
		Lat           *float64 `json:"lat"`
		Lng           *float64 `json:"lng"`
		TerminalID    *string  `json:"terminalId"`
		RouteID       *string  `json:"routeId"`
		IsActive      *bool    `json:"isActive"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update: " + err.Error()})
		return
	}
	if input.TotalSeats != nil && *input.TotalSeats <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "totalSeats must be positive"})
		return
	}

	if input.OccupiedSeats != nil {
		total := 0
		if input.TotalSeats != nil {
			total = *input.TotalSeats
		} else if existing, ok := bc.Store.GetBus(id); ok {
			total = existing.TotalSeats
		}
		clamped := clampSeats(*input.OccupiedSeats, total)
		input.OccupiedSeats = &clamped
	}

	bc.Store.UpdateBus(id, store.BusPatch{
		Registration:  input.Registration,
		TotalSeats:    input.TotalSeats,
		OccupiedSeats: input.OccupiedSeats,
		Lat:           input.Lat,
		Lng:           input.Lng,
		TerminalID:    input.TerminalID,
		RouteID:       input.RouteID,
		IsActive:      input.IsActive,
	})

	bus, ok := bc.Store.GetBus(id)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"bus": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bus": bus})
}

// UpdateSeats is the narrow occupancy mutator.
func (bc *BusController) UpdateSeats(c *gin.Context) {
	id := c.Param("id")

	var input struct {
		OccupiedSeats *int `json:"occupiedSeats" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid seat update: " + err.Error()})
		return
	}

	seats := *input.OccupiedSeats
	if bus, ok := bc.Store.GetBus(id); ok {
		seats = clampSeats(seats, bus.TotalSeats)
	}
	bc.Store.UpdateOccupiedSeats(id, seats)

	bus, _ := bc.Store.GetBus(id)
	c.JSON(http.StatusOK, gin.H{"bus": bus})
}

// UpdateLocation is the narrow position mutator.
func (bc *BusController) UpdateLocation(c *gin.Context) {
	id := c.Param("id")

	var input struct {
		Lat *float64 `json:"lat" binding:"required"`
		Lng *float64 `json:"lng" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid location update: " + err.Error()})
		return
	}

	bc.Store.UpdateBusLocation(id, *input.Lat, *input.Lng)
	bus, _ := bc.Store.GetBus(id)
	c.JSON(http.StatusOK, gin.H{"bus": bus})
}

// SearchBuses filters by registration substring; a blank query returns
// the whole fleet.
func (bc *BusController) SearchBuses(c *gin.Context) {
	results := bc.Store.SearchBuses(c.Query("q"))
	if results == nil {
		results = []models.Bus{}
	}
	c.JSON(http.StatusOK, gin.H{"data": results})
}

func clampSeats(seats, total int) int {
	if seats < 0 {
		return 0
	}
	if total > 0 && seats > total {
		return total
	}
	return seats
}
