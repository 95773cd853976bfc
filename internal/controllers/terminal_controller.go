package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet_monitor/internal/models"
	"fleet_monitor/internal/store"
)

// TerminalController exposes terminal CRUD. Deleting a terminal does not
// cascade: routes and buses keep their references.
type TerminalController struct {
	Store *store.Store
}

func NewTerminalController(s *store.Store) *TerminalController {
	return &TerminalController{Store: s}
}

func (tc *TerminalController) CreateTerminal(c *gin.Context) {
	var input struct {
		Name    string   `json:"name" binding:"required"`
		Address string   `json:"address" binding:"required"`
		Lat     *float64 `json:"lat" binding:"required"`
		Lng     *float64 `json:"lng" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid terminal input: " + err.Error()})
		return
	}

	terminal := tc.Store.AddTerminal(models.Terminal{
		Name:    input.Name,
		Address: input.Address,
		Lat:     *input.Lat,
		Lng:     *input.Lng,
	})
	c.JSON(http.StatusCreated, gin.H{"terminal": terminal})
}

func (tc *TerminalController) ListTerminals(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": tc.Store.Terminals()})
}

func (tc *TerminalController) GetTerminal(c *gin.Context) {
	terminal, ok := tc.Store.GetTerminal(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Terminal not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"terminal": terminal})
}

func (tc *TerminalController) UpdateTerminal(c *gin.Context) {
	id := c.Param("id")

	var input struct {
		Name    *string  `json:"name"`
		Address *string  `json:"address"`
		Lat     *float64 `json:"lat"`
		Lng     *float64 `json:"lng"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update: " + err.Error()})
		return
	}

	tc.Store.UpdateTerminal(id, store.TerminalPatch{
		Name:    input.Name,
		Address: input.Address,
		Lat:     input.Lat,
		Lng:     input.Lng,
	})

	terminal, ok := tc.Store.GetTerminal(id)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"terminal": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"terminal": terminal})
}

// DeleteTerminal removes the terminal. An unknown id is silently
// ignored, matching the store contract.
func (tc *TerminalController) DeleteTerminal(c *gin.Context) {
	tc.Store.DeleteTerminal(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "Terminal deleted"})
}
