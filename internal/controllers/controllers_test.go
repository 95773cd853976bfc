package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet_monitor/internal/geo"
	"fleet_monitor/internal/models"
	"fleet_monitor/internal/persist"
	"fleet_monitor/internal/store"
)

func newTestRouter(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	slots, err := persist.NewFileSlotStore(t.TempDir())
	require.NoError(t, err)
	st := store.New(slots)

	bc := NewBusController(st)
	tc := NewTerminalController(st)
	rc := NewRouteController(st, geo.NewSimulatedProvider(51.505, -0.09))
	mc := NewMapController(st)

	r := gin.New()
	r.POST("/buses", bc.CreateBus)
	r.GET("/buses", bc.ListBuses)
	r.GET("/buses/search", bc.SearchBuses)
	r.GET("/buses/:id", bc.GetBus)
	r.PUT("/buses/:id", bc.UpdateBus)
	r.PUT("/buses/:id/seats", bc.UpdateSeats)
	r.PUT("/buses/:id/location", bc.UpdateLocation)
	r.POST("/terminals", tc.CreateTerminal)
	r.DELETE("/terminals/:id", tc.DeleteTerminal)
	r.POST("/routes", rc.CreateRoute)
	r.GET("/routes/:id", rc.GetRoute)
	r.POST("/routes/:id/stops", rc.AppendStop)
	r.GET("/routes/:id/geojson", rc.RouteGeoJSON)
	r.GET("/map/view", mc.View)
	return r, st
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateBusValidation(t *testing.T) {
	r, st := newTestRouter(t)

	// Missing registration.
	w := doJSON(t, r, http.MethodPost, "/buses", gin.H{"totalSeats": 40})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Non-positive seat count.
	w = doJSON(t, r, http.MethodPost, "/buses", gin.H{"registration": "BUS-001", "totalSeats": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Empty(t, st.Buses(), "failed validation must not mutate the store")
}

func TestCreateBusClampsOccupancyAtTheEdge(t *testing.T) {
	r, st := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/buses", gin.H{
		"registration":  "BUS-001",
		"totalSeats":    50,
		"occupiedSeats": 120,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	buses := st.Buses()
	require.Len(t, buses, 1)
	assert.Equal(t, 50, buses[0].OccupiedSeats)
	assert.True(t, buses[0].IsActive, "isActive defaults on")
}

func TestUpdateSeatsClampsAtTheEdge(t *testing.T) {
	r, st := newTestRouter(t)
	bus := st.AddBus(models.Bus{Registration: "BUS-001", TotalSeats: 40, IsActive: true})

	w := doJSON(t, r, http.MethodPut, "/buses/"+bus.ID+"/seats", gin.H{"occupiedSeats": 999})
	require.Equal(t, http.StatusOK, w.Code)
	got, _ := st.GetBus(bus.ID)
	assert.Equal(t, 40, got.OccupiedSeats)

	w = doJSON(t, r, http.MethodPut, "/buses/"+bus.ID+"/seats", gin.H{"occupiedSeats": -5})
	require.Equal(t, http.StatusOK, w.Code)
	got, _ = st.GetBus(bus.ID)
	assert.Equal(t, 0, got.OccupiedSeats)
}

func TestUpdateLocationEndpoint(t *testing.T) {
	r, st := newTestRouter(t)
	bus := st.AddBus(models.Bus{Registration: "BUS-001", TotalSeats: 40})

	w := doJSON(t, r, http.MethodPut, "/buses/"+bus.ID+"/location", gin.H{"lat": 52.2, "lng": 0.12})
	require.Equal(t, http.StatusOK, w.Code)

	got, _ := st.GetBus(bus.ID)
	assert.Equal(t, 52.2, got.Lat)
	assert.Equal(t, 0.12, got.Lng)

	// Coordinates are required.
	w = doJSON(t, r, http.MethodPut, "/buses/"+bus.ID+"/location", gin.H{"lat": 52.2})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchEndpoint(t *testing.T) {
	r, st := newTestRouter(t)
	st.AddBus(models.Bus{Registration: "BUS-001", TotalSeats: 40})
	target := st.AddBus(models.Bus{Registration: "BUS-002", TotalSeats: 40})
	st.AddBus(models.Bus{Registration: "BUS-003", TotalSeats: 40})

	w := doJSON(t, r, http.MethodGet, "/buses/search?q=bus-002", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []models.Bus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, target.ID, resp.Data[0].ID)

	w = doJSON(t, r, http.MethodGet, "/buses/search", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 3)
}

func TestDeleteUnknownTerminalIsSilent(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodDelete, "/terminals/does-not-exist", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAppendStopAssignsOrder(t *testing.T) {
	r, st := newTestRouter(t)
	route := st.AddRoute(models.Route{Name: "Loop", StartTerminalID: "a", EndTerminalID: "b"})

	w := doJSON(t, r, http.MethodPost, "/routes/"+route.ID+"/stops",
		gin.H{"name": "Stop A", "lat": 51.0, "lng": -0.1})
	require.Equal(t, http.StatusCreated, w.Code)

	// No coordinates: the handler falls back to the geolocation
	// collaborator's current position.
	w = doJSON(t, r, http.MethodPost, "/routes/"+route.ID+"/stops", gin.H{"name": "Stop B"})
	require.Equal(t, http.StatusCreated, w.Code)

	got, ok := st.GetRoute(route.ID)
	require.True(t, ok)
	require.Len(t, got.Stops, 2)
	assert.Equal(t, 1, got.Stops[0].Order)
	assert.Equal(t, 2, got.Stops[1].Order)
	assert.NotZero(t, got.Stops[1].Lat)

	w = doJSON(t, r, http.MethodPost, "/routes/unknown/stops",
		gin.H{"name": "Nowhere", "lat": 1.0, "lng": 2.0})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouteGeoJSONExport(t *testing.T) {
	r, st := newTestRouter(t)
	route := st.AddRoute(models.Route{Name: "Loop", Stops: []models.RouteStop{
		{Name: "A", Lat: 51.0, Lng: -0.1, Order: 1},
		{Name: "B", Lat: 51.2, Lng: -0.2, Order: 2},
	}})

	w := doJSON(t, r, http.MethodGet, "/routes/"+route.ID+"/geojson", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		RouteID  string `json:"route_id"`
		Geometry string `json:"geometry"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, route.ID, resp.RouteID)
	assert.Contains(t, resp.Geometry, `"LineString"`)
	assert.Contains(t, resp.Geometry, "-0.1")
}

func TestMapViewEndpoint(t *testing.T) {
	r, st := newTestRouter(t)
	st.AddBus(models.Bus{Registration: "BUS-001", TotalSeats: 50, OccupiedSeats: 45, Lat: 51, Lng: 0, IsActive: true})

	w := doJSON(t, r, http.MethodGet, "/map/view", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var view struct {
		Markers []struct {
			Color            string `json:"color"`
			OccupancyPercent int    `json:"occupancy_percent"`
		} `json:"markers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.Len(t, view.Markers, 1)
	assert.Equal(t, 90, view.Markers[0].OccupancyPercent)
	assert.Equal(t, "#ef4444", view.Markers[0].Color)
}
