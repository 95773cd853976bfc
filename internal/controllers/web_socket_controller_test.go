package controllers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet_monitor/internal/middleware"
	"fleet_monitor/internal/models"
	"fleet_monitor/internal/persist"
	"fleet_monitor/internal/store"
)

func TestPositionHubStreamsBusMutations(t *testing.T) {
	gin.SetMode(gin.TestMode)

	slots, err := persist.NewFileSlotStore(t.TempDir())
	require.NoError(t, err)
	st := store.New(slots)

	hub := NewPositionHub(st)
	defer hub.Close()

	r := gin.New()
	r.GET("/ws/positions", hub.ServeWS)
	srv := httptest.NewServer(r)
	defer srv.Close()

	token, err := middleware.GenerateToken("u1", "ops@example.com", "admin")
	require.NoError(t, err)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/positions?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	bus := st.AddBus(models.Bus{Registration: "BUS-001", TotalSeats: 50, OccupiedSeats: 40, Lat: 51.5, Lng: -0.1, IsActive: true})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var update models.PositionUpdate
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, bus.ID, update.BusID)
	assert.Equal(t, 80, update.OccupancyPercent)
	assert.Equal(t, 51.5, update.Latitude)
}

func TestServeWSRejectsBadToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	slots, err := persist.NewFileSlotStore(t.TempDir())
	require.NoError(t, err)
	hub := NewPositionHub(store.New(slots))
	defer hub.Close()

	r := gin.New()
	r.GET("/ws/positions", hub.ServeWS)
	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/positions?token=garbage"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}
