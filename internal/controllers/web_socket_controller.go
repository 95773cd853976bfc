package controllers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"fleet_monitor/internal/middleware"
	"fleet_monitor/internal/models"
	"fleet_monitor/internal/persist"
	"fleet_monitor/internal/store"
)

// upgrader configures the WebSocket connection.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all for development (restrict in production!)
	},
}

// PositionHub streams bus position and occupancy changes to dashboard
// clients. It subscribes to the entity store and broadcasts a
// PositionUpdate for every bus mutation.
type PositionHub struct {
	store   *store.Store
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	cancel  func()
}

// NewPositionHub subscribes to the store and starts broadcasting.
func NewPositionHub(s *store.Store) *PositionHub {
	hub := &PositionHub{
		store:   s,
		clients: make(map[*websocket.Conn]bool),
	}
	events, cancel := s.Subscribe()
	hub.cancel = cancel
	go hub.run(events)
	return hub
}

func (h *PositionHub) run(events <-chan store.Event) {
	for ev := range events {
		if ev.Collection != persist.SlotBuses || ev.ID == "" {
			continue
		}
		bus, ok := h.store.GetBus(ev.ID)
		if !ok {
			continue
		}
		h.broadcast(models.PositionUpdate{
			BusID:            bus.ID,
			Registration:     bus.Registration,
			Latitude:         bus.Lat,
			Longitude:        bus.Lng,
			OccupiedSeats:    bus.OccupiedSeats,
			TotalSeats:       bus.TotalSeats,
			OccupancyPercent: bus.OccupancyPercent(),
			IsActive:         bus.IsActive,
			Timestamp:        time.Now(),
		})
	}
}

func (h *PositionHub) broadcast(update models.PositionUpdate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteJSON(update); err != nil {
			logrus.WithError(err).Warn("websocket write failed, dropping client")
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// Close releases the store subscription and every client connection.
func (h *PositionHub) Close() {
	h.cancel()
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
	}
	h.clients = make(map[*websocket.Conn]bool)
}

// ServeWS upgrades the connection and registers the client. Browsers
// cannot set an Authorization header on a websocket, so the token
// arrives as a query parameter.
func (h *PositionHub) ServeWS(c *gin.Context) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}
	token, err := middleware.ValidateToken(tokenStr)
	if err != nil || !token.Valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
	logrus.WithField("remote", conn.RemoteAddr().String()).Info("dashboard client connected")

	// Drain the connection until the client goes away; the dashboard
	// never sends anything meaningful upstream.
	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
			logrus.WithField("remote", conn.RemoteAddr().String()).Info("dashboard client disconnected")
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
