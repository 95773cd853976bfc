package models

import "time"

// PositionUpdate is the payload broadcast to dashboard websocket clients
// whenever a bus moves or its occupancy changes.
type PositionUpdate struct {
	BusID            string    `json:"bus_id"`
	Registration     string    `json:"registration"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	OccupiedSeats    int       `json:"occupied_seats"`
	TotalSeats       int       `json:"total_seats"`
	OccupancyPercent int       `json:"occupancy_percent"`
	IsActive         bool      `json:"is_active"`
	Timestamp        time.Time `json:"timestamp"`
}
