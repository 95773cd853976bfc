// internal/models/route.go
package models

// Route represents a service path between two terminals.
// Terminal references are soft: deleting a terminal does not cascade
// here, so a route may carry a dangling startTerminalId/endTerminalId.
type Route struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	StartTerminalID string      `json:"startTerminalId"`
	EndTerminalID   string      `json:"endTerminalId"`
	Stops           []RouteStop `json:"stops"`
}
