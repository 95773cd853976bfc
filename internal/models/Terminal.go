// internal/models/terminal.go
package models

// Terminal is a named, located endpoint a route can start or end at.
type Terminal struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}
