// internal/models/bus.go
package models

// Bus is a tracked fleet unit. IDs are assigned by the store at creation
// and never change; TerminalID and RouteID are soft references that are
// not validated against the other collections.
type Bus struct {
	ID            string  `json:"id"`
	Registration  string  `json:"registration"`
	TotalSeats    int     `json:"totalSeats"`
	OccupiedSeats int     `json:"occupiedSeats"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	TerminalID    *string `json:"terminalId"`
	RouteID       *string `json:"routeId"`
	IsActive      bool    `json:"isActive"`
}

// OccupancyPercent returns the rounded occupancy percentage, 0 when the
// bus reports no seats.
func (b Bus) OccupancyPercent() int {
	if b.TotalSeats <= 0 {
		return 0
	}
	return int(float64(b.OccupiedSeats)/float64(b.TotalSeats)*100 + 0.5)
}
