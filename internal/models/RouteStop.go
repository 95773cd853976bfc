// internal/models/routestop.go
package models

// RouteStop is one waypoint on a route. Order is 1-based and assigned at
// append time; the current surface never reorders or removes stops.
type RouteStop struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Name  string  `json:"name"`
	Order int     `json:"order"`
}
