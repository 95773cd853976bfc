// Package maps builds the marker set, center, and fitted bounds the
// dashboard map renders. Tile rendering itself stays client-side.
package maps

import (
	"github.com/twpayne/go-geom"

	"fleet_monitor/internal/models"
)

// Marker colors by occupancy band.
const (
	ColorGreen = "#10b981" // under 50%
	ColorAmber = "#f59e0b" // 50-79%
	ColorRed   = "#ef4444" // 80% and up
)

// Fallback center when no buses exist yet.
var defaultCenter = [2]float64{51.505, -0.09}

const defaultZoom = 12

// Marker places one bus on the map.
type Marker struct {
	BusID            string  `json:"bus_id"`
	Registration     string  `json:"registration"`
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	OccupancyPercent int     `json:"occupancy_percent"`
	Color            string  `json:"color"`
	IsActive         bool    `json:"is_active"`
}

// Bounds is a lat/lng box fitted around the marker set.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

// View is everything the map needs for one render.
type View struct {
	Markers []Marker   `json:"markers"`
	Center  [2]float64 `json:"center"` // lat, lng
	Zoom    int        `json:"zoom"`
	Bounds  *Bounds    `json:"bounds,omitempty"`
}

// MarkerColor maps an occupancy percentage to its band color.
func MarkerColor(pct int) string {
	switch {
	case pct >= 80:
		return ColorRed
	case pct >= 50:
		return ColorAmber
	default:
		return ColorGreen
	}
}

// BuildView computes markers, the mean center, and the fitted bounds for
// the given buses. An empty fleet gets the fallback center and no
// bounds.
func BuildView(buses []models.Bus) View {
	view := View{
		Markers: make([]Marker, 0, len(buses)),
		Center:  defaultCenter,
		Zoom:    defaultZoom,
	}
	if len(buses) == 0 {
		return view
	}

	bounds := geom.NewBounds(geom.XY)
	var sumLat, sumLng float64
	for _, b := range buses {
		pct := b.OccupancyPercent()
		view.Markers = append(view.Markers, Marker{
			BusID:            b.ID,
			Registration:     b.Registration,
			Lat:              b.Lat,
			Lng:              b.Lng,
			OccupancyPercent: pct,
			Color:            MarkerColor(pct),
			IsActive:         b.IsActive,
		})
		sumLat += b.Lat
		sumLng += b.Lng
		bounds.Extend(geom.NewPointFlat(geom.XY, []float64{b.Lng, b.Lat}))
	}

	n := float64(len(buses))
	view.Center = [2]float64{sumLat / n, sumLng / n}
	view.Bounds = &Bounds{
		MinLat: bounds.Min(1),
		MinLng: bounds.Min(0),
		MaxLat: bounds.Max(1),
		MaxLng: bounds.Max(0),
	}
	return view
}
