// Package geo models the platform geolocation collaborator: one-shot
// position fetches and continuous watches with an explicit release path.
package geo

import (
	"context"
	"time"
)

// Position is one geolocation fix.
type Position struct {
	Lat       float64
	Lng       float64
	Accuracy  float64 // meters
	Timestamp time.Time
}

// Options mirror the platform watch options the dashboard always used.
type Options struct {
	EnableHighAccuracy bool
	Timeout            time.Duration
	MaximumAge         time.Duration
}

// DefaultOptions: high accuracy, 5 second timeout, no cached positions.
func DefaultOptions() Options {
	return Options{EnableHighAccuracy: true, Timeout: 5 * time.Second}
}

// Watch is a live position subscription. Clear must be called when the
// consumer is torn down; a live platform watch otherwise keeps running
// with nobody reading it.
type Watch interface {
	// Positions delivers fixes until Clear is called, then closes.
	Positions() <-chan Position
	// Clear releases the watch. Safe to call more than once.
	Clear()
}

// Provider is the external geolocation collaborator.
type Provider interface {
	// GetCurrentPosition resolves one fix or fails within opts.Timeout.
	GetCurrentPosition(ctx context.Context, opts Options) (Position, error)
	// WatchPosition starts a continuous watch.
	WatchPosition(opts Options) (Watch, error)
}
