package geo

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// SimulatedProvider emits fixes jittered around a base position. It
// stands in for real device geolocation in the permissive variant and
// in tests.
type SimulatedProvider struct {
	Base     Position
	Variance float64       // degrees of jitter around the base
	Interval time.Duration // delay between watch fixes
}

// NewSimulatedProvider jitters around the given center with defaults
// matching a vehicle moving inside one city.
func NewSimulatedProvider(lat, lng float64) *SimulatedProvider {
	return &SimulatedProvider{
		Base:     Position{Lat: lat, Lng: lng, Accuracy: 10},
		Variance: 0.05,
		Interval: time.Second,
	}
}

func (p *SimulatedProvider) fix() Position {
	return Position{
		Lat:       p.Base.Lat + (rand.Float64()-0.5)*p.Variance,
		Lng:       p.Base.Lng + (rand.Float64()-0.5)*p.Variance,
		Accuracy:  p.Base.Accuracy,
		Timestamp: time.Now(),
	}
}

func (p *SimulatedProvider) GetCurrentPosition(ctx context.Context, opts Options) (Position, error) {
	select {
	case <-ctx.Done():
		return Position{}, ctx.Err()
	default:
		return p.fix(), nil
	}
}

func (p *SimulatedProvider) WatchPosition(opts Options) (Watch, error) {
	w := &simulatedWatch{
		positions: make(chan Position, 8),
		done:      make(chan struct{}),
	}
	interval := p.Interval
	if interval <= 0 {
		interval = time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		defer close(w.positions)
		for {
			select {
			case <-w.done:
				return
			case <-ticker.C:
				select {
				case w.positions <- p.fix():
				default:
				}
			}
		}
	}()
	return w, nil
}

type simulatedWatch struct {
	positions chan Position
	done      chan struct{}
	once      sync.Once
}

func (w *simulatedWatch) Positions() <-chan Position { return w.positions }

func (w *simulatedWatch) Clear() {
	w.once.Do(func() { close(w.done) })
}
