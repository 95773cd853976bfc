package geo

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// LocationSink receives position overwrites for one tracked vehicle.
// The entity store satisfies this.
type LocationSink interface {
	UpdateBusLocation(id string, lat, lng float64)
}

// LocationUpdater owns one position watch for one bus and feeds every
// fix into the sink. Stop releases the watch; leaking it would leave a
// live platform watch running with no consumer.
type LocationUpdater struct {
	busID string
	sink  LocationSink
	watch Watch
	done  chan struct{}
	once  sync.Once
}

// StartLocationUpdater acquires a watch and begins forwarding fixes.
func StartLocationUpdater(provider Provider, sink LocationSink, busID string) (*LocationUpdater, error) {
	watch, err := provider.WatchPosition(DefaultOptions())
	if err != nil {
		return nil, err
	}
	u := &LocationUpdater{
		busID: busID,
		sink:  sink,
		watch: watch,
		done:  make(chan struct{}),
	}
	go u.run()
	logrus.WithField("bus_id", busID).Info("location watch started")
	return u, nil
}

func (u *LocationUpdater) run() {
	for {
		select {
		case <-u.done:
			return
		case pos, ok := <-u.watch.Positions():
			if !ok {
				return
			}
			u.sink.UpdateBusLocation(u.busID, pos.Lat, pos.Lng)
		}
	}
}

// Stop releases the watch. Safe to call more than once.
func (u *LocationUpdater) Stop() {
	u.once.Do(func() {
		close(u.done)
		u.watch.Clear()
		logrus.WithField("bus_id", u.busID).Info("location watch released")
	})
}
