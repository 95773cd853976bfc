package geo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedGetCurrentPosition(t *testing.T) {
	p := NewSimulatedProvider(51.505, -0.09)

	pos, err := p.GetCurrentPosition(context.Background(), DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, 51.505, pos.Lat, p.Variance)
	assert.InDelta(t, -0.09, pos.Lng, p.Variance)
	assert.False(t, pos.Timestamp.IsZero())
}

func TestSimulatedGetCurrentPositionCancelled(t *testing.T) {
	p := NewSimulatedProvider(51.505, -0.09)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.GetCurrentPosition(ctx, DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWatchDeliversAndClearCloses(t *testing.T) {
	p := NewSimulatedProvider(51.505, -0.09)
	p.Interval = 5 * time.Millisecond

	w, err := p.WatchPosition(DefaultOptions())
	require.NoError(t, err)

	select {
	case pos := <-w.Positions():
		assert.InDelta(t, 51.505, pos.Lat, p.Variance)
	case <-time.After(2 * time.Second):
		t.Fatal("watch delivered no position")
	}

	w.Clear()
	w.Clear() // safe to release twice

	// The stream closes once the watch is released.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-w.Positions():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("positions channel never closed after Clear")
		}
	}
}

type recordingSink struct {
	mu      sync.Mutex
	updates int
	lastID  string
}

func (r *recordingSink) UpdateBusLocation(id string, lat, lng float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	r.lastID = id
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updates
}

func TestLocationUpdaterFeedsSink(t *testing.T) {
	p := NewSimulatedProvider(51.505, -0.09)
	p.Interval = 5 * time.Millisecond
	sink := &recordingSink{}

	u, err := StartLocationUpdater(p, sink, "bus-1")
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return sink.count() > 0 },
		2*time.Second, 5*time.Millisecond)

	u.Stop()
	u.Stop() // idempotent

	sink.mu.Lock()
	assert.Equal(t, "bus-1", sink.lastID)
	sink.mu.Unlock()

	// No further updates arrive once the watch is released.
	settled := sink.count()
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, sink.count(), settled+1)
}
