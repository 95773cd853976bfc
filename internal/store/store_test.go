package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet_monitor/internal/models"
	"fleet_monitor/internal/persist"
)

func newTestStore(t *testing.T) (*Store, persist.SlotStore) {
	t.Helper()
	slots, err := persist.NewFileSlotStore(t.TempDir())
	require.NoError(t, err)
	return New(slots), slots
}

func sampleBus(reg string) models.Bus {
	return models.Bus{
		Registration:  reg,
		TotalSeats:    48,
		OccupiedSeats: 10,
		Lat:           51.505,
		Lng:           -0.09,
		IsActive:      true,
	}
}

func TestAddBusAssignsUniqueIDs(t *testing.T) {
	s, _ := newTestStore(t)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		before := len(s.Buses())
		b := s.AddBus(sampleBus("BUS-X"))
		require.NotEmpty(t, b.ID)
		assert.False(t, seen[b.ID], "id %q issued twice", b.ID)
		seen[b.ID] = true
		assert.Equal(t, before+1, len(s.Buses()))
	}
}

func TestUpdateOccupiedSeatsPassesThrough(t *testing.T) {
	s, _ := newTestStore(t)
	b := s.AddBus(sampleBus("BUS-001"))

	// In range.
	s.UpdateOccupiedSeats(b.ID, 20)
	got, ok := s.GetBus(b.ID)
	require.True(t, ok)
	assert.Equal(t, 20, got.OccupiedSeats)

	// Out of range: the store does not clamp against TotalSeats.
	s.UpdateOccupiedSeats(b.ID, 500)
	got, _ = s.GetBus(b.ID)
	assert.Equal(t, 500, got.OccupiedSeats)

	s.UpdateOccupiedSeats(b.ID, -3)
	got, _ = s.GetBus(b.ID)
	assert.Equal(t, -3, got.OccupiedSeats)
}

func TestSearchBuses(t *testing.T) {
	s, _ := newTestStore(t)
	b1 := s.AddBus(sampleBus("BUS-001"))
	b2 := s.AddBus(sampleBus("BUS-002"))
	b3 := s.AddBus(sampleBus("BUS-003"))

	all := s.SearchBuses("")
	require.Len(t, all, 3)
	assert.Equal(t, []string{b1.ID, b2.ID, b3.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	blank := s.SearchBuses("   ")
	require.Len(t, blank, 3)
	assert.Equal(t, all, blank)

	hits := s.SearchBuses("bus-002")
	require.Len(t, hits, 1)
	assert.Equal(t, b2.ID, hits[0].ID)

	assert.Empty(t, s.SearchBuses("no-such-registration"))
}

func TestUpdateBusPartialMerge(t *testing.T) {
	s, _ := newTestStore(t)
	term := s.AddTerminal(models.Terminal{Name: "Victoria", Address: "London", Lat: 51.49, Lng: -0.14})
	b := s.AddBus(sampleBus("BUS-001"))

	reg := "BUS-001A"
	s.UpdateBus(b.ID, BusPatch{Registration: &reg, TerminalID: &term.ID})

	got, ok := s.GetBus(b.ID)
	require.True(t, ok)
	assert.Equal(t, "BUS-001A", got.Registration)
	require.NotNil(t, got.TerminalID)
	assert.Equal(t, term.ID, *got.TerminalID)
	// Untouched fields survive the merge.
	assert.Equal(t, 48, got.TotalSeats)
	assert.True(t, got.IsActive)

	// Empty string clears the assignment.
	empty := ""
	s.UpdateBus(b.ID, BusPatch{TerminalID: &empty})
	got, _ = s.GetBus(b.ID)
	assert.Nil(t, got.TerminalID)
}

func TestUpdateUnknownIDIsSilentNoOp(t *testing.T) {
	s, _ := newTestStore(t)
	s.AddBus(sampleBus("BUS-001"))
	s.AddTerminal(models.Terminal{Name: "Victoria"})

	busesBefore := s.Buses()
	terminalsBefore := s.Terminals()

	reg := "GHOST"
	s.UpdateBus("does-not-exist", BusPatch{Registration: &reg})
	s.UpdateOccupiedSeats("does-not-exist", 99)
	s.UpdateBusLocation("does-not-exist", 1, 2)
	name := "Ghost"
	s.UpdateTerminal("does-not-exist", TerminalPatch{Name: &name})
	s.DeleteTerminal("does-not-exist")
	s.DeleteRoute("does-not-exist")

	assert.Equal(t, busesBefore, s.Buses())
	assert.Equal(t, terminalsBefore, s.Terminals())
}

func TestDeleteTerminalDoesNotCascade(t *testing.T) {
	s, _ := newTestStore(t)
	start := s.AddTerminal(models.Terminal{Name: "Victoria", Address: "London", Lat: 51.49, Lng: -0.14})
	end := s.AddTerminal(models.Terminal{Name: "Stratford", Address: "London", Lat: 51.54, Lng: -0.0})
	route := s.AddRoute(models.Route{Name: "V-S", StartTerminalID: start.ID, EndTerminalID: end.ID})

	s.DeleteTerminal(start.ID)

	got, ok := s.GetRoute(route.ID)
	require.True(t, ok)
	assert.Equal(t, start.ID, got.StartTerminalID, "route keeps its dangling reference")

	_, found := s.GetTerminal(start.ID)
	assert.False(t, found)
	assert.Len(t, s.Terminals(), 1)
}

func TestAppendStopOrdering(t *testing.T) {
	s, _ := newTestStore(t)
	route := s.AddRoute(models.Route{Name: "Loop", StartTerminalID: "a", EndTerminalID: "b"})

	first, ok := s.AppendStop(route.ID, models.RouteStop{Name: "Stop A", Lat: 1, Lng: 2})
	require.True(t, ok)
	assert.Equal(t, 1, first.Order)

	second, ok := s.AppendStop(route.ID, models.RouteStop{Name: "Stop B", Lat: 3, Lng: 4})
	require.True(t, ok)
	assert.Equal(t, 2, second.Order)

	third, ok := s.AppendStop(route.ID, models.RouteStop{Name: "Stop C", Lat: 5, Lng: 6})
	require.True(t, ok)
	assert.Equal(t, 3, third.Order)

	got, _ := s.GetRoute(route.ID)
	require.Len(t, got.Stops, 3)
	for i, stop := range got.Stops {
		assert.Equal(t, i+1, stop.Order, "prior stops keep their order values")
	}

	_, ok = s.AppendStop("does-not-exist", models.RouteStop{Name: "Nowhere"})
	assert.False(t, ok)
}

func TestPersistenceRoundTrip(t *testing.T) {
	slots, err := persist.NewFileSlotStore(t.TempDir())
	require.NoError(t, err)

	s := New(slots)
	s.AddTerminal(models.Terminal{Name: "Victoria", Address: "1 Station Rd", Lat: 51.49, Lng: -0.14})
	s.AddTerminal(models.Terminal{Name: "Stratford", Address: "2 Station Rd", Lat: 51.54, Lng: 0.0})
	before := s.Terminals()

	// Simulated restart: fresh store, same slots.
	restarted := New(slots)
	assert.Equal(t, before, restarted.Terminals())
}

func TestRehydrateSkipsMalformedSlot(t *testing.T) {
	slots, err := persist.NewFileSlotStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, slots.Write(persist.SlotBuses, []byte("{not json")))
	require.NoError(t, slots.Write(persist.SlotTerminals, []byte(`[{"name":"no id"}]`)))

	s := New(slots)
	assert.Empty(t, s.Buses())
	assert.Empty(t, s.Terminals(), "records without ids are discarded")
}

func TestRehydrateDropsWholeSlotOnMalformedElement(t *testing.T) {
	slots, err := persist.NewFileSlotStore(t.TempDir())
	require.NoError(t, err)
	// A valid record followed by one whose id is the wrong type: the
	// whole collection must come up empty, not just the bad element.
	require.NoError(t, slots.Write(persist.SlotBuses,
		[]byte(`[{"id":"a","registration":"BUS-001","totalSeats":40},{"id":5}]`)))
	// A record with a non-numeric coordinate must not survive with the
	// field zeroed.
	require.NoError(t, slots.Write(persist.SlotTerminals,
		[]byte(`[{"id":"t1","name":"Victoria","lat":"north"}]`)))

	s := New(slots)
	assert.Empty(t, s.Buses())
	assert.Empty(t, s.Terminals())
}

func TestSubscribeDeliversMutationEvents(t *testing.T) {
	s, _ := newTestStore(t)
	events, cancel := s.Subscribe()
	defer cancel()

	b := s.AddBus(sampleBus("BUS-001"))

	ev := <-events
	assert.Equal(t, persist.SlotBuses, ev.Collection)
	assert.Equal(t, b.ID, ev.ID)

	s.UpdateBusLocation(b.ID, 52.0, -0.1)
	ev = <-events
	assert.Equal(t, b.ID, ev.ID)
}

func TestRouteCopiesAreIsolated(t *testing.T) {
	s, _ := newTestStore(t)
	route := s.AddRoute(models.Route{Name: "Loop", Stops: []models.RouteStop{{Name: "A", Order: 1}}})

	got, _ := s.GetRoute(route.ID)
	got.Stops[0].Name = "mutated"

	again, _ := s.GetRoute(route.ID)
	assert.Equal(t, "A", again.Stops[0].Name)
}
