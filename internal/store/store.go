// Package store holds the authoritative in-memory collections of buses,
// terminals, and routes, and mirrors every mutation to a durable slot.
package store

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"fleet_monitor/internal/models"
	"fleet_monitor/internal/persist"
)

// Event notifies subscribers that a collection changed. ID is the entity
// the mutation touched; it is empty for whole-collection rehydrations.
type Event struct {
	Collection string
	ID         string
}

// Store owns the three entity collections. Construct it explicitly and
// pass it to whatever needs it; there is no package-level instance.
//
// References between entities are plain string ids and are never
// validated: deleting a terminal leaves any route or bus pointing at it
// unchanged.
type Store struct {
	mu        sync.Mutex
	slots     persist.SlotStore
	buses     []models.Bus
	terminals []models.Terminal
	routes    []models.Route

	lastID  int64
	subs    map[int]chan Event
	nextSub int
}

// New rehydrates a store from the slot store. Absent or malformed slots
// yield empty collections.
func New(slots persist.SlotStore) *Store {
	s := &Store{
		slots: slots,
		subs:  make(map[int]chan Event),
	}
	persist.Load(slots, persist.SlotBuses, &s.buses)
	persist.Load(slots, persist.SlotTerminals, &s.terminals)
	persist.Load(slots, persist.SlotRoutes, &s.routes)
	s.buses = dropBlankIDs(s.buses, func(b models.Bus) string { return b.ID }, persist.SlotBuses)
	s.terminals = dropBlankIDs(s.terminals, func(t models.Terminal) string { return t.ID }, persist.SlotTerminals)
	s.routes = dropBlankIDs(s.routes, func(r models.Route) string { return r.ID }, persist.SlotRoutes)
	return s
}

// dropBlankIDs discards rehydrated records whose id is missing. A record
// without an id can never be addressed again and usually means the slot
// held JSON of the wrong shape.
func dropBlankIDs[E any](in []E, id func(E) string, slot string) []E {
	out := in[:0]
	dropped := 0
	for _, e := range in {
		if id(e) == "" {
			dropped++
			continue
		}
		out = append(out, e)
	}
	if dropped > 0 {
		logrus.WithFields(logrus.Fields{"slot": slot, "dropped": dropped}).
			Warn("discarded rehydrated records without ids")
	}
	return out
}

// nextID derives an id from the millisecond clock, bumping past the last
// issued value so two adds in the same millisecond cannot collide.
func (s *Store) nextID() string {
	now := time.Now().UnixMilli()
	if now <= s.lastID {
		now = s.lastID + 1
	}
	s.lastID = now
	return strconv.FormatInt(now, 10)
}

// Subscribe registers for change events. The returned cancel func must
// be called when the consumer goes away. Slow consumers lose events
// rather than blocking mutations.
func (s *Store) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Event, 64)
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// notify is called with the mutex held.
func (s *Store) notify(ev Event) {
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// --- Buses ---

// Buses returns a copy of the bus collection in insertion order.
func (s *Store) Buses() []models.Bus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Bus, len(s.buses))
	copy(out, s.buses)
	return out
}

// GetBus looks a bus up by id.
func (s *Store) GetBus(id string) (models.Bus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.buses {
		if b.ID == id {
			return b, true
		}
	}
	return models.Bus{}, false
}

// AddBus assigns a fresh id, appends the bus, and persists the
// collection. The caller's ID field is ignored.
func (s *Store) AddBus(b models.Bus) models.Bus {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.nextID()
	s.buses = append(s.buses, b)
	persist.Save(s.slots, persist.SlotBuses, s.buses)
	s.notify(Event{Collection: persist.SlotBuses, ID: b.ID})
	return b
}

// BusPatch carries the fields of a partial bus update. Nil fields are
// left untouched. For TerminalID and RouteID an empty string clears the
// assignment.
type BusPatch struct {
	Registration  *string
	TotalSeats    *int
	OccupiedSeats *int
	Lat           *float64
	Lng           *float64
	TerminalID    *string
	RouteID       *string
	IsActive      *bool
}

// UpdateBus merges patch into the matching bus. Unknown ids are ignored
// without error.
func (s *Store) UpdateBus(id string, patch BusPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.buses {
		if s.buses[i].ID != id {
			continue
		}
		b := &s.buses[i]
		if patch.Registration != nil {
			b.Registration = *patch.Registration
		}
		if patch.TotalSeats != nil {
			b.TotalSeats = *patch.TotalSeats
		}
		if patch.OccupiedSeats != nil {
			b.OccupiedSeats = *patch.OccupiedSeats
		}
		if patch.Lat != nil {
			b.Lat = *patch.Lat
		}
		if patch.Lng != nil {
			b.Lng = *patch.Lng
		}
		if patch.TerminalID != nil {
			b.TerminalID = optionalRef(*patch.TerminalID)
		}
		if patch.RouteID != nil {
			b.RouteID = optionalRef(*patch.RouteID)
		}
		if patch.IsActive != nil {
			b.IsActive = *patch.IsActive
		}
		persist.Save(s.slots, persist.SlotBuses, s.buses)
		s.notify(Event{Collection: persist.SlotBuses, ID: id})
		return
	}
}

func optionalRef(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// UpdateOccupiedSeats writes seats through unconditionally. The store
// does not clamp against TotalSeats; the HTTP edge does that before
// calling, matching where the original dashboard kept its clamp.
func (s *Store) UpdateOccupiedSeats(id string, seats int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.buses {
		if s.buses[i].ID == id {
			s.buses[i].OccupiedSeats = seats
			persist.Save(s.slots, persist.SlotBuses, s.buses)
			s.notify(Event{Collection: persist.SlotBuses, ID: id})
			return
		}
	}
}

// UpdateBusLocation overwrites the position fields unconditionally.
func (s *Store) UpdateBusLocation(id string, lat, lng float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.buses {
		if s.buses[i].ID == id {
			s.buses[i].Lat = lat
			s.buses[i].Lng = lng
			persist.Save(s.slots, persist.SlotBuses, s.buses)
			s.notify(Event{Collection: persist.SlotBuses, ID: id})
			return
		}
	}
}

// SearchBuses matches term case-insensitively against the registration
// label. A blank term returns the whole collection in insertion order.
func (s *Store) SearchBuses(term string) []models.Bus {
	if strings.TrimSpace(term) == "" {
		return s.Buses()
	}
	needle := strings.ToLower(term)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Bus
	for _, b := range s.buses {
		if strings.Contains(strings.ToLower(b.Registration), needle) {
			out = append(out, b)
		}
	}
	return out
}

// --- Terminals ---

// Terminals returns a copy of the terminal collection.
func (s *Store) Terminals() []models.Terminal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Terminal, len(s.terminals))
	copy(out, s.terminals)
	return out
}

// GetTerminal looks a terminal up by id.
func (s *Store) GetTerminal(id string) (models.Terminal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.terminals {
		if t.ID == id {
			return t, true
		}
	}
	return models.Terminal{}, false
}

// AddTerminal assigns a fresh id, appends, and persists.
func (s *Store) AddTerminal(t models.Terminal) models.Terminal {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextID()
	s.terminals = append(s.terminals, t)
	persist.Save(s.slots, persist.SlotTerminals, s.terminals)
	s.notify(Event{Collection: persist.SlotTerminals, ID: t.ID})
	return t
}

// TerminalPatch carries the fields of a partial terminal update.
type TerminalPatch struct {
	Name    *string
	Lat     *float64
	Lng     *float64
	Address *string
}

// UpdateTerminal merges patch into the matching terminal; unknown ids
// are ignored.
func (s *Store) UpdateTerminal(id string, patch TerminalPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.terminals {
		if s.terminals[i].ID != id {
			continue
		}
		t := &s.terminals[i]
		if patch.Name != nil {
			t.Name = *patch.Name
		}
		if patch.Lat != nil {
			t.Lat = *patch.Lat
		}
		if patch.Lng != nil {
			t.Lng = *patch.Lng
		}
		if patch.Address != nil {
			t.Address = *patch.Address
		}
		persist.Save(s.slots, persist.SlotTerminals, s.terminals)
		s.notify(Event{Collection: persist.SlotTerminals, ID: id})
		return
	}
}

// DeleteTerminal removes the matching terminal. Routes and buses that
// reference it keep their now-dangling ids.
func (s *Store) DeleteTerminal(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.terminals {
		if s.terminals[i].ID == id {
			s.terminals = append(s.terminals[:i], s.terminals[i+1:]...)
			persist.Save(s.slots, persist.SlotTerminals, s.terminals)
			s.notify(Event{Collection: persist.SlotTerminals, ID: id})
			return
		}
	}
}

// --- Routes ---

// Routes returns a copy of the route collection. Stop slices are copied
// too so callers cannot mutate stored state.
func (s *Store) Routes() []models.Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Route, len(s.routes))
	for i, r := range s.routes {
		out[i] = copyRoute(r)
	}
	return out
}

// GetRoute looks a route up by id.
func (s *Store) GetRoute(id string) (models.Route, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.routes {
		if r.ID == id {
			return copyRoute(r), true
		}
	}
	return models.Route{}, false
}

func copyRoute(r models.Route) models.Route {
	if r.Stops != nil {
		stops := make([]models.RouteStop, len(r.Stops))
		copy(stops, r.Stops)
		r.Stops = stops
	}
	return r
}

// AddRoute assigns a fresh id, appends, and persists.
func (s *Store) AddRoute(r models.Route) models.Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.nextID()
	s.routes = append(s.routes, r)
	persist.Save(s.slots, persist.SlotRoutes, s.routes)
	s.notify(Event{Collection: persist.SlotRoutes, ID: r.ID})
	return copyRoute(r)
}

// RoutePatch carries the fields of a partial route update. A non-nil
// Stops replaces the whole stop sequence.
type RoutePatch struct {
	Name            *string
	StartTerminalID *string
	EndTerminalID   *string
	Stops           *[]models.RouteStop
}

// UpdateRoute merges patch into the matching route; unknown ids are
// ignored.
func (s *Store) UpdateRoute(id string, patch RoutePatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.routes {
		if s.routes[i].ID != id {
			continue
		}
		r := &s.routes[i]
		if patch.Name != nil {
			r.Name = *patch.Name
		}
		if patch.StartTerminalID != nil {
			r.StartTerminalID = *patch.StartTerminalID
		}
		if patch.EndTerminalID != nil {
			r.EndTerminalID = *patch.EndTerminalID
		}
		if patch.Stops != nil {
			stops := make([]models.RouteStop, len(*patch.Stops))
			copy(stops, *patch.Stops)
			r.Stops = stops
		}
		persist.Save(s.slots, persist.SlotRoutes, s.routes)
		s.notify(Event{Collection: persist.SlotRoutes, ID: id})
		return
	}
}

// DeleteRoute removes the matching route; buses referencing it keep
// their dangling route id.
func (s *Store) DeleteRoute(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.routes {
		if s.routes[i].ID == id {
			s.routes = append(s.routes[:i], s.routes[i+1:]...)
			persist.Save(s.slots, persist.SlotRoutes, s.routes)
			s.notify(Event{Collection: persist.SlotRoutes, ID: id})
			return
		}
	}
}

// AppendStop appends stop to the route's sequence with a 1-based order
// equal to its position. Prior stops keep their order values. Returns
// the stored stop and whether the route was found.
func (s *Store) AppendStop(routeID string, stop models.RouteStop) (models.RouteStop, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.routes {
		if s.routes[i].ID != routeID {
			continue
		}
		stop.Order = len(s.routes[i].Stops) + 1
		s.routes[i].Stops = append(s.routes[i].Stops, stop)
		persist.Save(s.slots, persist.SlotRoutes, s.routes)
		s.notify(Event{Collection: persist.SlotRoutes, ID: routeID})
		return stop, true
	}
	return models.RouteStop{}, false
}
