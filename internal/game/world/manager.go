package world

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// MessageSink receives game output for one connected entity. Player sessions
// implement it with a network write; NPCs typically discard messages.
type MessageSink interface {
	Send(msg string)
}

// Manager indexes all loaded zones and rooms and tracks room occupancy for
// message fan-out. All methods are safe for concurrent use.
type Manager struct {
	log *zap.Logger

	mu        sync.RWMutex
	zones     map[string]*Zone
	rooms     map[string]*Room
	occupants map[string]map[MessageSink]struct{}
}

// NewManager creates an empty world manager.
//
// Precondition: log must be non-nil.
func NewManager(log *zap.Logger) *Manager {
	return &Manager{
		log:       log,
		zones:     make(map[string]*Zone),
		rooms:     make(map[string]*Room),
		occupants: make(map[string]map[MessageSink]struct{}),
	}
}

// AddZone registers a zone and indexes its rooms.
//
// Precondition: zone must have passed Validate.
// Postcondition: Every room in the zone is resolvable via Room.
func (m *Manager) AddZone(zone *Zone) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.zones[zone.ID]; exists {
		return fmt.Errorf("zone %q already registered", zone.ID)
	}
	for id := range zone.Rooms {
		if _, exists := m.rooms[id]; exists {
			return fmt.Errorf("zone %q: room ID %q already registered by another zone", zone.ID, id)
		}
	}

	m.zones[zone.ID] = zone
	for id, room := range zone.Rooms {
		m.rooms[id] = room
	}
	m.log.Info("zone registered",
		zap.String("zone", zone.ID),
		zap.Int("rooms", len(zone.Rooms)))
	return nil
}

// Zone returns the zone with the given ID.
func (m *Manager) Zone(id string) (*Zone, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	z, ok := m.zones[id]
	return z, ok
}

// Room returns the room with the given ID.
func (m *Manager) Room(id string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	return r, ok
}

// Enter places sink into the given room's occupancy set.
//
// Postcondition: sink receives subsequent Broadcast messages for the room.
func (m *Manager) Enter(roomID string, sink MessageSink) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rooms[roomID]; !ok {
		return fmt.Errorf("room %q not found", roomID)
	}
	set, ok := m.occupants[roomID]
	if !ok {
		set = make(map[MessageSink]struct{})
		m.occupants[roomID] = set
	}
	set[sink] = struct{}{}
	return nil
}

// Leave removes sink from the given room's occupancy set. Removing a sink
// that is not present is a no-op.
func (m *Manager) Leave(roomID string, sink MessageSink) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if set, ok := m.occupants[roomID]; ok {
		delete(set, sink)
		if len(set) == 0 {
			delete(m.occupants, roomID)
		}
	}
}

// Move relocates sink from one room to another in a single step.
//
// Postcondition: sink is an occupant of toRoomID and not of fromRoomID.
func (m *Manager) Move(fromRoomID, toRoomID string, sink MessageSink) error {
	m.Leave(fromRoomID, sink)
	return m.Enter(toRoomID, sink)
}

// Broadcast sends msg to every occupant of the room except those in exclude.
func (m *Manager) Broadcast(roomID, msg string, exclude ...MessageSink) {
	m.mu.RLock()
	sinks := make([]MessageSink, 0, len(m.occupants[roomID]))
	for sink := range m.occupants[roomID] {
		excluded := false
		for _, ex := range exclude {
			if sink == ex {
				excluded = true
				break
			}
		}
		if !excluded {
			sinks = append(sinks, sink)
		}
	}
	m.mu.RUnlock()

	// Sends happen outside the lock so a slow sink cannot stall the world.
	for _, sink := range sinks {
		sink.Send(msg)
	}
}

// OccupantCount returns the number of sinks currently in the room.
func (m *Manager) OccupantCount(roomID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.occupants[roomID])
}
