// Package world provides the game world model: zones, rooms, exits, and the
// room-scoped message fan-out used by combat.
package world

import "fmt"

// Exit represents a passage from one room to another.
type Exit struct {
	// Direction is the exit label ("north", "stairs", ...).
	Direction string
	// TargetRoom is the ID of the destination room.
	TargetRoom string
}

// Room represents a location in the game world. Combat is scoped to rooms:
// the room's flags decide whether fights may start, whether everyone is
// hostile to everyone, and whether defeat is lethal.
type Room struct {
	// ID uniquely identifies this room within the world.
	ID string
	// ZoneID identifies the zone this room belongs to.
	ZoneID string
	// Title is the short display name of the room.
	Title string
	// Description is the room description shown to players.
	Description string
	// Exits lists all passages leading out of this room.
	Exits []Exit
	// AllowCombat permits hostile actions in this room.
	AllowCombat bool
	// AllowPvP marks every combatant as hostile to every other one.
	AllowPvP bool
	// AllowDeath makes defeat in this room lethal; when false defeated
	// combatants are knocked out instead.
	AllowDeath bool
}

// ExitTo returns the exit with the given direction label, if one exists.
//
// Postcondition: Returns (exit, true) if found, or (Exit{}, false) otherwise.
func (r *Room) ExitTo(direction string) (Exit, bool) {
	for _, e := range r.Exits {
		if e.Direction == direction {
			return e, true
		}
	}
	return Exit{}, false
}

// Zone groups related rooms into a themed area.
type Zone struct {
	// ID uniquely identifies this zone.
	ID string
	// Name is the display name of the zone.
	Name string
	// StartRoom is the ID of the default entry room.
	StartRoom string
	// Rooms contains all rooms in this zone, keyed by room ID.
	Rooms map[string]*Room
}

// Validate checks zone invariants.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (z *Zone) Validate() error {
	if z.ID == "" {
		return fmt.Errorf("zone ID must not be empty")
	}
	if z.Name == "" {
		return fmt.Errorf("zone %q: name must not be empty", z.ID)
	}
	if len(z.Rooms) == 0 {
		return fmt.Errorf("zone %q: must contain at least one room", z.ID)
	}
	if z.StartRoom == "" {
		return fmt.Errorf("zone %q: start_room must not be empty", z.ID)
	}
	if _, ok := z.Rooms[z.StartRoom]; !ok {
		return fmt.Errorf("zone %q: start_room %q not found in rooms", z.ID, z.StartRoom)
	}
	for id, room := range z.Rooms {
		if room.ID != id {
			return fmt.Errorf("zone %q: room key %q does not match room ID %q", z.ID, id, room.ID)
		}
		if room.Title == "" {
			return fmt.Errorf("zone %q: room %q: title must not be empty", z.ID, id)
		}
		for _, exit := range room.Exits {
			if exit.TargetRoom == "" {
				return fmt.Errorf("zone %q: room %q: exit %q has empty target", z.ID, id, exit.Direction)
			}
		}
	}
	return nil
}
