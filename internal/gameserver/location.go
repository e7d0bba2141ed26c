package gameserver

import (
	"github.com/sundered/mud/internal/game/combat"
	"github.com/sundered/mud/internal/game/world"
)

// roomLocation adapts a world.Room and the world manager's fan-out into the
// combat.Location contract.
type roomLocation struct {
	room    *world.Room
	handler *TwitchHandler
}

var _ combat.Location = (*roomLocation)(nil)

func (r *roomLocation) ID() string        { return r.room.ID }
func (r *roomLocation) AllowCombat() bool { return r.room.AllowCombat }
func (r *roomLocation) AllowPvP() bool    { return r.room.AllowPvP }
func (r *roomLocation) AllowDeath() bool  { return r.room.AllowDeath }

// Broadcast fans msg out to the room, mapping excluded combatants to their
// registered occupancy sinks.
func (r *roomLocation) Broadcast(msg string, exclude ...combat.Combatant) {
	sinks := make([]world.MessageSink, 0, len(exclude))
	for _, c := range exclude {
		if sink, ok := r.handler.sinkFor(c.ID()); ok {
			sinks = append(sinks, sink)
		}
	}
	r.handler.worlds.Broadcast(r.room.ID, msg, sinks...)
}

// combatantSink adapts a combatant's Send into a world.MessageSink. One
// stable instance per combatant, so occupancy exclusion works by identity.
type combatantSink struct {
	c combat.Combatant
}

func (s *combatantSink) Send(msg string) {
	s.c.Send(msg)
}
