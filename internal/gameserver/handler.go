// Package gameserver wires player commands into the combat scheduler: it
// owns the twitch command surface, the room adapters, and the defeat
// processing that runs when a fight ends.
package gameserver

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/sundered/mud/internal/config"
	"github.com/sundered/mud/internal/game/combat"
	"github.com/sundered/mud/internal/game/dice"
	"github.com/sundered/mud/internal/game/item"
	"github.com/sundered/mud/internal/game/npc"
	"github.com/sundered/mud/internal/game/world"
	"github.com/sundered/mud/internal/scripting"
)

// mover is implemented by combatants that can change rooms.
type mover interface {
	MoveTo(roomID string)
}

// lootDropper is implemented by combatants that drop loot on defeat.
type lootDropper interface {
	Loot() npc.LootTable
	Coins() npc.CoinRange
}

// TwitchHandler is the command surface for real-time combat. Each method is
// one player command; all of them are safe to call concurrently.
type TwitchHandler struct {
	log     *zap.Logger
	worlds  *world.Manager
	catalog *item.Catalog
	engine  *scripting.Engine
	rolls   dice.Source

	registry *combat.Registry

	mu    sync.Mutex
	sinks map[string]*combatantSink
}

// NewTwitchHandler builds the handler and its combat registry.
//
// Precondition: all arguments must be non-nil.
func NewTwitchHandler(
	cfg config.CombatConfig,
	worlds *world.Manager,
	catalog *item.Catalog,
	engine *scripting.Engine,
	rolls dice.Source,
	log *zap.Logger,
) *TwitchHandler {
	h := &TwitchHandler{
		log:     log,
		worlds:  worlds,
		catalog: catalog,
		engine:  engine,
		rolls:   rolls,
		sinks:   make(map[string]*combatantSink),
	}
	h.registry = combat.NewRegistry(combat.Config{
		TickInterval:  cfg.TickInterval,
		DefaultDelay:  cfg.DefaultActionDelay,
		FallbackDelay: cfg.FallbackAttackDelay,
		Unarmed:       item.BareHands(),
		Rolls:         rolls,
		OnDefeat:      h.handleDefeat,
	}, log)
	return h
}

// Registry exposes the combat registry for diagnostics and shutdown.
func (h *TwitchHandler) Registry() *combat.Registry {
	return h.registry
}

// Join places c into its current room's occupancy set so it hears room
// broadcasts. Idempotent per combatant.
func (h *TwitchHandler) Join(c combat.Combatant) error {
	return h.worlds.Enter(c.LocationID(), h.sink(c))
}

// Leave removes c from its current room's occupancy set.
func (h *TwitchHandler) Leave(c combat.Combatant) {
	h.worlds.Leave(c.LocationID(), h.sink(c))
	h.mu.Lock()
	delete(h.sinks, c.ID())
	h.mu.Unlock()
}

// sink returns the stable occupancy sink for c, creating it on first use.
func (h *TwitchHandler) sink(c combat.Combatant) *combatantSink {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.sinks[c.ID()]; ok {
		return s
	}
	s := &combatantSink{c: c}
	h.sinks[c.ID()] = s
	return s
}

// sinkFor returns the sink registered for a combatant ID, if any.
func (h *TwitchHandler) sinkFor(id string) (world.MessageSink, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sinks[id]
	return s, ok
}

// Attack starts or continues a fight: both combatants are enrolled in the
// room's arena and a repeating attack is queued for the actor.
//
// Postcondition: On success the actor keeps attacking target every beat
// until replaced by another action or the fight ends.
func (h *TwitchHandler) Attack(actor, target combat.Combatant) error {
	room, ok := h.worlds.Room(actor.LocationID())
	if !ok {
		return combat.ErrNoLocation
	}
	if !room.AllowCombat {
		return fmt.Errorf("you cannot fight here")
	}
	if target.LocationID() != room.ID {
		return fmt.Errorf("%s is not here", target.Name())
	}
	if actor.ID() == target.ID() {
		return fmt.Errorf("you cannot attack yourself")
	}
	if !room.AllowPvP && actor.IsPlayer() && target.IsPlayer() {
		return fmt.Errorf("you cannot attack %s here", target.Name())
	}

	arena, err := h.registry.GetOrCreate(room.ID, &roomLocation{room: room, handler: h})
	if err != nil {
		return err
	}
	if err := arena.AddCombatant(actor); err != nil {
		return err
	}
	if err := arena.AddCombatant(target); err != nil {
		return err
	}
	return arena.QueueAction(actor, combat.AttackAction(target, true))
}

// Hold queues an idle beat for the actor.
func (h *TwitchHandler) Hold(actor combat.Combatant) error {
	arena, ok := h.registry.ArenaFor(actor.ID())
	if !ok {
		return combat.ErrNotInCombat
	}
	return arena.QueueAction(actor, combat.Hold())
}

// Stunt queues an opposed maneuver benefiting recipient against target.
func (h *TwitchHandler) Stunt(actor, recipient, target combat.Combatant, advantage bool, stunt, defense dice.Ability) error {
	arena, ok := h.registry.ArenaFor(actor.ID())
	if !ok {
		return combat.ErrNotInCombat
	}
	return arena.QueueAction(actor, combat.StuntAction(recipient, target, advantage, stunt, defense))
}

// UseItem queues a consumable use on target.
func (h *TwitchHandler) UseItem(actor combat.Combatant, inst *item.Instance, target combat.Combatant) error {
	arena, ok := h.registry.ArenaFor(actor.ID())
	if !ok {
		return combat.ErrNotInCombat
	}
	if !inst.IsConsumable() {
		return fmt.Errorf("%s cannot be used", inst.Name())
	}
	usable := &scriptedUsable{inst: inst, engine: h.engine}
	return arena.QueueAction(actor, combat.UseItemAction(usable, target))
}

// Wield queues a weapon swap.
func (h *TwitchHandler) Wield(actor combat.Combatant, inst *item.Instance) error {
	arena, ok := h.registry.ArenaFor(actor.ID())
	if !ok {
		return combat.ErrNotInCombat
	}
	if !inst.IsWeapon() {
		return fmt.Errorf("%s is not a weapon", inst.Name())
	}
	return arena.QueueAction(actor, combat.WieldAction(inst))
}

// Flee moves the actor through an exit. The combat scheduler notices the
// location change on its next tick and removes the actor silently.
func (h *TwitchHandler) Flee(actor combat.Combatant, direction string) error {
	m, ok := actor.(mover)
	if !ok {
		return fmt.Errorf("%s cannot move", actor.Name())
	}
	room, ok := h.worlds.Room(actor.LocationID())
	if !ok {
		return combat.ErrNoLocation
	}
	exit, ok := room.ExitTo(direction)
	if !ok {
		return fmt.Errorf("there is no exit %s", direction)
	}

	if err := h.worlds.Move(room.ID, exit.TargetRoom, h.sink(actor)); err != nil {
		return err
	}
	m.MoveTo(exit.TargetRoom)
	h.worlds.Broadcast(room.ID, fmt.Sprintf("%s flees %s!", actor.Name(), direction))
	actor.Send(fmt.Sprintf("You flee %s.", direction))
	return nil
}

// Status returns the actor's view of the ongoing fight.
func (h *TwitchHandler) Status(actor combat.Combatant) (string, error) {
	arena, ok := h.registry.ArenaFor(actor.ID())
	if !ok {
		return "", combat.ErrNotInCombat
	}
	return arena.Summary(actor), nil
}

// handleDefeat is the arena defeat hook: lethal rooms kill and drop loot,
// non-lethal rooms knock the loser out with a single hit point.
func (h *TwitchHandler) handleDefeat(loser, victor combat.Combatant, loc combat.Location) {
	if !loc.AllowDeath() {
		loser.Heal(1)
		loc.Broadcast(fmt.Sprintf("%s is knocked out.", loser.Name()))
		loser.Send("You are knocked out, but alive.")
		return
	}

	loc.Broadcast(fmt.Sprintf("%s has died.", loser.Name()))
	loser.Send("You have died.")

	dropper, ok := loser.(lootDropper)
	if !ok || !victor.IsPlayer() {
		return
	}
	drops, err := dropper.Loot().Roll(h.rolls, h.catalog)
	if err != nil {
		h.log.Error("loot roll failed",
			zap.String("loser", loser.ID()),
			zap.Error(err))
		return
	}
	for _, drop := range drops {
		loc.Broadcast(fmt.Sprintf("%s drops %s.", loser.Name(), drop.Name()))
	}
	if coins := dropper.Coins().Roll(h.rolls); coins > 0 {
		loc.Broadcast(fmt.Sprintf("%s drops %d coins.", loser.Name(), coins))
	}
}
