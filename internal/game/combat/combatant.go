// Package combat implements the twitch combat scheduler: per-room arenas
// that tick on a fixed interval, an action queue ordered by fire time, and
// the registry that routes combatants to their arena.
package combat

import (
	"errors"

	"github.com/sundered/mud/internal/game/dice"
)

// Sentinel errors returned by the scheduler surface.
var (
	// ErrNotInCombat is returned when an operation requires an active arena
	// membership the combatant does not have.
	ErrNotInCombat = errors.New("combatant is not in combat")
	// ErrAlreadyInCombat is returned when a combatant is added to a second
	// arena while still enrolled in a first.
	ErrAlreadyInCombat = errors.New("combatant is already in another fight")
	// ErrCombatOver is returned when an action is queued on a stopped arena.
	ErrCombatOver = errors.New("combat has already ended")
	// ErrUnknownAction is returned for action kinds the scheduler does not know.
	ErrUnknownAction = errors.New("unknown combat action")
)

// Combatant is a participant in a fight. Implementations must be safe for
// concurrent use; the arena calls them from its tick goroutine while command
// handlers call them from session goroutines.
type Combatant interface {
	// ID returns a stable unique key for the combatant.
	ID() string
	// Name returns the display name.
	Name() string
	// LocationID returns the ID of the room the combatant currently occupies.
	LocationID() string
	// HP returns the current and maximum hit points.
	HP() (current, max int)
	// ApplyDamage removes up to amount hit points and returns the new total.
	// Current hit points never drop below zero.
	ApplyDamage(amount int) int
	// Heal restores up to amount hit points, capped at the maximum, and
	// returns the new total.
	Heal(amount int) int
	// AbilityBonus returns the flat bonus for the given ability.
	AbilityBonus(ability dice.Ability) int
	// DefenseBonus returns the armor bonus used as the opposed-check defense.
	DefenseBonus() int
	// Wielded returns the currently wielded weapon, or nil when unarmed.
	Wielded() Weapon
	// Wield makes w the wielded weapon, displacing any previous one.
	Wield(w Weapon)
	// IsPlayer reports whether the combatant is player-controlled. Side
	// assignment uses it when a room does not allow player-versus-player.
	IsPlayer() bool
	// Send delivers a combat message to the combatant. Implementations that
	// cannot display messages discard them.
	Send(msg string)
}

// Weapon is anything a combatant can attack with.
type Weapon interface {
	// Name returns the weapon's display name.
	Name() string
	// AttackAbility returns the ability the weapon attacks with.
	AttackAbility() dice.Ability
	// RollDamage rolls the weapon's damage, doubled dice on a critical.
	RollDamage(src dice.Source, critical bool) int
}

// Usable is anything a combatant can use as a combat action. The scheduler
// drives the three phases in order on the tick goroutine.
type Usable interface {
	// Name returns the item's display name.
	Name() string
	// PreUse checks whether the use can proceed (charges, range, state).
	// A non-nil error aborts the action before any effect runs.
	PreUse(user, target Combatant) error
	// Use applies the item's effect.
	Use(user, target Combatant) error
	// PostUse runs unconditionally after a successful Use (spend a charge,
	// queue a cooldown).
	PostUse(user, target Combatant)
}

// Location is the room surface the arena needs: combat gating flags and
// room-scoped message fan-out.
type Location interface {
	// ID returns the room ID.
	ID() string
	// AllowCombat reports whether fights may happen here.
	AllowCombat() bool
	// AllowPvP reports whether every combatant is hostile to every other.
	AllowPvP() bool
	// AllowDeath reports whether defeat here is lethal.
	AllowDeath() bool
	// Broadcast sends msg to everyone in the room except the given combatants.
	Broadcast(msg string, exclude ...Combatant)
}

// DefeatHook is called exactly once per defeated combatant, after the
// combatant has been removed from the arena roster.
type DefeatHook func(loser, victor Combatant, loc Location)
