// Package npc provides non-player combatants, their YAML definitions, and
// the loot tables rolled when one is defeated.
package npc

import (
	"sync"

	"github.com/google/uuid"

	"github.com/sundered/mud/internal/game/combat"
	"github.com/sundered/mud/internal/game/dice"
)

// NPC is a non-player combatant. Guarded by a mutex for the same reason as
// players: the combat tick and AI goroutines both touch it.
type NPC struct {
	id    string
	defID string
	name  string

	mu        sync.Mutex
	hp        int
	maxHP     int
	location  string
	abilities map[dice.Ability]int
	armor     int
	wielded   combat.Weapon
	loot      LootTable
	coins     CoinRange
}

var _ combat.Combatant = (*NPC)(nil)

// ID returns the NPC instance's stable unique key.
func (n *NPC) ID() string {
	return n.id
}

// DefinitionID returns the ID of the definition this NPC was spawned from.
func (n *NPC) DefinitionID() string {
	return n.defID
}

// Name returns the NPC's display name.
func (n *NPC) Name() string {
	return n.name
}

// LocationID returns the ID of the room the NPC occupies.
func (n *NPC) LocationID() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

// MoveTo updates the NPC's location.
func (n *NPC) MoveTo(roomID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.location = roomID
}

// HP returns current and maximum hit points.
func (n *NPC) HP() (current, max int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.hp, n.maxHP
}

// ApplyDamage removes up to amount hit points, flooring at zero.
func (n *NPC) ApplyDamage(amount int) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	if amount > 0 {
		n.hp -= amount
		if n.hp < 0 {
			n.hp = 0
		}
	}
	return n.hp
}

// Heal restores up to amount hit points, capped at the maximum.
func (n *NPC) Heal(amount int) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	if amount > 0 {
		n.hp += amount
		if n.hp > n.maxHP {
			n.hp = n.maxHP
		}
	}
	return n.hp
}

// AbilityBonus returns the flat bonus for ability, zero when unset.
func (n *NPC) AbilityBonus(ability dice.Ability) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.abilities[ability]
}

// DefenseBonus returns the armor bonus.
func (n *NPC) DefenseBonus() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.armor
}

// Wielded returns the wielded weapon, or nil when unarmed.
func (n *NPC) Wielded() combat.Weapon {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.wielded
}

// Wield makes w the wielded weapon.
func (n *NPC) Wield(w combat.Weapon) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.wielded = w
}

// IsPlayer reports that this combatant is not player-controlled.
func (n *NPC) IsPlayer() bool {
	return false
}

// Send discards msg. NPCs have no session to deliver to.
func (n *NPC) Send(msg string) {}

// Loot returns the NPC's loot table.
func (n *NPC) Loot() LootTable {
	return n.loot
}

// Coins returns the NPC's currency drop range.
func (n *NPC) Coins() CoinRange {
	return n.coins
}

// newNPC builds an instance; Spawn is the public entry point.
func newNPC(def *Definition, location string) *NPC {
	abilities := make(map[dice.Ability]int, len(def.abilities))
	for ability, bonus := range def.abilities {
		abilities[ability] = bonus
	}
	return &NPC{
		id:        uuid.NewString(),
		defID:     def.ID,
		name:      def.Name,
		hp:        def.MaxHP,
		maxHP:     def.MaxHP,
		location:  location,
		abilities: abilities,
		armor:     def.Armor,
		loot:      def.Loot,
		coins:     def.Coins,
	}
}
