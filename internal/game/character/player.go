// Package character provides the player-controlled combatant implementation.
package character

import (
	"sync"

	"github.com/google/uuid"

	"github.com/sundered/mud/internal/game/combat"
	"github.com/sundered/mud/internal/game/dice"
)

// OutputSink receives text destined for the player's session. A nil sink
// discards output.
type OutputSink func(msg string)

// Player is a player-controlled combatant. All mutable state is guarded by
// a mutex because the combat tick goroutine and the player's session
// goroutine touch it concurrently.
type Player struct {
	id   string
	name string

	mu        sync.Mutex
	hp        int
	maxHP     int
	location  string
	abilities map[dice.Ability]int
	armor     int
	wielded   combat.Weapon
	sink      OutputSink
}

var _ combat.Combatant = (*Player)(nil)

// NewPlayer creates a player with full health.
//
// Precondition: maxHP > 0.
func NewPlayer(name string, maxHP int, location string) *Player {
	return &Player{
		id:        uuid.NewString(),
		name:      name,
		hp:        maxHP,
		maxHP:     maxHP,
		location:  location,
		abilities: make(map[dice.Ability]int),
	}
}

// ID returns the player's stable unique key.
func (p *Player) ID() string {
	return p.id
}

// Name returns the player's display name.
func (p *Player) Name() string {
	return p.name
}

// LocationID returns the ID of the room the player occupies.
func (p *Player) LocationID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.location
}

// MoveTo updates the player's location.
func (p *Player) MoveTo(roomID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.location = roomID
}

// HP returns current and maximum hit points.
func (p *Player) HP() (current, max int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hp, p.maxHP
}

// ApplyDamage removes up to amount hit points, flooring at zero.
func (p *Player) ApplyDamage(amount int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if amount > 0 {
		p.hp -= amount
		if p.hp < 0 {
			p.hp = 0
		}
	}
	return p.hp
}

// Heal restores up to amount hit points, capped at the maximum.
func (p *Player) Heal(amount int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if amount > 0 {
		p.hp += amount
		if p.hp > p.maxHP {
			p.hp = p.maxHP
		}
	}
	return p.hp
}

// SetAbility sets the flat bonus for one ability.
func (p *Player) SetAbility(ability dice.Ability, bonus int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.abilities[ability] = bonus
}

// AbilityBonus returns the flat bonus for ability, zero when unset.
func (p *Player) AbilityBonus(ability dice.Ability) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.abilities[ability]
}

// SetArmor sets the armor bonus.
func (p *Player) SetArmor(bonus int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.armor = bonus
}

// DefenseBonus returns the armor bonus.
func (p *Player) DefenseBonus() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.armor
}

// Wielded returns the wielded weapon, or nil when unarmed.
func (p *Player) Wielded() combat.Weapon {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.wielded
}

// Wield makes w the wielded weapon.
func (p *Player) Wield(w combat.Weapon) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.wielded = w
}

// IsPlayer reports that this combatant is player-controlled.
func (p *Player) IsPlayer() bool {
	return true
}

// AttachSink routes the player's output to sink.
func (p *Player) AttachSink(sink OutputSink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sink = sink
}

// Send delivers msg to the player's session, if one is attached.
func (p *Player) Send(msg string) {
	p.mu.Lock()
	sink := p.sink
	p.mu.Unlock()
	if sink != nil {
		sink(msg)
	}
}
