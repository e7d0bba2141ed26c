package gameserver

import (
	"fmt"

	"github.com/sundered/mud/internal/game/combat"
	"github.com/sundered/mud/internal/game/item"
	"github.com/sundered/mud/internal/scripting"
)

// scriptedUsable adapts a consumable item instance into the combat.Usable
// contract, running its effect through the sandboxed script engine.
type scriptedUsable struct {
	inst   *item.Instance
	engine *scripting.Engine
}

var _ combat.Usable = (*scriptedUsable)(nil)

func (u *scriptedUsable) Name() string {
	return u.inst.Name()
}

// PreUse gates on remaining charges.
func (u *scriptedUsable) PreUse(user, target combat.Combatant) error {
	if !u.inst.IsConsumable() {
		return fmt.Errorf("%s cannot be used", u.inst.Name())
	}
	if u.inst.Charges <= 0 {
		return fmt.Errorf("%s is used up", u.inst.Name())
	}
	return nil
}

// Use runs the item's effect script against the user and target.
func (u *scriptedUsable) Use(user, target combat.Combatant) error {
	return u.engine.RunEffect(u.inst.Def.EffectScript, effectAdapter{user}, effectAdapter{target})
}

// PostUse spends one charge.
func (u *scriptedUsable) PostUse(user, target combat.Combatant) {
	u.inst.Consume() //nolint:errcheck // PreUse already verified a charge remains
}

// effectAdapter exposes a combatant to effect scripts.
type effectAdapter struct {
	c combat.Combatant
}

var _ scripting.EffectTarget = effectAdapter{}

func (a effectAdapter) Name() string      { return a.c.Name() }
func (a effectAdapter) Heal(amount int)   { a.c.Heal(amount) }
func (a effectAdapter) Damage(amount int) { a.c.ApplyDamage(amount) }
func (a effectAdapter) Notify(msg string) { a.c.Send(msg) }
