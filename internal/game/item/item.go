package item

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/sundered/mud/internal/game/dice"
)

// Instance is a concrete item stamped from a Definition. Instances are not
// safe for concurrent use; the owning combatant serializes access.
type Instance struct {
	// ID uniquely identifies this instance.
	ID uuid.UUID
	// Def is the shared immutable template.
	Def *Definition
	// Charges is the remaining use count. Consumables only.
	Charges int
}

// NewInstance stamps a fresh instance from def.
//
// Precondition: def must have passed Validate.
func NewInstance(def *Definition) *Instance {
	return &Instance{
		ID:      uuid.New(),
		Def:     def,
		Charges: def.Charges,
	}
}

// Name returns the instance's display name.
func (i *Instance) Name() string {
	return i.Def.Name
}

// IsWeapon reports whether the instance can be wielded.
func (i *Instance) IsWeapon() bool {
	return i.Def.Kind == KindWeapon
}

// IsConsumable reports whether the instance is used up on use.
func (i *Instance) IsConsumable() bool {
	return i.Def.Kind == KindConsumable
}

// AttackAbility returns the ability this weapon attacks with.
//
// Precondition: IsWeapon must be true.
func (i *Instance) AttackAbility() dice.Ability {
	return i.Def.AttackAbility()
}

// RollDamage rolls the weapon's damage dice. A critical hit rolls the dice a
// second time and adds them on top, without doubling the flat modifier.
//
// Precondition: IsWeapon must be true; src must be non-nil.
// Postcondition: Returns at least the minimum roll of the damage expression.
func (i *Instance) RollDamage(src dice.Source, critical bool) int {
	expr := i.Def.DamageExpr()
	total := dice.Roll(expr, src)
	if critical {
		bonus := expr
		bonus.Modifier = 0
		total += dice.Roll(bonus, src)
	}
	return total
}

// Consume spends one charge.
//
// Precondition: IsConsumable must be true.
// Postcondition: Returns the remaining charge count, or an error when the
// instance is already spent.
func (i *Instance) Consume() (int, error) {
	if i.Charges <= 0 {
		return 0, fmt.Errorf("item %q has no charges left", i.Def.Name)
	}
	i.Charges--
	return i.Charges, nil
}

// bareHands is the implicit weapon used when nothing is wielded.
var bareHands = func() *Definition {
	def := &Definition{
		ID:      "bare-hands",
		Name:    "bare hands",
		Kind:    KindWeapon,
		Damage:  "1d4",
		Ability: "str",
	}
	if err := def.Validate(); err != nil {
		panic("item: bare hands definition invalid: " + err.Error())
	}
	return def
}()

// BareHands returns the fallback weapon instance used by unarmed combatants.
//
// Postcondition: The returned instance is a weapon and never nil.
func BareHands() *Instance {
	return NewInstance(bareHands)
}
