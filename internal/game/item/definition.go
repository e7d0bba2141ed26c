// Package item provides item definitions, the YAML item catalog, and item
// instances. Weapons feed the combat damage rolls; consumables run sandboxed
// effect scripts.
package item

import (
	"fmt"

	"github.com/sundered/mud/internal/game/dice"
)

// Kind discriminates the item categories.
type Kind string

const (
	// KindWeapon is an item that can be wielded and used to attack.
	KindWeapon Kind = "weapon"
	// KindConsumable is an item that is used up to trigger an effect script.
	KindConsumable Kind = "consumable"
)

// Definition is the immutable template an item instance is stamped from.
type Definition struct {
	// ID uniquely identifies the definition in the catalog.
	ID string `yaml:"id"`
	// Name is the display name.
	Name string `yaml:"name"`
	// Kind is the item category.
	Kind Kind `yaml:"kind"`
	// Damage is the weapon damage dice expression ("1d6", "2d4+1").
	// Weapons only.
	Damage string `yaml:"damage,omitempty"`
	// Ability is the attack ability label ("str", "dex", ...). Weapons only;
	// defaults to str.
	Ability string `yaml:"ability,omitempty"`
	// EffectScript is the Lua script run on use. Consumables only.
	EffectScript string `yaml:"effect_script,omitempty"`
	// Charges is how many uses an instance starts with. Consumables only;
	// defaults to 1.
	Charges int `yaml:"charges,omitempty"`

	damage  dice.Expression
	ability dice.Ability
}

// Validate checks the definition and caches the parsed damage expression and
// ability for later rolls.
//
// Postcondition: Returns nil if valid; weapons have a parsed damage
// expression and ability afterwards.
func (d *Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("item definition must have an ID")
	}
	if d.Name == "" {
		return fmt.Errorf("item %q: name must not be empty", d.ID)
	}
	switch d.Kind {
	case KindWeapon:
		if d.Damage == "" {
			return fmt.Errorf("item %q: weapons require a damage expression", d.ID)
		}
		expr, err := dice.Parse(d.Damage)
		if err != nil {
			return fmt.Errorf("item %q: %w", d.ID, err)
		}
		d.damage = expr

		label := d.Ability
		if label == "" {
			label = "str"
		}
		ability, err := dice.ParseAbility(label)
		if err != nil {
			return fmt.Errorf("item %q: %w", d.ID, err)
		}
		d.ability = ability
	case KindConsumable:
		if d.EffectScript == "" {
			return fmt.Errorf("item %q: consumables require an effect script", d.ID)
		}
		if d.Charges < 0 {
			return fmt.Errorf("item %q: charges must not be negative", d.ID)
		}
		if d.Charges == 0 {
			d.Charges = 1
		}
	default:
		return fmt.Errorf("item %q: unknown kind %q", d.ID, d.Kind)
	}
	return nil
}

// DamageExpr returns the parsed weapon damage expression.
//
// Precondition: Validate must have succeeded and Kind must be KindWeapon.
func (d *Definition) DamageExpr() dice.Expression {
	return d.damage
}

// AttackAbility returns the ability the weapon attacks with.
//
// Precondition: Validate must have succeeded and Kind must be KindWeapon.
func (d *Definition) AttackAbility() dice.Ability {
	return d.ability
}
