package combat

import (
	"fmt"
	"time"

	"github.com/sundered/mud/internal/game/dice"
)

// ActionKind discriminates the closed set of combat action variants.
type ActionKind int

const (
	// ActionHold does nothing for one beat. The idle fallback state.
	ActionHold ActionKind = iota
	// ActionAttack swings the wielded weapon at a target.
	ActionAttack
	// ActionStunt attempts to grant advantage or disadvantage via an
	// opposed ability check.
	ActionStunt
	// ActionUseItem uses a consumable on a target.
	ActionUseItem
	// ActionWield swaps the actor's wielded weapon.
	ActionWield
)

// String returns the action kind's command label.
func (k ActionKind) String() string {
	switch k {
	case ActionHold:
		return "hold"
	case ActionAttack:
		return "attack"
	case ActionStunt:
		return "stunt"
	case ActionUseItem:
		return "use"
	case ActionWield:
		return "wield"
	default:
		return "unknown"
	}
}

// ParseActionKind maps an external command label to an ActionKind.
//
// Postcondition: Returns ErrUnknownAction for labels outside the closed set.
func ParseActionKind(s string) (ActionKind, error) {
	switch s {
	case "hold":
		return ActionHold, nil
	case "attack":
		return ActionAttack, nil
	case "stunt":
		return ActionStunt, nil
	case "use":
		return ActionUseItem, nil
	case "wield":
		return ActionWield, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

// Action is a tagged combat action payload. Only the fields relevant to the
// Kind are set; Validate enforces that. Actions reference combatants and
// items without owning them.
type Action struct {
	// Kind selects the variant.
	Kind ActionKind
	// Target is the hostile target. Attack, Stunt, and UseItem.
	Target Combatant
	// Recipient is the beneficiary of a stunt. Stunt only.
	Recipient Combatant
	// Advantage selects whether a stunt grants advantage (true) to the
	// recipient or disadvantage (false) to the target. Stunt only.
	Advantage bool
	// StuntAbility is the ability the actor performs the stunt with.
	StuntAbility dice.Ability
	// DefenseAbility is the ability the defender resists with.
	DefenseAbility dice.Ability
	// Item is the consumable being used. UseItem only.
	Item Usable
	// Weapon is the weapon being readied. Wield only.
	Weapon Weapon
	// Repeat requeues the same payload after it fires instead of the
	// arena's fallback.
	Repeat bool
	// Delay overrides the canonical delay for the Kind when positive.
	Delay time.Duration
}

// Hold returns an idle action.
func Hold() *Action {
	return &Action{Kind: ActionHold}
}

// AttackAction returns an attack on target. Repeating attacks keep swinging
// at the same target every beat.
func AttackAction(target Combatant, repeat bool) *Action {
	return &Action{Kind: ActionAttack, Target: target, Repeat: repeat}
}

// StuntAction returns a stunt benefiting recipient against target.
func StuntAction(recipient, target Combatant, advantage bool, stunt, defense dice.Ability) *Action {
	return &Action{
		Kind:           ActionStunt,
		Recipient:      recipient,
		Target:         target,
		Advantage:      advantage,
		StuntAbility:   stunt,
		DefenseAbility: defense,
	}
}

// UseItemAction returns a use of item on target.
func UseItemAction(item Usable, target Combatant) *Action {
	return &Action{Kind: ActionUseItem, Item: item, Target: target}
}

// WieldAction returns a weapon swap to w.
func WieldAction(w Weapon) *Action {
	return &Action{Kind: ActionWield, Weapon: w}
}

// Validate checks that the payload carries the references its Kind requires.
//
// Postcondition: Returns nil for well-formed payloads, ErrUnknownAction for
// kinds outside the closed set, and a descriptive error otherwise.
func (a *Action) Validate() error {
	switch a.Kind {
	case ActionHold:
		return nil
	case ActionAttack:
		if a.Target == nil {
			return fmt.Errorf("attack requires a target")
		}
		return nil
	case ActionStunt:
		if a.Target == nil || a.Recipient == nil {
			return fmt.Errorf("stunt requires a recipient and a target")
		}
		return nil
	case ActionUseItem:
		if a.Item == nil {
			return fmt.Errorf("use requires an item")
		}
		if a.Target == nil {
			return fmt.Errorf("use requires a target")
		}
		return nil
	case ActionWield:
		if a.Weapon == nil {
			return fmt.Errorf("wield requires a weapon")
		}
		return nil
	default:
		return fmt.Errorf("%w: kind %d", ErrUnknownAction, a.Kind)
	}
}
