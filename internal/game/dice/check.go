package dice

import "fmt"

// Ability names the stat bonuses a check can be rolled with. Armor is the
// defensive stand-in ability used when no explicit defense is declared.
type Ability int

const (
	Strength Ability = iota
	Dexterity
	Constitution
	Intelligence
	Wisdom
	Charisma
	Armor
)

// String returns the short ability label ("str", "dex", ...).
func (a Ability) String() string {
	switch a {
	case Strength:
		return "str"
	case Dexterity:
		return "dex"
	case Constitution:
		return "con"
	case Intelligence:
		return "int"
	case Wisdom:
		return "wis"
	case Charisma:
		return "cha"
	case Armor:
		return "armor"
	default:
		return "unknown"
	}
}

// ParseAbility maps an external ability label to an Ability.
//
// Postcondition: Returns a valid Ability or an error for unknown labels.
func ParseAbility(s string) (Ability, error) {
	switch s {
	case "str", "strength":
		return Strength, nil
	case "dex", "dexterity":
		return Dexterity, nil
	case "con", "constitution":
		return Constitution, nil
	case "int", "intelligence":
		return Intelligence, nil
	case "wis", "wisdom":
		return Wisdom, nil
	case "cha", "charisma":
		return Charisma, nil
	case "armor":
		return Armor, nil
	default:
		return 0, fmt.Errorf("dice: unknown ability %q", s)
	}
}

// Quality is the three-tier roll quality: a natural 20 is a critical
// success, a natural 1 a critical failure, anything else normal.
type Quality int

const (
	Normal Quality = iota
	CriticalSuccess
	CriticalFailure
)

// String returns a human-readable quality label.
func (q Quality) String() string {
	switch q {
	case CriticalSuccess:
		return "critical success"
	case CriticalFailure:
		return "critical failure"
	default:
		return "normal"
	}
}

// CheckResult holds the outcome of a saving throw or opposed check.
type CheckResult struct {
	// Success is true when the total beat the target number.
	Success bool
	// Quality is derived from the natural die, before bonuses.
	Quality Quality
	// Natural is the raw d20 result after advantage/disadvantage selection.
	Natural int
	// Total is Natural + bonus + modifier.
	Total int
	// Target is the number the total had to exceed.
	Target int
}

// defaultSaveTarget is the unopposed saving throw difficulty.
const defaultSaveTarget = 15

// RollD20 rolls a d20, applying advantage (roll twice, keep highest) or
// disadvantage (keep lowest). Advantage and disadvantage cancel out.
//
// Precondition: src must be non-nil.
// Postcondition: Returns a value in [1, 20].
func RollD20(src Source, advantage, disadvantage bool) int {
	first := src.Intn(20) + 1
	if advantage == disadvantage {
		return first
	}
	second := src.Intn(20) + 1
	if advantage {
		return max(first, second)
	}
	return min(first, second)
}

// SavingThrow rolls d20 + bonus against target (15 when target <= 0).
//
// Precondition: src must be non-nil.
// Postcondition: Result.Success iff Total > Target; Quality reflects the
// natural die only.
func SavingThrow(src Source, bonus, target int, advantage, disadvantage bool) CheckResult {
	if target <= 0 {
		target = defaultSaveTarget
	}
	natural := RollD20(src, advantage, disadvantage)

	quality := Normal
	switch natural {
	case 1:
		quality = CriticalFailure
	case 20:
		quality = CriticalSuccess
	}

	total := natural + bonus
	return CheckResult{
		Success: total > target,
		Quality: quality,
		Natural: natural,
		Total:   total,
		Target:  target,
	}
}

// OpposedCheck resolves an active check against a defending party: the
// attacker rolls d20 + attackBonus against defenseBonus + 10.
//
// Precondition: src must be non-nil.
// Postcondition: Result.Target == defenseBonus + 10.
func OpposedCheck(src Source, attackBonus, defenseBonus int, advantage, disadvantage bool) CheckResult {
	return SavingThrow(src, attackBonus, defenseBonus+10, advantage, disadvantage)
}
