package combat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sundered/mud/internal/game/dice"
)

// executeLocked runs one due action. Precondition failures skip the action
// with a private notice and never reschedule on their own; the caller still
// applies the normal repeat/fallback policy.
func (a *Arena) executeLocked(actor Combatant, action *Action) {
	switch action.Kind {
	case ActionHold:
		// Holding is deliberately silent.
	case ActionAttack:
		a.resolveAttackLocked(actor, action.Target)
	case ActionStunt:
		a.resolveStuntLocked(actor, action)
	case ActionUseItem:
		a.resolveUseLocked(actor, action.Item, action.Target)
	case ActionWield:
		actor.Wield(action.Weapon)
		a.broadcastLocked(fmt.Sprintf("%s readies %s.", actor.Name(), action.Weapon.Name()), actor)
		actor.Send(fmt.Sprintf("You ready %s.", action.Weapon.Name()))
	default:
		a.log.Error("unknown action reached execution", zap.Int("kind", int(action.Kind)))
	}
}

// resolveAttackLocked swings the actor's wielded weapon (bare hands when
// unarmed) at target, resolving an opposed check against the target's armor.
func (a *Arena) resolveAttackLocked(actor, target Combatant) {
	if _, ok := a.roster[target.ID()]; !ok {
		actor.Send("Your target is no longer in the fight.")
		return
	}

	weapon := actor.Wielded()
	if weapon == nil {
		weapon = a.cfg.Unarmed
	}
	a.lastTarget[actor.ID()] = target

	res := dice.OpposedCheck(
		a.cfg.Rolls,
		actor.AbilityBonus(weapon.AttackAbility()),
		target.DefenseBonus(),
		a.advantage[target.ID()],
		a.disadvantage[target.ID()],
	)

	if !res.Success {
		if res.Quality == dice.CriticalFailure {
			a.broadcastLocked(fmt.Sprintf("%s fumbles an attack at %s!", actor.Name(), target.Name()), actor)
			actor.Send(fmt.Sprintf("You fumble your attack at %s!", target.Name()))
		} else {
			a.broadcastLocked(fmt.Sprintf("%s misses %s.", actor.Name(), target.Name()), actor)
			actor.Send(fmt.Sprintf("You miss %s.", target.Name()))
		}
		return
	}

	damage := weapon.RollDamage(a.cfg.Rolls, res.Quality == dice.CriticalSuccess)
	hp := target.ApplyDamage(damage)
	a.log.Debug("attack landed",
		zap.String("actor", actor.ID()),
		zap.String("target", target.ID()),
		zap.Int("damage", damage),
		zap.Int("hp", hp))

	verb := "hits"
	if res.Quality == dice.CriticalSuccess {
		verb = "critically hits"
	}
	a.broadcastLocked(
		fmt.Sprintf("%s %s %s with %s for %d damage (%s).",
			actor.Name(), verb, target.Name(), weapon.Name(), damage, hurtLevel(target)),
		actor, target)
	actor.Send(fmt.Sprintf("You %s %s for %d damage (%s).",
		hitVerbSecondPerson(res.Quality), target.Name(), damage, hurtLevel(target)))
	target.Send(fmt.Sprintf("%s %s you with %s for %d damage!",
		actor.Name(), verb, weapon.Name(), damage))
}

// hitVerbSecondPerson returns the "you ..." attack verb for a hit quality.
func hitVerbSecondPerson(q dice.Quality) string {
	if q == dice.CriticalSuccess {
		return "critically hit"
	}
	return "hit"
}

// resolveStuntLocked resolves an opposed stunt check. The defender is the
// target when the stunt benefits the target's attacker directly; when the
// stunt shields its recipient instead, the recipient resists the maneuver.
func (a *Arena) resolveStuntLocked(actor Combatant, action *Action) {
	recipient, target := action.Recipient, action.Target

	defender := target
	if recipient.ID() != target.ID() && !action.Advantage {
		defender = recipient
	}

	res := dice.OpposedCheck(
		a.cfg.Rolls,
		actor.AbilityBonus(action.StuntAbility),
		defender.AbilityBonus(action.DefenseAbility),
		a.advantage[defender.ID()],
		a.disadvantage[defender.ID()],
	)

	if !res.Success {
		a.broadcastLocked(fmt.Sprintf("%s attempts a maneuver against %s, but it is resisted.",
			actor.Name(), defender.Name()), actor)
		actor.Send(fmt.Sprintf("%s resists your maneuver.", defender.Name()))
		return
	}

	if action.Advantage {
		a.advantage[target.ID()] = true
		a.broadcastLocked(fmt.Sprintf("%s opens %s up to attack!", actor.Name(), target.Name()), actor)
		actor.Send(fmt.Sprintf("You open %s up to attack!", target.Name()))
	} else {
		a.disadvantage[target.ID()] = true
		a.broadcastLocked(fmt.Sprintf("%s hampers %s!", actor.Name(), target.Name()), actor)
		actor.Send(fmt.Sprintf("You hamper %s!", target.Name()))
	}
}

// resolveUseLocked drives an item's pre-use gate, effect, and post-use hook.
func (a *Arena) resolveUseLocked(actor Combatant, usable Usable, target Combatant) {
	if err := usable.PreUse(actor, target); err != nil {
		actor.Send(fmt.Sprintf("You cannot use %s: %s", usable.Name(), err))
		return
	}
	if err := usable.Use(actor, target); err != nil {
		a.log.Warn("item use failed",
			zap.String("actor", actor.ID()),
			zap.String("item", usable.Name()),
			zap.Error(err))
		actor.Send(fmt.Sprintf("Nothing happens when you use %s.", usable.Name()))
		return
	}
	usable.PostUse(actor, target)
	a.broadcastLocked(fmt.Sprintf("%s uses %s.", actor.Name(), usable.Name()), actor)
}

// hurtLevel maps a combatant's remaining health to a coarse description, so
// onlookers get a read on the fight without exact numbers.
func hurtLevel(c Combatant) string {
	hp, maxHP := c.HP()
	if maxHP <= 0 {
		return "unknown"
	}
	switch pct := hp * 100 / maxHP; {
	case pct <= 0:
		return "down"
	case pct < 25:
		return "barely standing"
	case pct < 50:
		return "badly hurt"
	case pct < 75:
		return "hurt"
	case pct < 100:
		return "scratched"
	default:
		return "unharmed"
	}
}
