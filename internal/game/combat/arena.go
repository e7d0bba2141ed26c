package combat

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sundered/mud/internal/game/dice"
)

// Config carries the scheduler knobs shared by all arenas.
type Config struct {
	// TickInterval is the arena tick period. When zero or negative no tick
	// goroutine is started and the owner drives Tick directly.
	TickInterval time.Duration
	// DefaultDelay is the canonical delay for every action kind except Hold,
	// which always defaults to zero.
	DefaultDelay time.Duration
	// FallbackDelay is the delay of the automatic attack queued after a
	// non-repeating action fires.
	FallbackDelay time.Duration
	// Unarmed is the implicit weapon used by combatants wielding nothing.
	Unarmed Weapon
	// Rolls is the randomness source for every check and damage roll.
	Rolls dice.Source
	// OnDefeat is called exactly once per defeated combatant on the losing
	// side when a fight ends. Optional.
	OnDefeat DefeatHook
}

// Arena is one live combat instance scoped to a location. A single mutex
// serializes the tick loop against action submission; cross-arena operations
// never share state except through the registry.
type Arena struct {
	key string
	loc Location
	cfg Config
	log *zap.Logger
	reg *Registry

	mu           sync.Mutex
	roster       map[string]Combatant
	order        []string
	advantage    map[string]bool
	disadvantage map[string]bool
	queue        *ActionQueue
	lastTarget   map[string]Combatant
	sawEmptyTick bool
	stopped      bool
	done         chan struct{}
}

func newArena(key string, loc Location, cfg Config, reg *Registry, log *zap.Logger) *Arena {
	a := &Arena{
		key:          key,
		loc:          loc,
		cfg:          cfg,
		log:          log.With(zap.String("arena", key)),
		reg:          reg,
		roster:       make(map[string]Combatant),
		advantage:    make(map[string]bool),
		disadvantage: make(map[string]bool),
		queue:        NewActionQueue(),
		lastTarget:   make(map[string]Combatant),
		done:         make(chan struct{}),
	}
	if cfg.TickInterval > 0 {
		go a.run()
	}
	return a
}

// run drives the periodic tick until the arena stops.
func (a *Arena) run() {
	ticker := time.NewTicker(a.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			a.Tick(now)
		case <-a.done:
			return
		}
	}
}

// Key returns the arena's scope key.
func (a *Arena) Key() string {
	return a.key
}

// Location returns the location the arena is scoped to.
func (a *Arena) Location() Location {
	return a.loc
}

// Stopped reports whether the arena has ended.
func (a *Arena) Stopped() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stopped
}

// AddCombatant enrolls c in the fight. Adding a combatant that is already in
// the roster is a no-op; adding one enrolled in another arena is rejected.
//
// Postcondition: On success c is in the roster, the registry side table maps
// c to this arena, and the room hears a join notification.
func (a *Arena) AddCombatant(c Combatant) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return ErrCombatOver
	}
	if _, present := a.roster[c.ID()]; present {
		return nil
	}
	if err := a.reg.enroll(c.ID(), a); err != nil {
		return err
	}
	a.roster[c.ID()] = c
	a.order = append(a.order, c.ID())
	a.log.Info("combatant joined",
		zap.String("combatant", c.ID()),
		zap.Int("roster", len(a.roster)))
	a.broadcastLocked(c.Name()+" joins the fight!", c)
	c.Send("You join the fight!")
	return nil
}

// InRoster reports whether the combatant with the given ID is enrolled.
func (a *Arena) InRoster(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.roster[id]
	return ok
}

// RosterSize returns the current roster size.
func (a *Arena) RosterSize() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.roster)
}

// QueueAction schedules action for actor. The delay is the action's own
// when positive, otherwise the canonical default for its kind.
//
// Postcondition: Returns ErrCombatOver on a stopped arena, ErrNotInCombat
// when actor is not enrolled, and a validation error for malformed payloads;
// arena state is unchanged on every error path.
func (a *Arena) QueueAction(actor Combatant, action *Action) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return ErrCombatOver
	}
	if _, ok := a.roster[actor.ID()]; !ok {
		a.log.Debug("action rejected, actor not in roster", zap.String("actor", actor.ID()))
		return ErrNotInCombat
	}
	if err := action.Validate(); err != nil {
		a.log.Debug("action rejected",
			zap.String("actor", actor.ID()),
			zap.Error(err))
		return err
	}
	a.queue.Push(actor, action, a.delayFor(action), time.Now())
	return nil
}

// delayFor returns the effective delay for action.
func (a *Arena) delayFor(action *Action) time.Duration {
	if action.Delay > 0 {
		return action.Delay
	}
	if action.Kind == ActionHold {
		return 0
	}
	return a.cfg.DefaultDelay
}

// GiveAdvantage records advantage against target. The flag is keyed by the
// target alone: any later check against that target sees it, no matter who
// the recipient was.
func (a *Arena) GiveAdvantage(recipient, target Combatant) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.advantage[target.ID()] = true
}

// GiveDisadvantage records disadvantage against target, keyed like
// GiveAdvantage.
func (a *Arena) GiveDisadvantage(recipient, target Combatant) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.disadvantage[target.ID()] = true
}

// HasAdvantage reports whether checks against target run with advantage.
// The combatant argument is ignored; see GiveAdvantage.
func (a *Arena) HasAdvantage(combatant, target Combatant) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.advantage[target.ID()]
}

// HasDisadvantage reports whether checks against target run with
// disadvantage.
func (a *Arena) HasDisadvantage(combatant, target Combatant) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.disadvantage[target.ID()]
}

// Sides partitions the roster, excluding combatant, into allies and enemies.
// In a player-versus-player location everyone else is an enemy; otherwise
// players form one side and non-players the other. The partition is
// recomputed from the live roster on every call.
func (a *Arena) Sides(combatant Combatant) (allies, enemies []Combatant) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sidesLocked(combatant, a.rosterOrderedLocked())
}

func (a *Arena) sidesLocked(combatant Combatant, from []Combatant) (allies, enemies []Combatant) {
	for _, other := range from {
		if other.ID() == combatant.ID() {
			continue
		}
		if a.loc.AllowPvP() {
			enemies = append(enemies, other)
			continue
		}
		if other.IsPlayer() == combatant.IsPlayer() {
			allies = append(allies, other)
		} else {
			enemies = append(enemies, other)
		}
	}
	return allies, enemies
}

// rosterOrderedLocked returns the live roster in join order.
func (a *Arena) rosterOrderedLocked() []Combatant {
	out := make([]Combatant, 0, len(a.roster))
	for _, id := range a.order {
		if c, ok := a.roster[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// QueueLen returns the number of pending actions. Intended for diagnostics.
func (a *Arena) QueueLen() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.queue.Len()
}

// Tick drains every action due at now, executes them in order, requeues
// repeats or fallbacks, and then evaluates termination. It is the only
// mutator of the queue, roster, and advantage maps besides enrollment.
//
// Postcondition: No due action remains queued; defeated or departed
// combatants are out of the roster; the arena may have stopped.
func (a *Arena) Tick(now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}

	for _, pa := range a.queue.PopDue(now) {
		if _, ok := a.roster[pa.Actor.ID()]; !ok {
			// The actor died or fled since queueing. Dropping the action is
			// the contract, not an error.
			continue
		}
		a.executeLocked(pa.Actor, pa.Action)

		if pa.Action.Repeat {
			a.queue.Push(pa.Actor, pa.Action, a.delayFor(pa.Action), now)
		} else {
			fb := a.fallbackLocked(pa.Actor)
			a.queue.Push(pa.Actor, fb, a.delayFor(fb), now)
		}
	}

	a.checkStopLocked()
}

// fallbackLocked returns the payload queued after a non-repeating action: a
// repeating attack on the actor's last target when that target is still
// enrolled, otherwise a hold.
func (a *Arena) fallbackLocked(actor Combatant) *Action {
	if target, ok := a.lastTarget[actor.ID()]; ok {
		if _, enrolled := a.roster[target.ID()]; enrolled {
			fb := AttackAction(target, true)
			fb.Delay = a.cfg.FallbackDelay
			return fb
		}
	}
	return Hold()
}

// checkStopLocked removes defeated and departed combatants and evaluates the
// termination rules: everyone down ends with no loot, exactly one side left
// ends with defeat processing, anything else continues.
func (a *Arena) checkStopLocked() {
	if len(a.order) == 0 {
		// Nobody has joined yet. The first enrollment gets a tick of grace;
		// after that an empty arena is reaped so a failed join cannot leak
		// it until shutdown.
		if a.sawEmptyTick {
			a.stopLocked()
		}
		a.sawEmptyTick = true
		return
	}

	var survivors, defeated []Combatant
	for _, c := range a.rosterOrderedLocked() {
		hp, _ := c.HP()
		switch {
		case c.LocationID() != a.loc.ID():
			// Fleeing is a silent removal.
			a.removeLocked(c)
		case hp <= 0:
			a.removeLocked(c)
			defeated = append(defeated, c)
		default:
			survivors = append(survivors, c)
		}
	}

	if len(survivors) == 0 {
		if len(defeated) > 0 {
			a.broadcastLocked("The fight is over. No one is left standing.")
			for _, c := range defeated {
				c.Send("You have fallen!")
			}
		}
		a.stopLocked()
		return
	}

	anchor := survivors[0]
	_, enemies := a.sidesLocked(anchor, survivors)
	if len(enemies) > 0 {
		return
	}

	// One side remains. Survivors are the victors; defeated enemies of the
	// anchor get defeat processing exactly once each.
	for _, loser := range defeated {
		if a.sameSideLocked(anchor, loser) {
			loser.Send("You have fallen!")
			continue
		}
		a.broadcastLocked(loser.Name() + " is defeated!")
		loser.Send("You have been defeated!")
		if a.cfg.OnDefeat != nil {
			a.cfg.OnDefeat(loser, a.victorForLocked(survivors), a.loc)
		}
	}
	a.broadcastLocked("The fight is over.")
	for _, v := range survivors {
		v.Send("You are victorious!")
	}
	a.stopLocked()
}

// sameSideLocked reports whether b fights on a's side.
func (a *Arena) sameSideLocked(c, other Combatant) bool {
	if a.loc.AllowPvP() {
		return false
	}
	return c.IsPlayer() == other.IsPlayer()
}

// victorForLocked picks the combatant credited with a defeat: the first
// player-controlled survivor, falling back to the first survivor.
func (a *Arena) victorForLocked(survivors []Combatant) Combatant {
	for _, c := range survivors {
		if c.IsPlayer() {
			return c
		}
	}
	return survivors[0]
}

// removeLocked drops c from the roster and releases its registry enrollment.
// The join-order slice is pruned too, so a combatant that rejoins later is
// counted once.
func (a *Arena) removeLocked(c Combatant) {
	delete(a.roster, c.ID())
	delete(a.lastTarget, c.ID())
	for i, id := range a.order {
		if id == c.ID() {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	a.reg.release(c.ID(), a)
}

// Stop force-ends the arena. Safe to call more than once.
func (a *Arena) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
}

// stopLocked tears the arena down: notifies the remaining roster, clears all
// state, and deregisters from the registry. Idempotent.
func (a *Arena) stopLocked() {
	if a.stopped {
		return
	}
	a.stopped = true
	for _, c := range a.rosterOrderedLocked() {
		c.Send("You leave the fight.")
		a.reg.release(c.ID(), a)
	}
	a.roster = make(map[string]Combatant)
	a.order = nil
	a.advantage = make(map[string]bool)
	a.disadvantage = make(map[string]bool)
	a.lastTarget = make(map[string]Combatant)
	a.queue.Clear()
	a.reg.remove(a.key, a)
	close(a.done)
	a.log.Info("combat ended")
}

// broadcastLocked fans text out to the arena's location.
func (a *Arena) broadcastLocked(text string, exclude ...Combatant) {
	a.loc.Broadcast(text, exclude...)
}

// Summary returns the viewer's allies-versus-enemies view of the fight,
// with a coarse hurt level per combatant.
func (a *Arena) Summary(viewer Combatant) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	allies, enemies := a.sidesLocked(viewer, a.rosterOrderedLocked())

	var b strings.Builder
	b.WriteString("You: ")
	b.WriteString(describe(viewer))
	b.WriteString("\nAllies: ")
	b.WriteString(describeAll(allies))
	b.WriteString("\nEnemies: ")
	b.WriteString(describeAll(enemies))
	return b.String()
}

func describe(c Combatant) string {
	return c.Name() + " (" + hurtLevel(c) + ")"
}

func describeAll(side []Combatant) string {
	if len(side) == 0 {
		return "none"
	}
	parts := make([]string, len(side))
	for i, c := range side {
		parts[i] = describe(c)
	}
	return strings.Join(parts, ", ")
}
