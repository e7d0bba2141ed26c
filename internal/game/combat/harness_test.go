package combat_test

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/sundered/mud/internal/game/combat"
	"github.com/sundered/mud/internal/game/dice"
)

// fixedSource returns val for every Intn call, clamped to [0, n).
type fixedSource struct{ val int }

func (f *fixedSource) Intn(n int) int {
	if f.val >= n {
		return n - 1
	}
	return f.val
}

// seqSource replays a fixed sequence of Intn results, each clamped to
// [0, n) like fixedSource. Past the end it returns zero.
type seqSource struct {
	mu   sync.Mutex
	vals []int
	next int
}

func (s *seqSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := 0
	if s.next < len(s.vals) {
		v = s.vals[s.next]
		s.next++
	}
	if v >= n {
		return n - 1
	}
	return v
}

// testCombatant is a minimal combat.Combatant with directly settable state.
type testCombatant struct {
	id     string
	player bool

	mu        sync.Mutex
	hp, maxHP int
	loc       string
	abilities map[dice.Ability]int
	armor     int
	weapon    combat.Weapon
	msgs      []string
}

func newTestCombatant(id string, hp int, loc string, player bool) *testCombatant {
	return &testCombatant{
		id:        id,
		player:    player,
		hp:        hp,
		maxHP:     hp,
		loc:       loc,
		abilities: make(map[dice.Ability]int),
	}
}

func (c *testCombatant) ID() string   { return c.id }
func (c *testCombatant) Name() string { return c.id }

func (c *testCombatant) LocationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loc
}

func (c *testCombatant) moveTo(loc string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loc = loc
}

func (c *testCombatant) HP() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hp, c.maxHP
}

func (c *testCombatant) setHP(hp int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hp = hp
}

func (c *testCombatant) ApplyDamage(amount int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if amount > 0 {
		c.hp -= amount
		if c.hp < 0 {
			c.hp = 0
		}
	}
	return c.hp
}

func (c *testCombatant) Heal(amount int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if amount > 0 {
		c.hp += amount
		if c.hp > c.maxHP {
			c.hp = c.maxHP
		}
	}
	return c.hp
}

func (c *testCombatant) AbilityBonus(ability dice.Ability) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.abilities[ability]
}

func (c *testCombatant) DefenseBonus() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.armor
}

func (c *testCombatant) Wielded() combat.Weapon {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.weapon
}

func (c *testCombatant) Wield(w combat.Weapon) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.weapon = w
}

func (c *testCombatant) IsPlayer() bool { return c.player }

func (c *testCombatant) Send(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
}

func (c *testCombatant) sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.msgs...)
}

// testLocation is a minimal combat.Location recording broadcasts.
type testLocation struct {
	id          string
	allowCombat bool
	allowPvP    bool
	allowDeath  bool

	mu         sync.Mutex
	broadcasts []string
}

func newTestLocation(id string) *testLocation {
	return &testLocation{id: id, allowCombat: true, allowDeath: true}
}

func (l *testLocation) ID() string        { return l.id }
func (l *testLocation) AllowCombat() bool { return l.allowCombat }
func (l *testLocation) AllowPvP() bool    { return l.allowPvP }
func (l *testLocation) AllowDeath() bool  { return l.allowDeath }

func (l *testLocation) Broadcast(msg string, exclude ...combat.Combatant) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.broadcasts = append(l.broadcasts, msg)
}

func (l *testLocation) heard() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.broadcasts...)
}

// testWeapon deals a fixed amount of damage, doubled on a critical.
type testWeapon struct {
	name    string
	ability dice.Ability
	damage  int
}

func (w *testWeapon) Name() string                { return w.name }
func (w *testWeapon) AttackAbility() dice.Ability { return w.ability }

func (w *testWeapon) RollDamage(src dice.Source, critical bool) int {
	if critical {
		return w.damage * 2
	}
	return w.damage
}

// testUsable records its three phases and can fail any of the first two.
type testUsable struct {
	name    string
	preErr  error
	useErr  error
	used    int
	postRan int
}

func (u *testUsable) Name() string { return u.name }

func (u *testUsable) PreUse(user, target combat.Combatant) error { return u.preErr }

func (u *testUsable) Use(user, target combat.Combatant) error {
	if u.useErr != nil {
		return u.useErr
	}
	u.used++
	return nil
}

func (u *testUsable) PostUse(user, target combat.Combatant) { u.postRan++ }

// defeatRecorder captures defeat hook invocations.
type defeatRecorder struct {
	mu     sync.Mutex
	losers []string
}

func (d *defeatRecorder) hook() combat.DefeatHook {
	return func(loser, victor combat.Combatant, loc combat.Location) {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.losers = append(d.losers, loser.ID())
	}
}

func (d *defeatRecorder) defeated() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.losers...)
}

var errExhausted = errors.New("no charges left")

// newTestRegistry builds a manual-tick registry with deterministic rolls.
func newTestRegistry(src dice.Source, hook combat.DefeatHook) *combat.Registry {
	cfg := combat.Config{
		TickInterval:  0, // tests drive Tick directly
		DefaultDelay:  0,
		FallbackDelay: 0,
		Unarmed:       &testWeapon{name: "bare hands", ability: dice.Strength, damage: 1},
		Rolls:         src,
		OnDefeat:      hook,
	}
	return combat.NewRegistry(cfg, zap.NewNop())
}
